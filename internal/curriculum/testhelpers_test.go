package curriculum

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const fieldOfStudyFilter = `<select class="field-of-study-filter">
  <option value="">Alla</option>
  <option value="6">Datateknik</option>
</select>`

func planHTML(terms ...string) string {
	return fmt.Sprintf(`<html><body>%s<div class="programplan">%s</div></body></html>`,
		fieldOfStudyFilter, strings.Join(terms, "\n"))
}

func termHTML(heading string, specs ...string) string {
	return fmt.Sprintf(`<article><header><h3>%s</h3></header><main>%s</main></article>`,
		heading, strings.Join(specs, "\n"))
}

func specHTML(label string, periods ...string) string {
	return fmt.Sprintf(`<div class="specialization"><label>%s</label><table>%s</table></div>`,
		label, strings.Join(periods, "\n"))
}

func periodHTML(heading string, rows ...string) string {
	return fmt.Sprintf(`<tbody class="period"><tr><th>%s</th></tr>%s</tbody>`,
		heading, strings.Join(rows, "\n"))
}

func rowHTML(fieldOfStudy string, cells ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<tr class="main-row" data-field-of-study="%s">`, fieldOfStudy)
	for _, c := range cells {
		fmt.Fprintf(&b, "<td>%s</td>", c)
	}
	b.WriteString("</tr>")
	return b.String()
}

// testRow is the single course row used by most extraction tests.
func testRow() string {
	return rowHTML("6", "TEST1", "Test Course", "6", "G1", "1", "O", "")
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func loadFixture(t *testing.T) *goquery.Document {
	t.Helper()
	f, err := os.Open("../../testdata/fixtures/programplan.html")
	require.NoError(t, err, "failed to load test fixture")
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	return doc
}
