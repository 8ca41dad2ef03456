package curriculum

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/course-plan/internal/logger"
)

const (
	programSelector        = "div.programplan"
	termSelector           = "article"
	specializationSelector = "div.specialization"
	periodSelector         = "tbody.period"
	courseRowSelector      = "tr.main-row"

	fieldOfStudyAttr = "data-field-of-study"

	// preliminaryCourses labels a block of courses not tied to any track
	preliminaryCourses   = "Preliminära kurser"
	specializationPrefix = "Inriktning:"
	periodPrefix         = "Period "

	// periodMarker is appended to a credit value once per extra period the course spans
	periodMarker = "*"

	rowCells = 7

	DefaultCourseURLBase = "https://liu.se/studieinfo/kurs/"
)

var (
	// A one or two digit number delimited by whitespace, e.g. "Termin 7 (HT 2025)"
	termPattern = regexp.MustCompile(`(?:^|\s)(\d{1,2})(?:\s|$)`)

	// Plain decimal credits, e.g. "6" or "7.5"
	creditsPattern = regexp.MustCompile(`^\d+(?:\.\d+)?$`)

	// "Inriktning:" followed by whitespace-prefixed words, e.g. "Inriktning: AI och maskininlärning"
	specializationPattern = regexp.MustCompile(`Inriktning:(?: [\p{L}\p{N}_-]+)+`)
)

type extractOptions struct {
	courseURLBase string
	log           *logger.Logger
}

// Option configures Extract
type Option func(*extractOptions)

// WithCourseURLBase sets the URL prefix of the course page linked from each name.
func WithCourseURLBase(base string) Option {
	return func(o *extractOptions) {
		o.courseURLBase = base
	}
}

// WithLogger sets the logger that receives debug output and extraction counters.
func WithLogger(l *logger.Logger) Option {
	return func(o *extractOptions) {
		o.log = l
	}
}

// Extract walks the program plan in doc and returns its course catalog.
// Any deviation from the expected page structure aborts extraction.
func Extract(doc *goquery.Document, fields FieldOfStudyMap, opts ...Option) (*Catalog, error) {
	o := extractOptions{
		courseURLBase: DefaultCourseURLBase,
		log:           logger.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	program, err := programPlan(doc)
	if err != nil {
		return nil, err
	}

	b := NewBuilder()
	metrics := o.log.Metrics()

	terms := program.Find(termSelector)
	for i := range terms.Nodes {
		term := terms.Eq(i)

		termLbl, err := termLabel(term)
		if err != nil {
			return nil, fmt.Errorf("term block %d: %w", i+1, err)
		}

		body := term.Find("main").First()
		if body.Length() == 0 {
			return nil, fmt.Errorf("term %s: %w", termLbl, structureErr("term", "no main element"))
		}

		specs := body.Find(specializationSelector)
		for j := range specs.Nodes {
			spec := specs.Eq(j)

			specLbl, err := specializationLabel(spec)
			if err != nil {
				return nil, fmt.Errorf("term %s: %w", termLbl, err)
			}

			periods := spec.Find(periodSelector)
			for k := range periods.Nodes {
				period := periods.Eq(k)

				periodLbl, err := periodLabel(period)
				if err != nil {
					return nil, fmt.Errorf("term %s: %w", termLbl, err)
				}

				rows := period.Find(courseRowSelector)
				for r := range rows.Nodes {
					v, err := parseRow(rows.Eq(r), fields, o.courseURLBase)
					if err != nil {
						return nil, fmt.Errorf("term %s, period %s, row %d: %w", termLbl, periodLbl, r+1, err)
					}
					v.Term = termLbl
					v.Period = periodLbl
					metrics.IncrCounter("rows.parsed")

					if b.UpsertVariant(v) {
						metrics.IncrCounter("variants.created")
					} else {
						metrics.IncrCounter("variants.merged")
					}
					b.MergeSpecialization(v.Code, specLbl)
				}
			}
		}

		o.log.Debug("Term extracted", logger.Fields{"term": termLbl, "specializations": specs.Length()})
	}

	cat := b.Catalog()
	metrics.SetGauge("catalog.codes", float64(cat.Len()))
	metrics.SetGauge("catalog.variants", float64(cat.VariantCount()))
	return cat, nil
}

func programPlan(doc *goquery.Document) (*goquery.Selection, error) {
	program := doc.Find(programSelector).First()
	if program.Length() == 0 {
		return nil, structureErr("program", "no %s element", programSelector)
	}
	return program, nil
}

func termLabel(term *goquery.Selection) (string, error) {
	heading := term.Find("header").First().Find("h3").First()
	if heading.Length() == 0 {
		return "", structureErr("term", "no header h3 element")
	}

	text := strings.TrimSpace(heading.Text())
	m := termPattern.FindStringSubmatch(text)
	if m == nil {
		return "", structureErr("term", "no term number in heading %q", text)
	}
	return m[1], nil
}

// specializationLabel returns "" for blocks that are not a named track.
func specializationLabel(spec *goquery.Selection) (string, error) {
	label := spec.Find("label").First()
	if label.Length() == 0 {
		return "", structureErr("specialization", "no label element")
	}

	text := strings.TrimSpace(label.Text())
	if text == "" || text == preliminaryCourses {
		return "", nil
	}

	match := specializationPattern.FindString(text)
	if match == "" {
		return "", structureErr("specialization", "label %q does not name a specialization", text)
	}
	return strings.TrimSpace(strings.TrimPrefix(match, specializationPrefix)), nil
}

func periodLabel(period *goquery.Selection) (string, error) {
	heading := period.Find("tr").First().Find("th").First()
	if heading.Length() == 0 {
		return "", structureErr("period", "no heading cell")
	}
	return strings.TrimPrefix(strings.TrimSpace(heading.Text()), periodPrefix), nil
}

// parseRow reads one course row. Term, period and specializations are left to the caller.
func parseRow(row *goquery.Selection, fields FieldOfStudyMap, courseURLBase string) (Variant, error) {
	attr, ok := row.Attr(fieldOfStudyAttr)
	if !ok {
		return Variant{}, structureErr("course row", "no %s attribute", fieldOfStudyAttr)
	}
	fieldsOfStudy, err := fields.ResolveAll(attr)
	if err != nil {
		return Variant{}, err
	}

	cells := row.Find("td")
	if cells.Length() != rowCells {
		return Variant{}, structureErr("course row", "expected %d cells, got %d", rowCells, cells.Length())
	}
	values := cells.Map(func(_ int, td *goquery.Selection) string {
		return strings.TrimSpace(td.Text())
	})
	code, name, hp, level, block, courseType := values[0], values[1], values[2], values[3], values[4], values[5]

	credits, periodCount, err := parseCredits(hp)
	if err != nil {
		return Variant{}, err
	}

	return Variant{
		Code:          code,
		Name:          courseLink(courseURLBase, code, name),
		Credits:       credits,
		Level:         level,
		Blocks:        splitSlash(block),
		CourseType:    splitSlash(courseType),
		PeriodCount:   periodCount,
		FieldsOfStudy: fieldsOfStudy,
	}, nil
}

// parseCredits spreads the credits of raw over the periods it marks, e.g. "6*" is
// 3 credits in each of 2 periods.
func parseCredits(raw string) (float64, int, error) {
	periods := strings.Count(raw, periodMarker) + 1

	digits := strings.ReplaceAll(raw, periodMarker, "")
	if !creditsPattern.MatchString(digits) {
		return 0, 0, &CreditsError{Raw: raw, Err: errNotDecimal}
	}

	value, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, 0, &CreditsError{Raw: raw, Err: err}
	}
	return value / float64(periods), periods, nil
}

func splitSlash(s string) []string {
	if strings.Contains(s, "/") {
		return strings.Split(s, "/")
	}
	return []string{s}
}

func courseLink(base, code, name string) string {
	return fmt.Sprintf(`=HYPERLINK("%s%s", "%s")`, base, strings.ToLower(code), name)
}
