package curriculum

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFieldsOfStudy(t *testing.T) {
	doc := loadFixture(t)

	fields, err := ResolveFieldsOfStudy(doc)
	require.NoError(t, err)

	assert.Equal(t, 4, fields.Len())
	assert.Equal(t, []string{"", "12", "6", "9"}, fields.Codes())

	name, err := fields.Resolve("6")
	require.NoError(t, err)
	assert.Equal(t, "Datateknik", name, "option text is trimmed")

	name, err = fields.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "", name, "empty code maps to empty name even when the page labels it")
}

func TestResolveFieldsOfStudy_AddsEmptyEntry(t *testing.T) {
	doc := parseDoc(t, `<select class="field-of-study-filter"><option value="6">Datateknik</option></select>`)

	fields, err := ResolveFieldsOfStudy(doc)
	require.NoError(t, err)

	assert.Equal(t, 2, fields.Len())
	name, err := fields.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "", name)
}

func TestResolveFieldsOfStudy_Errors(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{
			name: "no selector",
			html: `<select class="level-filter"><option value="1">G1</option></select>`,
		},
		{
			name: "option without value",
			html: `<select class="field-of-study-filter"><option>Datateknik</option></select>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveFieldsOfStudy(parseDoc(t, tt.html))

			var structErr *StructureError
			require.ErrorAs(t, err, &structErr)
			assert.Equal(t, "field-of-study filter", structErr.Level)
		})
	}
}

func TestFieldOfStudyMap_ResolveAll(t *testing.T) {
	fields := NewFieldOfStudyMap(map[string]string{"6": "Datateknik"})

	tests := []struct {
		name    string
		attr    string
		want    []string
		wantErr error
	}{
		{name: "single code", attr: "6", want: []string{"Datateknik"}},
		{name: "empty attribute", attr: "", want: []string{""}},
		{name: "unknown code", attr: "6|9", wantErr: ErrUnknownFieldOfStudy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fields.ResolveAll(tt.attr)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
