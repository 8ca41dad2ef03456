package curriculum

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const fieldOfStudySelector = "select.field-of-study-filter"

// FieldOfStudyMap maps field-of-study codes to display names.
// The empty code always resolves to the empty name.
type FieldOfStudyMap struct {
	names map[string]string
}

// NewFieldOfStudyMap builds a map from code/name pairs and adds the empty entry.
func NewFieldOfStudyMap(names map[string]string) FieldOfStudyMap {
	m := make(map[string]string, len(names)+1)
	for code, name := range names {
		m[code] = name
	}
	m[""] = ""
	return FieldOfStudyMap{names: m}
}

// ResolveFieldsOfStudy reads the options of the page's field-of-study filter.
func ResolveFieldsOfStudy(doc *goquery.Document) (FieldOfStudyMap, error) {
	sel := doc.Find(fieldOfStudySelector).First()
	if sel.Length() == 0 {
		return FieldOfStudyMap{}, structureErr("field-of-study filter", "no %s element", fieldOfStudySelector)
	}

	names := make(map[string]string)
	var err error
	sel.Find("option").EachWithBreak(func(i int, opt *goquery.Selection) bool {
		code, ok := opt.Attr("value")
		if !ok {
			err = structureErr("field-of-study filter", "option %d has no value attribute", i)
			return false
		}
		names[code] = strings.TrimSpace(opt.Text())
		return true
	})
	if err != nil {
		return FieldOfStudyMap{}, err
	}

	return NewFieldOfStudyMap(names), nil
}

// Resolve returns the display name for code.
func (m FieldOfStudyMap) Resolve(code string) (string, error) {
	name, ok := m.names[code]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFieldOfStudy, code)
	}
	return name, nil
}

// ResolveAll resolves a pipe-separated list of codes, as found in a row's
// data-field-of-study attribute.
func (m FieldOfStudyMap) ResolveAll(attr string) ([]string, error) {
	codes := strings.Split(attr, "|")
	names := make([]string, 0, len(codes))
	for _, code := range codes {
		name, err := m.Resolve(code)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Len returns the number of entries, including the empty one.
func (m FieldOfStudyMap) Len() int {
	return len(m.names)
}

// Codes returns all known codes in sorted order.
func (m FieldOfStudyMap) Codes() []string {
	codes := make([]string, 0, len(m.names))
	for code := range m.names {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
