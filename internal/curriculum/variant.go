package curriculum

import "slices"

// Variant is one offering of a course within a specific term, period and block combination.
type Variant struct {
	Code            string   `json:"code"`
	Name            string   `json:"name"` // =HYPERLINK formula pointing at the course page
	Credits         float64  `json:"credits"`
	Level           string   `json:"level"`
	Blocks          []string `json:"blocks"`
	CourseType      []string `json:"course_type"`
	Term            string   `json:"term"`
	Period          string   `json:"period"`
	PeriodCount     int      `json:"period_count"`
	Specializations []string `json:"specializations"`
	FieldsOfStudy   []string `json:"fields_of_study"`
}

// VariantKey identifies a variant within its course code.
type VariantKey struct {
	Term   string
	Period string
	Blocks []string
}

// Key returns the variant's deduplication key.
func (v Variant) Key() VariantKey {
	return VariantKey{Term: v.Term, Period: v.Period, Blocks: v.Blocks}
}

// Equal compares keys element-wise.
func (k VariantKey) Equal(other VariantKey) bool {
	return k.Term == other.Term && k.Period == other.Period && slices.Equal(k.Blocks, other.Blocks)
}

func (v Variant) clone() Variant {
	v.Blocks = slices.Clone(v.Blocks)
	v.CourseType = slices.Clone(v.CourseType)
	v.Specializations = slices.Clone(v.Specializations)
	v.FieldsOfStudy = slices.Clone(v.FieldsOfStudy)
	return v
}

// noSpecialization is the placeholder list of a variant not yet tied to a track.
var noSpecialization = []string{""}

func isPlaceholder(specs []string) bool {
	return slices.Equal(specs, noSpecialization)
}

// Builder accumulates variants in document order. It is owned by a single
// extraction pass and handed off through Catalog.
type Builder struct {
	codes    []string
	variants map[string][]Variant
}

// NewBuilder creates an empty Builder
func NewBuilder() *Builder {
	return &Builder{
		variants: make(map[string][]Variant),
	}
}

// UpsertVariant appends v under v.Code unless a variant with the same key already
// exists. New variants start with the placeholder specialization list. It reports
// whether a variant was added.
func (b *Builder) UpsertVariant(v Variant) bool {
	existing, seen := b.variants[v.Code]
	if !seen {
		b.codes = append(b.codes, v.Code)
	}

	key := v.Key()
	for _, e := range existing {
		if e.Key().Equal(key) {
			return false
		}
	}

	v = v.clone()
	v.Specializations = slices.Clone(noSpecialization)
	b.variants[v.Code] = append(existing, v)
	return true
}

// MergeSpecialization tags every variant of code with label. A placeholder list
// is replaced; otherwise label is appended if not already present. An empty
// label changes nothing.
func (b *Builder) MergeSpecialization(code, label string) {
	if label == "" {
		return
	}

	variants := b.variants[code]
	for i := range variants {
		specs := variants[i].Specializations
		switch {
		case isPlaceholder(specs):
			variants[i].Specializations = []string{label}
		case !slices.Contains(specs, label):
			variants[i].Specializations = append(specs, label)
		}
	}
}

// Catalog returns a read-only snapshot of everything accumulated so far.
func (b *Builder) Catalog() *Catalog {
	cat := &Catalog{
		codes:    slices.Clone(b.codes),
		variants: make(map[string][]Variant, len(b.variants)),
	}
	for code, variants := range b.variants {
		cloned := make([]Variant, len(variants))
		for i, v := range variants {
			cloned[i] = v.clone()
		}
		cat.variants[code] = cloned
	}
	return cat
}

// Catalog maps course codes to their variants, both in document order.
type Catalog struct {
	codes    []string
	variants map[string][]Variant
}

// Codes returns the course codes in first-seen order.
func (c *Catalog) Codes() []string {
	return slices.Clone(c.codes)
}

// Variants returns a copy of the variants recorded for code.
func (c *Catalog) Variants(code string) []Variant {
	variants := c.variants[code]
	if variants == nil {
		return nil
	}
	out := make([]Variant, len(variants))
	for i, v := range variants {
		out[i] = v.clone()
	}
	return out
}

// Rows returns every variant, ordered by code then by variant.
func (c *Catalog) Rows() []Variant {
	rows := make([]Variant, 0, c.VariantCount())
	for _, code := range c.codes {
		rows = append(rows, c.Variants(code)...)
	}
	return rows
}

// Len returns the number of course codes.
func (c *Catalog) Len() int {
	return len(c.codes)
}

// VariantCount returns the total number of variants across all codes.
func (c *Catalog) VariantCount() int {
	n := 0
	for _, variants := range c.variants {
		n += len(variants)
	}
	return n
}
