// Package table writes a course catalog as a spreadsheet-friendly table.
//
// The default output is tab-separated text with one header row and one row per course
// variant, in catalog order. List-valued cells are joined with commas.
package table

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pfrederiksen/course-plan/internal/curriculum"
)

// Format specifies the output format
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
)

// Header is the fixed column order of the table.
var Header = []string{
	"Kurskod",
	"Namn",
	"Hp",
	"Nivå",
	"Block",
	"O/V/F",
	"Termin",
	"Period",
	"Perioder",
	"Inriktning",
	"Område",
}

const listSeparator = ","

// WriteFile creates path and writes cat to it in the given format.
// On failure the file is removed.
func WriteFile(path string, format Format, cat *curriculum.Catalog) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	if err := Write(f, format, cat); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("closing output file: %w", err)
	}
	return nil
}

// Write writes cat in the specified format
func Write(w io.Writer, format Format, cat *curriculum.Catalog) error {
	switch format {
	case FormatTSV:
		return WriteTSV(w, cat)
	case FormatJSON:
		return WriteJSON(w, cat)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteTSV writes the header and one row per variant, tab-delimited with CRLF line endings.
func WriteTSV(w io.Writer, cat *curriculum.Catalog) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	cw.UseCRLF = true

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, v := range cat.Rows() {
		if err := cw.Write(Record(v)); err != nil {
			return fmt.Errorf("writing %s: %w", v.Code, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// Record returns the cells of v in Header order.
func Record(v curriculum.Variant) []string {
	return []string{
		v.Code,
		v.Name,
		FormatCredits(v.Credits),
		v.Level,
		strings.Join(v.Blocks, listSeparator),
		strings.Join(v.CourseType, listSeparator),
		v.Term,
		v.Period,
		strconv.Itoa(v.PeriodCount),
		strings.Join(v.Specializations, listSeparator),
		strings.Join(v.FieldsOfStudy, listSeparator),
	}
}

// FormatCredits renders credits with the shortest exact representation, always
// keeping a fractional part ("6.0", "7.5", "2.3333333333333335").
func FormatCredits(credits float64) string {
	s := strconv.FormatFloat(credits, 'f', -1, 64)
	if !math.IsNaN(credits) && !math.IsInf(credits, 0) && !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// WriteJSON writes the variants as an indented JSON array.
func WriteJSON(w io.Writer, cat *curriculum.Catalog) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cat.Rows()); err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	return nil
}
