package categories

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/extrato-dev/extrato/internal/model"
)

const (
	numFields = 3
	colName   = 0
	colIcon   = 1
	colColor  = 2
)

// ReadCategories reads a categories CSV (name, icon, color).
func ReadCategories(r io.Reader) ([]model.Category, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading categories CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var cats []model.Category
	for i, rec := range records[1:] {
		c, err := UnmarshalCategory(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cats = append(cats, c)
	}
	return cats, nil
}

// WriteCategories writes a categories CSV.
func WriteCategories(w io.Writer, cats []model.Category) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"name", "icon", "color"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, c := range cats {
		if err := cw.Write(MarshalCategory(c)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalCategory converts a Category to a CSV row.
func MarshalCategory(c model.Category) []string {
	row := make([]string, numFields)
	row[colName] = c.Name
	row[colIcon] = c.Icon
	row[colColor] = c.Color
	return row
}

// UnmarshalCategory converts a CSV row to a Category.
func UnmarshalCategory(record []string) (model.Category, error) {
	if len(record) != numFields {
		return model.Category{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	name := strings.TrimSpace(record[colName])
	if name == "" {
		return model.Category{}, fmt.Errorf("empty category name")
	}
	color := strings.TrimSpace(record[colColor])
	if color != "" && !isHexColor(color) {
		return model.Category{}, fmt.Errorf("invalid color %q for %s", color, name)
	}
	return model.Category{
		Name:  name,
		Icon:  strings.TrimSpace(record[colIcon]),
		Color: color,
	}, nil
}

// isHexColor accepts "#rgb" and "#rrggbb".
func isHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
