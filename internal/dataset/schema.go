package dataset

import (
	"salespulse/internal/errors"
)

// ValidateSchema confirms every required column is present in the table by
// exact, case-sensitive name. It runs once before any coercion, so later
// stages may assume column presence but not value types.
func ValidateSchema(table *Table, required []string) error {
	var missing []string
	for _, col := range required {
		if table.ColumnIndex(col) < 0 {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return errors.NewSchemaError(missing)
	}
	return nil
}
