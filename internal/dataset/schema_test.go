package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salespulse/internal/errors"
)

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name        string
		columns     []string
		wantMissing []string
	}{
		{
			name:    "all required columns present",
			columns: []string{"order_date", "sales", "profit", "product_name", "region"},
		},
		{
			name:        "one column missing",
			columns:     []string{"order_date", "sales", "product_name"},
			wantMissing: []string{"profit"},
		},
		{
			name:        "several columns missing",
			columns:     []string{"region"},
			wantMissing: []string{"order_date", "sales", "profit", "product_name"},
		},
		{
			name:        "match is case sensitive",
			columns:     []string{"Order_Date", "SALES", "profit", "product_name"},
			wantMissing: []string{"order_date", "sales"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := &Table{Columns: tt.columns}
			err := ValidateSchema(table, RequiredColumns)

			if len(tt.wantMissing) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var schemaErr *apperrors.SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tt.wantMissing, schemaErr.Missing)
		})
	}
}
