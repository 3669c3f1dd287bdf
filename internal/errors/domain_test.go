package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaError(t *testing.T) {
	err := NewSchemaError([]string{"order_date", "sales"})
	assert.Contains(t, err.Error(), "order_date")
	assert.Contains(t, err.Error(), "sales")
	assert.True(t, IsSchemaError(err))
	assert.True(t, IsSchemaError(fmt.Errorf("validate: %w", err)))
	assert.False(t, IsSchemaError(fmt.Errorf("plain")))
}

func TestInsufficientDataError(t *testing.T) {
	err := NewInsufficientDataError(42, 100)
	assert.Equal(t, "insufficient data: have 42 rows, need at least 100", err.Error())
	assert.True(t, IsInsufficientData(err))
	assert.True(t, IsInsufficientData(fmt.Errorf("train: %w", err)))
	assert.False(t, IsInsufficientData(NewSchemaError([]string{"x"})))
}

func TestNotTrainedError(t *testing.T) {
	err := &NotTrainedError{}
	assert.Contains(t, err.Error(), "not trained")
	assert.True(t, IsNotTrained(fmt.Errorf("predict: %w", err)))
}

func TestShapeMismatchError(t *testing.T) {
	err := &ShapeMismatchError{ActualLen: 3, PredictedLen: 5}
	assert.Contains(t, err.Error(), "3")
	assert.Contains(t, err.Error(), "5")
	assert.True(t, IsShapeMismatch(err))
}

func TestFromPipelineError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "schema error maps to 400",
			err:        NewSchemaError([]string{"profit"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   "SCHEMA_INVALID",
		},
		{
			name:       "wrapped insufficient data maps to 422",
			err:        fmt.Errorf("train: %w", NewInsufficientDataError(10, 100)),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "INSUFFICIENT_DATA",
		},
		{
			name:       "shape mismatch maps to 400",
			err:        &ShapeMismatchError{ActualLen: 1, PredictedLen: 2},
			wantStatus: http.StatusBadRequest,
			wantCode:   "SHAPE_MISMATCH",
		},
		{
			name:       "not trained maps to 500",
			err:        &NotTrainedError{},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "NOT_TRAINED",
		},
		{
			name:       "unknown error maps to 500",
			err:        fmt.Errorf("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromPipelineError(tt.err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
		})
	}
}
