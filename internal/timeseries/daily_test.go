package timeseries

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/dataset"
	apperrors "salespulse/internal/errors"
)

func cleanRows(t *testing.T, rows [][]string) *dataset.CleanedTable {
	t.Helper()
	cleaner := dataset.NewCleaner(slog.New(slog.NewTextHandler(io.Discard, nil)))
	table := &dataset.Table{
		Columns: []string{dataset.ColOrderDate, dataset.ColSales, dataset.ColProfit, dataset.ColProductName},
		Rows:    rows,
	}
	cleaned, _ := cleaner.Clean(table)
	return cleaned
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregateFillsCalendarGaps(t *testing.T) {
	// Rows on Jan 1 and Jan 3 produce three entries with a zero-fill day.
	cleaned := cleanRows(t, [][]string{
		{"2024-01-01", "100", "0", "Widget"},
		{"2024-01-03", "50", "0", "Widget"},
	})

	series, err := Aggregate(cleaned, NullAsZero)
	require.NoError(t, err)

	require.Len(t, series, 3)
	assert.Equal(t, DailyPoint{Date: day(2024, 1, 1), Sales: 100}, series[0])
	assert.Equal(t, DailyPoint{Date: day(2024, 1, 2), Sales: 0}, series[1])
	assert.Equal(t, DailyPoint{Date: day(2024, 1, 3), Sales: 50}, series[2])
}

func TestAggregateSumsWithinDay(t *testing.T) {
	cleaned := cleanRows(t, [][]string{
		{"2024-01-01", "100", "0", "Widget"},
		{"2024-01-01", "25.5", "0", "Gadget"},
	})

	series, err := Aggregate(cleaned, NullAsZero)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.InDelta(t, 125.5, series[0].Sales, 1e-9)
}

func TestAggregateDatesAreContiguous(t *testing.T) {
	cleaned := cleanRows(t, [][]string{
		{"2024-01-01", "10", "0", "W"},
		{"2024-02-15", "20", "0", "W"},
		{"2024-01-20", "30", "0", "W"},
	})

	series, err := Aggregate(cleaned, NullAsZero)
	require.NoError(t, err)

	for i := 1; i < len(series); i++ {
		assert.Equal(t, series[i-1].Date.AddDate(0, 0, 1), series[i].Date,
			"gap between %s and %s", series[i-1].Date, series[i].Date)
	}
}

func TestAggregateSkipsNullDates(t *testing.T) {
	cleaned := cleanRows(t, [][]string{
		{"garbage", "999", "0", "W"},
		{"2024-01-01", "10", "0", "W"},
	})

	series, err := Aggregate(cleaned, NullAsZero)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.InDelta(t, 10, series[0].Sales, 1e-9)
}

func TestAggregateNullSalesPolicies(t *testing.T) {
	rows := [][]string{
		{"2024-01-01", "", "0", "W"},
		{"2024-01-01", "40", "0", "W"},
	}

	t.Run("null as zero", func(t *testing.T) {
		series, err := Aggregate(cleanRows(t, rows), NullAsZero)
		require.NoError(t, err)
		require.Len(t, series, 1)
		assert.InDelta(t, 40, series[0].Sales, 1e-9)
	})

	t.Run("null excluded", func(t *testing.T) {
		series, err := Aggregate(cleanRows(t, rows), NullExcluded)
		require.NoError(t, err)
		require.Len(t, series, 1)
		assert.InDelta(t, 40, series[0].Sales, 1e-9)
	})

	t.Run("only null sales on a day still anchors the range under zero policy", func(t *testing.T) {
		series, err := Aggregate(cleanRows(t, [][]string{
			{"2024-01-01", "", "0", "W"},
			{"2024-01-03", "5", "0", "W"},
		}), NullAsZero)
		require.NoError(t, err)
		require.Len(t, series, 3)
		assert.InDelta(t, 0, series[0].Sales, 1e-9)
	})

	t.Run("null excluded shrinks the range when a boundary day is all null", func(t *testing.T) {
		series, err := Aggregate(cleanRows(t, [][]string{
			{"2024-01-01", "", "0", "W"},
			{"2024-01-03", "5", "0", "W"},
		}), NullExcluded)
		require.NoError(t, err)
		require.Len(t, series, 1)
		assert.Equal(t, day(2024, 1, 3), series[0].Date)
	})
}

func TestAggregateNoValidRows(t *testing.T) {
	cleaned := cleanRows(t, [][]string{
		{"not-a-date", "10", "0", "W"},
	})

	_, err := Aggregate(cleaned, NullAsZero)
	require.Error(t, err)
	assert.True(t, apperrors.IsInsufficientData(err))
}

func TestParseNullPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    NullPolicy
		wantErr bool
	}{
		{"zero", NullAsZero, false},
		{"", NullAsZero, false},
		{"exclude", NullExcluded, false},
		{"impute", NullAsZero, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNullPolicy(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
