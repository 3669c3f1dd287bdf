package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleanedFixture(t *testing.T) *CleanedTable {
	t.Helper()
	cleaner := NewCleaner(discardLogger())
	table := &Table{
		Columns: []string{ColOrderDate, ColSales, ColProfit, ColProductName, ColRegion, ColCategory},
		Rows: [][]string{
			{"2024-01-01", "100", "10", "Widget", "East", "Hardware"},
			{"2024-02-01", "200", "20", "Gadget", "West", "Hardware"},
			{"2024-03-01", "300", "30", "Widget", "East", "Software"},
			{"bad-date", "400", "40", "Widget", "East", "Hardware"},
		},
	}
	cleaned, _ := cleaner.Clean(table)
	return cleaned
}

func TestFiltersZeroValueIsPassthrough(t *testing.T) {
	cleaned := cleanedFixture(t)
	out := Filters{}.Apply(cleaned)
	assert.Same(t, cleaned, out)
}

func TestFiltersDateRange(t *testing.T) {
	cleaned := cleanedFixture(t)
	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	out := Filters{From: &from, To: &to}.Apply(cleaned)

	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, "Gadget", out.Records[0].ProductName)
}

func TestFiltersDateRangeExcludesNullDates(t *testing.T) {
	cleaned := cleanedFixture(t)
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	out := Filters{From: &from}.Apply(cleaned)

	// The bad-date row cannot satisfy a date bound.
	assert.Equal(t, 3, out.NumRows())
}

func TestFiltersCategoryAndRegion(t *testing.T) {
	cleaned := cleanedFixture(t)

	out := Filters{Categories: []string{"Hardware"}, Regions: []string{"East"}}.Apply(cleaned)

	require.Equal(t, 2, out.NumRows())
	for _, rec := range out.Records {
		assert.Equal(t, "Hardware", rec.Category)
		assert.Equal(t, "East", rec.Region)
	}
}

func TestFiltersProducts(t *testing.T) {
	cleaned := cleanedFixture(t)
	out := Filters{Products: []string{"Gadget"}}.Apply(cleaned)
	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, "Gadget", out.Records[0].ProductName)
}

func TestSummarize(t *testing.T) {
	cleaned := cleanedFixture(t)
	s := Summarize(cleaned)

	assert.Equal(t, 4, s.Rows)
	assert.Equal(t, 3, s.ValidRows, "the bad-date row is not fully coerced")
	assert.Equal(t, 3, s.ValidDates)
	assert.InDelta(t, 1000, s.TotalSales, 1e-9)
	assert.InDelta(t, 250, s.MeanSales, 1e-9)
	assert.InDelta(t, 100, s.TotalProfit, 1e-9)
	require.NotNil(t, s.FirstDate)
	require.NotNil(t, s.LastDate)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *s.FirstDate)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *s.LastDate)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(&CleanedTable{})
	assert.Equal(t, 0, s.Rows)
	assert.Zero(t, s.MeanSales)
	assert.Nil(t, s.FirstDate)
}
