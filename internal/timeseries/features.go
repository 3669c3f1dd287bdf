package timeseries

import (
	"time"
)

// FeatureRow holds the calendar regressors for one day. DaysFromOrigin is
// measured against the origin recorded at training time; the remaining
// fields are pure functions of the date.
type FeatureRow struct {
	Date           time.Time `json:"date"`
	DaysFromOrigin int       `json:"days_from_origin"`
	DayOfWeek      int       `json:"day_of_week"` // 0=Monday .. 6=Sunday
	Month          int       `json:"month"`       // 1-12
	Quarter        int       `json:"quarter"`     // 1-4
	DayOfMonth     int       `json:"day_of_month"`
	IsWeekend      bool      `json:"is_weekend"` // Saturday or Sunday
}

// Vector returns the regressors as floats in fixed column order.
func (f FeatureRow) Vector() []float64 {
	weekend := 0.0
	if f.IsWeekend {
		weekend = 1.0
	}
	return []float64{
		float64(f.DaysFromOrigin),
		float64(f.DayOfWeek),
		float64(f.Month),
		float64(f.Quarter),
		float64(f.DayOfMonth),
		weekend,
	}
}

// NumFeatures is the width of a feature vector.
const NumFeatures = 6

// BuildFeatures derives one FeatureRow per series entry, aligned 1:1,
// with day offsets measured from the series origin.
func BuildFeatures(series DailySeries) []FeatureRow {
	features := make([]FeatureRow, len(series))
	origin := series.Origin()
	for i, p := range series {
		features[i] = FeatureRowFor(p.Date, origin)
	}
	return features
}

// BuildFutureFeatures derives feature rows for `periods` consecutive days
// starting at `start`, keeping offsets relative to the training origin.
func BuildFutureFeatures(origin, start time.Time, periods int) []FeatureRow {
	features := make([]FeatureRow, periods)
	for i := 0; i < periods; i++ {
		features[i] = FeatureRowFor(start.AddDate(0, 0, i), origin)
	}
	return features
}

// FeatureRowFor computes the calendar features of a single date.
func FeatureRowFor(date, origin time.Time) FeatureRow {
	weekday := mondayIndexed(date.Weekday())
	return FeatureRow{
		Date:           date,
		DaysFromOrigin: int(date.Sub(origin).Hours() / 24),
		DayOfWeek:      weekday,
		Month:          int(date.Month()),
		Quarter:        (int(date.Month())-1)/3 + 1,
		DayOfMonth:     date.Day(),
		IsWeekend:      weekday >= 5,
	}
}

// mondayIndexed maps Go's Sunday=0 weekday to the Monday=0 convention the
// rest of the pipeline uses.
func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}
