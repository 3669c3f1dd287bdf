package dataset

import (
	"time"
)

// Summary holds descriptive statistics over a cleaned table, consumed by
// the report exporter and the web summary endpoint.
type Summary struct {
	Rows        int        `json:"rows"`
	ValidRows   int        `json:"valid_rows"`
	ValidDates  int        `json:"valid_dates"`
	TotalSales  float64    `json:"total_sales"`
	MeanSales   float64    `json:"mean_sales"`
	TotalProfit float64    `json:"total_profit"`
	FirstDate   *time.Time `json:"first_date,omitempty"`
	LastDate    *time.Time `json:"last_date,omitempty"`
}

// Summarize computes descriptive statistics. Null sales and profit values
// are skipped; the mean is over non-null sales only.
func Summarize(ct *CleanedTable) Summary {
	s := Summary{Rows: ct.NumRows()}

	salesCount := 0
	for _, rec := range ct.Records {
		if rec.IsValid() {
			s.ValidRows++
		}
		if rec.Sales != nil {
			s.TotalSales += *rec.Sales
			salesCount++
		}
		if rec.Profit != nil {
			s.TotalProfit += *rec.Profit
		}
		if rec.OrderDate != nil {
			s.ValidDates++
			if s.FirstDate == nil || rec.OrderDate.Before(*s.FirstDate) {
				d := *rec.OrderDate
				s.FirstDate = &d
			}
			if s.LastDate == nil || rec.OrderDate.After(*s.LastDate) {
				d := *rec.OrderDate
				s.LastDate = &d
			}
		}
	}

	if salesCount > 0 {
		s.MeanSales = s.TotalSales / float64(salesCount)
	}

	return s
}
