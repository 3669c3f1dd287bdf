package dataset

import (
	"time"
)

// Filters narrows a cleaned table before aggregation. Zero-valued fields
// are inactive. Date bounds are inclusive; rows with a null date never
// match an active date filter.
type Filters struct {
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
	Categories []string   `json:"categories,omitempty"`
	Regions    []string   `json:"regions,omitempty"`
	Products   []string   `json:"products,omitempty"`
}

// IsZero reports whether no filter is active.
func (f Filters) IsZero() bool {
	return f.From == nil && f.To == nil &&
		len(f.Categories) == 0 && len(f.Regions) == 0 && len(f.Products) == 0
}

// Apply returns a new cleaned table containing only the matching rows,
// in their original order.
func (f Filters) Apply(ct *CleanedTable) *CleanedTable {
	if f.IsZero() {
		return ct
	}

	categories := toSet(f.Categories)
	regions := toSet(f.Regions)
	products := toSet(f.Products)

	out := &CleanedTable{Columns: append([]string(nil), ct.Columns...)}
	for i, rec := range ct.Records {
		if f.From != nil || f.To != nil {
			if rec.OrderDate == nil {
				continue
			}
			if f.From != nil && rec.OrderDate.Before(*f.From) {
				continue
			}
			if f.To != nil && rec.OrderDate.After(*f.To) {
				continue
			}
		}
		if len(categories) > 0 {
			if _, ok := categories[rec.Category]; !ok {
				continue
			}
		}
		if len(regions) > 0 {
			if _, ok := regions[rec.Region]; !ok {
				continue
			}
		}
		if len(products) > 0 {
			if _, ok := products[rec.ProductName]; !ok {
				continue
			}
		}

		out.Rows = append(out.Rows, ct.Rows[i])
		out.Records = append(out.Records, rec)
	}

	return out
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
