package domain

import "strings"

// Filters narrows a catalog result set. Zero value applies nothing.
type Filters struct {
	MinBudget       *float64
	MaxBudget       *float64
	Occasion        string
	DietaryExcludes []string
	UrgentDelivery  bool
}

// FiltersFromIntent derives the filter set the pipeline applies after a search.
func FiltersFromIntent(in Intent) Filters {
	return Filters{
		MinBudget:       in.BudgetMin,
		MaxBudget:       in.BudgetMax,
		Occasion:        in.Occasion,
		DietaryExcludes: in.DietaryRestrictions,
		UrgentDelivery:  in.Urgency == UrgencyOneHour,
	}
}

// FilterProducts narrows a result set. Filters apply in a fixed order, each
// on the output of the previous: min budget, max budget, occasion, dietary
// exclusion, urgent delivery. A product with an unknown (nil) MinPrice is
// excluded by any budget filter.
//
// Occasion narrowing is advisory: if it would eliminate every remaining
// product, the pre-occasion set is kept instead.
func FilterProducts(products []Product, f Filters) []Product {
	out := products

	if f.MinBudget != nil {
		out = keep(out, func(p Product) bool {
			return p.MinPrice != nil && *p.MinPrice >= *f.MinBudget
		})
	}

	if f.MaxBudget != nil {
		out = keep(out, func(p Product) bool {
			return p.MinPrice != nil && *p.MinPrice <= *f.MaxBudget
		})
	}

	if occ := strings.ToLower(strings.TrimSpace(f.Occasion)); occ != "" {
		narrowed := keep(out, func(p Product) bool {
			return strings.Contains(strings.ToLower(p.Occasion), occ)
		})
		if len(narrowed) > 0 {
			out = narrowed
		}
	}

	if len(f.DietaryExcludes) > 0 {
		out = keep(out, func(p Product) bool {
			ingredients := strings.ToLower(p.Ingredients)
			for _, excl := range f.DietaryExcludes {
				excl = strings.ToLower(strings.TrimSpace(excl))
				if excl != "" && strings.Contains(ingredients, excl) {
					return false
				}
			}
			return true
		})
	}

	if f.UrgentDelivery {
		out = keep(out, func(p Product) bool { return p.OneHourDelivery })
	}

	return out
}

func keep(products []Product, pred func(Product) bool) []Product {
	kept := make([]Product, 0, len(products))
	for _, p := range products {
		if pred(p) {
			kept = append(kept, p)
		}
	}
	return kept
}
