package pipeline

import (
	"sort"

	"github.com/giftwise/giftwise/internal/domain"
)

// rankProducts orders a filtered result set for presentation: top sellers
// first, then by descending catalog relevance score. The sort is stable so
// products tied on both keys keep their catalog order.
func rankProducts(products []domain.Product) []domain.Product {
	ranked := make([]domain.Product, len(products))
	copy(ranked, products)

	sort.SliceStable(ranked, func(i, j int) bool {
		ti, tj := ranked[i].TopSeller(), ranked[j].TopSeller()
		if ti != tj {
			return ti
		}
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func topN(products []domain.Product, n int) []domain.Product {
	if len(products) <= n {
		return products
	}
	return products[:n]
}
