package market

import "albion-market/internal/aodata"

// QualityPrice holds the two price fields for one (city, quality) pair.
type QualityPrice struct {
	SellPriceMin int64 `json:"sell_price_min"`
	BuyPriceMax  int64 `json:"buy_price_max"`
}

// CityPrices is the nested lookup for one city: quality tier -> prices.
type CityPrices struct {
	City      string               `json:"city"`
	ByQuality map[int]QualityPrice `json:"prices_by_quality"`
}

// GroupByCity converts the flat API row list into one CityPrices entry per
// distinct city, ordered by first appearance in the input. Duplicate
// (city, quality) pairs are last-write-wins; the upstream is not expected to
// produce them, but they must not corrupt the result.
func GroupByCity(rows []aodata.PriceRow) []CityPrices {
	index := make(map[string]int)
	var out []CityPrices
	for _, row := range rows {
		i, ok := index[row.City]
		if !ok {
			i = len(out)
			index[row.City] = i
			out = append(out, CityPrices{
				City:      row.City,
				ByQuality: make(map[int]QualityPrice),
			})
		}
		out[i].ByQuality[row.Quality] = QualityPrice{
			SellPriceMin: row.SellPriceMin,
			BuyPriceMax:  row.BuyPriceMax,
		}
	}
	return out
}

// QualitiesWithSell returns the quality tiers of cp that have a strictly
// positive sell price, ascending.
func QualitiesWithSell(cp CityPrices) []int {
	var out []int
	for q := 1; q <= 6; q++ {
		if p, ok := cp.ByQuality[q]; ok && p.SellPriceMin > 0 {
			out = append(out, q)
		}
	}
	return out
}

// DefaultQuality returns the lowest quality tier with a nonzero sell price.
// ok is false when the city has no such tier and must be dropped from the
// table entirely.
func DefaultQuality(cp CityPrices) (int, bool) {
	qs := QualitiesWithSell(cp)
	if len(qs) == 0 {
		return 0, false
	}
	return qs[0], true
}
