package market

import "sort"

// SortKey selects the table column being sorted.
type SortKey string

const (
	SortByCity SortKey = "city"
	SortBySell SortKey = "sell_price_min"
	SortByBuy  SortKey = "buy_price_max"
)

// ParseSortKey validates a user-supplied sort key.
func ParseSortKey(s string) (SortKey, bool) {
	switch SortKey(s) {
	case SortByCity, SortBySell, SortByBuy:
		return SortKey(s), true
	}
	return "", false
}

// SortState is the active (key, direction) pair, or nil for unsorted.
type SortState struct {
	Key        SortKey `json:"key"`
	Descending bool    `json:"descending"`
}

// NextSort implements the header-click rule: clicking the active key toggles
// the direction, clicking a new key resets to ascending.
func NextSort(cur *SortState, key SortKey) *SortState {
	if cur != nil && cur.Key == key && !cur.Descending {
		return &SortState{Key: key, Descending: true}
	}
	return &SortState{Key: key}
}

// TableRow is one rendered table row: a grouped city at its selected quality.
type TableRow struct {
	City         string `json:"city"`
	Quality      int    `json:"quality"`
	SellPriceMin int64  `json:"sell_price_min"`
	BuyPriceMax  int64  `json:"buy_price_max"`
	Qualities    []int  `json:"qualities"` // tiers selectable for this city (sell > 0)
	SellBest     bool   `json:"sell_best"` // equals the global minimum sell price
	BuyBest      bool   `json:"buy_best"`  // equals the global maximum buy price
}

// BuildTable derives the visible rows from grouped prices and the per-city
// selected-quality map. A city appears only if its effective quality (the
// user's pick, falling back to the lowest tier with sell > 0) carries a
// positive sell price. Rows are then sorted per state and extreme sell/buy
// cells are flagged.
func BuildTable(groups []CityPrices, byCity map[string]int, state *SortState) []TableRow {
	rows := make([]TableRow, 0, len(groups))
	for _, cp := range groups {
		quality, ok := effectiveQuality(cp, byCity)
		if !ok {
			continue
		}
		p := cp.ByQuality[quality]
		rows = append(rows, TableRow{
			City:         cp.City,
			Quality:      quality,
			SellPriceMin: p.SellPriceMin,
			BuyPriceMax:  p.BuyPriceMax,
			Qualities:    QualitiesWithSell(cp),
		})
	}

	sortRows(rows, state)
	markHighlights(rows)
	return rows
}

// effectiveQuality resolves the displayed quality for a city. A stale user
// selection pointing at a tier with no sell data falls back to the default.
func effectiveQuality(cp CityPrices, byCity map[string]int) (int, bool) {
	if q, ok := byCity[cp.City]; ok {
		if p, has := cp.ByQuality[q]; has && p.SellPriceMin > 0 {
			return q, true
		}
	}
	return DefaultQuality(cp)
}

// sortRows orders rows per state using a stable sort so ties keep input
// order. Price comparisons use each row's individually selected quality;
// rows with no usable value sort last regardless of direction.
func sortRows(rows []TableRow, state *SortState) {
	if state == nil {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, aOK := sortValue(rows[i], state.Key)
		b, bOK := sortValue(rows[j], state.Key)
		if aOK != bOK {
			return aOK // missing values always last
		}
		if !aOK {
			return false
		}
		if state.Key == SortByCity {
			if rows[i].City == rows[j].City {
				return false
			}
			if state.Descending {
				return rows[i].City > rows[j].City
			}
			return rows[i].City < rows[j].City
		}
		if a == b {
			return false
		}
		if state.Descending {
			return a > b
		}
		return a < b
	})
}

// sortValue extracts the comparison value for a price key. Zero prices mean
// "no data" upstream, so they count as missing.
func sortValue(r TableRow, key SortKey) (int64, bool) {
	switch key {
	case SortBySell:
		return r.SellPriceMin, r.SellPriceMin > 0
	case SortByBuy:
		return r.BuyPriceMax, r.BuyPriceMax > 0
	default:
		return 0, true // city: always comparable
	}
}

// markHighlights flags every cell matching the global minimum sell price or
// the global maximum buy price. Ties flag all matching cells. Extremes are
// computed over rows with a positive sell price only, which after filtering
// is every visible row.
func markHighlights(rows []TableRow) {
	var minSell, maxBuy int64
	for _, r := range rows {
		if r.SellPriceMin <= 0 {
			continue
		}
		if minSell == 0 || r.SellPriceMin < minSell {
			minSell = r.SellPriceMin
		}
		if r.BuyPriceMax > maxBuy {
			maxBuy = r.BuyPriceMax
		}
	}
	for i := range rows {
		if minSell > 0 && rows[i].SellPriceMin == minSell {
			rows[i].SellBest = true
		}
		if maxBuy > 0 && rows[i].BuyPriceMax == maxBuy {
			rows[i].BuyBest = true
		}
	}
}
