package market

import "albion-market/internal/aodata"

// ChartPoint is one bar-chart datum: a city's prices at the globally
// selected quality tier.
type ChartPoint struct {
	City         string `json:"city"`
	SellPriceMin int64  `json:"sell_price_min"`
	BuyPriceMax  int64  `json:"buy_price_max"`
}

// ProjectChart projects one point per city at the given quality. Cities with
// a zero sell price at that tier are omitted.
func ProjectChart(groups []CityPrices, quality int) []ChartPoint {
	var out []ChartPoint
	for _, cp := range groups {
		p, ok := cp.ByQuality[quality]
		if !ok || p.SellPriceMin <= 0 {
			continue
		}
		out = append(out, ChartPoint{
			City:         cp.City,
			SellPriceMin: p.SellPriceMin,
			BuyPriceMax:  p.BuyPriceMax,
		})
	}
	return out
}

// HistoryChartPoint is one formatted line-chart datum.
type HistoryChartPoint struct {
	Label        string  `json:"label"` // HH:MM local label for the axis
	Timestamp    string  `json:"timestamp"`
	AveragePrice float64 `json:"average_price"`
	ItemCount    int64   `json:"item_count"`
}

// FormatHistory prepares a raw time series for chart rendering. Points whose
// timestamp cannot be parsed keep the raw string as their label rather than
// being dropped.
func FormatHistory(points []aodata.HistoryPoint) []HistoryChartPoint {
	out := make([]HistoryChartPoint, 0, len(points))
	for _, p := range points {
		label := p.Timestamp
		if t, err := aodata.ParseHistoryTimestamp(p.Timestamp); err == nil {
			label = t.Format("15:04")
		}
		out = append(out, HistoryChartPoint{
			Label:        label,
			Timestamp:    p.Timestamp,
			AveragePrice: p.AveragePrice,
			ItemCount:    p.ItemCount,
		})
	}
	return out
}
