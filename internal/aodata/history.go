package aodata

import (
	"fmt"
	"net/url"
	"time"
)

// HistoryPoint is one aggregated observation in a price time series.
type HistoryPoint struct {
	ItemCount    int64   `json:"itemCount"`
	AveragePrice float64 `json:"averagePrice"`
	Timestamp    string  `json:"timestamp"`
}

// HistorySeries mirrors one element of the history endpoint response.
type HistorySeries struct {
	Location     string         `json:"location"`
	ItemTypeID   string         `json:"itemTypeId"`
	QualityLevel int            `json:"qualityLevel"`
	Data         []HistoryPoint `json:"data"`
}

// HistoryStore is a persistent cache for history points (SQLite).
type HistoryStore interface {
	GetHistory(region, itemID, city string, quality int) ([]HistoryPoint, bool)
	SetHistory(region, itemID, city string, quality int, points []HistoryPoint)
}

// ParseHistoryTimestamp parses the upstream timestamp format. The API emits
// bare ISO timestamps without a zone suffix; RFC3339 is accepted as well.
func ParseHistoryTimestamp(ts string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04:05", ts); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, ts)
}

// History fetches the recent price time series for one item/city/quality.
// The API returns an array; only the first series is meaningful, and an
// empty array means no data (nil, no error). When store is non-nil, fresh
// cached points short-circuit the network call and successful fetches are
// written back.
func (c *Client) History(region Region, itemID, city string, quality int, store HistoryStore) ([]HistoryPoint, error) {
	id := NormalizeItemID(itemID)
	if id == "" {
		return nil, fmt.Errorf("empty item id")
	}
	if quality < 1 || quality > 6 {
		return nil, fmt.Errorf("quality %d out of range 1-6", quality)
	}

	if store != nil {
		if points, ok := store.GetHistory(string(region), id, city, quality); ok {
			return points, nil
		}
	}

	key := fmt.Sprintf("history:%s:%s:%s:%d", region, id, city, quality)
	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		u := fmt.Sprintf("%s/api/v2/stats/history/%s.json?locations=%s&qualities=%d&time-scale=1",
			c.baseURL[region], url.PathEscape(id), url.QueryEscape(city), quality)

		var series []HistorySeries
		if err := c.GetJSON(u, &series); err != nil {
			return nil, err
		}
		if len(series) == 0 {
			return []HistoryPoint(nil), nil
		}
		return series[0].Data, nil
	})
	if err != nil {
		return nil, err
	}

	points := result.([]HistoryPoint)
	if store != nil && len(points) > 0 {
		store.SetHistory(string(region), id, city, quality, points)
	}
	return points, nil
}
