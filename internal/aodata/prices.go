package aodata

import (
	"fmt"
	"net/url"
	"strings"
)

// PriceRow mirrors one observation from the current-prices endpoint.
// A price of zero means "no data", not "free".
type PriceRow struct {
	City         string `json:"city"`
	Quality      int    `json:"quality"`
	SellPriceMin int64  `json:"sell_price_min"`
	BuyPriceMax  int64  `json:"buy_price_max"`
}

// CurrentPrices fetches current sell/buy prices for an item across the given
// cities, all quality tiers 1-6. Responses are served from the TTL cache when
// fresh; concurrent identical requests share one fetch.
func (c *Client) CurrentPrices(region Region, itemID string, cities []string) ([]PriceRow, error) {
	id := NormalizeItemID(itemID)
	if id == "" {
		return nil, fmt.Errorf("empty item id")
	}

	key := fmt.Sprintf("prices:%s:%s:%s", region, id, strings.Join(cities, ","))
	if v, ok := c.cache.Get(key); ok {
		return v.([]PriceRow), nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under singleflight: a concurrent caller may have
		// populated the cache while we waited on the group.
		if v, ok := c.cache.Get(key); ok {
			return v.([]PriceRow), nil
		}
		u := fmt.Sprintf("%s/api/v2/stats/prices/%s.json?locations=%s&qualities=1,2,3,4,5,6",
			c.baseURL[region], url.PathEscape(id), url.QueryEscape(strings.Join(cities, ",")))

		var rows []PriceRow
		if err := c.GetJSON(u, &rows); err != nil {
			return nil, err
		}
		c.cache.SetDefault(key, rows)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]PriceRow), nil
}
