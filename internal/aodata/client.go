package aodata

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Region selects one of the three Albion Data Project deployments.
type Region string

const (
	RegionWest   Region = "west"
	RegionEast   Region = "east"
	RegionEurope Region = "europe"
)

var regionBaseURLs = map[Region]string{
	RegionWest:   "https://west.albion-online-data.com",
	RegionEast:   "https://east.albion-online-data.com",
	RegionEurope: "https://europe.albion-online-data.com",
}

// ParseRegion validates a user-supplied region string.
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := regionBaseURLs[r]; !ok {
		return "", fmt.Errorf("unknown region %q", s)
	}
	return r, nil
}

// BaseURL returns the API endpoint for the region.
func (r Region) BaseURL() string {
	return regionBaseURLs[r]
}

// Regions returns all selectable regions in display order.
func Regions() []Region {
	return []Region{RegionWest, RegionEast, RegionEurope}
}

// Cities returns the major market cities. The upstream API has no endpoint
// for this, so the list is fixed and region-independent.
func Cities() []string {
	return []string{"Caerleon", "Bridgewatch", "Martlock", "FortSterling", "Thetford", "Lymhurst", "Brecilien"}
}

// NormalizeItemID converts a user-chosen item identifier to the API token
// form: uppercase with spaces replaced by underscores.
func NormalizeItemID(name string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(name)), " ", "_")
}

// Client is a rate-limited Albion Data Project HTTP client with a TTL
// response cache. The upstream sends no ETag/Expires, so freshness is a
// plain TTL; a singleflight.Group coalesces duplicate in-flight fetches.
type Client struct {
	http    *http.Client
	sem     chan struct{}
	baseURL map[Region]string // override point for tests
	cache   *gocache.Cache
	group   singleflight.Group
}

// NewClient creates a client with the given response-cache TTL.
func NewClient(cacheTTL time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		sem:     make(chan struct{}, 8),
		baseURL: regionBaseURLs,
		cache:   gocache.New(cacheTTL, 5*time.Minute),
	}
}

// SetBaseURL points a region at a different endpoint (tests only).
func (c *Client) SetBaseURL(region Region, url string) {
	override := make(map[Region]string, len(c.baseURL))
	for k, v := range c.baseURL {
		override[k] = v
	}
	override[region] = url
	c.baseURL = override
}

// HealthCheck probes the upstream for the configured region.
func (c *Client) HealthCheck(region Region) bool {
	// A known-always-present item keeps the probe cheap.
	url := fmt.Sprintf("%s/api/v2/stats/prices/T4_BAG.json?locations=Caerleon&qualities=1", c.baseURL[region])
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == 200
}

const userAgent = "albion-market/1.0 (github.com)"

// GetJSON fetches a URL and decodes JSON into dst.
func (c *Client) GetJSON(url string, dst interface{}) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("aodata %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}
