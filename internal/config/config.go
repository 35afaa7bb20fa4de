package config

// Config holds application settings (in-memory representation).
// Persistence is handled by internal/db package.
type Config struct {
	Region           string `json:"region"`             // west | east | europe
	DisplayLocale    string `json:"display_locale"`     // locale key into the item catalog's localized names
	SearchDebounceMs int    `json:"search_debounce_ms"` // delay before a typed query is executed
	MaxSuggestions   int    `json:"max_suggestions"`    // cap on search suggestions returned
	ChartQuality     int    `json:"chart_quality"`      // globally selected quality tier for the bar chart
	PriceCacheTTLSec int    `json:"price_cache_ttl_sec"`
	HistoryCacheMin  int    `json:"history_cache_min"` // freshness window for the persistent history cache
	RecentLookups    int    `json:"recent_lookups"`    // how many recent item lookups to keep
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Region:           "west",
		DisplayLocale:    "EN-US",
		SearchDebounceMs: 300,
		MaxSuggestions:   10,
		ChartQuality:     1,
		PriceCacheTTLSec: 120,
		HistoryCacheMin:  30,
		RecentLookups:    50,
	}
}

// Normalize clamps out-of-range values back to defaults so a hand-edited
// config row can never wedge the UI.
func (c *Config) Normalize() {
	def := Default()
	switch c.Region {
	case "west", "east", "europe":
	default:
		c.Region = def.Region
	}
	if c.DisplayLocale == "" {
		c.DisplayLocale = def.DisplayLocale
	}
	if c.SearchDebounceMs <= 0 {
		c.SearchDebounceMs = def.SearchDebounceMs
	}
	if c.MaxSuggestions <= 0 {
		c.MaxSuggestions = def.MaxSuggestions
	}
	if c.ChartQuality < 1 || c.ChartQuality > 6 {
		c.ChartQuality = def.ChartQuality
	}
	if c.PriceCacheTTLSec <= 0 {
		c.PriceCacheTTLSec = def.PriceCacheTTLSec
	}
	if c.HistoryCacheMin <= 0 {
		c.HistoryCacheMin = def.HistoryCacheMin
	}
	if c.RecentLookups <= 0 {
		c.RecentLookups = def.RecentLookups
	}
}
