package db

import (
	"strconv"

	"albion-market/internal/config"
)

// LoadConfig reads config from SQLite. If empty, returns defaults.
func (d *DB) LoadConfig() *config.Config {
	cfg := config.Default()

	rows, err := d.sql.Query("SELECT key, value FROM config")
	if err != nil {
		return cfg
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var k, v string
		rows.Scan(&k, &v)
		m[k] = v
	}

	if len(m) == 0 {
		return cfg
	}

	if v, ok := m["region"]; ok {
		cfg.Region = v
	}
	if v, ok := m["display_locale"]; ok {
		cfg.DisplayLocale = v
	}
	if v, ok := m["search_debounce_ms"]; ok {
		cfg.SearchDebounceMs, _ = strconv.Atoi(v)
	}
	if v, ok := m["max_suggestions"]; ok {
		cfg.MaxSuggestions, _ = strconv.Atoi(v)
	}
	if v, ok := m["chart_quality"]; ok {
		cfg.ChartQuality, _ = strconv.Atoi(v)
	}
	if v, ok := m["price_cache_ttl_sec"]; ok {
		cfg.PriceCacheTTLSec, _ = strconv.Atoi(v)
	}
	if v, ok := m["history_cache_min"]; ok {
		cfg.HistoryCacheMin, _ = strconv.Atoi(v)
	}
	if v, ok := m["recent_lookups"]; ok {
		cfg.RecentLookups, _ = strconv.Atoi(v)
	}

	cfg.Normalize()
	return cfg
}

// SaveConfig writes config to SQLite as key/value rows.
func (d *DB) SaveConfig(cfg *config.Config) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO config (key, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	pairs := map[string]string{
		"region":              cfg.Region,
		"display_locale":      cfg.DisplayLocale,
		"search_debounce_ms":  strconv.Itoa(cfg.SearchDebounceMs),
		"max_suggestions":     strconv.Itoa(cfg.MaxSuggestions),
		"chart_quality":       strconv.Itoa(cfg.ChartQuality),
		"price_cache_ttl_sec": strconv.Itoa(cfg.PriceCacheTTLSec),
		"history_cache_min":   strconv.Itoa(cfg.HistoryCacheMin),
		"recent_lookups":      strconv.Itoa(cfg.RecentLookups),
	}
	for k, v := range pairs {
		if _, err := stmt.Exec(k, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}
