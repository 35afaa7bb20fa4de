package db

import (
	"fmt"
	"time"

	"albion-market/internal/aodata"
	"albion-market/internal/logger"
)

// historyTTL is how long cached history points count as fresh. The upstream
// aggregates hourly, so anything older is worth re-fetching.
var historyTTL = 30 * time.Minute

// SetHistoryTTL overrides the freshness window (config-driven).
func SetHistoryTTL(ttl time.Duration) {
	if ttl > 0 {
		historyTTL = ttl
	}
}

// GetHistory retrieves cached history points for one item/city/quality.
// Returns nil, false when absent or stale.
func (d *DB) GetHistory(region, itemID, city string, quality int) ([]aodata.HistoryPoint, bool) {
	var updatedAt string
	err := d.sql.QueryRow(
		"SELECT updated_at FROM price_history_meta WHERE region=? AND item_id=? AND city=? AND quality=?",
		region, itemID, city, quality,
	).Scan(&updatedAt)
	if err != nil {
		return nil, false
	}

	t, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil || time.Since(t) > historyTTL {
		return nil, false
	}

	rows, err := d.sql.Query(
		"SELECT timestamp, item_count, average_price FROM price_history WHERE region=? AND item_id=? AND city=? AND quality=? ORDER BY timestamp",
		region, itemID, city, quality,
	)
	if err != nil {
		return nil, false
	}
	defer rows.Close()

	var points []aodata.HistoryPoint
	for rows.Next() {
		var p aodata.HistoryPoint
		if err := rows.Scan(&p.Timestamp, &p.ItemCount, &p.AveragePrice); err != nil {
			continue
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, false
	}
	return points, true
}

// SetHistory stores history points, replacing any previous series for the
// same item/city/quality.
func (d *DB) SetHistory(region, itemID, city string, quality int, points []aodata.HistoryPoint) {
	tx, err := d.sql.Begin()
	if err != nil {
		return
	}
	defer tx.Rollback()

	tx.Exec("DELETE FROM price_history WHERE region=? AND item_id=? AND city=? AND quality=?",
		region, itemID, city, quality)

	stmt, err := tx.Prepare("INSERT INTO price_history (region, item_id, city, quality, timestamp, item_count, average_price) VALUES (?,?,?,?,?,?,?)")
	if err != nil {
		return
	}
	defer stmt.Close()

	for _, p := range points {
		stmt.Exec(region, itemID, city, quality, p.Timestamp, p.ItemCount, p.AveragePrice)
	}

	tx.Exec(
		"INSERT OR REPLACE INTO price_history_meta (region, item_id, city, quality, updated_at) VALUES (?,?,?,?,?)",
		region, itemID, city, quality, time.Now().UTC().Format(time.RFC3339),
	)

	tx.Commit()
}

// CleanupOldHistory removes series that have not been refreshed in 7 days.
// Called on startup to keep the database bounded.
func (d *DB) CleanupOldHistory() {
	cutoff := time.Now().AddDate(0, 0, -7).Format(time.RFC3339)

	res, err := d.sql.Exec("DELETE FROM price_history_meta WHERE updated_at < ?", cutoff)
	if err != nil {
		logger.Warn("DB", fmt.Sprintf("CleanupOldHistory meta: %v", err))
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logger.Info("DB", fmt.Sprintf("Removed %d stale history series", n))
	}

	d.sql.Exec(`
		DELETE FROM price_history
		WHERE (region, item_id, city, quality) NOT IN (
			SELECT region, item_id, city, quality FROM price_history_meta
		)
	`)
}
