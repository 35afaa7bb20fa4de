package db

import "time"

// Lookup is one recent item price lookup.
type Lookup struct {
	ID          int64  `json:"id"`
	ItemID      string `json:"item_id"`
	DisplayName string `json:"display_name"`
	Region      string `json:"region"`
	LookedUpAt  string `json:"looked_up_at"`
}

// AddLookup records an item lookup and trims the log to keep at most rows.
func (d *DB) AddLookup(itemID, displayName, region string, keep int) int64 {
	res, err := d.sql.Exec(
		"INSERT INTO recent_lookups (item_id, display_name, region, looked_up_at) VALUES (?,?,?,?)",
		itemID, displayName, region, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0
	}
	if keep > 0 {
		d.sql.Exec(`
			DELETE FROM recent_lookups WHERE id NOT IN (
				SELECT id FROM recent_lookups ORDER BY id DESC LIMIT ?
			)
		`, keep)
	}
	id, _ := res.LastInsertId()
	return id
}

// RecentLookups returns the latest lookups, newest first.
func (d *DB) RecentLookups(limit int) []Lookup {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.Query(
		"SELECT id, item_id, display_name, region, looked_up_at FROM recent_lookups ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []Lookup
	for rows.Next() {
		var l Lookup
		if err := rows.Scan(&l.ID, &l.ItemID, &l.DisplayName, &l.Region, &l.LookedUpAt); err != nil {
			continue
		}
		out = append(out, l)
	}
	return out
}

// ClearLookups empties the recent-lookup log.
func (d *DB) ClearLookups() {
	d.sql.Exec("DELETE FROM recent_lookups")
}
