package db

import (
	"database/sql"
	"testing"
	"time"

	"albion-market/internal/aodata"
	"albion-market/internal/config"

	_ "modernc.org/sqlite"
)

// openTestDB opens an in-memory SQLite DB and runs migrations (for testing only).
func openTestDB(t *testing.T) *DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func TestDB_ConfigRoundTrip(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	cfg := config.Default()
	cfg.Region = "east"
	cfg.DisplayLocale = "PT-BR"
	cfg.SearchDebounceMs = 450
	cfg.ChartQuality = 4
	if err := d.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded := d.LoadConfig()
	if loaded.Region != "east" {
		t.Errorf("Region = %q, want east", loaded.Region)
	}
	if loaded.DisplayLocale != "PT-BR" {
		t.Errorf("DisplayLocale = %q, want PT-BR", loaded.DisplayLocale)
	}
	if loaded.SearchDebounceMs != 450 {
		t.Errorf("SearchDebounceMs = %d, want 450", loaded.SearchDebounceMs)
	}
	if loaded.ChartQuality != 4 {
		t.Errorf("ChartQuality = %d, want 4", loaded.ChartQuality)
	}
}

func TestDB_LoadConfigEmptyReturnsDefaults(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	cfg := d.LoadConfig()
	def := config.Default()
	if cfg.Region != def.Region || cfg.MaxSuggestions != def.MaxSuggestions {
		t.Errorf("empty db config = %+v, want defaults", cfg)
	}
}

func TestDB_LoadConfigNormalizesBadRegion(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	d.sql.Exec("INSERT INTO config (key, value) VALUES ('region', 'mars')")
	if cfg := d.LoadConfig(); cfg.Region != "west" {
		t.Errorf("Region = %q, want normalized to west", cfg.Region)
	}
}

func TestDB_HistoryRoundTrip(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	points := []aodata.HistoryPoint{
		{Timestamp: "2026-08-28T20:00:00", ItemCount: 5, AveragePrice: 120.5},
		{Timestamp: "2026-08-28T21:00:00", ItemCount: 3, AveragePrice: 118},
	}
	d.SetHistory("west", "T4_BAG", "Caerleon", 1, points)

	got, ok := d.GetHistory("west", "T4_BAG", "Caerleon", 1)
	if !ok {
		t.Fatal("GetHistory ok = false right after SetHistory")
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Timestamp != "2026-08-28T20:00:00" || got[0].AveragePrice != 120.5 || got[0].ItemCount != 5 {
		t.Errorf("point = %+v", got[0])
	}
}

func TestDB_HistoryMissOnDifferentKey(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	d.SetHistory("west", "T4_BAG", "Caerleon", 1, []aodata.HistoryPoint{{Timestamp: "x", AveragePrice: 1}})
	if _, ok := d.GetHistory("west", "T4_BAG", "Caerleon", 2); ok {
		t.Error("GetHistory hit for a different quality")
	}
	if _, ok := d.GetHistory("east", "T4_BAG", "Caerleon", 1); ok {
		t.Error("GetHistory hit for a different region")
	}
}

func TestDB_HistoryStaleEntryMisses(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	d.SetHistory("west", "T4_BAG", "Martlock", 1, []aodata.HistoryPoint{{Timestamp: "x", AveragePrice: 1}})

	stale := time.Now().Add(-2 * historyTTL).UTC().Format(time.RFC3339)
	d.sql.Exec("UPDATE price_history_meta SET updated_at=?", stale)

	if _, ok := d.GetHistory("west", "T4_BAG", "Martlock", 1); ok {
		t.Error("GetHistory hit for a stale entry")
	}
}

func TestDB_SetHistoryReplacesSeries(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	d.SetHistory("west", "T4_BAG", "Caerleon", 1, []aodata.HistoryPoint{
		{Timestamp: "a", AveragePrice: 1},
		{Timestamp: "b", AveragePrice: 2},
	})
	d.SetHistory("west", "T4_BAG", "Caerleon", 1, []aodata.HistoryPoint{
		{Timestamp: "c", AveragePrice: 3},
	})

	got, ok := d.GetHistory("west", "T4_BAG", "Caerleon", 1)
	if !ok || len(got) != 1 || got[0].Timestamp != "c" {
		t.Errorf("got = %+v, want only the replacement series", got)
	}
}

func TestDB_LookupsTrimmedToKeep(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	for i := 0; i < 5; i++ {
		d.AddLookup("T4_BAG", "Adept's Bag (T4)", "west", 3)
	}
	lookups := d.RecentLookups(10)
	if len(lookups) != 3 {
		t.Fatalf("len = %d, want trimmed to 3", len(lookups))
	}
	if lookups[0].ItemID != "T4_BAG" || lookups[0].Region != "west" {
		t.Errorf("lookup = %+v", lookups[0])
	}
}

func TestDB_ClearLookups(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	d.AddLookup("T4_BAG", "Adept's Bag (T4)", "west", 10)
	d.ClearLookups()
	if got := d.RecentLookups(10); len(got) != 0 {
		t.Errorf("RecentLookups after clear = %v, want empty", got)
	}
}
