package view

import (
	"errors"
	"testing"
	"time"

	"albion-market/internal/aodata"
)

// fakeSource lets tests control when each price fetch completes, to exercise
// the stale-response guard.
type fakeSource struct {
	calls   chan *fetchCall
	history []aodata.HistoryPoint
	herr    error
}

type fetchCall struct {
	itemID string
	reply  chan fetchReply
}

type fetchReply struct {
	rows []aodata.PriceRow
	err  error
}

func newFakeSource() *fakeSource {
	return &fakeSource{calls: make(chan *fetchCall, 8)}
}

func (f *fakeSource) CurrentPrices(region aodata.Region, itemID string, cities []string) ([]aodata.PriceRow, error) {
	c := &fetchCall{itemID: itemID, reply: make(chan fetchReply)}
	f.calls <- c
	r := <-c.reply
	return r.rows, r.err
}

func (f *fakeSource) History(region aodata.Region, itemID, city string, quality int, store aodata.HistoryStore) ([]aodata.HistoryPoint, error) {
	return f.history, f.herr
}

// selectAsync runs SelectItem on its own goroutine and hands back the pending
// upstream call plus a done channel.
func selectAsync(t *testing.T, s *Shell, src *fakeSource, itemID string) (*fetchCall, chan error) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- s.SelectItem(itemID) }()
	select {
	case c := <-src.calls:
		return c, done
	case <-time.After(2 * time.Second):
		t.Fatal("SelectItem never reached the price source")
		return nil, nil
	}
}

func caerleonRows() []aodata.PriceRow {
	return []aodata.PriceRow{{City: "Caerleon", Quality: 1, SellPriceMin: 100, BuyPriceMax: 80}}
}

func TestShell_InitialState(t *testing.T) {
	s := NewShell(newFakeSource(), nil, aodata.RegionWest, 1)
	st := s.Snapshot()
	if st.Mode != ModeIdle {
		t.Errorf("Mode = %q, want idle", st.Mode)
	}
	if st.Region != aodata.RegionWest {
		t.Errorf("Region = %q, want west", st.Region)
	}
	if len(st.Cities) != 7 {
		t.Errorf("len(Cities) = %d, want 7", len(st.Cities))
	}
}

func TestShell_SelectItemEntersTableView(t *testing.T) {
	src := newFakeSource()
	s := NewShell(src, nil, aodata.RegionWest, 1)

	call, done := selectAsync(t, s, src, "t4 bag")
	if call.itemID != "T4_BAG" {
		t.Errorf("fetched item = %q, want normalized T4_BAG", call.itemID)
	}
	call.reply <- fetchReply{rows: caerleonRows()}
	if err := <-done; err != nil {
		t.Fatalf("SelectItem: %v", err)
	}

	st := s.Snapshot()
	if st.Mode != ModeTable {
		t.Errorf("Mode = %q, want table", st.Mode)
	}
	if st.Item != "T4_BAG" || len(st.Groups) != 1 {
		t.Errorf("Item=%q Groups=%d", st.Item, len(st.Groups))
	}
}

func TestShell_SelectItemFailureClearsResults(t *testing.T) {
	src := newFakeSource()
	s := NewShell(src, nil, aodata.RegionWest, 1)

	call, done := selectAsync(t, s, src, "T4_BAG")
	call.reply <- fetchReply{rows: caerleonRows()}
	<-done

	call, done = selectAsync(t, s, src, "T5_BAG")
	call.reply <- fetchReply{err: errors.New("boom")}
	if err := <-done; err == nil {
		t.Fatal("SelectItem returned nil for failed fetch")
	}

	st := s.Snapshot()
	if len(st.Groups) != 0 {
		t.Errorf("Groups = %d rows after failed fetch, want cleared", len(st.Groups))
	}
	if st.Mode != ModeTable {
		t.Errorf("Mode = %q, want table (no-data state), not a crash", st.Mode)
	}
}

func TestShell_StaleResponseDiscarded(t *testing.T) {
	src := newFakeSource()
	s := NewShell(src, nil, aodata.RegionWest, 1)

	oldCall, oldDone := selectAsync(t, s, src, "OLD_ITEM")
	newCall, newDone := selectAsync(t, s, src, "NEW_ITEM")

	// The newer request answers first.
	newCall.reply <- fetchReply{rows: caerleonRows()}
	if err := <-newDone; err != nil {
		t.Fatalf("new SelectItem: %v", err)
	}

	// The older, slower response must not overwrite it.
	oldCall.reply <- fetchReply{rows: []aodata.PriceRow{{City: "Martlock", Quality: 1, SellPriceMin: 1}}}
	if err := <-oldDone; err != nil {
		t.Fatalf("old SelectItem: %v", err)
	}

	st := s.Snapshot()
	if st.Item != "NEW_ITEM" {
		t.Errorf("Item = %q, want NEW_ITEM kept", st.Item)
	}
	if len(st.Groups) != 1 || st.Groups[0].City != "Caerleon" {
		t.Errorf("Groups = %+v, want the newer Caerleon result", st.Groups)
	}
}

func TestShell_RegionChangeInvalidatesInFlightFetch(t *testing.T) {
	src := newFakeSource()
	s := NewShell(src, nil, aodata.RegionWest, 1)

	call, done := selectAsync(t, s, src, "T4_BAG")
	s.ChangeRegion(aodata.RegionEast)
	call.reply <- fetchReply{rows: caerleonRows()}
	<-done

	st := s.Snapshot()
	if len(st.Groups) != 0 {
		t.Errorf("Groups = %d, want in-flight pre-switch response discarded", len(st.Groups))
	}
	if st.Region != aodata.RegionEast {
		t.Errorf("Region = %q, want east", st.Region)
	}
}

func TestShell_RegionChangePreservesLoadedResults(t *testing.T) {
	src := newFakeSource()
	s := NewShell(src, nil, aodata.RegionWest, 1)

	call, done := selectAsync(t, s, src, "T4_BAG")
	call.reply <- fetchReply{rows: caerleonRows()}
	<-done

	s.ChangeRegion(aodata.RegionEurope)
	st := s.Snapshot()
	if len(st.Groups) != 1 {
		t.Errorf("Groups = %d, want results preserved across region switch", len(st.Groups))
	}
}

func TestShell_SetViewRequiresItem(t *testing.T) {
	s := NewShell(newFakeSource(), nil, aodata.RegionWest, 1)
	if err := s.SetView(ModeChart); err == nil {
		t.Error("SetView with no item selected succeeded, want error")
	}
}

func TestShell_ViewToggles(t *testing.T) {
	src := newFakeSource()
	s := NewShell(src, nil, aodata.RegionWest, 1)
	call, done := selectAsync(t, s, src, "T4_BAG")
	call.reply <- fetchReply{rows: caerleonRows()}
	<-done

	for _, mode := range []Mode{ModeChart, ModeHistory, ModeTable} {
		if err := s.SetView(mode); err != nil {
			t.Fatalf("SetView(%s): %v", mode, err)
		}
		if got := s.Snapshot().Mode; got != mode {
			t.Errorf("Mode = %q, want %q", got, mode)
		}
	}
}

func TestShell_QualityValidation(t *testing.T) {
	s := NewShell(newFakeSource(), nil, aodata.RegionWest, 1)
	if err := s.SetRowQuality("Caerleon", 0); err == nil {
		t.Error("SetRowQuality(0) accepted")
	}
	if err := s.SetChartQuality(7); err == nil {
		t.Error("SetChartQuality(7) accepted")
	}
	if err := s.SetRowQuality("Caerleon", 3); err != nil {
		t.Errorf("SetRowQuality(3): %v", err)
	}
}

func TestShell_RequestSortTogglesDirection(t *testing.T) {
	s := NewShell(newFakeSource(), nil, aodata.RegionWest, 1)
	s.RequestSort("sell_price_min")
	if st := s.Snapshot(); st.Sort == nil || st.Sort.Descending {
		t.Fatalf("Sort = %+v, want ascending sell", st.Sort)
	}
	s.RequestSort("sell_price_min")
	if st := s.Snapshot(); !st.Sort.Descending {
		t.Error("second sort request did not toggle to descending")
	}
}

func TestShell_ShowHistoryRequiresItem(t *testing.T) {
	s := NewShell(newFakeSource(), nil, aodata.RegionWest, 1)
	if err := s.ShowHistory("Caerleon", 1); err == nil {
		t.Error("ShowHistory with no item succeeded, want error")
	}
}

func TestShell_ShowHistoryEmptySeriesIsNoData(t *testing.T) {
	src := newFakeSource()
	s := NewShell(src, nil, aodata.RegionWest, 1)
	call, done := selectAsync(t, s, src, "T4_BAG")
	call.reply <- fetchReply{rows: caerleonRows()}
	<-done

	if err := s.ShowHistory("Caerleon", 1); err != nil {
		t.Fatalf("ShowHistory: %v", err)
	}
	st := s.Snapshot()
	if st.Mode != ModeHistory {
		t.Errorf("Mode = %q, want history", st.Mode)
	}
	if len(st.History) != 0 {
		t.Errorf("History = %v, want empty (explicit no-data state)", st.History)
	}
	if len(s.HistoryPoints()) != 0 {
		t.Error("HistoryPoints non-empty for empty series")
	}
}

func TestShell_TableRowsReflectSelectedQuality(t *testing.T) {
	src := newFakeSource()
	s := NewShell(src, nil, aodata.RegionWest, 1)
	call, done := selectAsync(t, s, src, "T4_BAG")
	call.reply <- fetchReply{rows: []aodata.PriceRow{
		{City: "Caerleon", Quality: 1, SellPriceMin: 100},
		{City: "Caerleon", Quality: 3, SellPriceMin: 200},
	}}
	<-done

	if err := s.SetRowQuality("Caerleon", 3); err != nil {
		t.Fatal(err)
	}
	rows := s.TableRows()
	if len(rows) != 1 || rows[0].Quality != 3 || rows[0].SellPriceMin != 200 {
		t.Errorf("rows = %+v, want Caerleon at quality 3", rows)
	}
}
