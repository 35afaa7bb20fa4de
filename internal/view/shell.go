package view

import (
	"fmt"
	"sync"

	"albion-market/internal/aodata"
	"albion-market/internal/market"
)

// Mode is the view shell's display state.
type Mode string

const (
	ModeIdle    Mode = "idle" // no item selected yet
	ModeLoading Mode = "loading"
	ModeTable   Mode = "table"
	ModeChart   Mode = "chart"
	ModeHistory Mode = "history"
)

// ParseMode validates a user-supplied view mode. Only the three result views
// are reachable by explicit request; idle and loading are internal.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeTable, ModeChart, ModeHistory:
		return Mode(s), true
	}
	return "", false
}

// PriceSource is the subset of the aodata client the shell needs.
type PriceSource interface {
	CurrentPrices(region aodata.Region, itemID string, cities []string) ([]aodata.PriceRow, error)
	History(region aodata.Region, itemID, city string, quality int, store aodata.HistoryStore) ([]aodata.HistoryPoint, error)
}

// State is the full application state, updated only through Shell actions.
type State struct {
	Region         aodata.Region         `json:"region"`
	Cities         []string              `json:"cities"`
	Item           string                `json:"item"` // normalized identifier of the selected item
	Groups         []market.CityPrices   `json:"groups"`
	Selected       map[string]int        `json:"selected_qualities"` // city -> user-picked quality
	ChartQuality   int                   `json:"chart_quality"`
	Sort           *market.SortState     `json:"sort"`
	Mode           Mode                  `json:"mode"`
	HistoryCity    string                `json:"history_city"`
	HistoryQuality int                   `json:"history_quality"`
	History        []aodata.HistoryPoint `json:"history"`
}

// Shell owns the view state and serializes all mutations. Price and history
// fetches run on the calling goroutine; responses carry a sequence number so
// a slow stale response can never overwrite a newer one.
type Shell struct {
	mu     sync.Mutex
	prices PriceSource
	store  aodata.HistoryStore

	st State

	priceSeq       uint64 // last issued current-prices fetch
	priceApplied   uint64 // last applied (or invalidated) fetch
	historySeq     uint64
	historyApplied uint64
}

// NewShell creates a shell at the given region with the fixed city list.
func NewShell(prices PriceSource, store aodata.HistoryStore, region aodata.Region, chartQuality int) *Shell {
	return &Shell{
		prices: prices,
		store:  store,
		st: State{
			Region:       region,
			Cities:       aodata.Cities(),
			Selected:     make(map[string]int),
			ChartQuality: chartQuality,
			Mode:         ModeIdle,
		},
	}
}

// Snapshot returns a copy of the current state.
func (s *Shell) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.st
	st.Cities = append([]string(nil), s.st.Cities...)
	st.Groups = append([]market.CityPrices(nil), s.st.Groups...)
	st.History = append([]aodata.HistoryPoint(nil), s.st.History...)
	st.Selected = make(map[string]int, len(s.st.Selected))
	for k, v := range s.st.Selected {
		st.Selected[k] = v
	}
	return st
}

// ChangeRegion switches the price endpoint and refreshes the city list.
// Current results are preserved until the next lookup (see DESIGN.md), but
// any in-flight fetch from the old region is invalidated.
func (s *Shell) ChangeRegion(region aodata.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Region = region
	s.st.Cities = aodata.Cities()
	s.priceApplied = s.priceSeq
	s.historyApplied = s.historySeq
	// An invalidated fetch will never land, so don't stay in loading.
	if s.st.Mode == ModeLoading {
		if s.st.Item != "" {
			s.st.Mode = ModeTable
		} else {
			s.st.Mode = ModeIdle
		}
	}
}

// SelectItem fetches current prices for the item and, on success, replaces
// (never merges) the grouped result set and enters the table view. On fetch
// failure the result set is cleared and the error returned for logging; the
// shell stays usable.
func (s *Shell) SelectItem(itemID string) error {
	id := aodata.NormalizeItemID(itemID)
	if id == "" {
		return fmt.Errorf("empty item id")
	}

	s.mu.Lock()
	region := s.st.Region
	cities := append([]string(nil), s.st.Cities...)
	s.st.Mode = ModeLoading
	s.priceSeq++
	seq := s.priceSeq
	s.mu.Unlock()

	rows, err := s.prices.CurrentPrices(region, id, cities)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.priceApplied {
		return nil // a newer response (or a region change) already won
	}
	s.priceApplied = seq

	s.st.Item = id
	s.st.Selected = make(map[string]int)
	s.st.Mode = ModeTable
	if err != nil {
		s.st.Groups = nil
		return fmt.Errorf("fetch prices for %s: %w", id, err)
	}
	s.st.Groups = market.GroupByCity(rows)
	return nil
}

// SetView switches between the table, chart and history views. Requires a
// selected item.
func (s *Shell) SetView(mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.Item == "" {
		return fmt.Errorf("no item selected")
	}
	s.st.Mode = mode
	return nil
}

// SetRowQuality records the user's quality pick for one city's table row.
func (s *Shell) SetRowQuality(city string, quality int) error {
	if quality < 1 || quality > 6 {
		return fmt.Errorf("quality %d out of range 1-6", quality)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Selected[city] = quality
	return nil
}

// SetChartQuality changes the globally selected quality for the bar chart.
func (s *Shell) SetChartQuality(quality int) error {
	if quality < 1 || quality > 6 {
		return fmt.Errorf("quality %d out of range 1-6", quality)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.ChartQuality = quality
	return nil
}

// RequestSort applies the header-click sort rule to the table.
func (s *Shell) RequestSort(key market.SortKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Sort = market.NextSort(s.st.Sort, key)
}

// ShowHistory fetches the time series for one city/quality of the selected
// item and enters the history view. An empty series is not an error; the
// view renders an explicit no-data state.
func (s *Shell) ShowHistory(city string, quality int) error {
	s.mu.Lock()
	if s.st.Item == "" {
		s.mu.Unlock()
		return fmt.Errorf("no item selected")
	}
	region := s.st.Region
	item := s.st.Item
	s.historySeq++
	seq := s.historySeq
	s.mu.Unlock()

	points, err := s.prices.History(region, item, city, quality, s.store)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.historyApplied {
		return nil
	}
	s.historyApplied = seq

	s.st.Mode = ModeHistory
	s.st.HistoryCity = city
	s.st.HistoryQuality = quality
	if err != nil {
		s.st.History = nil
		return fmt.Errorf("fetch history for %s @ %s q%d: %w", item, city, quality, err)
	}
	s.st.History = points
	return nil
}

// TableRows derives the visible, sorted, highlighted table rows.
func (s *Shell) TableRows() []market.TableRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return market.BuildTable(s.st.Groups, s.st.Selected, s.st.Sort)
}

// ChartPoints derives the bar-chart projection at the chart quality.
func (s *Shell) ChartPoints() []market.ChartPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return market.ProjectChart(s.st.Groups, s.st.ChartQuality)
}

// HistoryPoints derives the formatted history line-chart series.
func (s *Shell) HistoryPoints() []market.HistoryChartPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return market.FormatHistory(s.st.History)
}
