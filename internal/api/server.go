package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"albion-market/internal/aodata"
	"albion-market/internal/catalog"
	"albion-market/internal/config"
	"albion-market/internal/db"
	"albion-market/internal/logger"
	"albion-market/internal/market"
	"albion-market/internal/view"
)

// Server is the HTTP API server wiring the catalog, price client, view
// shell and database together.
type Server struct {
	cfg    *config.Config
	prices *aodata.Client
	db     *db.DB
	shell  *view.Shell

	mu      sync.RWMutex
	catalog *catalog.Index
	ready   bool

	// Bursts of sort/quality/region clicks collapse into one config write.
	saveDebounce *view.Debouncer
}

// NewServer creates a Server. The catalog is attached later via SetCatalog
// once its background load finishes.
func NewServer(cfg *config.Config, prices *aodata.Client, database *db.DB) *Server {
	region, err := aodata.ParseRegion(cfg.Region)
	if err != nil {
		region = aodata.RegionWest
	}
	var store aodata.HistoryStore
	if database != nil {
		store = database
	}
	return &Server{
		cfg:          cfg,
		prices:       prices,
		db:           database,
		shell:        view.NewShell(prices, store, region, cfg.ChartQuality),
		saveDebounce: view.NewDebouncer(2 * time.Second),
	}
}

// SetCatalog is called when the item catalog finishes loading.
func (s *Server) SetCatalog(ix *catalog.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = ix
	s.ready = true
}

func (s *Server) catalogIndex() *catalog.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Shell exposes the view shell (tests).
func (s *Server) Shell() *view.Shell {
	return s.shell
}

// Handler returns the HTTP handler with all API routes and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleSetConfig)
	mux.HandleFunc("GET /api/regions", s.handleRegions)
	mux.HandleFunc("POST /api/region", s.handleSetRegion)
	mux.HandleFunc("GET /api/cities", s.handleCities)
	mux.HandleFunc("GET /api/items/search", s.handleItemSearch)
	mux.HandleFunc("POST /api/items/select", s.handleItemSelect)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/view", s.handleSetView)
	mux.HandleFunc("GET /api/prices/table", s.handleTable)
	mux.HandleFunc("POST /api/table/sort", s.handleTableSort)
	mux.HandleFunc("POST /api/table/quality", s.handleTableQuality)
	mux.HandleFunc("GET /api/prices/chart", s.handleChart)
	mux.HandleFunc("POST /api/chart/quality", s.handleChartQuality)
	mux.HandleFunc("GET /api/prices/history", s.handleHistory)
	mux.HandleFunc("GET /api/lookups/recent", s.handleRecentLookups)
	mux.HandleFunc("POST /api/lookups/clear", s.handleClearLookups)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.shell.Snapshot()
	s.mu.RLock()
	ready := s.ready
	items := s.catalog.Len()
	s.mu.RUnlock()
	writeJSON(w, map[string]interface{}{
		"ready":         ready,
		"catalog_items": items,
		"region":        st.Region,
		"mode":          st.Mode,
		"upstream":      s.prices.HealthCheck(st.Region),
	})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.cfg)
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid config json")
		return
	}
	cfg.Normalize()
	*s.cfg = cfg
	db.SetHistoryTTL(time.Duration(cfg.HistoryCacheMin) * time.Minute)
	if s.db != nil {
		if err := s.db.SaveConfig(s.cfg); err != nil {
			logger.Warn("Config", fmt.Sprintf("Save failed: %v", err))
		}
	}
	writeJSON(w, s.cfg)
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	current := s.shell.Snapshot().Region
	type regionInfo struct {
		ID      aodata.Region `json:"id"`
		BaseURL string        `json:"base_url"`
		Current bool          `json:"current"`
	}
	var out []regionInfo
	for _, reg := range aodata.Regions() {
		out = append(out, regionInfo{ID: reg, BaseURL: reg.BaseURL(), Current: reg == current})
	}
	writeJSON(w, out)
}

func (s *Server) handleSetRegion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Region string `json:"region"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	region, err := aodata.ParseRegion(req.Region)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.shell.ChangeRegion(region)
	s.cfg.Region = string(region)
	s.persistConfigSoon()
	writeJSON(w, map[string]interface{}{"region": region, "cities": aodata.Cities()})
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.shell.Snapshot().Cities)
}

func (s *Server) handleItemSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	ix := s.catalogIndex()
	suggestions := ix.Suggest(q, s.cfg.MaxSuggestions)
	if suggestions == nil {
		suggestions = []catalog.Suggestion{}
	}
	writeJSON(w, suggestions)
}

func (s *Server) handleItemSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID  string `json:"item_id"`
		Display string `json:"display"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ItemID == "" {
		// A suggestion without an identifier cannot trigger a price fetch.
		logger.Error("API", "Item selection without identifier ignored")
		writeError(w, http.StatusBadRequest, "missing item_id")
		return
	}

	if err := s.shell.SelectItem(req.ItemID); err != nil {
		// Non-fatal: the shell already cleared the result set.
		logger.Warn("Prices", err.Error())
	} else if s.db != nil {
		display := req.Display
		if display == "" {
			display = aodata.NormalizeItemID(req.ItemID)
		}
		st := s.shell.Snapshot()
		s.db.AddLookup(st.Item, display, string(st.Region), s.cfg.RecentLookups)
	}

	s.respondTable(w)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.shell.Snapshot())
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		View string `json:"view"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	mode, ok := view.ParseMode(req.View)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown view %q", req.View))
		return
	}
	if err := s.shell.SetView(mode); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, map[string]string{"view": string(mode)})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	s.respondTable(w)
}

func (s *Server) respondTable(w http.ResponseWriter) {
	st := s.shell.Snapshot()
	rows := s.shell.TableRows()
	if rows == nil {
		rows = []market.TableRow{}
	}
	writeJSON(w, map[string]interface{}{
		"item": st.Item,
		"rows": rows,
		"sort": st.Sort,
	})
}

func (s *Server) handleTableSort(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	key, ok := market.ParseSortKey(req.Key)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown sort key %q", req.Key))
		return
	}
	s.shell.RequestSort(key)
	s.respondTable(w)
}

func (s *Server) handleTableQuality(w http.ResponseWriter, r *http.Request) {
	var req struct {
		City    string `json:"city"`
		Quality int    `json:"quality"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.City == "" {
		writeError(w, http.StatusBadRequest, "missing city")
		return
	}
	if err := s.shell.SetRowQuality(req.City, req.Quality); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondTable(w)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	st := s.shell.Snapshot()
	points := s.shell.ChartPoints()
	if points == nil {
		points = []market.ChartPoint{}
	}
	writeJSON(w, map[string]interface{}{
		"item":    st.Item,
		"quality": st.ChartQuality,
		"points":  points,
		"no_data": len(points) == 0,
	})
}

func (s *Server) handleChartQuality(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quality int `json:"quality"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.shell.SetChartQuality(req.Quality); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.cfg.ChartQuality = req.Quality
	s.persistConfigSoon()
	s.handleChart(w, r)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		writeError(w, http.StatusBadRequest, "missing city")
		return
	}
	quality, err := strconv.Atoi(r.URL.Query().Get("quality"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quality")
		return
	}

	if err := s.shell.ShowHistory(city, quality); err != nil {
		logger.Warn("History", err.Error())
	}
	st := s.shell.Snapshot()
	points := s.shell.HistoryPoints()
	if points == nil {
		points = []market.HistoryChartPoint{}
	}
	writeJSON(w, map[string]interface{}{
		"item":    st.Item,
		"city":    city,
		"quality": quality,
		"points":  points,
		"no_data": len(points) == 0,
	})
}

func (s *Server) handleRecentLookups(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, []db.Lookup{})
		return
	}
	lookups := s.db.RecentLookups(s.cfg.RecentLookups)
	if lookups == nil {
		lookups = []db.Lookup{}
	}
	writeJSON(w, lookups)
}

func (s *Server) handleClearLookups(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		s.db.ClearLookups()
	}
	writeJSON(w, map[string]bool{"cleared": true})
}

// persistConfigSoon schedules a debounced config write so rapid UI actions
// produce a single DB transaction.
func (s *Server) persistConfigSoon() {
	if s.db == nil {
		return
	}
	s.saveDebounce.Trigger(func() {
		if err := s.db.SaveConfig(s.cfg); err != nil {
			logger.Warn("Config", fmt.Sprintf("Save failed: %v", err))
		}
	})
}
