package main

import (
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"albion-market/internal/aodata"
	"albion-market/internal/api"
	"albion-market/internal/catalog"
	"albion-market/internal/db"
	"albion-market/internal/logger"
)

var version = "dev"

//go:embed frontend/dist/*
var frontendFS embed.FS

func main() {
	port := flag.Int("port", 13380, "HTTP server port")
	flag.Parse()

	logger.Banner(version)

	wd, _ := os.Getwd()
	dataDir := filepath.Join(wd, "data")
	os.MkdirAll(dataDir, 0755)

	database, err := db.Open()
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()
	database.CleanupOldHistory()

	cfg := database.LoadConfig()
	db.SetHistoryTTL(time.Duration(cfg.HistoryCacheMin) * time.Minute)

	prices := aodata.NewClient(time.Duration(cfg.PriceCacheTTLSec) * time.Second)
	srv := api.NewServer(cfg, prices, database)

	// Load the item catalog in background; search stays empty until done.
	go func() {
		ix, err := catalog.Load(dataDir, cfg.DisplayLocale)
		if err != nil {
			logger.Error("Catalog", fmt.Sprintf("Load failed: %v", err))
			srv.SetCatalog(nil)
			return
		}
		srv.SetCatalog(ix)
		logger.Success("Catalog", "Search ready")
	}()

	// Combine API + embedded frontend into a single handler
	apiHandler := srv.Handler()
	frontendContent, _ := fs.Sub(frontendFS, "frontend/dist")
	fileServer := http.FileServer(http.FS(frontendContent))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			apiHandler.ServeHTTP(w, r)
			return
		}
		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" {
			path = "index.html"
		}
		if _, err := fs.Stat(frontendContent, path); err == nil {
			fileServer.ServeHTTP(w, r)
			return
		}
		// SPA fallback
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})

	addr := fmt.Sprintf("127.0.0.1:%d", *port)
	logger.Server(addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
}
