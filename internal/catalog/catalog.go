package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"albion-market/internal/logger"
)

const itemsURL = "https://raw.githubusercontent.com/broderickhyman/ao-bin-dumps/master/formatted/items.json"

// Item is one record of the static item dataset. Identifiers are canonical
// uppercase tokens (e.g. T4_BAG); localized names are keyed by locale.
type Item struct {
	UniqueName               string            `json:"uniqueName"`
	LocalizedNames           map[string]string `json:"LocalizedNames"`
	LocalizationNameVariable string            `json:"LocalizationNameVariable"`
}

// Suggestion is one search result prepared for display.
type Suggestion struct {
	ItemID  string `json:"item_id"`
	Display string `json:"display"`
	Tier    string `json:"tier,omitempty"`
}

// Index is the read-only item catalog loaded once at startup.
type Index struct {
	items  []Item
	locale string
}

// Load downloads (if needed) and parses the item dataset. On failure the
// caller keeps running with a nil index; search then returns no results.
func Load(dataDir, locale string) (*Index, error) {
	path := filepath.Join(dataDir, "items.json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("Catalog", "Downloading item dataset...")
		if err := downloadFile(path, itemsURL); err != nil {
			return nil, fmt.Errorf("download items: %w", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open items: %w", err)
	}
	defer f.Close()

	var items []Item
	if err := json.NewDecoder(f).Decode(&items); err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}

	ix := NewIndex(items, locale)
	logger.Section("Catalog Statistics")
	logger.Stats("Items", len(items))
	logger.Stats("Locale", locale)
	return ix, nil
}

// NewIndex builds an index over an already-parsed dataset.
func NewIndex(items []Item, locale string) *Index {
	return &Index{items: items, locale: locale}
}

// Len returns the number of catalog records.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.items)
}

var tierRe = regexp.MustCompile(`^T\d+`)

// Identifier returns the canonical item identifier, deriving it from the
// localization key when the record has no uniqueName.
func Identifier(it Item) string {
	if it.UniqueName != "" {
		return it.UniqueName
	}
	if it.LocalizationNameVariable != "" {
		return strings.TrimPrefix(it.LocalizationNameVariable, "@ITEMS_")
	}
	return ""
}

// Tier extracts the tier prefix (T1..T8) from an identifier, or "".
func Tier(id string) string {
	return tierRe.FindString(id)
}

// DisplayName builds the user-facing name: localized name when available,
// identifier otherwise, with the tier appended as a suffix.
func (ix *Index) DisplayName(it Item) string {
	id := Identifier(it)
	name := it.LocalizedNames[ix.locale]
	if name == "" {
		name = id
	}
	if tier := Tier(id); tier != "" {
		return fmt.Sprintf("%s (%s)", name, tier)
	}
	return name
}

// Search returns up to limit items whose identifier or localized name
// contains query as a case-insensitive substring. Dataset order is kept;
// there is no ranking. An empty query yields no results.
func (ix *Index) Search(query string, limit int) []Item {
	if ix == nil {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return nil
	}

	var out []Item
	for _, it := range ix.items {
		id := Identifier(it)
		if id == "" && it.LocalizedNames[ix.locale] == "" {
			continue
		}
		if strings.Contains(strings.ToLower(id), q) ||
			strings.Contains(strings.ToLower(it.LocalizedNames[ix.locale]), q) {
			out = append(out, it)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Suggest runs Search and deduplicates the results by final display string,
// keeping the first occurrence. Records without any identifier are dropped
// since selecting them could never trigger a price lookup.
func (ix *Index) Suggest(query string, limit int) []Suggestion {
	seen := make(map[string]bool)
	var out []Suggestion
	for _, it := range ix.Search(query, limit) {
		id := Identifier(it)
		if id == "" {
			continue
		}
		display := ix.DisplayName(it)
		if seen[display] {
			continue
		}
		seen[display] = true
		out = append(out, Suggestion{ItemID: id, Display: display, Tier: Tier(id)})
	}
	return out
}

func downloadFile(dst, url string) error {
	os.MkdirAll(filepath.Dir(dst), 0755)
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}
