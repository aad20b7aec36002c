package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/merch/internal/catalog"
)

// rawProducts is the unenriched product set the fake remote serves.
var rawProducts = []catalog.Product{
	{ID: 1, Title: "Aster Phone X", Price: 899.99, DiscountPercentage: 10.5, Rating: 4.6, Stock: 34, Brand: "Aster", Category: "smartphones"},
	{ID: 2, Title: "Plain Tee", Price: 19.99, Rating: 4.1, Stock: 120, Brand: "Basics", Category: "mens-shirts"},
	{ID: 3, Title: "Desk Lamp", Price: 24.50, Rating: 3.9, Stock: 8, Brand: "Lumen", Category: "home-decoration"},
	{ID: 4, Title: "Aster Phone Mini", Price: 599.99, Rating: 4.2, Stock: 50, Brand: "Aster", Category: "smartphones"},
}

// newCatalogServer starts a fake remote catalog speaking the dummyjson
// shapes: paged listing, /search, /category/<slug>, /<id>, /categories.
func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	page := func(w http.ResponseWriter, r *http.Request, matches []catalog.Product) {
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = len(matches)
		}
		end := min(skip+limit, len(matches))
		if skip > end {
			skip = end
		}
		json.NewEncoder(w).Encode(map[string]any{
			"products": matches[skip:end],
			"total":    len(matches),
		})
	}

	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		page(w, r, rawProducts)
	})
	mux.HandleFunc("/products/search", func(w http.ResponseWriter, r *http.Request) {
		q := strings.ToLower(r.URL.Query().Get("q"))
		var matches []catalog.Product
		for _, p := range rawProducts {
			if strings.Contains(strings.ToLower(p.Title), q) {
				matches = append(matches, p)
			}
		}
		page(w, r, matches)
	})
	mux.HandleFunc("/products/category/", func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimPrefix(r.URL.Path, "/products/category/")
		var matches []catalog.Product
		for _, p := range rawProducts {
			if p.Category == slug {
				matches = append(matches, p)
			}
		}
		page(w, r, matches)
	})
	mux.HandleFunc("/products/categories", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]string{"smartphones", "mens-shirts", "home-decoration"})
	})
	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/products/"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		for _, p := range rawProducts {
			if p.ID == id {
				json.NewEncoder(w).Encode(p)
				return
			}
		}
		http.NotFound(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// writeTestConfig writes a config pointing at the fake remote and a temp
// database, with a short debounce and submit delay so tests run quickly.
func writeTestConfig(t *testing.T, baseURL string) (configPath, dbPath string) {
	t.Helper()

	dir := t.TempDir()
	configPath = filepath.Join(dir, "merch.yaml")
	dbPath = filepath.Join(dir, "merch.db")

	cfg := fmt.Sprintf(`api:
  base_url: %s/products
store:
  path: %s
explorer:
  page_size: 2
  debounce_ms: 1
checkout:
  delay_ms: 1
`, baseURL, dbPath)
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0644))
	return configPath, dbPath
}

// runCommand executes the full command tree with the given args and
// returns combined output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := &strings.Builder{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
