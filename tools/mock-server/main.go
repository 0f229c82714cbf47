// Package main implements a mock retailer storefront for local development.
// It serves search result pages built from a JSON fixture so the monitor can
// be pointed at localhost instead of a real retailer site.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

type storeProduct struct {
	Name    string   `json:"name"`
	Path    string   `json:"path"`
	Price   *float64 `json:"price"`
	InStock bool     `json:"in_stock"`
}

// cardView is a storeProduct prepared for the search page template.
type cardView struct {
	Name    string
	Path    string
	Price   string
	InStock bool
}

var searchPage = template.Must(template.New("search").Parse(`<!DOCTYPE html>
<html>
<head><title>Search Results</title></head>
<body>
<div class="search-results">
{{range .}}<div class="product-card">
  <a href="{{.Path}}"><h3 class="product-title">{{.Name}}</h3></a>
  {{if .Price}}<span class="price">{{.Price}}</span>
  {{end}}<p class="stock-status">{{if .InStock}}In Stock{{else}}Out of Stock{{end}}</p>
  <button class="add-to-cart"{{if not .InStock}} disabled{{end}}>Add to Cart</button>
</div>
{{end}}</div>
</body>
</html>
`))

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/products.json", "path to product fixture")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	products, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "products", len(products))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /robots.txt", robotsHandler)
	mux.HandleFunc("GET /search", searchHandler(logger, products))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock storefront", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadFixture(path string) ([]storeProduct, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var products []storeProduct
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return products, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func robotsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, "User-agent: *\nAllow: /\n")
}

// searchHandler renders a search result page containing every fixture product
// whose name matches all terms in the q parameter.
func searchHandler(logger *slog.Logger, products []storeProduct) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		terms := strings.Fields(strings.ToLower(query))

		var cards []cardView
		for _, p := range products {
			if !matchesTerms(p.Name, terms) {
				continue
			}
			card := cardView{Name: p.Name, Path: p.Path, InStock: p.InStock}
			if p.Price != nil {
				card.Price = fmt.Sprintf("$%.2f", *p.Price)
			}
			cards = append(cards, card)
		}

		logger.Debug("search", "query", query, "results", len(cards))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := searchPage.Execute(w, cards); err != nil {
			logger.Error("rendering search page", "error", err)
		}
	}
}

func matchesTerms(name string, terms []string) bool {
	lower := strings.ToLower(name)
	for _, term := range terms {
		if !strings.Contains(lower, term) {
			return false
		}
	}
	return true
}
