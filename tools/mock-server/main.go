// Package main implements a mock search API and storefront for local
// development. It answers search.json requests in the shape the price
// matcher's search client expects and serves product pages carrying
// JSON-LD offers, all from one JSON catalog fixture.
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

const noResults = "Google hasn't returned any results for this query."

type product struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Brand string `json:"brand"`
	GTIN  string `json:"gtin"`
	MPN   string `json:"mpn"`
	Price string `json:"price"`
	Store string `json:"store"`
}

type catalog struct {
	Products []product `json:"products"`
}

type shoppingResult struct {
	Position       int    `json:"position"`
	Title          string `json:"title"`
	Link           string `json:"link"`
	Source         string `json:"source"`
	Price          string `json:"price"`
	ExtractedPrice string `json:"extracted_price"`
}

type organicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
}

type searchResponse struct {
	SearchMetadata  map[string]string `json:"search_metadata"`
	ShoppingResults []shoppingResult  `json:"shopping_results"`
	OrganicResults  []organicResult   `json:"organic_results"`
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/catalog.json", "path to catalog fixture")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cat, err := loadCatalog(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded catalog", "products", len(cat.Products))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock search server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, newMux(logger, cat)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger, cat *catalog) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search.json", searchHandler(logger, cat))
	mux.HandleFunc("GET /p/{slug}", productHandler(logger, cat))
	return mux
}

func loadCatalog(path string) (*catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var c catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &c, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

// matches reports whether every query term appears in the product's
// title, brand or identifiers. Quotes are ignored.
func (p *product) matches(query string) bool {
	hay := strings.ToLower(strings.Join([]string{p.Title, p.Brand, p.GTIN, p.MPN}, " "))
	terms := strings.Fields(strings.ToLower(strings.ReplaceAll(query, `"`, " ")))
	if len(terms) == 0 {
		return false
	}
	for _, term := range terms {
		if !strings.Contains(hay, term) {
			return false
		}
	}
	return true
}

func searchHandler(logger *slog.Logger, cat *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") == "" {
			logger.Warn("search request missing api_key")
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid API key."})
			return
		}

		q := r.URL.Query().Get("q")
		base := "http://" + r.Host

		resp := searchResponse{SearchMetadata: map[string]string{"status": "Success"}}
		for i := range cat.Products {
			p := &cat.Products[i]
			if !p.matches(q) {
				continue
			}
			link := base + "/p/" + p.Slug
			resp.ShoppingResults = append(resp.ShoppingResults, shoppingResult{
				Position:       len(resp.ShoppingResults) + 1,
				Title:          p.Title,
				Link:           link,
				Source:         p.Store,
				Price:          "$" + p.Price,
				ExtractedPrice: p.Price,
			})
			resp.OrganicResults = append(resp.OrganicResults, organicResult{
				Position: len(resp.OrganicResults) + 1,
				Title:    p.Title + " | " + p.Store,
				Link:     link,
				Snippet:  "Shop the " + p.Title + " at " + p.Store + ".",
			})
		}

		if len(resp.ShoppingResults) == 0 {
			writeJSON(w, http.StatusOK, map[string]string{"error": noResults})
			logger.Info("search", "query", q, "matched", 0)
			return
		}

		writeJSON(w, http.StatusOK, resp)
		logger.Info("search", "query", q, "matched", len(resp.ShoppingResults))
	}
}

var productPage = template.Must(template.New("product").Parse(`<!doctype html>
<html>
<head>
  <title>{{.Title}} | {{.Store}}</title>
  <meta property="og:title" content="{{.Title}}">
  <script type="application/ld+json">{{.LD}}</script>
</head>
<body><h1>{{.Title}}</h1><p class="price">${{.Price}}</p></body>
</html>
`))

func productHandler(logger *slog.Logger, cat *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		for i := range cat.Products {
			p := &cat.Products[i]
			if p.Slug != slug {
				continue
			}
			ld := map[string]any{
				"@context": "https://schema.org",
				"@type":    "Product",
				"name":     p.Title,
				"brand":    map[string]string{"@type": "Brand", "name": p.Brand},
				"mpn":      p.MPN,
				"offers": map[string]string{
					"@type":         "Offer",
					"price":         p.Price,
					"priceCurrency": "USD",
				},
			}
			if p.GTIN != "" {
				ld["gtin"] = p.GTIN
			}

			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
			productPage.Execute(w, map[string]any{
				"Title": p.Title,
				"Store": p.Store,
				"Price": p.Price,
				"LD":    ld,
			})
			return
		}
		logger.Warn("unknown product", "slug", slug)
		http.NotFound(w, r)
	}
}
