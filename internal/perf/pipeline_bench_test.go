package perf_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flowr-app/flowr/internal/api"
	"github.com/flowr-app/flowr/internal/catalog"
	"github.com/flowr-app/flowr/internal/display"
	"github.com/flowr-app/flowr/internal/filter"
)

func benchmarkProducts(count int) []catalog.Record {
	categories := []string{"Flower", "Vape", "Edible", "Concentrate", "Pre-Roll", "Merch"}
	regions := [][]string{{"CA", "NV"}, {"Oregon"}, {"WA", "california"}, {"CO"}}
	feels := [][]string{{"Happy", "Relaxed"}, {"Sleepy"}, {"Giggly", "happy"}}

	recs := make([]catalog.Record, 0, count)
	for i := range count {
		rec := catalog.Record{
			"id":            fmt.Sprintf("p-%d", i),
			"name":          fmt.Sprintf("Dream Batch %d", i),
			"brand":         "Sunny Farms",
			"category":      categories[i%len(categories)],
			"states":        regions[i%len(regions)],
			"topFeels":      feels[i%len(feels)],
			"topActivities": []string{"Hiking"},
			"thcPercent":    float64(15 + i%15),
		}
		if i%5 == 0 {
			delete(rec, "states")
			rec["state"] = "CA"
		}
		recs = append(recs, rec)
	}
	return recs
}

func setupPipelineServer(b *testing.B, productCount int) *api.Client {
	b.Helper()

	payload, err := json.Marshal(api.DocumentsResponse{Documents: benchmarkProducts(productCount)})
	if err != nil {
		b.Fatalf("marshal products payload: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/products":
			_, _ = w.Write(payload)
		default:
			http.NotFound(w, r)
		}
	}))
	b.Cleanup(server.Close)

	return api.NewClient(server.URL, "", 0)
}

func runPipeline(b *testing.B, repo *catalog.Repository) {
	b.Helper()

	products, err := repo.Products(context.Background())
	if err != nil {
		b.Fatalf("fetch products: %v", err)
	}

	filtered := filter.Apply(products, filter.Options{
		Query:    "dream",
		Category: "flower",
		Region:   "California",
		Feel:     "happy",
		Sort:     "potency",
		Limit:    50,
	})
	if len(filtered) == 0 {
		b.Fatalf("filter returned no products")
	}
	if err := display.PrintProductsJSON(io.Discard, filtered); err != nil {
		b.Fatalf("print products json: %v", err)
	}
}

func BenchmarkCatalogPipeline_1kProducts(b *testing.B) {
	repo := catalog.NewRepository(setupPipelineServer(b, 1000))

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		runPipeline(b, repo)
	}
}

func BenchmarkFilterOnly_10kProducts(b *testing.B) {
	recs := benchmarkProducts(10000)
	products := make([]catalog.Product, 0, len(recs))
	for _, rec := range recs {
		products = append(products, catalog.DecodeProduct(rec))
	}
	opts := filter.Options{Category: "other", Region: "NV"}

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		_ = filter.Apply(products, opts)
	}
}
