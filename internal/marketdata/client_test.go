package marketdata_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sankalp404/quantmatrix-sub000/internal/marketdata"
)

func chartJSON(symbol string, timestamps []int64, closes []float64) string {
	ts := ""
	for i, t := range timestamps {
		if i > 0 {
			ts += ","
		}
		ts += fmt.Sprintf("%d", t)
	}
	cl := ""
	for i, c := range closes {
		if i > 0 {
			cl += ","
		}
		cl += fmt.Sprintf("%g", c)
	}
	return fmt.Sprintf(`{
		"chart": {
			"result": [{
				"meta": {"currency": "USD", "symbol": %q},
				"timestamp": [%s],
				"indicators": {"quote": [{"close": [%s]}]}
			}],
			"error": null
		}
	}`, symbol, ts, cl)
}

// TestClient_LatestClose tests the chart API parsing.
//
// WHY: Yahoo pads incomplete trading days with zero closes; the client must
// skip those and return the last real price, or signal "no price" without
// erroring when the symbol is unknown.
func TestClient_LatestClose(t *testing.T) {
	t.Run("returns the last non-zero close", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, chartJSON("AAPL", []int64{1700000000, 1700086400, 1700172800}, []float64{150.25, 151.50, 0}))
		}))
		defer server.Close()

		client := marketdata.NewClientWithBaseURL(server.URL)
		quote, found, err := client.LatestClose(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("LatestClose() returned unexpected error: %v", err)
		}
		if !found {
			t.Fatal("Expected a quote, got found=false")
		}
		if quote.Close != 151.50 {
			t.Errorf("Close = %g, want 151.50 (zero-padded final day skipped)", quote.Close)
		}
		if quote.Symbol != "AAPL" || quote.Currency != "USD" {
			t.Errorf("Quote meta = %s/%s, want AAPL/USD", quote.Symbol, quote.Currency)
		}
	})

	t.Run("unknown symbol returns found false without error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := marketdata.NewClientWithBaseURL(server.URL)
		_, found, err := client.LatestClose(context.Background(), "NOSUCH")
		if err != nil {
			t.Fatalf("LatestClose() returned unexpected error: %v", err)
		}
		if found {
			t.Error("Expected found=false for an unknown symbol")
		}
	})

	t.Run("empty result set returns found false", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"chart": {"result": [], "error": null}}`)
		}))
		defer server.Close()

		client := marketdata.NewClientWithBaseURL(server.URL)
		_, found, err := client.LatestClose(context.Background(), "EMPTY")
		if err != nil {
			t.Fatalf("LatestClose() returned unexpected error: %v", err)
		}
		if found {
			t.Error("Expected found=false for an empty result set")
		}
	})

	t.Run("server error is surfaced", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := marketdata.NewClientWithBaseURL(server.URL)
		_, _, err := client.LatestClose(context.Background(), "AAPL")
		if err == nil {
			t.Error("Expected an error for a 500 response")
		}
	})

	t.Run("all-zero closes return found false", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, chartJSON("HALTED", []int64{1700000000, 1700086400}, []float64{0, 0}))
		}))
		defer server.Close()

		client := marketdata.NewClientWithBaseURL(server.URL)
		_, found, err := client.LatestClose(context.Background(), "HALTED")
		if err != nil {
			t.Fatalf("LatestClose() returned unexpected error: %v", err)
		}
		if found {
			t.Error("Expected found=false when every close is zero")
		}
	})
}
