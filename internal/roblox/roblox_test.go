package roblox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient points every endpoint root at the given stub server.
func newTestClient(srv *httptest.Server) *Client {
	c := NewClient(nil)
	c.catalogURL = srv.URL
	c.economyURL = srv.URL
	c.usersURL = srv.URL
	c.groupsURL = srv.URL
	c.rolimonsURL = srv.URL
	return c
}

func TestSearchCollectibles_ParsesStubs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/search/items/details" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("Category") != "Collectibles" {
			t.Errorf("Category = %q", r.URL.Query().Get("Category"))
		}
		if r.URL.Query().Get("MaxPrice") != "5000" {
			t.Errorf("MaxPrice = %q", r.URL.Query().Get("MaxPrice"))
		}
		w.Write([]byte(`{"data":[
			{"id":1028606,"itemType":"Asset","price":900,"itemRestrictions":["Limited"]},
			{"id":494291269,"itemType":"Asset","price":0,"lowestPrice":450,"itemRestrictions":["LimitedUnique"]},
			{"id":0,"itemType":"Asset","price":10}
		]}`))
	}))
	defer srv.Close()

	stubs := newTestClient(srv).SearchCollectibles(context.Background(), 5000, "")
	if len(stubs) != 2 {
		t.Fatalf("len(stubs) = %d, want 2", len(stubs))
	}
	if stubs[0].ID != 1028606 || stubs[0].Price != 900 || stubs[0].LimitedUnique {
		t.Errorf("stubs[0] = %+v", stubs[0])
	}
	if stubs[1].ID != 494291269 || stubs[1].Price != 450 || !stubs[1].LimitedUnique {
		t.Errorf("stubs[1] = %+v", stubs[1])
	}
}

func TestSearchCollectibles_FailureDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	stubs := newTestClient(srv).SearchCollectibles(context.Background(), 1000, "")
	if len(stubs) != 0 {
		t.Fatalf("len(stubs) = %d, want 0 on failure", len(stubs))
	}
}

func TestResaleData_ValidSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/assets/42/resale-data" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"lowestResalePrice":100,"recentAveragePrice":130,"numSellers":7}`))
	}))
	defer srv.Close()

	snap, ok := newTestClient(srv).ResaleData(context.Background(), 42)
	if !ok {
		t.Fatal("expected snapshot")
	}
	if snap.AssetID != 42 || snap.LowestResalePrice != 100 || snap.RecentAveragePrice != 130 || snap.SellerCount != 7 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestResaleData_MissingLowestPriceInvalidatesSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"recentAveragePrice":130,"numSellers":7}`))
	}))
	defer srv.Close()

	if _, ok := newTestClient(srv).ResaleData(context.Background(), 42); ok {
		t.Fatal("snapshot without lowest price must be discarded")
	}
}

func TestResaleData_HTTPErrorIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, ok := newTestClient(srv).ResaleData(context.Background(), 42); ok {
		t.Fatal("HTTP error must collapse to no data")
	}
}

func TestFetchPriceHistory_PrimarySourceWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/assets/7/resale-data":
			w.Write([]byte(`{"priceDataPoints":[
				{"value":110,"date":"2025-05-02T00:00:00Z"},
				{"value":100,"date":"2025-05-01T00:00:00Z"}
			]}`))
		default:
			t.Errorf("unexpected call to %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	h := newTestClient(srv).FetchPriceHistory(context.Background(), 7)
	if !h.Available() || h.Source != "economy-v1" || h.TriedSources != 1 {
		t.Fatalf("history = %+v", h)
	}
	if h.Points[0].Date != "2025-05-01" || h.Points[1].Date != "2025-05-02" {
		t.Errorf("points not chronological: %+v", h.Points)
	}
	if pct := h.TrendPercent(); pct < 9.9 || pct > 10.1 {
		t.Errorf("TrendPercent = %f, want ~10", pct)
	}
}

func TestFetchPriceHistory_FallsBackInPriorityOrder(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		switch r.URL.Path {
		case "/v1/assets/7/resale-data":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/v2/assets/7/resale-data":
			w.Write([]byte(`{"priceDataPoints":[{"value":90,"date":"2025-05-01T00:00:00Z"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	h := newTestClient(srv).FetchPriceHistory(context.Background(), 7)
	if h.Source != "economy-v2" || h.TriedSources != 2 {
		t.Fatalf("history = %+v", h)
	}
	if len(calls) != 2 {
		t.Fatalf("calls = %v, want exactly one attempt per endpoint", calls)
	}
}

func TestFetchPriceHistory_DegradedThirdSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/itemapi/item/7":
			w.Write([]byte(`{"success":true,"rap_series":[[1746057600,95],[1746144000,99]]}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	h := newTestClient(srv).FetchPriceHistory(context.Background(), 7)
	if h.Source != "rolimons" || h.TriedSources != 3 {
		t.Fatalf("history = %+v", h)
	}
	if len(h.Points) != 2 || h.Points[1].Value != 99 {
		t.Errorf("points = %+v", h.Points)
	}
}

func TestFetchPriceHistory_AllSourcesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h := newTestClient(srv).FetchPriceHistory(context.Background(), 7)
	if h.Available() {
		t.Fatal("expected no data")
	}
	if h.TriedSources != 3 {
		t.Fatalf("TriedSources = %d, want 3", h.TriedSources)
	}
}

func TestBatchItemDetails_ResolvesSubset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/catalog/items/details" || r.Method != "POST" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"data":[
			{"id":1,"name":"Domino Crown","creatorTargetId":1,"creatorType":"User","creatorName":"Roblox"}
		]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	details := c.BatchItemDetails(context.Background(), []int64{1, 2})
	if len(details) != 1 {
		t.Fatalf("len(details) = %d, want 1", len(details))
	}
	if details[1].Name != "Domino Crown" || details[1].CreatorKind != "User" {
		t.Errorf("details[1] = %+v", details[1])
	}

	// Resolved name should now be served from the L1 cache.
	if name := c.ItemName(1); name != "Domino Crown" {
		t.Errorf("ItemName(1) = %q", name)
	}
	// Unresolved id synthesizes a placeholder.
	if name := c.ItemName(2); name != "Item 2" {
		t.Errorf("ItemName(2) = %q", name)
	}
}

func TestCreatorName_ResolvesAndCaches(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		switch r.URL.Path {
		case "/v1/users/261":
			w.Write([]byte(`{"name":"Shedletsky"}`))
		case "/v1/groups/1200769":
			w.Write([]byte(`{"name":"Official Group"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv)
	if name := c.CreatorName(context.Background(), "User", 261); name != "Shedletsky" {
		t.Fatalf("user name = %q", name)
	}
	if name := c.CreatorName(context.Background(), "Group", 1200769); name != "Official Group" {
		t.Fatalf("group name = %q", name)
	}
	c.CreatorName(context.Background(), "User", 261)
	if hits != 2 {
		t.Fatalf("hits = %d, want 2 (second user lookup cached)", hits)
	}
}

func TestCreatorName_FailureIsUnknownSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if name := newTestClient(srv).CreatorName(context.Background(), "User", 404); name != UnknownCreator {
		t.Fatalf("name = %q, want %q", name, UnknownCreator)
	}
}
