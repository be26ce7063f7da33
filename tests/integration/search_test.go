//go:build integration

package integration

import (
	"net/http"
	"net/url"
	"testing"
)

func TestSearch(t *testing.T) {
	resp := doGet(t, "/api/menu/search?term=pizza")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// Four pizzas plus the chocolate pizza; Pudding stays out (unavailable).
	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 5 {
		t.Fatalf("expected 5 matches for 'pizza', got %d", len(products))
	}
	for _, p := range products {
		if !p.Available {
			t.Errorf("unavailable product %q in search results", p.Name)
		}
	}
}

func TestSearch_CaseInsensitive(t *testing.T) {
	resp := doGet(t, "/api/menu/search?term=MARGHERITA")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 1 {
		t.Fatalf("expected 1 match, got %d", len(products))
	}
	if products[0].Name != "Pizza Margherita" {
		t.Errorf("name: got %q, want %q", products[0].Name, "Pizza Margherita")
	}
}

func TestSearch_MatchesDescription(t *testing.T) {
	resp := doGet(t, "/api/menu/search?term="+url.QueryEscape("freshly squeezed"))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 1 {
		t.Fatalf("expected 1 match, got %d", len(products))
	}
	if products[0].Name != "Orange juice" {
		t.Errorf("name: got %q, want %q", products[0].Name, "Orange juice")
	}
}

func TestSearch_NoMatches(t *testing.T) {
	resp := doGet(t, "/api/menu/search?term=sushi")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 0 {
		t.Fatalf("expected no matches, got %d", len(products))
	}
}

func TestSearch_TermTooShort(t *testing.T) {
	for _, path := range []string{
		"/api/menu/search",
		"/api/menu/search?term=p",
		"/api/menu/search?term=%20%20p%20",
	} {
		resp := doGet(t, path)

		if resp.StatusCode != http.StatusUnprocessableEntity {
			resp.Body.Close()
			t.Fatalf("%s: expected 422, got %d", path, resp.StatusCode)
		}

		errResp := decodeJSON[errorResponse](t, resp)
		resp.Body.Close()
		if errResp.Code != 422 {
			t.Errorf("%s: error code: got %d, want 422", path, errResp.Code)
		}
	}
}
