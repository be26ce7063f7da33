//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// dessertsCategoryID finds the Desserts category id from the menu; ids are
// assigned by the database, not the seed file.
func dessertsCategoryID(t *testing.T) int64 {
	t.Helper()

	resp := doGet(t, "/api/menu")
	defer resp.Body.Close()

	menu := decodeJSON[menuResponse](t, resp)
	for _, c := range menu.Categories {
		if c.Name == "Desserts" {
			return c.ID
		}
	}
	t.Fatal("category 'Desserts' not found")
	return 0
}

func TestProductsByCategory(t *testing.T) {
	id := dessertsCategoryID(t)

	resp := doGet(t, fmt.Sprintf("/api/menu/categories/%d/products", id))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// Pudding is seeded unavailable, so only the chocolate pizza shows.
	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 1 {
		t.Fatalf("expected 1 available dessert, got %d", len(products))
	}
	if products[0].Name != "Chocolate pizza" {
		t.Errorf("name: got %q, want %q", products[0].Name, "Chocolate pizza")
	}
}

func TestProductsByCategory_IncludeUnavailable(t *testing.T) {
	id := dessertsCategoryID(t)

	resp := doGet(t, fmt.Sprintf("/api/menu/categories/%d/products?includeUnavailable=true", id))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 2 {
		t.Fatalf("expected 2 desserts, got %d", len(products))
	}

	foundUnavailable := false
	for _, p := range products {
		if p.Name == "Pudding" && !p.Available {
			foundUnavailable = true
		}
	}
	if !foundUnavailable {
		t.Error("unavailable 'Pudding' missing from includeUnavailable listing")
	}
}

func TestProductsByCategory_NotFound(t *testing.T) {
	resp := doGet(t, "/api/menu/categories/99999/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 404 {
		t.Errorf("error code: got %d, want 404", errResp.Code)
	}
}

func TestProductsByCategory_BadID(t *testing.T) {
	resp := doGet(t, "/api/menu/categories/pizza/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
