package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fornero/pizzeria-storefront/internal/catalog"
)

func TestGetFullMenu(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/menu", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(catalog.Menu{
			Categories: []catalog.Category{
				{
					ID:   1,
					Name: "Pizzas",
					Products: []catalog.Product{
						{
							ID:   1,
							Name: "Pizza Margherita",
							Variations: []catalog.Variation{
								{ID: 1, Label: "Medium", BasePrice: decimal.RequireFromString("35.90")},
							},
						},
					},
				},
			},
		})
	}))
	defer srv.Close()

	menu, err := New(srv.URL).GetFullMenu(context.Background())
	require.NoError(t, err)
	require.Len(t, menu.Categories, 1)
	require.Len(t, menu.Categories[0].Products, 1)
	assert.True(t, decimal.RequireFromString("35.90").Equal(menu.Categories[0].Products[0].Variations[0].BasePrice))
}

func TestProductsByCategory_QueryParams(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/menu/categories/3/products", r.URL.Path)
		gotQuery.Store(r.URL.Query().Get("includeUnavailable"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL)

	_, err := c.ProductsByCategory(context.Background(), 3, true)
	require.NoError(t, err)
	assert.Equal(t, "true", gotQuery.Load())

	_, err = c.ProductsByCategory(context.Background(), 3, false)
	require.NoError(t, err)
	assert.Equal(t, "", gotQuery.Load())
}

func TestSearchProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/menu/search", r.URL.Path)
		require.Equal(t, "margherita", r.URL.Query().Get("term"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Pizza Margherita","available":true}]`))
	}))
	defer srv.Close()

	products, err := New(srv.URL).SearchProducts(context.Background(), "  margherita  ")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Pizza Margherita", products[0].Name)
}

func TestSearchProducts_ShortTermSkipsRequest(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	for _, term := range []string{"", "m", "  p  ", "\t"} {
		products, err := c.SearchProducts(context.Background(), term)
		require.NoError(t, err)
		assert.Nil(t, products)
	}

	assert.Equal(t, int32(0), requests.Load())
}

func TestStatusError_CarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":404,"message":"category not found"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ProductsByCategory(context.Background(), 999, false)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "category not found", statusErr.Message)
	assert.Contains(t, statusErr.Error(), "404")
}

func TestStatusError_NoBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetFullMenu(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Contains(t, statusErr.Error(), "unexpected status 502")
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/menu", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"categories":[]}`))
	}))
	defer srv.Close()

	menu, err := New(srv.URL + "/").GetFullMenu(context.Background())
	require.NoError(t, err)
	assert.Empty(t, menu.Categories)
}
