package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fornero/pizzeria-storefront/internal/catalog"
)

// --- Mock repository ---

type mockCatalog struct {
	menu     *catalog.Menu
	products []catalog.Product
	err      error

	lastCategoryID         int64
	lastIncludeUnavailable bool
	lastTerm               string
}

func (m *mockCatalog) FullMenu(_ context.Context) (*catalog.Menu, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.menu == nil {
		return &catalog.Menu{}, nil
	}
	return m.menu, nil
}

func (m *mockCatalog) ProductsByCategory(_ context.Context, categoryID int64, includeUnavailable bool) ([]catalog.Product, error) {
	m.lastCategoryID = categoryID
	m.lastIncludeUnavailable = includeUnavailable
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockCatalog) Search(_ context.Context, term string) ([]catalog.Product, error) {
	m.lastTerm = term
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func newTestRouter(repo catalog.Repository) http.Handler {
	r := chi.NewRouter()
	New(repo).Routes(r)
	return r
}

func doGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestFullMenu(t *testing.T) {
	repo := &mockCatalog{
		menu: &catalog.Menu{
			Categories: []catalog.Category{
				{
					ID:           1,
					Name:         "Pizzas",
					DisplayOrder: 1,
					Active:       true,
					Products: []catalog.Product{
						{
							ID:         1,
							Name:       "Pizza Margherita",
							CategoryID: 1,
							Available:  true,
							Variations: []catalog.Variation{
								{ID: 1, ProductID: 1, Label: "Medium", BasePrice: decimal.RequireFromString("35.90"), Available: true},
							},
						},
					},
				},
			},
		},
	}

	rec := doGet(t, newTestRouter(repo), "/menu")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var menu catalog.Menu
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &menu))
	require.Len(t, menu.Categories, 1)
	assert.Equal(t, "Pizzas", menu.Categories[0].Name)
	require.Len(t, menu.Categories[0].Products, 1)
	assert.True(t, decimal.RequireFromString("35.90").Equal(menu.Categories[0].Products[0].Variations[0].BasePrice))
}

func TestFullMenu_EmptyCatalog(t *testing.T) {
	rec := doGet(t, newTestRouter(&mockCatalog{}), "/menu")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"categories":[]}`, rec.Body.String())
}

func TestFullMenu_RepositoryError(t *testing.T) {
	rec := doGet(t, newTestRouter(&mockCatalog{err: errors.New("connection refused")}), "/menu")

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, body.Code)
	assert.Equal(t, "internal error", body.Message)
}

func TestProductsByCategory(t *testing.T) {
	repo := &mockCatalog{
		products: []catalog.Product{
			{ID: 7, Name: "Pizza Calabrese", CategoryID: 3, Available: true},
		},
	}

	rec := doGet(t, newTestRouter(repo), "/menu/categories/3/products?includeUnavailable=true")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), repo.lastCategoryID)
	assert.True(t, repo.lastIncludeUnavailable)

	var products []catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Pizza Calabrese", products[0].Name)
}

func TestProductsByCategory_DefaultExcludesUnavailable(t *testing.T) {
	repo := &mockCatalog{}

	rec := doGet(t, newTestRouter(repo), "/menu/categories/3/products")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, repo.lastIncludeUnavailable)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestProductsByCategory_NotFound(t *testing.T) {
	repo := &mockCatalog{err: catalog.ErrCategoryNotFound}

	rec := doGet(t, newTestRouter(repo), "/menu/categories/999/products")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "category not found")
}

func TestProductsByCategory_BadID(t *testing.T) {
	rec := doGet(t, newTestRouter(&mockCatalog{}), "/menu/categories/pizza/products")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid category id")
}

func TestSearch(t *testing.T) {
	repo := &mockCatalog{
		products: []catalog.Product{{ID: 1, Name: "Pizza Margherita", Available: true}},
	}

	rec := doGet(t, newTestRouter(repo), "/menu/search?term=marg")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "marg", repo.lastTerm)

	var products []catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 1)
}

func TestSearch_TermTooShort(t *testing.T) {
	for name, path := range map[string]string{
		"empty":          "/menu/search",
		"one char":       "/menu/search?term=m",
		"whitespace pad": "/menu/search?term=%20m%20",
	} {
		t.Run(name, func(t *testing.T) {
			repo := &mockCatalog{}
			rec := doGet(t, newTestRouter(repo), path)

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Empty(t, repo.lastTerm, "repository must not be queried")
		})
	}
}

func TestSearch_MultibyteTermCountsRunes(t *testing.T) {
	repo := &mockCatalog{}

	// Two runes, four bytes: long enough.
	rec := doGet(t, newTestRouter(repo), "/menu/search?term=%C3%A7%C3%A3")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "çã", repo.lastTerm)
}

func TestSearch_NoMatches(t *testing.T) {
	rec := doGet(t, newTestRouter(&mockCatalog{}), "/menu/search?term=sushi")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
