// Package handler serves the public menu API consumed by the storefront.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/fornero/pizzeria-storefront/internal/catalog"
)

// Handler exposes the catalog repository over HTTP. The menu is public; there
// is no authenticated surface.
type Handler struct {
	catalog catalog.Repository
}

// New constructs a Handler backed by the given catalog repository.
func New(repo catalog.Repository) *Handler {
	return &Handler{catalog: repo}
}

// Routes registers the menu endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/menu", h.fullMenu)
	r.Get("/menu/categories/{categoryID}/products", h.productsByCategory)
	r.Get("/menu/search", h.searchProducts)
}

func (h *Handler) fullMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.catalog.FullMenu(r.Context())
	if err != nil {
		h.internalError(w, r, err, "full menu")
		return
	}
	if menu.Categories == nil {
		menu.Categories = []catalog.Category{}
	}
	writeJSON(w, http.StatusOK, menu)
}

func (h *Handler) productsByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	includeUnavailable, _ := strconv.ParseBool(r.URL.Query().Get("includeUnavailable"))

	products, err := h.catalog.ProductsByCategory(r.Context(), categoryID, includeUnavailable)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		h.internalError(w, r, err, "products by category")
		return
	}
	writeProducts(w, products)
}

func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("term"))
	if len([]rune(term)) < catalog.MinSearchTermLength {
		writeError(w, http.StatusUnprocessableEntity, "search term must have at least 2 characters")
		return
	}

	products, err := h.catalog.Search(r.Context(), term)
	if err != nil {
		h.internalError(w, r, err, "search products")
		return
	}
	writeProducts(w, products)
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error, op string) {
	zctx.From(r.Context()).Error("catalog query failed", zap.String("op", op), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeProducts(w http.ResponseWriter, products []catalog.Product) {
	if products == nil {
		products = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody mirrors the error envelope used across the API.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Code: status, Message: message})
}
