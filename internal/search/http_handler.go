package search

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"shelfapi/internal/book"
	"shelfapi/internal/httpx"
	"shelfapi/internal/logger"
	"shelfapi/internal/platform/bigbook"
)

type HTTPHandler struct {
	service *Service
	details DetailSource
}

func NewHTTPHandler(service *Service, details DetailSource) *HTTPHandler {
	return &HTTPHandler{service: service, details: details}
}

// Search handles GET /api/search?q=&genre=&rating=&length=&seed=
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := Request{
		Query:  query.Get("q"),
		Genre:  query.Get("genre"),
		Length: Length(strings.ToLower(strings.TrimSpace(query.Get("length")))),
		Seed:   query.Get("seed"),
	}

	if ratingStr := strings.TrimSpace(query.Get("rating")); ratingStr != "" {
		val, err := strconv.ParseFloat(ratingStr, 64)
		if err != nil {
			httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "BAD_REQUEST", "rating must be a number",
				[]httpx.ErrorDetail{{Field: "rating", Message: "rating must be a number between 0 and 5"}})
			return
		}
		req.Rating = &val
	}

	books, err := h.service.Search(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRequest):
			httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		case errors.Is(err, bigbook.ErrUpstream):
			httpx.JSONErrorWithRequest(r, w, http.StatusBadGateway, "UPSTREAM_ERROR", "Error fetching books from the catalog service", nil)
		default:
			logger.For(r.Context()).WithError(err).Error("search failed")
			httpx.JSONErrorWithRequest(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	if books == nil {
		books = []book.Summary{}
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.JSONSuccessWithRequest(r, w, books, map[string]interface{}{
		"count": len(books),
	})
}

// Detail handles GET /api/external-books/{id}
func (h *HTTPHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		http.NotFound(w, r)
		return
	}

	d, err := h.details.Detail(r.Context(), id)
	if err != nil {
		switch {
		case bigbook.IsNotFound(err):
			httpx.JSONErrorWithRequest(r, w, http.StatusNotFound, "NOT_FOUND", "Book not found in catalog", nil)
		case errors.Is(err, bigbook.ErrUpstream):
			httpx.JSONErrorWithRequest(r, w, http.StatusBadGateway, "UPSTREAM_ERROR", "Error fetching book details", nil)
		default:
			logger.For(r.Context()).WithError(err).Error("detail lookup failed")
			httpx.JSONErrorWithRequest(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	httpx.JSONSuccessWithRequest(r, w, d, nil)
}
