package shelf

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"shelfapi/internal/httpx"
	"shelfapi/internal/logger"
	"shelfapi/internal/platform/bigbook"
)

const dateLayout = "2006-01-02"

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type addReq struct {
	ExternalID string `json:"externalId" validate:"required,max=64"`
	Status     string `json:"status" validate:"required,shelf_status"`
}

type updateReq struct {
	Status       *string `json:"status" validate:"omitempty,shelf_status"`
	UserRating   *int    `json:"userRating" validate:"omitempty,min=1,max=5"`
	UserReview   *string `json:"userReview" validate:"omitempty,max=5000"`
	StartedDate  *string `json:"startedDate" validate:"omitempty,datetime=2006-01-02"`
	FinishedDate *string `json:"finishedDate" validate:"omitempty,datetime=2006-01-02"`
}

func (u updateReq) patch() Patch {
	p := Patch{Status: u.Status, UserRating: u.UserRating, UserReview: u.UserReview}
	if u.StartedDate != nil {
		t, _ := time.Parse(dateLayout, *u.StartedDate)
		p.StartedDate = &t
	}
	if u.FinishedDate != nil {
		t, _ := time.Parse(dateLayout, *u.FinishedDate)
		p.FinishedDate = &t
	}
	return p
}

func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, books, map[string]any{"count": len(books)})
}

func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", details)
		return
	}

	b, created, err := h.service.Add(r.Context(), req.ExternalID, req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if created {
		httpx.JSONSuccessCreatedWithRequest(r, w, b)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, b, nil)
}

func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", details)
		return
	}
	p := req.patch()
	if p.IsEmpty() {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "BAD_REQUEST", "No fields to update", nil)
		return
	}

	b, err := h.service.Update(r.Context(), r.PathValue("id"), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, b, nil)
}

func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, map[string]string{"message": "Deleted"}, nil)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidStatus):
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "BAD_REQUEST", "Status must be one of TBR, READ, DNF", nil)
	case errors.Is(err, ErrInvalidExternalID):
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "BAD_REQUEST", "externalId must not be blank", nil)
	case errors.Is(err, ErrNotFound):
		httpx.JSONErrorWithRequest(r, w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case bigbook.IsNotFound(err):
		httpx.JSONErrorWithRequest(r, w, http.StatusNotFound, "NOT_FOUND", "Book not found in catalog", nil)
	case errors.Is(err, bigbook.ErrUpstream), errors.Is(err, ErrIncompleteBook):
		logger.For(r.Context()).WithError(err).Warn("catalog lookup failed")
		httpx.JSONErrorWithRequest(r, w, http.StatusBadGateway, "UPSTREAM_ERROR", "Book catalog unavailable", nil)
	default:
		logger.For(r.Context()).WithError(err).Error("shelf operation failed")
		httpx.JSONErrorWithRequest(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update shelf", nil)
	}
}
