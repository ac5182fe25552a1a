package shelf

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shelfapi/internal/book"
	"shelfapi/internal/platform/bigbook"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func newTestHandler(t *testing.T) (*HTTPHandler, *MockRepository, *MockDetailSource) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	details := NewMockDetailSource(ctrl)
	return NewHTTPHandler(NewService(repo, details)), repo, details
}

func TestHTTPHandler_List(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		handler, repo, _ := newTestHandler(t)
		repo.EXPECT().List(gomock.Any(), StatusRead).Return([]Book{{ID: testID, Title: "Emma", Status: StatusRead}}, nil)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/api/books?status=read", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"title":"Emma"`)
	})

	t.Run("bad status", func(t *testing.T) {
		handler, _, _ := newTestHandler(t)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/api/books?status=someday", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store error", func(t *testing.T) {
		handler, repo, _ := newTestHandler(t)
		repo.EXPECT().List(gomock.Any(), "").Return(nil, errors.New("db error"))

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/api/books", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_Add(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		handler, repo, details := newTestHandler(t)
		repo.EXPECT().GetByExternalID(gomock.Any(), "42").Return(Book{}, ErrNotFound)
		details.EXPECT().Detail(gomock.Any(), "42").Return(&book.Detail{Summary: book.Summary{ExternalID: "42", Title: "Emma"}}, nil)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(`{"externalId":"42","status":"TBR"}`))
		handler.Add(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("already shelved", func(t *testing.T) {
		handler, repo, _ := newTestHandler(t)
		repo.EXPECT().GetByExternalID(gomock.Any(), "42").Return(Book{ID: testID}, nil)
		repo.EXPECT().Update(gomock.Any(), testID, gomock.Any()).Return(Book{ID: testID, Status: StatusDNF}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(`{"externalId":"42","status":"DNF"}`))
		handler.Add(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"DNF"`)
	})

	t.Run("validation", func(t *testing.T) {
		handler, _, _ := newTestHandler(t)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(`{"status":"WANT"}`))
		handler.Add(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "externalId is required")
		assert.Contains(t, w.Body.String(), "must be one of TBR, READ, DNF")
	})

	t.Run("blank external id", func(t *testing.T) {
		handler, _, _ := newTestHandler(t)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(`{"externalId":"   ","status":"TBR"}`))
		handler.Add(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "externalId must not be blank")
	})

	t.Run("malformed body", func(t *testing.T) {
		handler, _, _ := newTestHandler(t)

		w := httptest.NewRecorder()
		handler.Add(w, httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(`{`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown catalog book", func(t *testing.T) {
		handler, repo, details := newTestHandler(t)
		repo.EXPECT().GetByExternalID(gomock.Any(), "404").Return(Book{}, ErrNotFound)
		details.EXPECT().Detail(gomock.Any(), "404").Return(nil, &bigbook.UpstreamError{Op: "detail", StatusCode: 404})

		w := httptest.NewRecorder()
		handler.Add(w, httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(`{"externalId":"404","status":"TBR"}`)))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("catalog unavailable", func(t *testing.T) {
		handler, repo, details := newTestHandler(t)
		repo.EXPECT().GetByExternalID(gomock.Any(), "42").Return(Book{}, ErrNotFound)
		details.EXPECT().Detail(gomock.Any(), "42").Return(nil, &bigbook.UpstreamError{Op: "detail", Err: errors.New("timeout")})

		w := httptest.NewRecorder()
		handler.Add(w, httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(`{"externalId":"42","status":"TBR"}`)))

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestHTTPHandler_Update(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		handler, repo, _ := newTestHandler(t)
		rating := 4
		finished := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		repo.EXPECT().Update(gomock.Any(), testID, Patch{
			Status:       strPtr(StatusRead),
			UserRating:   &rating,
			FinishedDate: &finished,
		}).Return(Book{ID: testID, Status: StatusRead, UserRating: &rating}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPatch, "/api/books/"+testID,
			strings.NewReader(`{"status":"READ","userRating":4,"finishedDate":"2026-03-01"}`))
		r.SetPathValue("id", testID)
		handler.Update(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"userRating":4`)
	})

	t.Run("rating out of range", func(t *testing.T) {
		handler, _, _ := newTestHandler(t)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPatch, "/api/books/"+testID, strings.NewReader(`{"userRating":6}`))
		r.SetPathValue("id", testID)
		handler.Update(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "userRating must be at most 5")
	})

	t.Run("bad date", func(t *testing.T) {
		handler, _, _ := newTestHandler(t)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPatch, "/api/books/"+testID, strings.NewReader(`{"startedDate":"March 1st"}`))
		r.SetPathValue("id", testID)
		handler.Update(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "startedDate")
	})

	t.Run("empty patch", func(t *testing.T) {
		handler, _, _ := newTestHandler(t)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPatch, "/api/books/"+testID, strings.NewReader(`{}`))
		r.SetPathValue("id", testID)
		handler.Update(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		handler, repo, _ := newTestHandler(t)
		repo.EXPECT().Update(gomock.Any(), testID, gomock.Any()).Return(Book{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPatch, "/api/books/"+testID, strings.NewReader(`{"status":"TBR"}`))
		r.SetPathValue("id", testID)
		handler.Update(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		handler, repo, _ := newTestHandler(t)
		repo.EXPECT().Delete(gomock.Any(), testID).Return(nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/api/books/"+testID, nil)
		r.SetPathValue("id", testID)
		handler.Delete(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Deleted")
	})

	t.Run("not found", func(t *testing.T) {
		handler, _, _ := newTestHandler(t)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/api/books/abc", nil)
		r.SetPathValue("id", "abc")
		handler.Delete(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
