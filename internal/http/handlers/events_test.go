package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devevent/api/internal/domain/event"
	"github.com/devevent/api/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// Fake read-side repository

type fakeEventsReader struct {
	listFn func(ctx context.Context) ([]event.Event, error)
	getFn  func(ctx context.Context, key string) (event.Event, error)
}

func (f *fakeEventsReader) List(ctx context.Context) ([]event.Event, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}

	return []event.Event{}, nil
}

func (f *fakeEventsReader) GetBySlugOrID(ctx context.Context, key string) (event.Event, error) {
	if f.getFn != nil {
		return f.getFn(ctx, key)
	}

	return event.Event{}, nil
}

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func TestListEventsHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		repoSetup      func(*fakeEventsReader)
		wantStatusCode int
		wantSlugs      []string
	}{
		{
			name: "success_newest_first",
			repoSetup: func(f *fakeEventsReader) {
				f.listFn = func(ctx context.Context) ([]event.Event, error) {
					// the repo orders by createdAt descending; the handler
					// must hand the sequence through untouched
					return []event.Event{
						{ID: "id-3", Slug: "newest", CreatedAt: now},
						{ID: "id-2", Slug: "middle", CreatedAt: now.Add(-time.Hour)},
						{ID: "id-1", Slug: "oldest", CreatedAt: now.Add(-2 * time.Hour)},
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantSlugs:      []string{"newest", "middle", "oldest"},
		},
		{
			name: "empty_listing",
			repoSetup: func(f *fakeEventsReader) {
				f.listFn = func(ctx context.Context) ([]event.Event, error) {
					return []event.Event{}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantSlugs:      []string{},
		},
		{
			name: "repo_error",
			repoSetup: func(f *fakeEventsReader) {
				f.listFn = func(ctx context.Context) ([]event.Event, error) {
					return nil, errors.New("db down")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeEventsReader{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewEventsHandler(fakeRepo)
			r := setupRouter(http.MethodGet, "/events", h.ListEvents)

			req := httptest.NewRequest(http.MethodGet, "/events", nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode != http.StatusOK {
				return
			}

			var resp struct {
				Message string        `json:"message"`
				Events  []event.Event `json:"events"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}

			if len(resp.Events) != len(tt.wantSlugs) {
				t.Fatalf("got %d events, want %d", len(resp.Events), len(tt.wantSlugs))
			}

			for i, slug := range tt.wantSlugs {
				if resp.Events[i].Slug != slug {
					t.Fatalf("events[%d].slug = %q, want %q", i, resp.Events[i].Slug, slug)
				}
			}
		})
	}
}

// reads are idempotent: two listings with no intervening writes come
// back identical

func TestListEventsHandler_IdempotentReads(t *testing.T) {
	now := time.Now().UTC()

	fakeRepo := &fakeEventsReader{
		listFn: func(ctx context.Context) ([]event.Event, error) {
			return []event.Event{
				{ID: "id-2", Slug: "second", CreatedAt: now},
				{ID: "id-1", Slug: "first", CreatedAt: now.Add(-time.Minute)},
			}, nil
		},
	}

	h := handlers.NewEventsHandler(fakeRepo)
	r := setupRouter(http.MethodGet, "/events", h.ListEvents)

	read := func() string {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("got %d, body=%s", w.Code, w.Body.String())
		}

		return w.Body.String()
	}

	if first, second := read(), read(); first != second {
		t.Fatalf("reads differ:\n%s\n%s", first, second)
	}
}

func TestListEventsHandler_ETagNotModified(t *testing.T) {
	now := time.Now().UTC()

	fakeRepo := &fakeEventsReader{
		listFn: func(ctx context.Context) ([]event.Event, error) {
			return []event.Event{{ID: "id-1", Slug: "only", CreatedAt: now}}, nil
		},
	}

	h := handlers.NewEventsHandler(fakeRepo)
	r := setupRouter(http.MethodGet, "/events", h.ListEvents)

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/events", nil))

	if w1.Code != http.StatusOK {
		t.Fatalf("first call got %d body=%s", w1.Code, w1.Body.String())
	}

	etag := w1.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag header in first response")
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/events", nil)
	req2.Header.Set("If-None-Match", etag)
	r.ServeHTTP(w2, req2)

	if w2.Code != http.StatusNotModified {
		t.Fatalf("second call got %d, want %d, body=%s", w2.Code, http.StatusNotModified, w2.Body.String())
	}

	if w2.Body.Len() != 0 {
		t.Fatalf("expected empty body for 304, got %q", w2.Body.String())
	}
}

func TestGetEventBySlugHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeEventsReader)
		wantStatusCode int
	}{
		{
			name: "success_by_slug",
			url:  "/events/go-meetup-lagos",
			repoSetup: func(f *fakeEventsReader) {
				f.getFn = func(ctx context.Context, key string) (event.Event, error) {
					if key != "go-meetup-lagos" {
						return event.Event{}, errors.New("wrong key passed")
					}

					return event.Event{ID: "id-1", Slug: key, Title: "Go Meetup Lagos", CreatedAt: now}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/events/missing-event",
			repoSetup: func(f *fakeEventsReader) {
				f.getFn = func(ctx context.Context, key string) (event.Event, error) {
					return event.Event{}, event.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			url:  "/events/go-meetup-lagos",
			repoSetup: func(f *fakeEventsReader) {
				f.getFn = func(ctx context.Context, key string) (event.Event, error) {
					return event.Event{}, errors.New("db down")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeEventsReader{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewEventsHandler(fakeRepo)
			r := setupRouter(http.MethodGet, "/events/:slug", h.GetEventBySlug)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
