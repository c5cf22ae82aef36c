package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/devevent/api/internal/cache"
	"github.com/devevent/api/internal/domain/event"
	"github.com/gin-gonic/gin"
)

// cache key for the full listing; invalidated on every successful create
const listCacheKey = "events:list"

// EventsReader is the read side of the repository.
type EventsReader interface {
	List(ctx context.Context) ([]event.Event, error)
	GetBySlugOrID(ctx context.Context, key string) (event.Event, error)
}

type EventsHandler struct {
	repo  EventsReader
	cache *cache.Cache
}

func NewEventsHandler(repo EventsReader) *EventsHandler {
	return &EventsHandler{repo: repo}
}

func NewEventsHandlerWithCache(repo EventsReader, c *cache.Cache) *EventsHandler {
	return &EventsHandler{
		repo:  repo,
		cache: c,
	}
}

// ListEvents returns every event, newest first. No pagination: the
// listing is small and the payload is cached briefly in-process.
func (h *EventsHandler) ListEvents(ctx *gin.Context) {
	if h.cache != nil {
		if cached, ok := h.cache.Get(listCacheKey); ok {
			RespondJSONWithETag(ctx, http.StatusOK, cached)
			return
		}
	}

	events, err := h.repo.List(ctx.Request.Context())

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "list events failed", "err", err)
		RespondInternal(ctx, "Event fetching failed")

		return
	}

	payload := gin.H{
		"message": "Events fetched successfully",
		"events":  events,
	}

	if h.cache != nil {
		h.cache.Set(listCacheKey, payload)
	}

	RespondJSONWithETag(ctx, http.StatusOK, payload)
}

// GetEventBySlug resolves the public identifier, accepting either the
// slug or the raw record id.
func (h *EventsHandler) GetEventBySlug(ctx *gin.Context) {
	key := ctx.Param("slug")

	e, err := h.repo.GetBySlugOrID(ctx.Request.Context(), key)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "get event failed", "key", key, "err", err)
		RespondInternal(ctx, "Event fetching failed")

		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"message": "Event fetched successfully",
		"event":   e,
	})
}
