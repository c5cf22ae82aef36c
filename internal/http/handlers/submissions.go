package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/devevent/api/internal/cache"
	"github.com/devevent/api/internal/domain/event"
	"github.com/devevent/api/internal/media"
	"github.com/devevent/api/internal/ratelimit"
	"github.com/devevent/api/internal/submission"
	"github.com/gin-gonic/gin"
)

// EventCreator is the write side of the repository.
type EventCreator interface {
	Create(ctx context.Context, sub event.Submission, imageURL string) (event.Event, error)
}

// CreationLogger records the rate-limit fact for a successful creation.
type CreationLogger interface {
	Log(ctx context.Context, clientID string) error
}

// SubmissionsHandler runs the whole pipeline for one public submission:
// origin check, rate-limit check, form validation, image upload, record
// persistence, rate-limit log. Each request is an isolated pass; all
// coordination lives in the backing store.
type SubmissionsHandler struct {
	repo     EventCreator
	logs     CreationLogger
	limiter  ratelimit.Limiter
	uploader media.Uploader
	opts     submission.Options
	cache    *cache.Cache
}

func NewSubmissionsHandler(
	repo EventCreator,
	logs CreationLogger,
	limiter ratelimit.Limiter,
	uploader media.Uploader,
	opts submission.Options,
	c *cache.Cache,
) *SubmissionsHandler {
	return &SubmissionsHandler{
		repo:     repo,
		logs:     logs,
		limiter:  limiter,
		uploader: uploader,
		opts:     opts,
		cache:    c,
	}
}

func (h *SubmissionsHandler) CreateEvent(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()

	if rej := submission.CheckOrigin(ctx.Request, h.opts.ExpectedOrigin); rej != nil {
		RespondError(ctx, rej.Status, rej.Message, nil)
		return
	}

	clientID := ratelimit.ClientID(ctx.Request)

	dec, err := h.limiter.Allow(reqCtx, clientID, time.Now())

	if err != nil {
		slog.Default().ErrorContext(reqCtx, "rate limit check failed", "client_id", clientID, "err", err)
		RespondInternal(ctx, "Event creation failed")

		return
	}

	if !dec.Permit {
		RespondRateLimited(ctx, dec.RetryAfter, "Rate limit exceeded: you can create only one event per hour.")
		return
	}

	sub, err := submission.Validate(ctx.Request, h.opts)

	if err != nil {
		h.release(reqCtx, clientID)

		var rej *submission.Rejection

		if errors.As(err, &rej) {
			RespondError(ctx, rej.Status, rej.Message, rejectionDetails(rej))
			return
		}

		RespondBadRequest(ctx, "Invalid form data", nil)

		return
	}

	imageURL, err := h.uploader.Upload(reqCtx, sub.ImageData)

	if err != nil {
		// no record exists yet, so the client may retry immediately
		h.release(reqCtx, clientID)

		slog.Default().ErrorContext(reqCtx, "image upload failed", "client_id", clientID, "err", err)
		RespondInternal(ctx, "Event creation failed")

		return
	}

	created, err := h.repo.Create(reqCtx, sub, imageURL)

	if err != nil {
		// the uploaded image is now orphaned; accepted, no rollback
		h.release(reqCtx, clientID)

		slog.Default().ErrorContext(reqCtx, "event persist failed", "client_id", clientID, "err", err)
		RespondInternal(ctx, "Event creation failed")

		return
	}

	if h.cache != nil {
		h.cache.Delete(listCacheKey)
	}

	// log after the event itself persisted; a failure here only means
	// this one client can bypass the limiter once, so the request
	// still reports success
	if err := h.logs.Log(reqCtx, clientID); err != nil {
		slog.Default().WarnContext(reqCtx, "rate limit log failed", "client_id", clientID, "err", err)
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Event created successfully",
		"event":   created,
	})
}

// release hands a reserved rate-limit slot back on limiters that take
// the slot during Allow; a rejected or failed submission must not
// consume it.
func (h *SubmissionsHandler) release(ctx context.Context, clientID string) {
	r, ok := h.limiter.(ratelimit.Releaser)

	if !ok {
		return
	}

	if err := r.Release(ctx, clientID); err != nil {
		slog.Default().WarnContext(ctx, "rate limit release failed", "client_id", clientID, "err", err)
	}
}

func rejectionDetails(rej *submission.Rejection) interface{} {
	if rej.Field == "" {
		return nil
	}

	return gin.H{"field": rej.Field}
}
