package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// All error bodies carry a client-safe message plus the request id so
// callers can quote it when reporting a problem. Infrastructure causes
// are logged server-side and never echoed here.

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, message string, details interface{}) {
	body := gin.H{
		"message": message,
	}

	if id := requestIDFrom(ctx); id != "" {
		body["requestId"] = id
	}

	if details != nil {
		body["details"] = details
	}

	ctx.JSON(status, body)
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message, nil)
}

// RespondRateLimited sets the Retry-After hint alongside the 429.
func RespondRateLimited(ctx *gin.Context, retryAfter time.Duration, message string) {
	ctx.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	RespondError(ctx, http.StatusTooManyRequests, message, nil)
}
