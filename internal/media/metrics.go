package media

import (
	"context"

	"github.com/devevent/api/internal/observability"
)

// instrumentedUploader records duration and outcome of each upload.
type instrumentedUploader struct {
	next Uploader
	prom *observability.Prom
}

func WithMetrics(next Uploader, prom *observability.Prom) Uploader {
	if prom == nil {
		return next
	}

	return &instrumentedUploader{
		next: next,
		prom: prom,
	}
}

func (u *instrumentedUploader) Upload(ctx context.Context, data []byte) (string, error) {
	var url string

	err := u.prom.ObserveUpload(func() error {
		var err error
		url, err = u.next.Upload(ctx, data)
		return err
	})

	return url, err
}
