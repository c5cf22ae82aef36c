package media

import "context"

// Uploader sends one image blob to external object storage and returns
// a durable, publicly fetchable URL. A single failure is surfaced as-is
// to the caller; no retries happen at this layer.
type Uploader interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

// UploadError wraps the storage service's failure so the handler can
// log the cause without ever echoing it to the caller.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return "media upload failed: " + e.Err.Error()
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
