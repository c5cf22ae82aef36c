package submission

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/devevent/api/internal/domain/event"
	"github.com/go-playground/validator/v10"
)

const (
	// MaxImageBytes caps the attached image at 5 MiB.
	MaxImageBytes int64 = 5 << 20

	// honeypotField is rendered invisible in the form; humans leave it
	// empty, indiscriminate bots fill it.
	honeypotField = "company"

	imageField = "image"
)

// Rejection codes, one per way a submission can fail validation.
const (
	CodeForbiddenOrigin  = "forbidden_origin"
	CodeBotSuspected     = "bot_suspected"
	CodeMalformedRequest = "malformed_request"
	CodeMalformedField   = "malformed_structured_field"
	CodeMissingImage     = "missing_image"
	CodeInvalidImageType = "invalid_image_type"
	CodeImageTooLarge    = "image_too_large"
)

// Rejection is a client-input failure: a stable code, the HTTP status
// to answer with, a message safe to show the caller, and the offending
// field where one applies.
type Rejection struct {
	Code    string `json:"code"`
	Status  int    `json:"-"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (r *Rejection) Error() string {
	if r.Field != "" {
		return r.Code + ": " + r.Field
	}
	return r.Code
}

type Options struct {
	// ExpectedOrigin is compared against an explicit Origin header.
	// Empty disables the check.
	ExpectedOrigin string

	// MaxMemoryBytes bounds the in-memory portion of multipart parsing.
	MaxMemoryBytes int64
}

var validate = validator.New()

// CheckOrigin is the first gate of the pipeline: an explicit Origin
// header that differs from the expected one is rejected. An absent
// header passes, since not all clients send one.
func CheckOrigin(r *http.Request, expectedOrigin string) *Rejection {
	origin := r.Header.Get("Origin")

	if origin == "" || expectedOrigin == "" || origin == expectedOrigin {
		return nil
	}

	return &Rejection{
		Code:    CodeForbiddenOrigin,
		Status:  http.StatusForbidden,
		Message: "Forbidden: invalid origin",
	}
}

// Validate runs the ordered checks over the multipart body and returns
// the normalized submission on success. It never touches the database
// or the network; failures come back as *Rejection.
func Validate(r *http.Request, opts Options) (event.Submission, error) {
	maxMemory := opts.MaxMemoryBytes
	if maxMemory <= 0 {
		maxMemory = MaxImageBytes
	}

	err := r.ParseMultipartForm(maxMemory)

	if err != nil {
		return event.Submission{}, &Rejection{
			Code:    CodeMalformedRequest,
			Status:  http.StatusBadRequest,
			Message: "Invalid form data",
		}
	}

	// honeypot: any non-whitespace value means a bot filled the form
	if strings.TrimSpace(r.FormValue(honeypotField)) != "" {
		return event.Submission{}, &Rejection{
			Code:    CodeBotSuspected,
			Status:  http.StatusBadRequest,
			Message: "Bad Request",
		}
	}

	sub := event.Submission{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Overview:    strings.TrimSpace(r.FormValue("overview")),
		Venue:       strings.TrimSpace(r.FormValue("venue")),
		Location:    strings.TrimSpace(r.FormValue("location")),
		Date:        strings.TrimSpace(r.FormValue("date")),
		Time:        strings.TrimSpace(r.FormValue("time")),
		Mode:        strings.TrimSpace(r.FormValue("mode")),
		Audience:    strings.TrimSpace(r.FormValue("audience")),
		Organizer:   strings.TrimSpace(r.FormValue("organizer")),
	}

	err = validate.Struct(sub)

	if err != nil {
		field := ""

		var verrs validator.ValidationErrors

		if errors.As(err, &verrs) && len(verrs) > 0 {
			field = strings.ToLower(verrs[0].Field())
		}

		return event.Submission{}, &Rejection{
			Code:    CodeMalformedRequest,
			Status:  http.StatusBadRequest,
			Message: "Missing or invalid field",
			Field:   field,
		}
	}

	sub.Tags, err = parseStringArray(r.FormValue("tags"))

	if err != nil {
		return event.Submission{}, malformedField("tags")
	}

	sub.Agenda, err = parseStringArray(r.FormValue("agenda"))

	if err != nil {
		return event.Submission{}, malformedField("agenda")
	}

	sub.ImageData, sub.ImageType, err = extractImage(r)

	if err != nil {
		return event.Submission{}, err
	}

	return sub, nil
}

func malformedField(field string) *Rejection {
	return &Rejection{
		Code:    CodeMalformedField,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("Invalid %s: expected a JSON array of strings", field),
		Field:   field,
	}
}

// parseStringArray decodes a JSON-encoded array of strings. Absent or
// empty input normalizes to an empty array so persisted values are
// always well-formed arrays.
func parseStringArray(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}

	var out []string

	err := json.Unmarshal([]byte(raw), &out)

	if err != nil {
		return nil, err
	}

	if out == nil {
		out = []string{}
	}

	return out, nil
}

func extractImage(r *http.Request) ([]byte, string, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[imageField]) == 0 {
		return nil, "", &Rejection{
			Code:    CodeMissingImage,
			Status:  http.StatusBadRequest,
			Message: "Image file is required",
		}
	}

	fh := r.MultipartForm.File[imageField][0]

	contentType := fh.Header.Get("Content-Type")

	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", &Rejection{
			Code:    CodeInvalidImageType,
			Status:  http.StatusBadRequest,
			Message: "Invalid image type",
		}
	}

	if fh.Size > MaxImageBytes {
		return nil, "", &Rejection{
			Code:    CodeImageTooLarge,
			Status:  http.StatusBadRequest,
			Message: "Image too large. Max 5MB.",
		}
	}

	f, err := fh.Open()

	if err != nil {
		return nil, "", &Rejection{
			Code:    CodeMalformedRequest,
			Status:  http.StatusBadRequest,
			Message: "Could not read image file",
		}
	}

	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))

	if err != nil {
		return nil, "", &Rejection{
			Code:    CodeMalformedRequest,
			Status:  http.StatusBadRequest,
			Message: "Could not read image file",
		}
	}

	// the reported size can be absent or wrong; re-check what was read
	if int64(len(data)) > MaxImageBytes {
		return nil, "", &Rejection{
			Code:    CodeImageTooLarge,
			Status:  http.StatusBadRequest,
			Message: "Image too large. Max 5MB.",
		}
	}

	return data, contentType, nil
}
