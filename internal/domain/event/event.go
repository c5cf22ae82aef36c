package event

import (
	"errors"
	"time"
)

// Event is one published event. Records are created once by the
// submission pipeline and never mutated afterwards.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Overview    string    `json:"overview"`
	Venue       string    `json:"venue"`
	Location    string    `json:"location"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Mode        string    `json:"mode"`
	Audience    string    `json:"audience"`
	Organizer   string    `json:"organizer"`
	Tags        []string  `json:"tags"`
	Agenda      []string  `json:"agenda"`
	Image       string    `json:"image"`
	Slug        string    `json:"slug"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Submission is the normalized output of the form validator: everything
// needed to upload the image and persist the record. The honeypot field
// is checked during validation and never carried here.
type Submission struct {
	Title       string `validate:"required"`
	Description string `validate:"required"`
	Overview    string `validate:"required"`
	Venue       string
	Location    string
	Date        string
	Time        string
	Mode        string `validate:"required,oneof=online offline hybrid"`
	Audience    string `validate:"required"`
	Organizer   string `validate:"required"`
	Tags        []string
	Agenda      []string

	// raw image bytes plus the declared content type from the file part
	ImageData []byte
	ImageType string
}

var ErrNotFound = errors.New("event not found")
