package event

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewFromSubmission builds the record the pipeline persists. The image
// URL must already point at uploaded storage: upload happens before
// persistence so no record ever exists without its image.
func NewFromSubmission(sub Submission, imageURL string) Event {
	tags := sub.Tags
	if tags == nil {
		tags = []string{}
	}

	agenda := sub.Agenda
	if agenda == nil {
		agenda = []string{}
	}

	return Event{
		ID:          uuid.NewString(),
		Title:       sub.Title,
		Description: sub.Description,
		Overview:    sub.Overview,
		Venue:       sub.Venue,
		Location:    sub.Location,
		Date:        sub.Date,
		Time:        sub.Time,
		Mode:        sub.Mode,
		Audience:    sub.Audience,
		Organizer:   sub.Organizer,
		Tags:        tags,
		Agenda:      agenda,
		Image:       imageURL,
		Slug:        Slugify(sub.Title),
		CreatedAt:   time.Now().UTC(),
	}
}

// Slugify derives the public URL path segment from a title: lowercased,
// runs of non-alphanumerics collapsed into single hyphens.
func Slugify(title string) string {
	var b strings.Builder

	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	s := strings.TrimSuffix(b.String(), "-")

	if s == "" {
		return "event"
	}

	return s
}

// DisambiguateSlug appends a short random fragment when a derived slug
// collides with an existing record.
func DisambiguateSlug(slug string) string {
	return slug + "-" + uuid.NewString()[:8]
}
