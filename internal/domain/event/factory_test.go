package event_test

import (
	"strings"
	"testing"

	"github.com/devevent/api/internal/domain/event"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "simple", title: "Go Meetup", want: "go-meetup"},
		{name: "already_lower", title: "devfest", want: "devfest"},
		{name: "punctuation_collapsed", title: "Go, Gophers & Friends!", want: "go-gophers-friends"},
		{name: "leading_trailing_trimmed", title: "  DevEvent 2026  ", want: "devevent-2026"},
		{name: "unicode_stripped", title: "Café événement", want: "caf-v-nement"},
		{name: "all_symbols_falls_back", title: "!!!", want: "event"},
		{name: "empty_falls_back", title: "", want: "event"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := event.Slugify(tt.title)

			if got != tt.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestDisambiguateSlug(t *testing.T) {
	a := event.DisambiguateSlug("go-meetup")
	b := event.DisambiguateSlug("go-meetup")

	if !strings.HasPrefix(a, "go-meetup-") {
		t.Fatalf("expected original slug as prefix, got %q", a)
	}

	if a == b {
		t.Fatalf("expected distinct disambiguations, got %q twice", a)
	}

	// still URL-safe
	for _, r := range a {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
			t.Fatalf("slug %q contains unsafe rune %q", a, r)
		}
	}
}

func TestNewFromSubmissionDefaults(t *testing.T) {
	e := event.NewFromSubmission(event.Submission{Title: "Go Meetup"}, "https://img.example/e.png")

	if e.ID == "" {
		t.Fatal("expected generated id")
	}

	if e.Slug != "go-meetup" {
		t.Fatalf("slug = %q, want go-meetup", e.Slug)
	}

	if e.Image != "https://img.example/e.png" {
		t.Fatalf("image = %q", e.Image)
	}

	if e.CreatedAt.IsZero() {
		t.Fatal("expected createdAt to be set")
	}

	// tags and agenda must always be arrays, never nil
	if e.Tags == nil || e.Agenda == nil {
		t.Fatal("expected non-nil tags and agenda")
	}
}
