package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/snaptrip/backend/internal/domain"
)

func TestRef(t *testing.T) {
	assert.False(t, domain.Unsaved().IsPersisted())
	assert.False(t, domain.Persisted("   ").IsPersisted(), "blank id is unsaved")

	r := domain.Persisted(" abc ")
	id, ok := r.ID()
	assert.True(t, ok)
	assert.Equal(t, "abc", id)
	assert.True(t, r.Is("abc"))
	assert.False(t, r.Is("abd"))
	assert.False(t, domain.Unsaved().Is(""), "unsaved never matches")
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Status
	}{
		{"", domain.StatusDraft},
		{"DRAFT", domain.StatusDraft},
		{"saved", domain.StatusSaved},
		{" ACTIVE ", domain.StatusActive},
		{"FINISHED", domain.StatusFinished},
		{"COMPLETED", domain.StatusFinished},
	}
	for _, tc := range tests {
		got, err := domain.ParseStatus(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := domain.ParseStatus("ARCHIVED")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	assert.True(t, domain.StatusFinished.IsTerminal())
	assert.False(t, domain.StatusActive.IsTerminal())
}

func TestPhotoRef(t *testing.T) {
	assert.True(t, domain.PhotoRef(" ").IsZero())
	assert.True(t, domain.PhotoRef("https://storage.googleapis.com/b/journal/t1/1.jpg").IsURL())
	assert.True(t, domain.PhotoRef("gs://b/covers/1.jpg").IsURL())
	assert.True(t, domain.PhotoRef("/9j/4AAQSkZJRg==").IsInline())
	assert.False(t, domain.PhotoRef("").IsInline())
}

func TestSortJournal_newestFirstThenID(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	entries := []domain.JournalEntry{
		{Ref: domain.Persisted("b"), Date: day},
		{Ref: domain.Persisted("c"), Date: day.Add(time.Hour)},
		{Ref: domain.Persisted("a"), Date: day},
	}

	domain.SortJournal(entries)

	var ids []string
	for _, e := range entries {
		ids = append(ids, e.Ref.String())
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestTripClone_isDeep(t *testing.T) {
	r := 4.5
	orig := domain.Trip{
		Ref:       domain.Persisted("t1"),
		Itinerary: []domain.Day{{Number: 1, Places: []domain.Place{{Name: "A", Rating: &r}, {Name: "B"}}}},
		Weather:   &domain.Weather{Temp: 20},
	}

	cp := orig.Clone()
	cp.Itinerary[0].Places[0].Name = "Z"
	*cp.Itinerary[0].Places[0].Rating = 1
	cp.Weather.Temp = 5

	assert.Equal(t, "A", orig.Itinerary[0].Places[0].Name)
	assert.Equal(t, 4.5, *orig.Itinerary[0].Places[0].Rating)
	assert.Equal(t, 20, orig.Weather.Temp)
	assert.Equal(t, 2, orig.PlaceCount())
	assert.NotNil(t, domain.CloneDays(nil))
}
