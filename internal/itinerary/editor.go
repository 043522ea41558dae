// Package itinerary implements the in-memory editing operations on a trip's
// day list. Every function is pure: it copies the input, applies one edit and
// returns the new itinerary. Nothing here persists; the caller decides when
// to save.
package itinerary

import (
	"fmt"

	"github.com/pkordes/snaptrip/backend/internal/domain"
)

// RemovePlace deletes the place at index from the given day.
// An out-of-range place index leaves the itinerary unchanged.
func RemovePlace(days []domain.Day, day, index int) ([]domain.Day, error) {
	if err := checkDay(days, day); err != nil {
		return nil, fmt.Errorf("itinerary.RemovePlace: %w", err)
	}
	out := domain.CloneDays(days)
	places := out[day].Places
	if index < 0 || index >= len(places) {
		return out, nil
	}
	out[day].Places = append(places[:index:index], places[index+1:]...)
	return out, nil
}

// MovePlaceUp swaps the place at index with its predecessor.
// Index 0 is a no-op.
func MovePlaceUp(days []domain.Day, day, index int) ([]domain.Day, error) {
	if err := checkDay(days, day); err != nil {
		return nil, fmt.Errorf("itinerary.MovePlaceUp: %w", err)
	}
	out := domain.CloneDays(days)
	places := out[day].Places
	if index > 0 && index < len(places) {
		places[index], places[index-1] = places[index-1], places[index]
	}
	return out, nil
}

// MovePlaceDown swaps the place at index with its successor.
// The last index is a no-op.
func MovePlaceDown(days []domain.Day, day, index int) ([]domain.Day, error) {
	if err := checkDay(days, day); err != nil {
		return nil, fmt.Errorf("itinerary.MovePlaceDown: %w", err)
	}
	out := domain.CloneDays(days)
	places := out[day].Places
	if index >= 0 && index < len(places)-1 {
		places[index], places[index+1] = places[index+1], places[index]
	}
	return out, nil
}

// ReorderPlaces moves the place at from to position to within one day by a
// walk of adjacent swaps. All other places keep their relative order.
func ReorderPlaces(days []domain.Day, day, from, to int) ([]domain.Day, error) {
	if err := checkDay(days, day); err != nil {
		return nil, fmt.Errorf("itinerary.ReorderPlaces: %w", err)
	}
	n := len(days[day].Places)
	if err := checkIndex("from", from, n); err != nil {
		return nil, fmt.Errorf("itinerary.ReorderPlaces: %w", err)
	}
	if err := checkIndex("to", to, n); err != nil {
		return nil, fmt.Errorf("itinerary.ReorderPlaces: %w", err)
	}

	out := domain.CloneDays(days)
	places := out[day].Places
	if from < to {
		for i := from; i < to; i++ {
			places[i], places[i+1] = places[i+1], places[i]
		}
	} else {
		for i := from; i > to; i-- {
			places[i], places[i-1] = places[i-1], places[i]
		}
	}
	return out, nil
}

// MovePlaceToDay removes the place at index from fromDay and appends it to the
// end of toDay. Moving within the same day sends the place to the end.
func MovePlaceToDay(days []domain.Day, fromDay, index, toDay int) ([]domain.Day, error) {
	if err := checkDay(days, fromDay); err != nil {
		return nil, fmt.Errorf("itinerary.MovePlaceToDay: %w", err)
	}
	if err := checkDay(days, toDay); err != nil {
		return nil, fmt.Errorf("itinerary.MovePlaceToDay: %w", err)
	}
	if err := checkIndex("index", index, len(days[fromDay].Places)); err != nil {
		return nil, fmt.Errorf("itinerary.MovePlaceToDay: %w", err)
	}

	out := domain.CloneDays(days)
	src := out[fromDay].Places
	moved := src[index]
	out[fromDay].Places = append(src[:index:index], src[index+1:]...)
	out[toDay].Places = append(out[toDay].Places, moved)
	return out, nil
}

// AddPlace appends place to the last day of the itinerary.
// Returns domain.ErrNoDays if the itinerary is empty.
func AddPlace(days []domain.Day, place domain.Place) ([]domain.Day, error) {
	if len(days) == 0 {
		return nil, domain.ErrNoDays
	}
	out := domain.CloneDays(days)
	last := len(out) - 1
	out[last].Places = append(out[last].Places, domain.ClonePlaces([]domain.Place{place})...)
	return out, nil
}

func checkDay(days []domain.Day, day int) error {
	if day < 0 || day >= len(days) {
		return fmt.Errorf("%w: day index %d out of range (itinerary has %d days)", domain.ErrValidation, day, len(days))
	}
	return nil
}

func checkIndex(name string, i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %s index %d out of range (day has %d places)", domain.ErrValidation, name, i, n)
	}
	return nil
}
