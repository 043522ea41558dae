// Package domain contains the core data types for the SnapTrip backend.
// This package has zero external dependencies and is imported by every other
// internal package (repo, remote, service, session, handler).
package domain

// Trip is a user's planned journey with an ordered day-by-day itinerary.
// A trip is the top-level aggregate; journal entries belong to a trip.
type Trip struct {
	Ref        Ref
	Name       string
	Itinerary  []Day // never nil once normalized; order is visitation order
	Weather    *Weather
	CoverPhoto PhotoRef
	Status     Status
	Steps      int // cumulative steps folded in when the trip ends

	// GenerationStatus is the raw status reported by the itinerary backend
	// ("success" or an error marker) and Error its message, if any.
	GenerationStatus string
	Error            string
}

// Day is one day of an itinerary. Number is 1-based and stable once assigned.
type Day struct {
	Number int
	Places []Place
}

// Place is a single point of interest. Places are values: itinerary edits
// reorder or remove them but never change their fields.
type Place struct {
	Name           string
	Address        string
	Lat            float64
	Lng            float64
	Rating         *float64
	PhotoReference string
}

// Weather is a point-in-time weather snapshot for a trip.
type Weather struct {
	Temp        int
	Description string
	IconCode    string
}

// TripRequest carries the user's input to the itinerary generation backend.
type TripRequest struct {
	Name   string
	Days   int
	Hotel  string
	Places []string
}

// ID returns the persisted id of the trip, or "" when unsaved.
func (t Trip) ID() string { return t.Ref.String() }

// PlaceCount returns the number of places across all days.
func (t Trip) PlaceCount() int {
	n := 0
	for _, d := range t.Itinerary {
		n += len(d.Places)
	}
	return n
}

// Clone returns a deep copy of t so callers can mutate it freely.
func (t Trip) Clone() Trip {
	cp := t
	cp.Itinerary = CloneDays(t.Itinerary)
	if t.Weather != nil {
		w := *t.Weather
		cp.Weather = &w
	}
	return cp
}

// CloneDays deep-copies an itinerary. The result is never nil.
func CloneDays(days []Day) []Day {
	out := make([]Day, len(days))
	for i, d := range days {
		out[i] = Day{Number: d.Number, Places: ClonePlaces(d.Places)}
	}
	return out
}

// ClonePlaces copies a place list. The result is never nil.
func ClonePlaces(places []Place) []Place {
	out := make([]Place, len(places))
	for i, p := range places {
		out[i] = p
		if p.Rating != nil {
			r := *p.Rating
			out[i].Rating = &r
		}
	}
	return out
}
