package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/service"
	"github.com/pkordes/snaptrip/backend/internal/session"
)

// Trip is the wire form of domain.Trip.
type Trip struct {
	ID         string   `json:"id,omitempty"`
	Name       string   `json:"trip_name"`
	Status     string   `json:"status"`
	Itinerary  []Day    `json:"itinerary"`
	Weather    *Weather `json:"weather,omitempty"`
	CoverPhoto string   `json:"cover_photo,omitempty"`
	Steps      int      `json:"steps"`
}

type Day struct {
	Day    int     `json:"day"`
	Places []Place `json:"places"`
}

type Place struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	Rating         *float64 `json:"rating,omitempty"`
	PhotoReference string   `json:"photo_reference,omitempty"`
}

type Weather struct {
	Temp        int    `json:"temp"`
	Description string `json:"description"`
	IconCode    string `json:"icon_code"`
}

// JournalEntry is the wire form of domain.JournalEntry. Photo is either a
// URL or, for legacy entries, inline base64 (PhotoInline set).
type JournalEntry struct {
	ID          string    `json:"id"`
	TripID      string    `json:"trip_id"`
	Text        string    `json:"text"`
	Photo       string    `json:"photo,omitempty"`
	PhotoInline bool      `json:"photo_inline,omitempty"`
	Date        time.Time `json:"date"`
}

// SaveJournalResponse reports a journal save; Offline means the entry only
// reached the local cache.
type SaveJournalResponse struct {
	Entry   JournalEntry `json:"entry"`
	Offline bool         `json:"offline"`
}

// SessionState is the wire form of session.State.
type SessionState struct {
	Loading       bool           `json:"loading"`
	Message       string         `json:"message,omitempty"`
	Current       *Trip          `json:"current,omitempty"`
	Saved         bool           `json:"saved"`
	Trips         []Trip         `json:"trips"`
	Journal       []JournalEntry `json:"journal"`
	JournalTripID string         `json:"journal_trip_id,omitempty"`
	Steps         int            `json:"steps"`
	Weather       *Weather       `json:"weather,omitempty"`
	Version       uint64         `json:"version"`
}

// --- mapping helpers --------------------------------------------------------

func tripToResponse(t domain.Trip) Trip {
	resp := Trip{
		ID:         t.ID(),
		Name:       t.Name,
		Status:     string(t.Status),
		Itinerary:  make([]Day, len(t.Itinerary)),
		Weather:    weatherToResponse(t.Weather),
		CoverPhoto: string(t.CoverPhoto),
		Steps:      t.Steps,
	}
	for i, d := range t.Itinerary {
		day := Day{Day: d.Number, Places: make([]Place, len(d.Places))}
		for j, p := range d.Places {
			day.Places[j] = placeToResponse(p)
		}
		resp.Itinerary[i] = day
	}
	return resp
}

func tripsToResponse(trips []domain.Trip) []Trip {
	out := make([]Trip, len(trips))
	for i, t := range trips {
		out[i] = tripToResponse(t)
	}
	return out
}

func placeToResponse(p domain.Place) Place {
	return Place{
		Name:           p.Name,
		Address:        p.Address,
		Lat:            p.Lat,
		Lng:            p.Lng,
		Rating:         p.Rating,
		PhotoReference: p.PhotoReference,
	}
}

func placeFromRequest(p Place) domain.Place {
	return domain.Place{
		Name:           p.Name,
		Address:        p.Address,
		Lat:            p.Lat,
		Lng:            p.Lng,
		Rating:         p.Rating,
		PhotoReference: p.PhotoReference,
	}
}

func weatherToResponse(w *domain.Weather) *Weather {
	if w == nil {
		return nil
	}
	return &Weather{Temp: w.Temp, Description: w.Description, IconCode: w.IconCode}
}

func journalToResponse(e domain.JournalEntry) JournalEntry {
	return JournalEntry{
		ID:          e.Ref.String(),
		TripID:      e.TripID,
		Text:        e.Text,
		Photo:       string(e.Photo),
		PhotoInline: e.Photo.IsInline(),
		Date:        e.Date.UTC(),
	}
}

func journalListToResponse(entries []domain.JournalEntry) []JournalEntry {
	out := make([]JournalEntry, len(entries))
	for i, e := range entries {
		out[i] = journalToResponse(e)
	}
	return out
}

func saveResultToResponse(res service.SaveResult) SaveJournalResponse {
	return SaveJournalResponse{Entry: journalToResponse(res.Entry), Offline: res.Offline}
}

func stateToResponse(st session.State) SessionState {
	resp := SessionState{
		Loading:       st.Loading,
		Message:       st.Message,
		Saved:         st.Saved,
		Trips:         tripsToResponse(st.Trips),
		Journal:       journalListToResponse(st.Journal),
		JournalTripID: st.JournalTripID,
		Steps:         st.Steps,
		Weather:       weatherToResponse(st.Weather),
		Version:       st.Version,
	}
	if st.Current != nil {
		cur := tripToResponse(*st.Current)
		resp.Current = &cur
	}
	return resp
}

// intParam binds the integer path parameter name with the runtime's
// simple-style binder.
func intParam(r *http.Request, name string) (int, error) {
	var v int
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	return v, err
}

// stringParam binds a required string path parameter.
func stringParam(r *http.Request, name string) (string, error) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	return v, err
}
