package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/snaptrip/backend/internal/auth"
	"github.com/pkordes/snaptrip/backend/internal/domain"
	"github.com/pkordes/snaptrip/backend/internal/handler"
	"github.com/pkordes/snaptrip/backend/internal/service"
	"github.com/pkordes/snaptrip/backend/internal/session"
)

// mockSession is a test double for handler.TripSession.
// Set only the method fields your test needs; calling an unset one panics.
type mockSession struct {
	snapshot       func() session.State
	subscribe      func() (<-chan session.State, func())
	clearMessage   func()
	clearCurrent   func()
	loadTrips      func(ctx context.Context) ([]domain.Trip, error)
	selectTrip     func(ctx context.Context, id string) (domain.Trip, error)
	generate       func(ctx context.Context, req session.GenerateRequest) (domain.Trip, error)
	saveCurrent    func(ctx context.Context) (domain.Trip, error)
	deleteTrip     func(ctx context.Context, id string) error
	activate       func(ctx context.Context, id string) (domain.Trip, error)
	end            func(ctx context.Context, id string) (domain.Trip, error)
	removePlace    func(day, index int) (domain.Trip, error)
	moveUp         func(day, index int) (domain.Trip, error)
	moveDown       func(day, index int) (domain.Trip, error)
	reorder        func(day, from, to int) (domain.Trip, error)
	moveToDay      func(fromDay, index, toDay int) (domain.Trip, error)
	addPlace       func(ctx context.Context, p domain.Place) (domain.Trip, error)
	loadJournal    func(ctx context.Context, tripID string) ([]domain.JournalEntry, error)
	addJournal     func(ctx context.Context, tripID, text string, photo []byte) (service.SaveResult, error)
	updateJournal  func(ctx context.Context, tripID, entryID string, p session.JournalPatch) (service.SaveResult, error)
	recordSteps    func(ctx context.Context, total int) (int, error)
	refreshWeather func(ctx context.Context, lat, lon float64) (domain.Weather, error)
}

func (m *mockSession) Snapshot() session.State                   { return m.snapshot() }
func (m *mockSession) Subscribe() (<-chan session.State, func()) { return m.subscribe() }
func (m *mockSession) ClearMessage()                             { m.clearMessage() }
func (m *mockSession) ClearCurrent()                             { m.clearCurrent() }
func (m *mockSession) LoadTrips(ctx context.Context) ([]domain.Trip, error) {
	return m.loadTrips(ctx)
}
func (m *mockSession) Select(ctx context.Context, id string) (domain.Trip, error) {
	return m.selectTrip(ctx, id)
}
func (m *mockSession) Generate(ctx context.Context, req session.GenerateRequest) (domain.Trip, error) {
	return m.generate(ctx, req)
}
func (m *mockSession) SaveCurrent(ctx context.Context) (domain.Trip, error) {
	return m.saveCurrent(ctx)
}
func (m *mockSession) Delete(ctx context.Context, id string) error { return m.deleteTrip(ctx, id) }
func (m *mockSession) Activate(ctx context.Context, id string) (domain.Trip, error) {
	return m.activate(ctx, id)
}
func (m *mockSession) End(ctx context.Context, id string) (domain.Trip, error) {
	return m.end(ctx, id)
}
func (m *mockSession) RemovePlace(day, index int) (domain.Trip, error) {
	return m.removePlace(day, index)
}
func (m *mockSession) MovePlaceUp(day, index int) (domain.Trip, error) { return m.moveUp(day, index) }
func (m *mockSession) MovePlaceDown(day, index int) (domain.Trip, error) {
	return m.moveDown(day, index)
}
func (m *mockSession) ReorderPlaces(day, from, to int) (domain.Trip, error) {
	return m.reorder(day, from, to)
}
func (m *mockSession) MovePlaceToDay(fromDay, index, toDay int) (domain.Trip, error) {
	return m.moveToDay(fromDay, index, toDay)
}
func (m *mockSession) AddPlaceToActiveTrip(ctx context.Context, p domain.Place) (domain.Trip, error) {
	return m.addPlace(ctx, p)
}
func (m *mockSession) LoadJournal(ctx context.Context, tripID string) ([]domain.JournalEntry, error) {
	return m.loadJournal(ctx, tripID)
}
func (m *mockSession) AddJournalEntry(ctx context.Context, tripID, text string, photo []byte) (service.SaveResult, error) {
	return m.addJournal(ctx, tripID, text, photo)
}
func (m *mockSession) UpdateJournalEntry(ctx context.Context, tripID, entryID string, p session.JournalPatch) (service.SaveResult, error) {
	return m.updateJournal(ctx, tripID, entryID, p)
}
func (m *mockSession) RecordSteps(ctx context.Context, total int) (int, error) {
	return m.recordSteps(ctx, total)
}
func (m *mockSession) RefreshWeather(ctx context.Context, lat, lon float64) (domain.Weather, error) {
	return m.refreshWeather(ctx, lat, lon)
}

// compile-time check: mockSession must satisfy handler.TripSession.
var _ handler.TripSession = (*mockSession)(nil)

// ---- helpers ---------------------------------------------------------------

const testUser = "user-1"

// newHTTPHandler routes every request to sess as testUser, standing in for
// the auth middleware.
func newHTTPHandler(sess handler.TripSession, opts ...handler.Option) http.Handler {
	srv := handler.NewServer(func(userID string) (handler.TripSession, error) {
		if userID != testUser {
			return nil, domain.ErrUnauthenticated
		}
		return sess, nil
	}, nil, opts...)
	h := srv.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), testUser)))
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			rd = bytes.NewBufferString(s)
		} else {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			rd = bytes.NewBuffer(b)
		}
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func rating(v float64) *float64 { return &v }

func tripFixture(id string, status domain.Status) domain.Trip {
	return domain.Trip{
		Ref:    domain.Persisted(id),
		Name:   "Rome",
		Status: status,
		Itinerary: []domain.Day{
			{Number: 1, Places: []domain.Place{
				{Name: "Colosseum", Address: "Piazza del Colosseo", Lat: 41.89, Lng: 12.49, Rating: rating(4.7)},
				{Name: "Forum", Lat: 41.892, Lng: 12.485},
			}},
		},
		Weather: &domain.Weather{Temp: 24, Description: "Clear", IconCode: "01d"},
	}
}
