package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/snaptrip/backend/internal/domain"
)

const upsertTripSQL = `
	INSERT INTO cached_trips
		(id, user_id, name, itinerary, weather, cover_photo, lifecycle_status, steps, generation_status, error, cached_at)
	VALUES
		(@id, @user_id, @name, @itinerary, @weather, @cover_photo, @lifecycle_status, @steps, @generation_status, @error, now())
	ON CONFLICT (id) DO UPDATE SET
		user_id           = EXCLUDED.user_id,
		name              = EXCLUDED.name,
		itinerary         = EXCLUDED.itinerary,
		weather           = EXCLUDED.weather,
		cover_photo       = EXCLUDED.cover_photo,
		lifecycle_status  = EXCLUDED.lifecycle_status,
		steps             = EXCLUDED.steps,
		generation_status = EXCLUDED.generation_status,
		error             = EXCLUDED.error,
		cached_at         = now()`

const tripColumns = `id, name, itinerary, weather, cover_photo, lifecycle_status, steps, generation_status, error`

// UpsertTrip inserts or replaces a single trip row.
func (c *pgCache) UpsertTrip(ctx context.Context, userID string, trip domain.Trip) error {
	args, err := tripArgs(userID, trip)
	if err != nil {
		return fmt.Errorf("repo.TripCache.UpsertTrip: %w", err)
	}
	if _, err := c.db.Exec(ctx, upsertTripSQL, args); err != nil {
		return fmt.Errorf("repo.TripCache.UpsertTrip: %w", err)
	}
	return nil
}

// UpsertTrips sends one upsert per trip in a single batch round-trip.
func (c *pgCache) UpsertTrips(ctx context.Context, userID string, trips []domain.Trip) error {
	if len(trips) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range trips {
		args, err := tripArgs(userID, t)
		if err != nil {
			return fmt.Errorf("repo.TripCache.UpsertTrips: %w", err)
		}
		batch.Queue(upsertTripSQL, args)
	}

	br := c.db.SendBatch(ctx, batch)
	defer br.Close()
	for range trips {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("repo.TripCache.UpsertTrips: %w", err)
		}
	}
	return nil
}

// ListTrips returns every cached trip of the user ordered by id.
func (c *pgCache) ListTrips(ctx context.Context, userID string) ([]domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM cached_trips WHERE user_id = @user_id ORDER BY id`

	rows, err := c.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripCache.ListTrips: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripCache.ListTrips: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripCache.ListTrips: rows: %w", err)
	}
	return trips, nil
}

// GetTrip retrieves one cached trip by id, scoped to the user.
func (c *pgCache) GetTrip(ctx context.Context, userID, tripID string) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM cached_trips WHERE id = @id AND user_id = @user_id`

	row := c.db.QueryRow(ctx, q, pgx.NamedArgs{"id": tripID, "user_id": userID})
	t, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripCache.GetTrip: %w", err)
	}
	return t, nil
}

// DeleteTrip removes a cached trip by id.
func (c *pgCache) DeleteTrip(ctx context.Context, tripID string) error {
	const q = `DELETE FROM cached_trips WHERE id = @id`

	if _, err := c.db.Exec(ctx, q, pgx.NamedArgs{"id": tripID}); err != nil {
		return fmt.Errorf("repo.TripCache.DeleteTrip: %w", err)
	}
	return nil
}

// cachedDay and cachedPlace are the JSONB shapes of the itinerary column.
type cachedDay struct {
	Day    int           `json:"day"`
	Places []cachedPlace `json:"places"`
}

type cachedPlace struct {
	Name           string   `json:"name"`
	Address        string   `json:"address,omitempty"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	Rating         *float64 `json:"rating,omitempty"`
	PhotoReference string   `json:"photo_reference,omitempty"`
}

type cachedWeather struct {
	Temp        int    `json:"temp"`
	Description string `json:"description"`
	IconCode    string `json:"icon_code"`
}

// tripArgs maps a domain.Trip onto the named parameters of upsertTripSQL.
func tripArgs(userID string, t domain.Trip) (pgx.NamedArgs, error) {
	id, ok := t.Ref.ID()
	if !ok {
		return nil, fmt.Errorf("%w: trip has no id", domain.ErrValidation)
	}

	days := make([]cachedDay, len(t.Itinerary))
	for i, d := range t.Itinerary {
		places := make([]cachedPlace, len(d.Places))
		for j, p := range d.Places {
			places[j] = cachedPlace(p)
		}
		days[i] = cachedDay{Day: d.Number, Places: places}
	}
	itinerary, err := json.Marshal(days)
	if err != nil {
		return nil, fmt.Errorf("encode itinerary: %w", err)
	}

	var weather []byte // nil becomes NULL
	if t.Weather != nil {
		weather, err = json.Marshal(cachedWeather(*t.Weather))
		if err != nil {
			return nil, fmt.Errorf("encode weather: %w", err)
		}
	}

	return pgx.NamedArgs{
		"id":                id,
		"user_id":           userID,
		"name":              t.Name,
		"itinerary":         itinerary,
		"weather":           weather,
		"cover_photo":       string(t.CoverPhoto),
		"lifecycle_status":  string(t.Status),
		"steps":             t.Steps,
		"generation_status": t.GenerationStatus,
		"error":             t.Error,
	}, nil
}

// scanTrip maps a single database row into a domain.Trip.
// It decodes the JSONB columns and migrates legacy status spellings.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        string
		itinerary []byte
		weather   []byte
		cover     string
		status    string
	)

	err := s.Scan(&id, &t.Name, &itinerary, &weather, &cover, &status, &t.Steps, &t.GenerationStatus, &t.Error)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.Ref = domain.Persisted(id)
	t.CoverPhoto = domain.PhotoRef(cover)
	if t.Status, err = domain.ParseStatus(status); err != nil {
		return domain.Trip{}, err
	}

	var days []cachedDay
	if len(itinerary) > 0 {
		if err := json.Unmarshal(itinerary, &days); err != nil {
			return domain.Trip{}, fmt.Errorf("decode itinerary: %w", err)
		}
	}
	t.Itinerary = make([]domain.Day, len(days))
	for i, d := range days {
		places := make([]domain.Place, len(d.Places))
		for j, p := range d.Places {
			places[j] = domain.Place(p)
		}
		t.Itinerary[i] = domain.Day{Number: d.Day, Places: places}
	}

	if len(weather) > 0 {
		var w cachedWeather
		if err := json.Unmarshal(weather, &w); err != nil {
			return domain.Trip{}, fmt.Errorf("decode weather: %w", err)
		}
		dw := domain.Weather(w)
		t.Weather = &dw
	}

	return t, nil
}
