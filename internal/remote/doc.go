package remote

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pkordes/snaptrip/backend/internal/domain"
)

// ErrInvalidDocument is returned when a stored document does not match the
// trip or journal schema.
var ErrInvalidDocument = errors.New("invalid document")

// Trip document field names.
const (
	fieldGenerationStatus = "status"
	fieldName             = "trip_name"
	fieldWeather          = "weather"
	fieldItinerary        = "itinerary"
	fieldError            = "error"
	fieldCoverPhoto       = "coverPhoto"
	fieldLifecycle        = "lifecycleStatus"
	fieldSteps            = "steps"
)

// Journal document field names. The photo field kept its historical name
// after photos moved to object storage.
const (
	fieldText  = "text"
	fieldPhoto = "photoBase64"
	fieldDate  = "date"
)

// EncodeTrip renders a trip as a document. The id is the document key and is
// not part of the body.
func EncodeTrip(t domain.Trip) map[string]any {
	days := make([]any, len(t.Itinerary))
	for i, d := range t.Itinerary {
		places := make([]any, len(d.Places))
		for j, p := range d.Places {
			place := map[string]any{
				"name":           p.Name,
				"lat":            p.Lat,
				"lng":            p.Lng,
				"address":        nilIfEmpty(p.Address),
				"photoReference": nilIfEmpty(p.PhotoReference),
				"rating":         nil,
			}
			if p.Rating != nil {
				place["rating"] = *p.Rating
			}
			places[j] = place
		}
		days[i] = map[string]any{"day": int64(d.Number), "places": places}
	}

	doc := map[string]any{
		fieldGenerationStatus: t.GenerationStatus,
		fieldName:             t.Name,
		fieldItinerary:        days,
		fieldError:            nilIfEmpty(t.Error),
		fieldCoverPhoto:       nilIfEmpty(string(t.CoverPhoto)),
		fieldLifecycle:        string(orDraft(t.Status)),
		fieldSteps:            int64(t.Steps),
		fieldWeather:          nil,
	}
	if t.Weather != nil {
		doc[fieldWeather] = map[string]any{
			"temp":        int64(t.Weather.Temp),
			"description": t.Weather.Description,
			"icon_code":   t.Weather.IconCode,
		}
	}
	return doc
}

// DecodeTrip validates a trip document and maps it onto a domain.Trip.
// Missing optional fields take their zero values; a field of the wrong type
// is an error.
func DecodeTrip(id string, data map[string]any) (domain.Trip, error) {
	d := decoder{data: data}
	t := domain.Trip{
		Ref:              domain.Persisted(id),
		Name:             d.str(fieldName),
		GenerationStatus: d.str(fieldGenerationStatus),
		Error:            d.str(fieldError),
		CoverPhoto:       domain.PhotoRef(d.str(fieldCoverPhoto)),
		Steps:            int(d.integer(fieldSteps)),
		Itinerary:        []domain.Day{},
	}

	status, err := domain.ParseStatus(d.str(fieldLifecycle))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("%w: trip %s: %w", ErrInvalidDocument, id, err)
	}
	t.Status = status

	if w, ok := d.object(fieldWeather); ok {
		wd := decoder{data: w, path: fieldWeather}
		icon := wd.str("icon_code")
		if icon == "" {
			icon = wd.str("iconCode")
		}
		t.Weather = &domain.Weather{
			Temp:        int(wd.number("temp")),
			Description: wd.str("description"),
			IconCode:    icon,
		}
		d.absorb(wd)
	}

	for i, raw := range d.list(fieldItinerary) {
		dayPath := fmt.Sprintf("%s[%d]", fieldItinerary, i)
		m, ok := raw.(map[string]any)
		if !ok {
			d.fail(dayPath, "object", raw)
			continue
		}
		dd := decoder{data: m, path: dayPath}
		day := domain.Day{Number: int(dd.integer("day")), Places: []domain.Place{}}
		for j, rawPlace := range dd.list("places") {
			placePath := fmt.Sprintf("%s.places[%d]", dayPath, j)
			pm, ok := rawPlace.(map[string]any)
			if !ok {
				dd.fail(placePath, "object", rawPlace)
				continue
			}
			day.Places = append(day.Places, decodePlace(&dd, placePath, pm))
		}
		d.absorb(dd)
		t.Itinerary = append(t.Itinerary, day)
	}

	if d.err != nil {
		return domain.Trip{}, fmt.Errorf("%w: trip %s: %w", ErrInvalidDocument, id, d.err)
	}
	return t, nil
}

func decodePlace(parent *decoder, path string, m map[string]any) domain.Place {
	pd := decoder{data: m, path: path}
	ref := pd.str("photoReference")
	if ref == "" {
		ref = pd.str("photo_reference")
	}
	p := domain.Place{
		Name:           pd.str("name"),
		Address:        pd.str("address"),
		Lat:            pd.number("lat"),
		Lng:            pd.number("lng"),
		PhotoReference: ref,
	}
	if _, present := m["rating"]; present && m["rating"] != nil {
		r := pd.number("rating")
		p.Rating = &r
	}
	parent.absorb(pd)
	return p
}

// EncodeJournalEntry renders an entry as a document. Dates are stored as
// unix milliseconds.
func EncodeJournalEntry(e domain.JournalEntry) map[string]any {
	return map[string]any{
		fieldText:  e.Text,
		fieldPhoto: nilIfEmpty(string(e.Photo)),
		fieldDate:  e.Date.UnixMilli(),
	}
}

// DecodeJournalEntry validates a journal document. The owning trip id comes
// from the document path, never from the body.
func DecodeJournalEntry(id, tripID string, data map[string]any) (domain.JournalEntry, error) {
	d := decoder{data: data}
	e := domain.JournalEntry{
		Ref:    domain.Persisted(id),
		TripID: tripID,
		Text:   d.str(fieldText),
		Photo:  domain.PhotoRef(d.str(fieldPhoto)),
		Date:   d.timestamp(fieldDate),
	}
	if d.err != nil {
		return domain.JournalEntry{}, fmt.Errorf("%w: journal entry %s: %w", ErrInvalidDocument, id, d.err)
	}
	return e, nil
}

// decoder reads typed fields from a document map and remembers the first
// type mismatch.
type decoder struct {
	data map[string]any
	path string
	err  error
}

func (d *decoder) key(k string) string {
	if d.path == "" {
		return k
	}
	return d.path + "." + k
}

func (d *decoder) fail(field, want string, got any) {
	if d.err == nil {
		d.err = fmt.Errorf("field %s: want %s, got %T", field, want, got)
	}
}

func (d *decoder) absorb(child decoder) {
	if d.err == nil {
		d.err = child.err
	}
}

func (d *decoder) str(k string) string {
	v, ok := d.data[k]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail(d.key(k), "string", v)
		return ""
	}
	return s
}

func (d *decoder) number(k string) float64 {
	v, ok := d.data[k]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	d.fail(d.key(k), "number", v)
	return 0
}

// integer truncates toward zero, the same way a float temperature becomes
// a whole number of degrees.
func (d *decoder) integer(k string) int64 {
	f := d.number(k)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		d.fail(d.key(k), "finite number", f)
		return 0
	}
	return int64(f)
}

func (d *decoder) object(k string) (map[string]any, bool) {
	v, ok := d.data[k]
	if !ok || v == nil {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		d.fail(d.key(k), "object", v)
		return nil, false
	}
	return m, true
}

func (d *decoder) list(k string) []any {
	v, ok := d.data[k]
	if !ok || v == nil {
		return nil
	}
	l, ok := v.([]any)
	if !ok {
		d.fail(d.key(k), "array", v)
		return nil
	}
	return l
}

func (d *decoder) timestamp(k string) time.Time {
	v, ok := d.data[k]
	if !ok || v == nil {
		return time.Time{}
	}
	switch ts := v.(type) {
	case time.Time:
		return ts.UTC()
	case int64:
		return time.UnixMilli(ts).UTC()
	case float64:
		return time.UnixMilli(int64(ts)).UTC()
	}
	d.fail(d.key(k), "timestamp", v)
	return time.Time{}
}

func nilIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func orDraft(s domain.Status) domain.Status {
	if s == "" {
		return domain.StatusDraft
	}
	return s
}
