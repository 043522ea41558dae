package handler

import (
	"net/http"
	"strings"

	"github.com/oapi-codegen/nullable"

	"github.com/pkordes/snaptrip/backend/internal/session"
)

// AddJournalEntryRequest is the body of POST /trips/{tripID}/journal.
// Photo is a base64 JPEG.
type AddJournalEntryRequest struct {
	Text  string `json:"text"`
	Photo []byte `json:"photo,omitempty"`
}

// UpdateJournalEntryRequest is the body of PATCH
// /trips/{tripID}/journal/{entryID}. An absent field is left unchanged; an
// explicit null clears it.
type UpdateJournalEntryRequest struct {
	Text  nullable.Nullable[string] `json:"text,omitempty"`
	Photo nullable.Nullable[[]byte] `json:"photo,omitempty"`
}

// ListJournal handles GET /trips/{tripID}/journal.
func (s *Server) ListJournal(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	tripID, err := stringParam(r, "tripID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	entries, err := sess.LoadJournal(r.Context(), tripID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, journalListToResponse(entries))
}

// AddJournalEntry handles POST /trips/{tripID}/journal.
// Responds 201 when the entry reached the remote store and 202 when it was
// only cached locally.
func (s *Server) AddJournalEntry(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	tripID, err := stringParam(r, "tripID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var body AddJournalEntryRequest
	if !decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" && len(body.Photo) == 0 {
		badRequest(w, "text or photo is required")
		return
	}

	res, err := sess.AddJournalEntry(r.Context(), tripID, body.Text, body.Photo)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if res.Offline {
		status = http.StatusAccepted
	}
	writeJSON(w, status, saveResultToResponse(res))
}

// UpdateJournalEntry handles PATCH /trips/{tripID}/journal/{entryID}.
func (s *Server) UpdateJournalEntry(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	tripID, err := stringParam(r, "tripID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	entryID, err := stringParam(r, "entryID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var body UpdateJournalEntryRequest
	if !decode(w, r, &body) {
		return
	}

	patch, err := patchFromRequest(body)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	res, err := sess.UpdateJournalEntry(r.Context(), tripID, entryID, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Offline {
		status = http.StatusAccepted
	}
	writeJSON(w, status, saveResultToResponse(res))
}

func patchFromRequest(body UpdateJournalEntryRequest) (session.JournalPatch, error) {
	var patch session.JournalPatch
	switch {
	case body.Text.IsNull():
		empty := ""
		patch.Text = &empty
	case body.Text.IsSpecified():
		text, err := body.Text.Get()
		if err != nil {
			return patch, err
		}
		patch.Text = &text
	}
	switch {
	case body.Photo.IsNull():
		patch.ClearPhoto = true
	case body.Photo.IsSpecified():
		photo, err := body.Photo.Get()
		if err != nil {
			return patch, err
		}
		if len(photo) == 0 {
			patch.ClearPhoto = true
		} else {
			patch.Photo = photo
		}
	}
	return patch, nil
}
