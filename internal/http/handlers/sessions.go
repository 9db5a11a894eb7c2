package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"imagestudio/internal/middleware"
	"imagestudio/internal/session"
)

type instructionRequest struct {
	Instruction string `json:"instruction"`
}

// SessionCreate registers a fresh editing session.
func (a *App) SessionCreate(w http.ResponseWriter, r *http.Request) {
	s := a.Sessions.Create()
	a.Log.Info().
		Str("session_id", s.ID()).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Msg("handlers: session created")
	a.json(w, http.StatusCreated, s.Snapshot())
}

// SessionGet returns the current snapshot; collaborators poll it while an
// attempt is processing.
func (a *App) SessionGet(w http.ResponseWriter, r *http.Request) {
	s, ok := a.lookup(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, s.Snapshot())
}

// SessionSelectImage accepts a multipart upload and makes it the session's
// input image. The declared content type must be an image; the bytes are not
// sniffed or transformed.
func (a *App) SessionSelectImage(w http.ResponseWriter, r *http.Request) {
	s, ok := a.lookup(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, r, http.StatusRequestEntityTooLarge, "upload_too_large", "upload_too_large")
			return
		}
		a.error(w, r, http.StatusBadRequest, "bad_request", "image_required")
		return
	}
	defer file.Close()

	declared := header.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		a.error(w, r, http.StatusUnsupportedMediaType, "unsupported_media_type", "not_an_image")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "image_required")
		return
	}

	key := a.Previews.Put(data, declared)
	s.SelectImage(session.InputImage{
		Data:     data,
		MIMEType: declared,
		Preview:  &previewHandle{store: a.Previews, key: key},
	})

	a.json(w, http.StatusOK, s.Snapshot())
}

// SessionSetInstruction stores the instruction text verbatim.
func (a *App) SessionSetInstruction(w http.ResponseWriter, r *http.Request) {
	s, ok := a.lookup(w, r)
	if !ok {
		return
	}

	var req instructionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid_payload")
		return
	}
	s.SetInstruction(req.Instruction)
	a.json(w, http.StatusOK, s.Snapshot())
}

// SessionSubmit starts a generation attempt. The session guard itself is
// silent; at the HTTP boundary a rejected submit maps to 409 so a remote
// collaborator is not left polling a phase that never changes.
func (a *App) SessionSubmit(w http.ResponseWriter, r *http.Request) {
	s, ok := a.lookup(w, r)
	if !ok {
		return
	}

	if !s.Submit() {
		a.error(w, r, http.StatusConflict, "conflict", "submit_rejected")
		return
	}
	a.json(w, http.StatusAccepted, s.Snapshot())
}

// SessionReset clears the instruction and outcome, keeping the input image.
func (a *App) SessionReset(w http.ResponseWriter, r *http.Request) {
	s, ok := a.lookup(w, r)
	if !ok {
		return
	}
	s.Reset()
	a.json(w, http.StatusOK, s.Snapshot())
}

// SessionDelete tears the session down, releasing its preview.
func (a *App) SessionDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !a.Sessions.Remove(id) {
		a.error(w, r, http.StatusNotFound, "not_found", "session_not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	s, ok := a.Sessions.Get(id)
	if !ok {
		a.error(w, r, http.StatusNotFound, "not_found", "session_not_found")
		return nil, false
	}
	return s, true
}
