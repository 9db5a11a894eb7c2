package handlers

import (
	"encoding/json"
	"net/http"

	"imagestudio/internal/infra"
	"imagestudio/internal/middleware"
	"imagestudio/internal/session"
	"imagestudio/internal/storage"
)

// App bundles the dependencies the HTTP handlers need: the session hub, the
// preview blob store, and a logger. It carries no rendering concerns; the
// handlers only transport collaborator inputs in and session snapshots out.
type App struct {
	Log            infra.Logger
	Sessions       *session.Hub
	Previews       *storage.PreviewStore
	MaxUploadBytes int64
}

func NewApp(log infra.Logger, hub *session.Hub, previews *storage.PreviewStore, maxUploadBytes int64) *App {
	return &App{
		Log:            log,
		Sessions:       hub,
		Previews:       previews,
		MaxUploadBytes: maxUploadBytes,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes a boundary error envelope. The message is localized for the
// caller's detected locale; the machine-readable code is not.
func (a *App) error(w http.ResponseWriter, r *http.Request, status int, code, messageKey string) {
	locale := middleware.LocaleFromContext(r.Context())
	a.json(w, status, errorResponse{
		Error:   code,
		Message: boundaryMessage(locale, messageKey),
	})
}

// boundaryMessages holds the handful of boundary strings in the supported
// display languages. Session error messages come from the generation client
// and are passed through untranslated.
var boundaryMessages = map[string]map[string]string{
	"session_not_found": {
		"en": "session not found",
		"id": "sesi tidak ditemukan",
	},
	"invalid_payload": {
		"en": "invalid payload",
		"id": "payload tidak valid",
	},
	"image_required": {
		"en": "an image file is required",
		"id": "file gambar wajib diisi",
	},
	"not_an_image": {
		"en": "only image uploads are accepted",
		"id": "hanya unggahan gambar yang diterima",
	},
	"upload_too_large": {
		"en": "uploaded file is too large",
		"id": "file yang diunggah terlalu besar",
	},
	"submit_rejected": {
		"en": "submit rejected: an image and a non-empty instruction are required, and no attempt may be in flight",
		"id": "pengajuan ditolak: gambar dan instruksi wajib ada, dan tidak boleh ada proses yang sedang berjalan",
	},
	"preview_not_found": {
		"en": "preview not found",
		"id": "pratinjau tidak ditemukan",
	},
}

func boundaryMessage(locale, key string) string {
	msgs, ok := boundaryMessages[key]
	if !ok {
		return key
	}
	if msg, ok := msgs[locale]; ok {
		return msg
	}
	return msgs["en"]
}
