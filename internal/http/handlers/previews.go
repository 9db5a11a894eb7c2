package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"imagestudio/internal/storage"
)

// PreviewPathPrefix is where preview blobs are served from; preview handles
// build their display URLs against it.
const PreviewPathPrefix = "/v1/previews/"

// previewHandle ties a stored preview blob to the session that owns it.
// Releasing it revokes the blob, exactly like revoking an object URL.
type previewHandle struct {
	store *storage.PreviewStore
	key   string
}

func (p *previewHandle) URL() string {
	return PreviewPathPrefix + p.key
}

func (p *previewHandle) Release() {
	p.store.Delete(p.key)
}

// PreviewGet serves a registered preview blob with its declared media type.
func (a *App) PreviewGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	blob, ok := a.Previews.Get(key)
	if !ok {
		a.error(w, r, http.StatusNotFound, "not_found", "preview_not_found")
		return
	}
	w.Header().Set("Content-Type", blob.MIMEType)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(blob.Data)
}
