package storage

import (
	"sync"

	"github.com/google/uuid"
)

// Blob is an ephemeral binary payload with its declared media type.
type Blob struct {
	Data     []byte
	MIMEType string
}

// PreviewStore keeps preview blobs in memory so an uploaded image can be
// displayed while a session is alive. Nothing ever touches disk; entries live
// exactly as long as the preview handle that owns them. It is the server-side
// analogue of creating and revoking an object URL.
type PreviewStore struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

func NewPreviewStore() *PreviewStore {
	return &PreviewStore{blobs: make(map[string]Blob)}
}

// Put registers a blob and returns its opaque key.
func (s *PreviewStore) Put(data []byte, mimeType string) string {
	key := uuid.NewString()
	s.mu.Lock()
	s.blobs[key] = Blob{Data: data, MIMEType: mimeType}
	s.mu.Unlock()
	return key
}

// Get returns the blob for key, if still registered.
func (s *PreviewStore) Get(key string) (Blob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[key]
	return blob, ok
}

// Delete releases the blob for key. Deleting an unknown key is a no-op, so
// releasing a handle twice is harmless.
func (s *PreviewStore) Delete(key string) {
	s.mu.Lock()
	delete(s.blobs, key)
	s.mu.Unlock()
}

// Len reports how many blobs are currently registered.
func (s *PreviewStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
