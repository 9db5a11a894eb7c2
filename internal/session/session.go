package session

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"imagestudio/internal/imagegen"
)

// Phase is the single active phase of a session. It drives which snapshot
// fields are meaningful.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseProcessing Phase = "processing"
	PhaseSuccess    Phase = "success"
	PhaseError      Phase = "error"
)

// PreviewHandle is the ephemeral display reference for an input image. The
// handle must be released exactly when the image is replaced or the session is
// torn down; a session reset keeps it alive.
type PreviewHandle interface {
	URL() string
	Release()
}

// InputImage is the raw uploaded resource together with its declared media
// type and preview handle. Owned exclusively by the session.
type InputImage struct {
	Data     []byte
	MIMEType string
	Preview  PreviewHandle
}

// Generator is the session's view of the generation client.
type Generator interface {
	EditImage(ctx context.Context, image imagegen.EncodedPart, instruction string) imagegen.Outcome
}

// Snapshot is an immutable view of the session state, safe to hand to any
// renderer or to serialize as-is.
type Snapshot struct {
	ID           string `json:"id"`
	Phase        Phase  `json:"phase"`
	HasImage     bool   `json:"has_image"`
	PreviewURL   string `json:"preview_url,omitempty"`
	Instruction  string `json:"instruction"`
	ResultImage  string `json:"result_image,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	DownloadName string `json:"download_name,omitempty"`
}

// Session is the state machine behind one editing surface: the current input
// image, the instruction text, and the outcome of the latest generation
// attempt. All transitions are mutex-guarded because the HTTP layer drives a
// session from many goroutines; a late-arriving outcome is discarded whenever
// the session has moved on since the attempt started.
type Session struct {
	mu sync.Mutex

	id  string
	gen Generator

	phase        Phase
	input        *InputImage
	instruction  string
	resultImage  string
	errMessage   string
	downloadName string

	// attempt identifies the generation in flight; outcomes carrying an older
	// attempt number are dropped.
	attempt    uint64
	lastActive time.Time
	subs       []func(Snapshot)
}

// New creates an idle session.
func New(id string, gen Generator) *Session {
	return &Session{
		id:         id,
		gen:        gen,
		phase:      PhaseIdle,
		lastActive: time.Now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Subscribe registers fn to be called with a snapshot after every state
// change. Callbacks run outside the session lock.
func (s *Session) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// LastActive returns the time of the most recent transition.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// SelectImage replaces the input image, releasing the previous preview handle
// first, and returns the session to idle with any prior result or error
// cleared. Legal in every phase.
func (s *Session) SelectImage(img InputImage) {
	s.mu.Lock()
	old := s.input
	s.input = &img
	s.resultImage = ""
	s.errMessage = ""
	s.downloadName = ""
	s.phase = PhaseIdle
	s.touchLocked()
	snap, subs := s.snapshotLocked(), s.subsLocked()
	s.mu.Unlock()

	releasePreview(old)
	emit(subs, snap)
}

// SetInstruction stores the instruction text verbatim. Legal in every phase.
func (s *Session) SetInstruction(text string) {
	s.mu.Lock()
	s.instruction = text
	s.touchLocked()
	snap, subs := s.snapshotLocked(), s.subsLocked()
	s.mu.Unlock()

	emit(subs, snap)
}

// Submit starts a generation attempt and reports whether it was accepted. The
// guard is silent: without an input image, with a blank instruction, or while
// an attempt is already processing, Submit changes nothing and returns false.
// An accepted attempt runs asynchronously and always lands the session in
// Success or Error, unless the session moves on first, in which case the
// outcome is dropped.
func (s *Session) Submit() bool {
	s.mu.Lock()
	if s.input == nil || strings.TrimSpace(s.instruction) == "" || s.phase == PhaseProcessing {
		s.mu.Unlock()
		return false
	}

	s.phase = PhaseProcessing
	s.resultImage = ""
	s.errMessage = ""
	s.downloadName = ""
	s.attempt++
	s.touchLocked()

	attempt := s.attempt
	data := s.input.Data
	mimeType := s.input.MIMEType
	instruction := s.instruction
	snap, subs := s.snapshotLocked(), s.subsLocked()
	s.mu.Unlock()

	emit(subs, snap)
	go s.run(attempt, data, mimeType, instruction)
	return true
}

// Reset clears the instruction and any result or error, returning to idle.
// The input image and its preview handle stay. Legal in every phase.
func (s *Session) Reset() {
	s.mu.Lock()
	s.instruction = ""
	s.resultImage = ""
	s.errMessage = ""
	s.downloadName = ""
	s.phase = PhaseIdle
	s.touchLocked()
	snap, subs := s.snapshotLocked(), s.subsLocked()
	s.mu.Unlock()

	emit(subs, snap)
}

// Close tears the session down, releasing the preview handle. An attempt
// still in flight runs to completion; its outcome is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	old := s.input
	s.input = nil
	s.resultImage = ""
	s.errMessage = ""
	s.downloadName = ""
	s.phase = PhaseIdle
	s.touchLocked()
	s.mu.Unlock()

	releasePreview(old)
}

// run performs the encode and remote call for one attempt. Cancellation is
// not supported: the attempt uses a background context bounded only by the
// generator's own transport timeout.
func (s *Session) run(attempt uint64, data []byte, mimeType, instruction string) {
	var out imagegen.Outcome
	encoded, err := imagegen.Encode(bytes.NewReader(data), mimeType)
	if err != nil {
		out = imagegen.Failure(err.Error())
	} else {
		out = s.gen.EditImage(context.Background(), encoded, instruction)
	}
	s.applyOutcome(attempt, out)
}

// applyOutcome lands a finished attempt, unless the session has moved on: the
// phase must still be Processing and the attempt number must match, otherwise
// the outcome is stale and silently dropped.
func (s *Session) applyOutcome(attempt uint64, out imagegen.Outcome) {
	s.mu.Lock()
	if s.phase != PhaseProcessing || s.attempt != attempt {
		s.mu.Unlock()
		return
	}
	if out.Ok() {
		s.resultImage = out.ResultImage
		s.downloadName = downloadNameFor(out.ResultImage, time.Now())
		s.phase = PhaseSuccess
	} else {
		s.errMessage = out.ErrMessage
		s.phase = PhaseError
	}
	s.touchLocked()
	snap, subs := s.snapshotLocked(), s.subsLocked()
	s.mu.Unlock()

	emit(subs, snap)
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:           s.id,
		Phase:        s.phase,
		HasImage:     s.input != nil,
		Instruction:  s.instruction,
		ResultImage:  s.resultImage,
		ErrorMessage: s.errMessage,
		DownloadName: s.downloadName,
	}
	if s.input != nil && s.input.Preview != nil {
		snap.PreviewURL = s.input.Preview.URL()
	}
	return snap
}

func (s *Session) subsLocked() []func(Snapshot) {
	subs := make([]func(Snapshot), len(s.subs))
	copy(subs, s.subs)
	return subs
}

func (s *Session) touchLocked() {
	s.lastActive = time.Now()
}

func emit(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

func releasePreview(img *InputImage) {
	if img != nil && img.Preview != nil {
		img.Preview.Release()
	}
}

var mimeExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// downloadNameFor builds a timestamped filename for saving a result data URI.
func downloadNameFor(dataURI string, ts time.Time) string {
	ext := "png"
	if rest, ok := strings.CutPrefix(dataURI, "data:"); ok {
		if mime, _, found := strings.Cut(rest, ";"); found {
			if e, ok := mimeExtensions[mime]; ok {
				ext = e
			}
		}
	}
	return "edited-" + ts.Format("20060102-150405") + "." + ext
}
