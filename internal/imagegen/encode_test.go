package imagegen

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) {
	return 0, r.err
}

func TestEncodeRoundTrip(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0xff, 0x10}

	part, err := Encode(bytes.NewReader(raw), "image/png")
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if part.MIMEType != "image/png" {
		t.Fatalf("MIMEType mismatch: got %q want %q", part.MIMEType, "image/png")
	}
	decoded, err := base64.StdEncoding.DecodeString(part.Data)
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	if !bytes.Equal(decoded, raw) {
		t.Fatalf("round trip mismatch: got %v want %v", decoded, raw)
	}
}

func TestEncodePreservesDeclaredMediaType(t *testing.T) {
	// Declared type wins even when the bytes say otherwise; sniffing is not
	// part of the contract.
	part, err := Encode(strings.NewReader("not really a webp"), "image/webp")
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if part.MIMEType != "image/webp" {
		t.Fatalf("MIMEType mismatch: got %q", part.MIMEType)
	}
}

func TestEncodeReadFailure(t *testing.T) {
	cause := errors.New("disk on fire")

	_, err := Encode(failingReader{err: cause}, "image/png")
	if err == nil {
		t.Fatal("expected error for failing reader")
	}
	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected ReadError, got %T", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("ReadError should wrap the cause, got %v", err)
	}
}

func TestEncodeEmptyResource(t *testing.T) {
	_, err := Encode(bytes.NewReader(nil), "image/png")
	if err == nil {
		t.Fatal("expected error for empty resource")
	}
	if !errors.Is(err, ErrEmptyResource) {
		t.Fatalf("expected ErrEmptyResource, got %v", err)
	}
}

func TestOutcomeTagging(t *testing.T) {
	ok := Success("data:image/png;base64,QQ==")
	if !ok.Ok() || ok.ErrMessage != "" {
		t.Fatalf("success outcome malformed: %+v", ok)
	}

	fail := Failure("model said no")
	if fail.Ok() || fail.ResultImage != "" {
		t.Fatalf("failure outcome malformed: %+v", fail)
	}

	blank := Failure("")
	if blank.ErrMessage == "" {
		t.Fatal("empty failure message should fall back to a generic one")
	}
}
