package imagegen

import (
	"encoding/base64"
	"io"
)

// Encode reads the raw resource to completion and returns its base64 text
// encoding together with the declared media type. The media type is taken
// verbatim from the source; content sniffing is deliberately absent. A failed
// or empty read yields a ReadError.
func Encode(r io.Reader, mimeType string) (EncodedPart, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return EncodedPart{}, &ReadError{Err: err}
	}
	if len(data) == 0 {
		return EncodedPart{}, &ReadError{Err: ErrEmptyResource}
	}
	return EncodedPart{
		Data:     base64.StdEncoding.EncodeToString(data),
		MIMEType: mimeType,
	}, nil
}
