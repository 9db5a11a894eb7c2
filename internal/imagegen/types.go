package imagegen

// EncodedPart is the transport-safe form of an input image: base64 text
// content plus the media type declared by the source resource. It is derived
// per generation attempt and discarded once the request completes.
type EncodedPart struct {
	Data     string
	MIMEType string
}

// Outcome is the tagged result of a single generation attempt. Exactly one of
// ResultImage or ErrMessage is populated.
type Outcome struct {
	// ResultImage is a data URI suitable for direct display.
	ResultImage string
	// ErrMessage is a human-readable failure description.
	ErrMessage string
}

// Success wraps a rendered data URI.
func Success(dataURI string) Outcome {
	return Outcome{ResultImage: dataURI}
}

// Failure wraps a failure message, substituting a generic one when empty so
// the session layer always has text to surface.
func Failure(message string) Outcome {
	if message == "" {
		message = "image generation failed"
	}
	return Outcome{ErrMessage: message}
}

// Ok reports whether the outcome carries an image result.
func (o Outcome) Ok() bool {
	return o.ErrMessage == "" && o.ResultImage != ""
}
