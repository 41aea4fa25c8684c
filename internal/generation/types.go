package generation

import "errors"

// SourceImage is one uploaded photo handed to the orchestrator.
type SourceImage struct {
	Data     []byte
	MIMEType string
	Name     string
}

// GeneratedImage is the binary result of a successful image generation.
type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

// Result carries exactly one of a generated image or a generated text
// narrative. Failures are returned as errors, never inside a Result.
type Result struct {
	Image *GeneratedImage
	Text  string
}

var (
	ErrGenerationInFlight   = errors.New("a generation is already in progress")
	ErrMissingImage         = errors.New("image is required")
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrEmptyPrompt          = errors.New("prompt is required")
)

// ServiceError is a generation failure carrying the message to show the
// user. The already-debited credit is not refunded; that is deliberate
// policy, not an oversight.
type ServiceError struct {
	Message     string
	RateLimited bool
	Err         error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
