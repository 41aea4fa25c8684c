package generation

import "fmt"

// UnsupportedTypeMessage is shown when an upload is rejected at the boundary.
const UnsupportedTypeMessage = "Please upload an image (PNG, JPG, WEBP, SVG)"

var allowedMIMETypes = map[string]struct{}{
	"image/png":     {},
	"image/jpeg":    {},
	"image/jpg":     {},
	"image/webp":    {},
	"image/svg+xml": {},
}

// ValidateSourceImage rejects empty uploads and MIME types outside the
// allow-list. It runs at the upload boundary; images that fail here never
// reach the orchestrator.
func ValidateSourceImage(img SourceImage) error {
	if len(img.Data) == 0 {
		return ErrMissingImage
	}
	if _, ok := allowedMIMETypes[img.MIMEType]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedImageType, img.MIMEType)
	}
	return nil
}
