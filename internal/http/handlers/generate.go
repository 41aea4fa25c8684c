package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"server/internal/credit"
	"server/internal/generation"
)

// maxUploadBytes bounds the whole multipart body (two photos plus prompt).
const maxUploadBytes = 32 << 20

type generateResponse struct {
	Image   *generatedImagePayload `json:"image,omitempty"`
	Text    string                 `json:"text,omitempty"`
	Credits int                    `json:"credits"`
}

type generatedImagePayload struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Generate accepts a multipart form with image_a, image_b, and prompt, and
// responds with the generated image (base64) or the text narrative. Upload
// validation happens here, before the orchestrator; a rejected upload never
// costs a credit.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}

	prompt := strings.TrimSpace(r.FormValue("prompt"))
	if prompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt is required")
		return
	}

	imageA, err := a.readSourceImage(r, "image_a")
	if err != nil {
		a.rejectUpload(w, "image_a", err)
		return
	}
	imageB, err := a.readSourceImage(r, "image_b")
	if err != nil {
		a.rejectUpload(w, "image_b", err)
		return
	}

	result, err := a.Generator.Generate(r.Context(), imageA, imageB, prompt)
	if err != nil {
		a.generationError(w, err)
		return
	}

	resp := generateResponse{Credits: a.Ledger.Balance()}
	if result.Image != nil {
		resp.Image = &generatedImagePayload{
			MIMEType: result.Image.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(result.Image.Data),
		}
	} else {
		resp.Text = result.Text
	}
	a.json(w, http.StatusOK, resp)
}

func (a *App) readSourceImage(r *http.Request, field string) (generation.SourceImage, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return generation.SourceImage{}, generation.ErrMissingImage
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return generation.SourceImage{}, fmt.Errorf("read upload: %w", err)
	}
	img := generation.SourceImage{
		Data:     data,
		MIMEType: uploadMIMEType(header),
		Name:     header.Filename,
	}
	if err := generation.ValidateSourceImage(img); err != nil {
		return generation.SourceImage{}, err
	}
	return img, nil
}

func uploadMIMEType(header *multipart.FileHeader) string {
	ct := header.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(strings.ToLower(ct))
}

func (a *App) rejectUpload(w http.ResponseWriter, field string, err error) {
	switch {
	case errors.Is(err, generation.ErrMissingImage):
		a.error(w, http.StatusBadRequest, "bad_request", field+" is required")
	case errors.Is(err, generation.ErrUnsupportedImageType):
		a.error(w, http.StatusUnsupportedMediaType, "unsupported_file_type", generation.UnsupportedTypeMessage)
	default:
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read "+field)
	}
}

func (a *App) generationError(w http.ResponseWriter, err error) {
	var svcErr *generation.ServiceError
	switch {
	case errors.Is(err, credit.ErrInsufficientCredits):
		a.error(w, http.StatusPaymentRequired, "insufficient_credits", "You need at least 1 credit to generate.")
	case errors.Is(err, generation.ErrGenerationInFlight):
		a.error(w, http.StatusConflict, "generation_in_flight", "A generation is already in progress.")
	case errors.As(err, &svcErr) && svcErr.RateLimited:
		a.error(w, http.StatusTooManyRequests, "rate_limited", svcErr.Message)
	case errors.As(err, &svcErr):
		a.error(w, http.StatusBadGateway, "generation_failed", svcErr.Message)
	default:
		a.Logger.Error().Err(err).Msg("generation failed unexpectedly")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to generate content.")
	}
}
