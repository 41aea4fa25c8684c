package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"server/internal/infra"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey string
	Model  string
	Logger *infra.Logger
}

// Image is an inline image handed to the model.
type Image struct {
	Data     []byte
	MIMEType string
}

// Part is one normalized content part of a model response: either text or
// inline binary data, never both.
type Part struct {
	Text       string
	InlineData *Blob
}

// Blob is inline binary content with its MIME type.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Response is the normalized model response: the content parts of the first
// candidate plus the response's plain-text rendering, kept for callers that
// find no usable part.
type Response struct {
	Parts     []Part
	PlainText string
}

// Client is a thin facade over the google.golang.org/genai SDK. It hides the
// SDK's candidate/content nesting and exposes the flat part list the rest of
// the system works with.
type Client struct {
	client *genai.Client
	model  string
	logger zerolog.Logger
}

// New constructs a Client. The API key is the single service credential the
// process carries; the model defaults to the free-tier flash model.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.0-flash"
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{client: client, model: model, logger: logger}, nil
}

// GenerateContent sends the prompt followed by the images, in order, as a
// single user turn and returns the normalized response. No timeout is
// imposed here; the call runs until the service settles or ctx is done.
func (c *Client) GenerateContent(ctx context.Context, prompt string, images []Image) (*Response, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, img := range images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: img.Data},
		})
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		c.logger.Warn().Err(err).Str("model", c.model).Msg("gemini call failed")
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	c.logger.Debug().
		Str("model", c.model).
		Dur("elapsed", time.Since(start)).
		Msg("gemini call completed")

	return normalizeResponse(resp), nil
}

func normalizeResponse(resp *genai.GenerateContentResponse) *Response {
	out := &Response{PlainText: resp.Text()}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			out.Parts = append(out.Parts, Part{
				InlineData: &Blob{MIMEType: part.InlineData.MIMEType, Data: part.InlineData.Data},
			})
			continue
		}
		if part.Text != "" {
			out.Parts = append(out.Parts, Part{Text: part.Text})
		}
	}
	return out
}

// IsRateLimited reports whether err looks like a quota or rate-limit
// rejection from the service.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "rate limit")
}
