package generation

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"server/internal/credit"
	"server/internal/gemini"
)

const (
	// promptSuffix is always appended to the user's scene description.
	promptSuffix = " Generate a realistic image of these two people in this scenario."

	rateLimitMessage      = "Rate limit exceeded. Please try again later."
	genericFailureMessage = "Failed to generate content."
)

// ContentModel is the external generative service seam.
type ContentModel interface {
	GenerateContent(ctx context.Context, prompt string, images []gemini.Image) (*gemini.Response, error)
}

// CreditLedger is the slice of the ledger the orchestrator uses.
type CreditLedger interface {
	Balance() int
	ConsumeCredit(ctx context.Context) error
}

// Orchestrator runs one generation: debit a credit, call the model with the
// prompt and both photos, classify the response. The credit is spent before
// the call and is not refunded when the call fails; a failed generation
// costs a credit (accepted policy, preserved from the product's pricing
// rules). At most one generation runs at a time; a second call while one is
// in flight is refused, not queued.
type Orchestrator struct {
	ledger CreditLedger
	model  ContentModel
	logger zerolog.Logger
	busy   atomic.Bool
}

// NewOrchestrator wires an Orchestrator.
func NewOrchestrator(ledger CreditLedger, model ContentModel, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{ledger: ledger, model: model, logger: logger}
}

// Generate produces exactly one of a generated image, a generated text
// narrative, or an error. The caller validates the images and prompt before
// calling; the balance is re-checked here.
func (o *Orchestrator) Generate(ctx context.Context, imageA, imageB SourceImage, prompt string) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if !o.busy.CompareAndSwap(false, true) {
		return nil, ErrGenerationInFlight
	}
	defer o.busy.Store(false)

	if o.ledger.Balance() <= 0 {
		return nil, credit.ErrInsufficientCredits
	}
	if err := o.ledger.ConsumeCredit(ctx); err != nil {
		return nil, err
	}

	resp, err := o.model.GenerateContent(ctx, prompt+promptSuffix, []gemini.Image{
		{Data: imageA.Data, MIMEType: imageA.MIMEType},
		{Data: imageB.Data, MIMEType: imageB.MIMEType},
	})
	if err != nil {
		return nil, o.classifyFailure(err)
	}

	result := classifyResponse(resp)
	if result == nil {
		o.logger.Warn().Msg("model returned no usable content")
		return nil, &ServiceError{Message: genericFailureMessage}
	}
	o.logger.Info().
		Bool("image", result.Image != nil).
		Int("text_len", len(result.Text)).
		Msg("generation completed")
	return result, nil
}

func (o *Orchestrator) classifyFailure(err error) error {
	o.logger.Warn().Err(err).Msg("generation failed")
	if gemini.IsRateLimited(err) {
		return &ServiceError{Message: rateLimitMessage, RateLimited: true, Err: err}
	}
	message := strings.TrimSpace(err.Error())
	if message == "" {
		message = genericFailureMessage
	}
	return &ServiceError{Message: message, Err: err}
}

// classifyResponse picks the single surfaced outcome: the first inline image
// part wins and any text is discarded; with no image the text parts become
// the narrative; with neither, the response's plain-text rendering is the
// fallback. Returns nil when even the fallback is empty.
func classifyResponse(resp *gemini.Response) *Result {
	var texts []string
	for _, part := range resp.Parts {
		if part.InlineData != nil && strings.HasPrefix(part.InlineData.MIMEType, "image/") {
			return &Result{Image: &GeneratedImage{
				Data:     part.InlineData.Data,
				MIMEType: part.InlineData.MIMEType,
			}}
		}
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	if len(texts) > 0 {
		return &Result{Text: strings.Join(texts, "\n")}
	}
	if resp.PlainText != "" {
		return &Result{Text: resp.PlainText}
	}
	return nil
}
