package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"server/internal/credit"
	"server/internal/gemini"
)

type stubLedger struct {
	balance  int
	consumed int
}

func (s *stubLedger) Balance() int { return s.balance }

func (s *stubLedger) ConsumeCredit(ctx context.Context) error {
	if s.balance <= 0 {
		return credit.ErrInsufficientCredits
	}
	s.balance--
	s.consumed++
	return nil
}

type stubModel struct {
	resp    *gemini.Response
	err     error
	calls   int
	prompt  string
	images  []gemini.Image
	started chan struct{}
	release chan struct{}
}

func (s *stubModel) GenerateContent(ctx context.Context, prompt string, images []gemini.Image) (*gemini.Response, error) {
	s.calls++
	s.prompt = prompt
	s.images = images
	if s.started != nil {
		close(s.started)
		s.started = nil
	}
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

var (
	testImageA = SourceImage{Data: []byte("png-a"), MIMEType: "image/png", Name: "a.png"}
	testImageB = SourceImage{Data: []byte("jpg-b"), MIMEType: "image/jpeg", Name: "b.jpg"}
)

func TestGenerateImageWinsOverText(t *testing.T) {
	ledger := &stubLedger{balance: 3}
	model := &stubModel{resp: &gemini.Response{
		Parts: []gemini.Part{
			{Text: "Some narration that should be discarded."},
			{InlineData: &gemini.Blob{MIMEType: "image/png", Data: []byte{1, 2, 3}}},
			{InlineData: &gemini.Blob{MIMEType: "image/webp", Data: []byte{9}}},
		},
	}}
	o := NewOrchestrator(ledger, model, zerolog.Nop())

	result, err := o.Generate(context.Background(), testImageA, testImageB, "A picnic")
	require.NoError(t, err)
	require.NotNil(t, result.Image)
	assert.Equal(t, "image/png", result.Image.MIMEType)
	assert.Equal(t, []byte{1, 2, 3}, result.Image.Data)
	assert.Empty(t, result.Text)
	assert.Equal(t, 2, ledger.balance)
}

func TestGenerateTextNarrative(t *testing.T) {
	ledger := &stubLedger{balance: 1}
	model := &stubModel{resp: &gemini.Response{
		Parts: []gemini.Part{{Text: "First line."}, {Text: "Second line."}},
	}}
	o := NewOrchestrator(ledger, model, zerolog.Nop())

	result, err := o.Generate(context.Background(), testImageA, testImageB, "A picnic")
	require.NoError(t, err)
	assert.Nil(t, result.Image)
	assert.Equal(t, "First line.\nSecond line.", result.Text)
}

func TestGenerateFallsBackToPlainText(t *testing.T) {
	ledger := &stubLedger{balance: 1}
	model := &stubModel{resp: &gemini.Response{PlainText: "legacy rendering"}}
	o := NewOrchestrator(ledger, model, zerolog.Nop())

	result, err := o.Generate(context.Background(), testImageA, testImageB, "A picnic")
	require.NoError(t, err)
	assert.Nil(t, result.Image)
	assert.Equal(t, "legacy rendering", result.Text)
}

func TestGenerateAppendsPromptSuffixAndImages(t *testing.T) {
	ledger := &stubLedger{balance: 1}
	model := &stubModel{resp: &gemini.Response{PlainText: "ok"}}
	o := NewOrchestrator(ledger, model, zerolog.Nop())

	_, err := o.Generate(context.Background(), testImageA, testImageB, "A picnic")
	require.NoError(t, err)
	assert.Equal(t, "A picnic"+promptSuffix, model.prompt)
	require.Len(t, model.images, 2)
	assert.Equal(t, "image/png", model.images[0].MIMEType)
	assert.Equal(t, "image/jpeg", model.images[1].MIMEType)
}

func TestGenerateRateLimitedFailure(t *testing.T) {
	ledger := &stubLedger{balance: 2}
	model := &stubModel{err: errors.New("googleapi: Error 429: quota exceeded")}
	o := NewOrchestrator(ledger, model, zerolog.Nop())

	_, err := o.Generate(context.Background(), testImageA, testImageB, "A picnic")
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.True(t, svcErr.RateLimited)
	assert.Equal(t, rateLimitMessage, svcErr.Message)
}

func TestGenerateGenericFailureKeepsRawMessage(t *testing.T) {
	ledger := &stubLedger{balance: 2}
	model := &stubModel{err: errors.New("connection reset by peer")}
	o := NewOrchestrator(ledger, model, zerolog.Nop())

	_, err := o.Generate(context.Background(), testImageA, testImageB, "A picnic")
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.False(t, svcErr.RateLimited)
	assert.Equal(t, "connection reset by peer", svcErr.Message)
}

func TestGenerateDebitsEvenWhenCallFails(t *testing.T) {
	ledger := &stubLedger{balance: 1}
	model := &stubModel{err: errors.New("boom")}
	o := NewOrchestrator(ledger, model, zerolog.Nop())

	_, err := o.Generate(context.Background(), testImageA, testImageB, "A picnic")
	require.Error(t, err)
	assert.Equal(t, 0, ledger.balance)
	assert.Equal(t, 1, ledger.consumed)
}

func TestGenerateRefusedAtZeroBalance(t *testing.T) {
	ledger := &stubLedger{balance: 0}
	model := &stubModel{resp: &gemini.Response{PlainText: "ok"}}
	o := NewOrchestrator(ledger, model, zerolog.Nop())

	_, err := o.Generate(context.Background(), testImageA, testImageB, "A picnic")
	assert.ErrorIs(t, err, credit.ErrInsufficientCredits)
	assert.Zero(t, model.calls)
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	ledger := &stubLedger{balance: 1}
	model := &stubModel{resp: &gemini.Response{PlainText: "ok"}}
	o := NewOrchestrator(ledger, model, zerolog.Nop())

	_, err := o.Generate(context.Background(), testImageA, testImageB, "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Equal(t, 1, ledger.balance)
}

func TestGenerateSingleFlight(t *testing.T) {
	ledger := &stubLedger{balance: 5}
	model := &stubModel{
		resp:    &gemini.Response{PlainText: "ok"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	o := NewOrchestrator(ledger, model, zerolog.Nop())
	started := model.started

	firstDone := make(chan error, 1)
	go func() {
		_, err := o.Generate(context.Background(), testImageA, testImageB, "A picnic")
		firstDone <- err
	}()

	// Wait for the first call to reach the model, then try a second.
	<-started
	_, err := o.Generate(context.Background(), testImageA, testImageB, "Another")
	assert.ErrorIs(t, err, ErrGenerationInFlight)

	close(model.release)
	require.NoError(t, <-firstDone)

	// After the first settles the orchestrator accepts work again.
	_, err = o.Generate(context.Background(), testImageA, testImageB, "A picnic")
	assert.NoError(t, err)
}

func TestValidateSourceImage(t *testing.T) {
	cases := []struct {
		name string
		img  SourceImage
		want error
	}{
		{"png ok", SourceImage{Data: []byte{1}, MIMEType: "image/png"}, nil},
		{"svg ok", SourceImage{Data: []byte{1}, MIMEType: "image/svg+xml"}, nil},
		{"gif rejected", SourceImage{Data: []byte{1}, MIMEType: "image/gif"}, ErrUnsupportedImageType},
		{"pdf rejected", SourceImage{Data: []byte{1}, MIMEType: "application/pdf"}, ErrUnsupportedImageType},
		{"empty rejected", SourceImage{MIMEType: "image/png"}, ErrMissingImage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSourceImage(tc.img)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestRandomPromptDrawsFromIdeas(t *testing.T) {
	known := make(map[string]struct{}, len(promptIdeas))
	for _, idea := range promptIdeas {
		known[idea] = struct{}{}
	}
	for i := 0; i < 50; i++ {
		if _, ok := known[RandomPrompt()]; !ok {
			t.Fatal("RandomPrompt returned a string outside the idea list")
		}
	}
}
