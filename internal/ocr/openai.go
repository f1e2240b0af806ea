package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/avolkov/recordlens/internal/model"
	"github.com/avolkov/recordlens/internal/util"
)

// OpenAIPort implements Port using a vision-capable chat completion
// endpoint. Page images are sent as base64 data URLs.
type OpenAIPort struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	logger  *slog.Logger
}

const ocrPrompt = "Transcribe all text visible in this scanned document page. " +
	"Return only the raw text in reading order. Do not summarize, translate, or comment."

// NewOpenAIPort creates the port from host configuration. A missing API
// key is reported lazily: construction succeeds so the host can still run
// base-mode extraction, and Analyze returns ErrConfigMissing.
func NewOpenAIPort(cfg model.OCRConfig, logger *slog.Logger) *OpenAIPort {
	if logger == nil {
		logger = slog.Default()
	}

	var client *openai.Client
	if cfg.APIKey != "" {
		clientConfig := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
		clientConfig.HTTPClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		}
		client = openai.NewClientWithConfig(clientConfig)
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 4
	}

	return &OpenAIPort{
		client:  client,
		model:   cfg.Model,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

// Analyze sends the buffer to the recognition service and returns raw text.
func (p *OpenAIPort) Analyze(ctx context.Context, data []byte) (string, error) {
	if p.client == nil {
		return "", ErrConfigMissing
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	mime := sniffMIME(data)
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))

	mdl := p.model
	if mdl == "" {
		mdl = openai.GPT4oMini
	}

	req := openai.ChatCompletionRequest{
		Model: mdl,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: ocrPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
		Temperature: 0,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmpty
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmpty
	}

	p.logger.Debug("ocr page analyzed", "bytes_in", len(data), "chars_out", len(text), "model", mdl)
	return text, nil
}

// sniffMIME picks the data-URL MIME type from magic bytes. Pages arrive
// as PNG from the renderer; PDFs and JPEGs show up when the raw document
// is sent directly.
func sniffMIME(data []byte) string {
	switch {
	case len(data) > 4 && string(data[:4]) == "%PDF":
		return "application/pdf"
	case len(data) > 3 && data[0] == 0xFF && data[1] == 0xD8:
		return "image/jpeg"
	default:
		return "image/png"
	}
}
