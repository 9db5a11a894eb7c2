package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"imagestudio/internal/imagegen"
	"imagestudio/internal/infra"
)

const (
	// DefaultModel is the image-editing-capable model variant. It is fixed by
	// configuration and never user-supplied.
	DefaultModel = "gemini-2.5-flash-image-preview"

	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// refusalPreviewLimit bounds how much model text is embedded in a failure
	// message when the model answers with prose instead of an image.
	refusalPreviewLimit = 100

	fallbackImageMIME = "image/png"
	msgNoImageData    = "no image data received"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client calls the Gemini generateContent endpoint for image editing and
// collapses every fault path into an imagegen.Outcome, so callers never see a
// raw transport or parsing error.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

// geminiPart is a closed variant: a part carries either inline binary data or
// text, never both in practice. Scanning logic relies on checking the tags in
// that order.
type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with a generation-sized timeout is created.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: client,
		logger:     logger,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// EditImage sends one generation request carrying the encoded image first and
// the instruction second, and interprets the response. It always returns an
// outcome: transport faults, API errors, and malformed responses are logged
// and folded into a Failure. A single attempt per invocation; retries are a
// caller decision.
func (c *Client) EditImage(ctx context.Context, image imagegen.EncodedPart, instruction string) imagegen.Outcome {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{InlineData: &geminiInlineData{MimeType: image.MIMEType, Data: image.Data}},
				{Text: instruction},
			},
		}},
	}

	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.model)), payload, &response); err != nil {
		c.logger.Error().
			Err(err).
			Str("model", c.model).
			Msg("genai: image edit request failed")
		return imagegen.Failure(strings.TrimSpace(err.Error()))
	}

	return c.interpret(response)
}

// interpret walks the first candidate's parts in order: the first inline image
// wins; failing that, the first text part becomes a refusal message; failing
// that, the response carried nothing usable.
func (c *Client) interpret(response geminiGenerateContentResponse) imagegen.Outcome {
	if len(response.Candidates) == 0 {
		return imagegen.Failure(msgNoImageData)
	}

	parts := response.Candidates[0].Content.Parts
	for _, part := range parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			mime := part.InlineData.MimeType
			if mime == "" {
				mime = fallbackImageMIME
			}
			return imagegen.Success("data:" + mime + ";base64," + part.InlineData.Data)
		}
	}

	for _, part := range parts {
		if part.Text != "" {
			c.logger.Warn().
				Str("model", c.model).
				Str("finish_reason", response.Candidates[0].FinishReason).
				Msg("genai: model returned text instead of an image")
			return imagegen.Failure("model declined the edit: " + truncateForDisplay(part.Text, refusalPreviewLimit))
		}
	}

	return imagegen.Failure(msgNoImageData)
}

func (c *Client) invoke(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

// truncateForDisplay keeps the first limit runes and marks the cut.
func truncateForDisplay(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
