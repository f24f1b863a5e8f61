package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// Client calls the Anthropic Messages API with citation-enabled document
// attachments.
type Client struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	baseURL     string
	httpClient  *http.Client

	// Stats collects rolling latency samples for every dispatch.
	Stats *Stats
}

// Options tunes the decoding budget. MaxTokens is the fixed response
// ceiling; Temperature stays low because citation accuracy matters more
// than stylistic variety.
type Options struct {
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

func NewClient(apiKey, model string, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4000
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	return &Client{
		apiKey:      apiKey,
		model:       model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		baseURL:     opts.BaseURL,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		Stats: NewStats(time.Hour),
	}
}

// Message is one role-tagged entry in the outbound request.
type Message struct {
	Role    string  `json:"role"`
	Content []Block `json:"content"`
}

// Block is a typed content block: either a text block or a document block
// carrying encoded bytes with the citations flag.
type Block struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Source    *DocumentSource `json:"source,omitempty"`
	Title     string          `json:"title,omitempty"`
	Citations *CitationsFlag  `json:"citations,omitempty"`
}

type DocumentSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type CitationsFlag struct {
	Enabled bool `json:"enabled"`
}

// TextBlock builds a plain text block.
func TextBlock(text string) Block {
	return Block{Type: "text", Text: text}
}

// DocumentBlock builds a base64 document attachment block.
func DocumentBlock(data, mediaType, title string, citations bool) Block {
	b := Block{
		Type:   "document",
		Title:  title,
		Source: &DocumentSource{Type: "base64", MediaType: mediaType, Data: data},
	}
	if citations {
		b.Citations = &CitationsFlag{Enabled: true}
	}
	return b
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

// Response is the result object: an ordered list of content blocks, each
// optionally carrying citation annotations.
type Response struct {
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type ContentBlock struct {
	Type      string       `json:"type"`
	Text      string       `json:"text"`
	Citations []Annotation `json:"citations"`
}

// Annotation is a raw citation record as returned by the API.
type Annotation struct {
	Type            string `json:"type"`
	DocumentTitle   string `json:"document_title"`
	StartPageNumber int    `json:"start_page_number"`
	EndPageNumber   int    `json:"end_page_number"`
	CitedText       string `json:"cited_text"`
}

type messagesEnvelope struct {
	Content    json.RawMessage `json:"content"`
	StopReason string          `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Messages dispatches one request and returns the raw result object. The
// call blocks until the API responds or the client timeout fires; there is
// no retry.
func (c *Client) Messages(ctx context.Context, messages []Message) (*Response, error) {
	reqBody := messagesRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages:    messages,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &DispatchError{Message: err.Error()}
	}
	defer resp.Body.Close()
	c.Stats.Record(time.Since(start).Milliseconds())

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, &DispatchError{StatusCode: resp.StatusCode, Message: "read response: " + err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &DispatchError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil, ErrEmptyResponse
	}

	var envelope messagesEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, &DispatchError{StatusCode: resp.StatusCode, Message: "decode response: " + err.Error()}
	}
	if envelope.Error != nil {
		return nil, &DispatchError{StatusCode: resp.StatusCode, Message: envelope.Error.Type + ": " + envelope.Error.Message}
	}
	if envelope.Content == nil {
		return nil, ErrMalformedResponse
	}

	var content []ContentBlock
	if err := json.Unmarshal(envelope.Content, &content); err != nil {
		return nil, &DispatchError{StatusCode: resp.StatusCode, Message: "decode content: " + err.Error()}
	}

	return &Response{Content: content, StopReason: envelope.StopReason}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
