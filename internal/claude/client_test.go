package claude

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", "test-model", Options{
		BaseURL:     srv.URL,
		MaxTokens:   4000,
		Temperature: 0.3,
	})
}

func TestMessages_RequestShape(t *testing.T) {
	var got map[string]any
	var gotHeaders http.Header

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("request body is not json: %v", err)
		}
		w.Write([]byte(`{"content":[{"type":"text","text":"hi"}]}`))
	})

	messages := []Message{
		{Role: "user", Content: []Block{
			DocumentBlock("QUJD", "application/pdf", "doc.pdf (pages 1-2)", true),
			TextBlock("what is this?"),
		}},
	}
	if _, err := c.Messages(context.Background(), messages); err != nil {
		t.Fatalf("messages: %v", err)
	}

	if gotHeaders.Get("x-api-key") != "test-key" {
		t.Errorf("missing api key header")
	}
	if gotHeaders.Get("anthropic-version") != anthropicVersion {
		t.Errorf("missing version header")
	}
	if got["model"] != "test-model" {
		t.Errorf("model: got %v", got["model"])
	}
	if got["max_tokens"] != float64(4000) {
		t.Errorf("max_tokens: got %v", got["max_tokens"])
	}
	if got["temperature"] != 0.3 {
		t.Errorf("temperature: got %v", got["temperature"])
	}

	msgs := got["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	blocks := msgs[0].(map[string]any)["content"].([]any)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	doc := blocks[0].(map[string]any)
	if doc["type"] != "document" {
		t.Errorf("block 0 type: got %v", doc["type"])
	}
	src := doc["source"].(map[string]any)
	if src["type"] != "base64" || src["media_type"] != "application/pdf" || src["data"] != "QUJD" {
		t.Errorf("document source: got %v", src)
	}
	cit := doc["citations"].(map[string]any)
	if cit["enabled"] != true {
		t.Errorf("citations flag not enabled: %v", cit)
	}
	txt := blocks[1].(map[string]any)
	if txt["type"] != "text" || txt["text"] != "what is this?" {
		t.Errorf("text block: got %v", txt)
	}
}

func TestMessages_ParsesCitations(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"content": [
				{"type":"text","text":"The thesis is X.","citations":[
					{"type":"page_location","document_title":"doc.pdf (pages 1-100)","start_page_number":3,"end_page_number":4,"cited_text":"X is the thesis"}
				]},
				{"type":"text","text":" More."}
			],
			"stop_reason":"end_turn"
		}`))
	})

	resp, err := c.Messages(context.Background(), []Message{{Role: "user", Content: []Block{TextBlock("q")}}})
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(resp.Content) != 2 {
		t.Fatalf("expected 2 content blocks, got %d", len(resp.Content))
	}
	if len(resp.Content[0].Citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(resp.Content[0].Citations))
	}
	ann := resp.Content[0].Citations[0]
	if ann.DocumentTitle != "doc.pdf (pages 1-100)" || ann.StartPageNumber != 3 || ann.EndPageNumber != 4 {
		t.Errorf("annotation: got %+v", ann)
	}
	if resp.StopReason != "end_turn" {
		t.Errorf("stop_reason: got %q", resp.StopReason)
	}
}

func TestMessages_EmptyBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		// 200 with no body at all.
	})

	_, err := c.Messages(context.Background(), []Message{{Role: "user", Content: []Block{TextBlock("q")}}})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestMessages_MissingContentField(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stop_reason":"end_turn"}`))
	})

	_, err := c.Messages(context.Background(), []Message{{Role: "user", Content: []Block{TextBlock("q")}}})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestMessages_APIErrorStatus(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	})

	_, err := c.Messages(context.Background(), []Message{{Role: "user", Content: []Block{TextBlock("q")}}})
	var derr *DispatchError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DispatchError, got %v", err)
	}
	if derr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status: got %d", derr.StatusCode)
	}
}

func TestMessages_ErrorEnvelopeWithOKStatus(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"type":"overloaded_error","message":"busy"}}`))
	})

	_, err := c.Messages(context.Background(), []Message{{Role: "user", Content: []Block{TextBlock("q")}}})
	var derr *DispatchError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DispatchError, got %v", err)
	}
}

func TestMessages_RecordsLatency(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	})

	if _, err := c.Messages(context.Background(), []Message{{Role: "user", Content: []Block{TextBlock("q")}}}); err != nil {
		t.Fatalf("messages: %v", err)
	}
	if c.Stats.Snapshot().Count != 1 {
		t.Errorf("expected 1 latency sample, got %d", c.Stats.Snapshot().Count)
	}
}
