package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m3rciful/finbot/core/netutil"
)

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   *int64        `json:"max_tokens"`
	Messages    []wireMessage `json:"messages"`
}

func newTestClient(t *testing.T, h http.HandlerFunc) Client {
	t.Helper()
	return newProviderClient(t, Config{Model: "deepseek-chat", Temperature: 0.7}, h)
}

func newProviderClient(t *testing.T, cfg Config, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg.APIKey = "test-key"
	cfg.BaseURL = srv.URL + "/v1"
	c, err := NewClient(cfg, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestOpenAIRequestSchemaAndAnswer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var body wireRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Model != "deepseek-chat" || body.Temperature != 0.7 {
			t.Errorf("unexpected model/temperature: %+v", body)
		}
		if body.MaxTokens != nil {
			t.Errorf("openai provider sent max_tokens=%d", *body.MaxTokens)
		}
		if len(body.Messages) != 2 ||
			body.Messages[0] != (wireMessage{Role: "system", Content: "sys"}) ||
			body.Messages[1] != (wireMessage{Role: "user", Content: "prompt"}) {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}
		writeJSON(w, http.StatusOK, `{"id":"1","object":"chat.completion","created":1,"model":"deepseek-chat",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Save 10% monthly."}}]}`)
	})

	got, err := c.Complete(context.Background(), Request{System: "sys", Prompt: "prompt"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "Save 10% monthly." {
		t.Fatalf("answer = %q", got)
	}
}

func TestOpenAINon2xxIsStatusError(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusServiceUnavailable, `{"error":{"message":"overloaded","type":"server_error"}}`)
	})

	_, err := c.Complete(context.Background(), Request{System: "s", Prompt: "p"})
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("expected ErrStatus, got %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected StatusError 503, got %v", err)
	}
	if netutil.Classify(err) != netutil.KindHTTP5xx {
		t.Fatalf("Classify = %q", netutil.Classify(err))
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestOpenAIMissingContentIsEmptyAnswer(t *testing.T) {
	for _, body := range []string{
		`{"id":"1","object":"chat.completion","choices":[]}`,
		`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":""}}]}`,
	} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, body)
		})
		_, err := c.Complete(context.Background(), Request{System: "s", Prompt: "p"})
		if !errors.Is(err, ErrEmptyAnswer) {
			t.Fatalf("body %s: expected ErrEmptyAnswer, got %v", body, err)
		}
		if netutil.Classify(err) != netutil.KindBadResponse {
			t.Fatalf("Classify = %q", netutil.Classify(err))
		}
	}
}

func TestOpenAIHonorsContextDeadline(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Complete(ctx, Request{System: "s", Prompt: "p"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if errors.Is(err, ErrStatus) || errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("timeout misreported as response failure: %v", err)
	}
}

func TestDeepSeekSendsConfiguredRequest(t *testing.T) {
	cfg := Config{Provider: ProviderDeepSeek, Model: "deepseek-reasoner", Temperature: 0.7, MaxTokens: 1024}
	c := newProviderClient(t, cfg, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s, want the configured base url", r.URL.Path)
		}
		var body wireRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Model != "deepseek-reasoner" || body.Temperature != 0.7 {
			t.Errorf("unexpected model/temperature: %+v", body)
		}
		if body.MaxTokens == nil || *body.MaxTokens != 1024 {
			t.Errorf("max_tokens = %v, want 1024", body.MaxTokens)
		}
		writeJSON(w, http.StatusOK, `{"id":"1","object":"chat.completion","created":1,"model":"deepseek-reasoner",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Open a deposit."}}]}`)
	})

	got, err := c.Complete(context.Background(), Request{System: "s", Prompt: "p"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "Open a deposit." {
		t.Fatalf("answer = %q", got)
	}
}

func TestDeepSeekNon2xxIsStatusError(t *testing.T) {
	c := newProviderClient(t, Config{Provider: ProviderDeepSeek}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"error":{"message":"invalid key","type":"authentication_error"}}`)
	})
	_, err := c.Complete(context.Background(), Request{System: "s", Prompt: "p"})
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Fatalf("expected StatusError 401, got %v", err)
	}
	if netutil.Classify(err) != netutil.KindHTTP4xx {
		t.Fatalf("Classify = %q", netutil.Classify(err))
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}, nil); err == nil {
		t.Fatal("expected error without api key")
	}
	if _, err := NewClient(Config{APIKey: "k", Provider: "gemini"}, nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if _, err := NewClient(Config{APIKey: "k", Provider: " OpenAI "}, nil); err != nil {
		t.Fatalf("openai provider: %v", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{APIKey: "k"}.withDefaults()
	if cfg.Provider != ProviderOpenAI || cfg.BaseURL != DefaultBaseURL || cfg.Model != DefaultModel {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	cfg = Config{BaseURL: "http://localhost:8080/v1"}.withDefaults()
	if cfg.BaseURL != "http://localhost:8080/v1/" {
		t.Fatalf("base url = %q", cfg.BaseURL)
	}
}
