// Package completion talks to the chat-completions API that answers questions.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/m3rciful/finbot/core/netutil"
)

// Request is a single two-message exchange: a system message and the rendered prompt.
type Request struct {
	System string
	Prompt string
}

// Client returns the assistant's text for a request.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

var (
	// ErrEmptyAnswer reports a success response that carries no answer text.
	ErrEmptyAnswer = fmt.Errorf("completion: empty answer: %w", netutil.ErrBadResponse)
	// ErrStatus is wrapped by every StatusError.
	ErrStatus = errors.New("completion: unexpected status")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("completion: status %d", e.Code)
	}
	return fmt.Sprintf("completion: status %d: %s", e.Code, e.Body)
}

// Unwrap lets errors.Is match ErrStatus.
func (e *StatusError) Unwrap() error { return ErrStatus }

// HTTPStatus exposes the response code to netutil.Classify.
func (e *StatusError) HTTPStatus() int { return e.Code }

const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"

	DefaultBaseURL     = "https://api.deepseek.com/v1/"
	DefaultModel       = "deepseek-chat"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
	DefaultTimeout     = 30 * time.Second
)

// Config selects and configures a provider.
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	// MaxTokens is only sent by the deepseek provider.
	MaxTokens int
}

func (c Config) withDefaults() Config {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}

type creator func(cfg Config, httpClient *http.Client) (Client, error)

var providers = map[string]creator{
	ProviderOpenAI: func(cfg Config, httpClient *http.Client) (Client, error) {
		return newOpenAIClient(cfg, httpClient, 0), nil
	},
	ProviderDeepSeek: func(cfg Config, httpClient *http.Client) (Client, error) {
		return newOpenAIClient(cfg, httpClient, cfg.MaxTokens), nil
	},
}

// Providers lists the registered provider names.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewClient builds the client registered under cfg.Provider.
// A nil httpClient selects http.DefaultClient.
func NewClient(cfg Config, httpClient *http.Client) (Client, error) {
	cfg = cfg.withDefaults()
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("completion: api key is required")
	}
	create, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("completion: unsupported provider %q (expected one of %s)",
			cfg.Provider, strings.Join(Providers(), ", "))
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return create(cfg, httpClient)
}
