package classify

import (
	"context"
	"fmt"
)

// Backend is a text-in/text-out completion provider. The pipeline depends
// only on this interface, never on a concrete SDK type.
type Backend interface {
	// Name identifies the backend in logs and reports.
	Name() string
	// Complete sends a prompt and returns the raw response text.
	// Implementations must honor ctx cancellation and deadlines.
	Complete(ctx context.Context, prompt string) (string, error)
}

// BackendKind selects a backend implementation at run configuration time.
type BackendKind string

const (
	BackendClaude BackendKind = "claude"
	BackendOllama BackendKind = "ollama"
	BackendStatic BackendKind = "static"
)

// BackendConfig carries the provider-specific settings a backend needs.
type BackendConfig struct {
	// APIKey authenticates hosted providers (claude).
	APIKey string `yaml:"api_key,omitempty"`
	// Model is the provider model identifier.
	Model string `yaml:"model,omitempty"`
	// BaseURL points at a self-hosted endpoint (ollama).
	BaseURL string `yaml:"base_url,omitempty"`
}

// NewBackend constructs the backend for the given kind.
func NewBackend(kind BackendKind, cfg BackendConfig) (Backend, error) {
	switch kind {
	case BackendClaude:
		return NewAnthropicBackend(cfg.APIKey, cfg.Model), nil
	case BackendOllama:
		return NewOllamaBackend(cfg.BaseURL, cfg.Model), nil
	case BackendStatic:
		return NewStaticBackend(""), nil
	}
	return nil, fmt.Errorf("unknown backend kind %q (supported: claude, ollama, static)", kind)
}
