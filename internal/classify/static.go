package classify

import "context"

// StaticBackend returns a canned response for every prompt. Used for dry
// runs and tests; never calls the network.
type StaticBackend struct {
	response string
}

// NewStaticBackend creates a backend that always answers with response.
// An empty response defaults to a low-confidence unknown classification.
func NewStaticBackend(response string) *StaticBackend {
	if response == "" {
		response = `{"category": "UNKNOWN", "confidence": 0.0, ` +
			`"analysis": "static backend, no analysis performed", ` +
			`"suggested_fix": "Configure a real classification backend", ` +
			`"priority": "medium", "tags": ["manual-review"]}`
	}
	return &StaticBackend{response: response}
}

// Name implements Backend.
func (b *StaticBackend) Name() string { return "static" }

// Complete implements Backend.
func (b *StaticBackend) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return b.response, nil
}
