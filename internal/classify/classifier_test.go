package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sift/internal/fetch"
)

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("TestPodStartup", "context deadline exceeded", "goroutine 1 [running]")
	assert.Contains(t, p, "TestPodStartup")
	assert.Contains(t, p, "context deadline exceeded")
	assert.Contains(t, p, "goroutine 1 [running]")
	for _, c := range Categories() {
		assert.Contains(t, p, strings.ToUpper(string(c)))
	}
	assert.Contains(t, p, "```json")
}

func TestClassify(t *testing.T) {
	backend := NewStaticBackend(`{"category": "infrastructure", "confidence": 0.8,
		"analysis": "node went NotReady", "suggested_fix": "drain and reboot",
		"priority": "high", "tags": ["node"]}`)
	c := NewClassifier(backend)

	cand := fetch.Candidate{ID: 101, Name: "TestNodeReady", Message: "node not ready"}
	f, err := c.Classify(context.Background(), cand)
	require.NoError(t, err)
	assert.Equal(t, 101, f.ItemID)
	assert.Equal(t, Infrastructure, f.Category)
	assert.Equal(t, 0.8, f.Confidence)
	assert.Equal(t, PriorityHigh, f.Priority)
	assert.True(t, f.HasTag("node"))
}

func TestClassify_BackendError(t *testing.T) {
	c := NewClassifier(&failingBackend{})
	_, err := c.Classify(context.Background(), fetch.Candidate{ID: 101})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "boom"))
}

func TestFallback(t *testing.T) {
	cand := fetch.Candidate{ID: 909, Name: "TestFlaky", Message: "timed out"}

	f := Fallback(cand, "classification timeout", TagTimeout, TagManualReview)
	assert.Equal(t, 909, f.ItemID)
	assert.Equal(t, Unknown, f.Category)
	assert.Equal(t, 0.0, f.Confidence)
	assert.Equal(t, "classification timeout", f.Analysis)
	assert.Equal(t, PriorityMedium, f.Priority)
	assert.True(t, f.HasTag(TagTimeout))
	assert.True(t, f.HasTag(TagManualReview))
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend(BackendStatic, BackendConfig{})
	require.NoError(t, err)
	assert.Equal(t, "static", b.Name())

	b, err = NewBackend(BackendOllama, BackendConfig{Model: "llama3.1"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", b.Name())

	_, err = NewBackend("parrot", BackendConfig{})
	assert.Error(t, err)
}

type failingBackend struct{}

func (failingBackend) Name() string { return "failing" }

func (failingBackend) Complete(context.Context, string) (string, error) {
	return "", errors.New("boom")
}
