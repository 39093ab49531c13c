package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loansight/loansight/config"
)

func TestUnavailableProvider(t *testing.T) {
	p := NewProvider(config.LLMConfig{Model: "llama-3.3-70b-versatile"})

	_, err := p.Complete(context.Background(), Request{Prompt: "hello"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestProviderType(t *testing.T) {
	p := NewProvider(config.LLMConfig{})
	assert.Equal(t, "openai", p.GetProviderType())
}
