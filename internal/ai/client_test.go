package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPromptKeepsQuestionAndForbidsMarkdown(t *testing.T) {
	prompt := buildPrompt("What is photosynthesis?")

	assert.Contains(t, prompt, "What is photosynthesis?")
	assert.Contains(t, prompt, "do NOT use any Markdown")
	assert.Contains(t, prompt, "plain text")
}

func TestWithModel(t *testing.T) {
	c := NewClient("test-key")
	assert.Equal(t, "gpt-4o-mini", c.model)

	c.WithModel("gpt-4o")
	assert.Equal(t, "gpt-4o", c.model)
}
