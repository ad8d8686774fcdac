// internal/ai/client.go
package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Turn is one prior exchange in the rolling conversation history.
type Turn struct {
	Role    string // RoleUser or RoleAssistant
	Content string
}

const (
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

const systemPrompt = "You are a friendly and knowledgeable study assistant " +
	"for secondary school students preparing for national exams. Answer " +
	"clearly, accurately and encouragingly."

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(apiKey string) *Client {
	return &Client{
		client: openai.NewClient(apiKey),
		model:  "gpt-4o-mini",
	}
}

func (c *Client) WithModel(model string) *Client {
	c.model = model
	return c
}

// buildPrompt appends the formatting rules to the raw question. Telegram
// renders replies as plain text, so the model must not emit Markdown.
func buildPrompt(question string) string {
	return question + "\n\n" +
		"Please provide a helpful and clear response. " +
		"You can use relevant emojis to make the response more engaging. " +
		"However, do NOT use any Markdown, bolding (**), italics (*), " +
		"bullet points, or any other text formatting. " +
		"Keep the response in plain text."
}

// Complete answers a free-text question, optionally carrying a short
// rolling history of the conversation so far.
func (c *Client) Complete(ctx context.Context, question string, history []Turn) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
	}
	for _, t := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    t.Role,
			Content: t.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: buildPrompt(question),
	})

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   1500,
		Temperature: 0.7,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from completion API")
	}

	return resp.Choices[0].Message.Content, nil
}
