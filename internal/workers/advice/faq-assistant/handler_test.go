// internal/workers/advice/faq-assistant/handler_test.go
package faqassistant

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offr-workers/internal/common/config"
	"offr-workers/internal/common/logger"
	"offr-workers/internal/genai"
)

type fakeClient struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (c *fakeClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	c.calls++
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func newTestHandler(t *testing.T, client genai.Client, apiKey string) *Handler {
	log := logger.NewTestLogger(t)
	genaiCfg := config.GenAIConfig{APIKey: apiKey, Timeout: 1000, MaxRetries: 0, InitialBackoff: 1}
	return NewHandler(LoadConfig(), genai.New(client, genaiCfg, log), log)
}

func TestHandler_Execute_AnswersQuestion(t *testing.T) {
	client := &fakeClient{response: `{
		"answer": "You can apply to up to 5 universities on one UCAS application.",
		"follow_up_questions": ["What is a firm choice?", "When is the UCAS deadline?"]
	}`}
	handler := newTestHandler(t, client, "test-key")

	output, err := handler.Execute(context.Background(), &Input{Question: "How many universities can I apply to?"})

	require.NoError(t, err)
	assert.Contains(t, output.Answer, "5 universities")
	assert.Len(t, output.FollowUpQuestions, 2)
	assert.False(t, output.Fallback)
	assert.Len(t, output.RequestID, 8)
}

func TestHandler_Execute_QuestionCapped(t *testing.T) {
	client := &fakeClient{response: `{"answer": "ok", "follow_up_questions": []}`}
	handler := newTestHandler(t, client, "test-key")

	long := strings.Repeat("why ", 300)
	_, err := handler.Execute(context.Background(), &Input{Question: long})

	require.NoError(t, err)
	require.Len(t, client.prompts, 1)
	// The whole 1200-character question never reaches the provider.
	assert.NotContains(t, client.prompts[0], long)
}

func TestHandler_Execute_QuestionCappedOnRuneBoundary(t *testing.T) {
	client := &fakeClient{response: `{"answer": "ok", "follow_up_questions": []}`}
	handler := newTestHandler(t, client, "test-key")

	// 600 multi-byte runes; a byte-based cut would split one mid-sequence.
	long := strings.Repeat("é", 600)
	_, err := handler.Execute(context.Background(), &Input{Question: long})

	require.NoError(t, err)
	require.Len(t, client.prompts, 1)
	assert.True(t, utf8.ValidString(client.prompts[0]))
	assert.Contains(t, client.prompts[0], strings.Repeat("é", 500))
	assert.NotContains(t, client.prompts[0], strings.Repeat("é", 501))
}

func TestHandler_Execute_FallbackWhenUnavailable(t *testing.T) {
	client := &fakeClient{}
	handler := newTestHandler(t, client, "") // no credential configured

	output, err := handler.Execute(context.Background(), &Input{Question: "What is a firm choice?"})

	require.NoError(t, err)
	assert.True(t, output.Fallback)
	assert.Equal(t, fallbackAnswer, output.Answer)
	assert.Empty(t, output.FollowUpQuestions)
	assert.Equal(t, 0, client.calls)
}

func TestHandler_Execute_FallbackOnProviderError(t *testing.T) {
	client := &fakeClient{err: assert.AnError}
	handler := newTestHandler(t, client, "test-key")

	output, err := handler.Execute(context.Background(), &Input{Question: "What is insurance?"})

	require.NoError(t, err)
	assert.True(t, output.Fallback)
	assert.Equal(t, fallbackAnswer, output.Answer)
}

func TestHandler_Execute_EmptyQuestion(t *testing.T) {
	handler := newTestHandler(t, &fakeClient{}, "test-key")

	_, err := handler.Execute(context.Background(), &Input{Question: "  "})
	require.Error(t, err)
}

func TestHandler_Execute_BlankAnswerGetsDefault(t *testing.T) {
	client := &fakeClient{response: `{"answer": "", "follow_up_questions": []}`}
	handler := newTestHandler(t, client, "test-key")

	output, err := handler.Execute(context.Background(), &Input{Question: "Anything?"})

	require.NoError(t, err)
	assert.Contains(t, output.Answer, "rephrasing")
}
