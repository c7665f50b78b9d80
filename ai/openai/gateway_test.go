package openai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/poiesic/usecasegen/ai"
	"github.com/poiesic/usecasegen/core"
)

type fakeModel struct {
	response *llms.ContentResponse
	err      error
	calls    int
	messages []llms.MessageContent
	options  llms.CallOptions
	deadline bool
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	f.messages = messages
	f.options = llms.CallOptions{}
	for _, opt := range options {
		opt(&f.options)
	}
	_, f.deadline = ctx.Deadline()
	return f.response, f.err
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func testConfig(t *testing.T, opts ...ai.ConfigOption) *ai.Config {
	t.Helper()
	cfg := ai.NewConfig(append([]ai.ConfigOption{ai.WithAPIKey("test")}, opts...)...)
	require.NoError(t, cfg.Validate())
	return cfg
}

func reply(text string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: text}}}
}

func TestGateway_Complete(t *testing.T) {
	t.Run("text mode", func(t *testing.T) {
		model := &fakeModel{response: reply("Summary: ok")}
		g := newGatewayWithModel(testConfig(t), model)

		got, err := g.Complete(context.Background(), ai.Request{
			Prompt:       "summarize",
			SystemPrompt: "you are an analyst",
			MaxTokens:    600,
		})
		require.NoError(t, err)

		assert.Equal(t, "Summary: ok", got)
		assert.Equal(t, 1, model.calls)
		require.Len(t, model.messages, 2)
		assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
		assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
		assert.InDelta(t, 0.3, model.options.Temperature, 1e-9)
		assert.Equal(t, 600, model.options.MaxTokens)
		assert.False(t, model.options.JSONMode)
		assert.True(t, model.deadline)
	})

	t.Run("json mode", func(t *testing.T) {
		model := &fakeModel{response: reply(`{"a":1}`)}
		g := newGatewayWithModel(testConfig(t), model)

		_, err := g.Complete(context.Background(), ai.Request{Prompt: "gen", MaxTokens: 7000, JSONMode: true})
		require.NoError(t, err)

		require.Len(t, model.messages, 1)
		assert.InDelta(t, 0.5, model.options.Temperature, 1e-9)
		assert.True(t, model.options.JSONMode)
	})
}

func TestGateway_Errors(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
		cause error
	}{
		{name: "transport failure", model: &fakeModel{err: errors.New("connection refused")}},
		{name: "no choices", model: &fakeModel{response: &llms.ContentResponse{}}, cause: ai.ErrNoChoices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGatewayWithModel(testConfig(t), tt.model)

			_, err := g.Complete(context.Background(), ai.Request{Prompt: "x"})
			require.Error(t, err)

			var svcErr *ai.ServiceError
			require.ErrorAs(t, err, &svcErr)
			assert.ErrorIs(t, err, core.ErrService)
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}
			assert.Equal(t, 1, tt.model.calls, "gateway must not retry")
		})
	}
}

func TestGateway_RateLimit(t *testing.T) {
	model := &fakeModel{response: reply("ok")}
	g := newGatewayWithModel(testConfig(t, ai.WithRateLimit(0.001, 1)), model)

	_, err := g.Complete(context.Background(), ai.Request{Prompt: "first"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = g.Complete(ctx, ai.Request{Prompt: "second"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrService)
	assert.Equal(t, 1, model.calls)
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(ai.NewConfig())
	assert.Error(t, err, "missing API key must be rejected")
}
