package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel is an llms.Model that returns a fixed reply or error and records prompts.
type fakeModel struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, m := range messages {
		for _, p := range m.Parts {
			if t, ok := p.(llms.TextContent); ok {
				f.prompts = append(f.prompts, t.Text)
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestGenerate_SelectsTier(t *testing.T) {
	primary := &fakeModel{reply: "from primary"}
	fallback := &fakeModel{reply: "from fallback"}
	c := NewClientWithModels("p-model", primary, "f-model", fallback)

	out, err := c.Generate(context.Background(), "hello", true)
	require.NoError(t, err)
	assert.Equal(t, "from primary", out)
	assert.Equal(t, []string{"hello"}, primary.prompts)
	assert.Empty(t, fallback.prompts)

	out, err = c.Generate(context.Background(), "again", false)
	require.NoError(t, err)
	assert.Equal(t, "from fallback", out)
	assert.Equal(t, []string{"again"}, fallback.prompts)
}

func TestGenerate_WrapsFailure(t *testing.T) {
	boom := errors.New("quota exceeded")
	c := NewClientWithModels("p-model", &fakeModel{err: boom}, "f-model", &fakeModel{reply: "ok"})

	_, err := c.Generate(context.Background(), "x", true)
	require.Error(t, err)

	var mie *ModelInvocationError
	require.True(t, errors.As(err, &mie))
	assert.Equal(t, "p-model", mie.Model)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGenerate_NilModel(t *testing.T) {
	c := NewClientWithModels("p-model", nil, "f-model", nil)

	_, err := c.Generate(context.Background(), "x", false)
	assert.ErrorIs(t, err, ErrModelNotInitialized)

	var mie *ModelInvocationError
	require.True(t, errors.As(err, &mie))
	assert.Equal(t, "f-model", mie.Model)
}

func TestEndpointRoundTripper_RewritesURL(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := httpClientForEndpoint(srv.URL + "/gemini/")
	require.NotNil(t, client)

	resp, err := client.Get("https://generativelanguage.googleapis.com/v1beta/models?key=abc")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "/gemini/v1beta/models", gotPath)
	assert.Equal(t, "key=abc", gotQuery)
}

func TestHTTPClientForEndpoint_Invalid(t *testing.T) {
	assert.Nil(t, httpClientForEndpoint("not a url"))
}
