package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"doc-qa/internal/llm"
	"doc-qa/internal/logger"
)

func TestProbeKeepsWorkingModelsInOrder(t *testing.T) {
	client := new(llm.MockClient)
	client.On("Generate", mock.Anything, "a", mock.Anything).Return("", &llm.Error{Kind: llm.KindModelNotFound, Err: errors.New("404")}).Once()
	client.On("Generate", mock.Anything, "b", mock.Anything).Return("", rateLimited("b")).Once()
	client.On("Generate", mock.Anything, "c", mock.MatchedBy(func(r llm.Request) bool { return r.MaxTokens == 1 })).Return("H", nil).Once()

	got, err := Probe(context.Background(), logger.Discard(), client, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, got)
	client.AssertExpectations(t)
}

func TestProbeNoSurvivorsKeepsConfiguredList(t *testing.T) {
	client := new(llm.MockClient)
	client.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("boom"))

	got, err := Probe(context.Background(), logger.Discard(), client, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestProbeInvalidCredentialIsFatal(t *testing.T) {
	client := new(llm.MockClient)
	client.On("Generate", mock.Anything, "a", mock.Anything).
		Return("", &llm.Error{Kind: llm.KindInvalidCredential, Err: errors.New("401")}).Once()

	_, err := Probe(context.Background(), logger.Discard(), client, []string{"a", "b"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
