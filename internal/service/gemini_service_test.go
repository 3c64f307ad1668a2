package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newRetryService() *GeminiService {
	return &GeminiService{
		MaxRetries:        2,
		BaseDelay:         time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		RequestTimeout:    time.Second,
		circuitBreakerMax: 2,
	}
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("retries transient errors", func(t *testing.T) {
		s := newRetryService()
		calls := 0
		err := s.withRetry(ctx, "op", func(context.Context) error {
			calls++
			if calls < 3 {
				return genai.APIError{Code: 503, Message: "overloaded"}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		n, open := s.CircuitBreakerStatus()
		assert.Zero(t, n)
		assert.False(t, open)
	})

	t.Run("stops on client errors", func(t *testing.T) {
		s := newRetryService()
		calls := 0
		err := s.withRetry(ctx, "op", func(context.Context) error {
			calls++
			return genai.APIError{Code: 400, Message: "bad request"}
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("permanent errors are returned as is", func(t *testing.T) {
		s := newRetryService()
		sentinel := errors.New("empty response")
		err := s.withRetry(ctx, "op", func(context.Context) error {
			return permanent{sentinel}
		})
		assert.Equal(t, sentinel, err)
	})

	t.Run("circuit opens after repeated failures", func(t *testing.T) {
		s := newRetryService()
		fail := func(context.Context) error { return fmt.Errorf("connection refused") }
		for i := 0; i < 2; i++ {
			require.Error(t, s.withRetry(ctx, "op", fail))
		}
		_, open := s.CircuitBreakerStatus()
		require.True(t, open)

		calls := 0
		err := s.withRetry(ctx, "op", func(context.Context) error { calls++; return nil })
		assert.ErrorContains(t, err, "circuit breaker open")
		assert.Zero(t, calls)

		s.ResetCircuitBreaker()
		require.NoError(t, s.withRetry(ctx, "op", func(context.Context) error { return nil }))
	})
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(genai.APIError{Code: 429}))
	assert.True(t, isRetryableError(&genai.APIError{Code: 502}))
	assert.True(t, isRetryableError(errors.New("read: connection reset by peer")))
	assert.False(t, isRetryableError(genai.APIError{Code: 404}))
	assert.False(t, isRetryableError(context.Canceled))
	assert.False(t, isRetryableError(nil))
}

func TestValidateEmbeddingResponse(t *testing.T) {
	_, err := validateEmbeddingResponse(nil)
	assert.Error(t, err)

	_, err = validateEmbeddingResponse(&genai.EmbedContentResponse{})
	assert.Error(t, err)

	_, err = validateEmbeddingResponse(&genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, float32(math.NaN())}}},
	})
	assert.Error(t, err)

	values, err := validateEmbeddingResponse(&genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, 0.2}}},
	})
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, values)
}
