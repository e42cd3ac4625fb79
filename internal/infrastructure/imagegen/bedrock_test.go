package imagegen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"organquiz/internal/config"
	"organquiz/internal/domain/quiz"
)

type fakeBedrock struct {
	invoke func(ctx context.Context, params *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error)
	calls  int
}

func (f *fakeBedrock) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.calls++
	return f.invoke(ctx, params)
}

func newTestClient(t *testing.T, bedrock bedrockAPI) *Client {
	t.Helper()
	materializer, err := NewMaterializer(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	return &Client{
		bedrock:      bedrock,
		builder:      NewBuilder(testConfig()),
		materializer: materializer,
		modelID:      "amazon.titan-image-generator-v1",
		timeout:      5 * time.Second,
		log:          zerolog.Nop(),
	}
}

func TestGenerateImage_Success(t *testing.T) {
	fake := &fakeBedrock{
		invoke: func(_ context.Context, params *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
			assert.Equal(t, "amazon.titan-image-generator-v1", *params.ModelId)
			assert.Equal(t, "application/json", *params.ContentType)
			return &bedrockruntime.InvokeModelOutput{Body: titanBody(t, pngBytes())}, nil
		},
	}
	client := newTestClient(t, fake)

	artifact, err := client.GenerateImage(context.Background(), "A clear medical illustration of the human heart.")
	require.NoError(t, err)
	assert.Equal(t, "image/png", artifact.MimeType)
	assert.Equal(t, 1, fake.calls)
}

func TestGenerateImage_FilterRejectionIsRefusal(t *testing.T) {
	fake := &fakeBedrock{
		invoke: func(context.Context, *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
			return nil, &smithy.GenericAPIError{
				Code:    "ValidationException",
				Message: "This request has been blocked by our content filters.",
			}
		},
	}
	client := newTestClient(t, fake)

	_, err := client.GenerateImage(context.Background(), "prompt")
	var refusal *quiz.RefusalError
	require.ErrorAs(t, err, &refusal)
}

func TestGenerateImage_TransportFailureIsProviderError(t *testing.T) {
	fake := &fakeBedrock{
		invoke: func(context.Context, *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
			return nil, errors.New("connection reset")
		},
	}
	client := newTestClient(t, fake)

	_, err := client.GenerateImage(context.Background(), "prompt")
	var providerErr *quiz.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "invoke_model", providerErr.Op)
}

func TestGenerateImage_UndecodableBody(t *testing.T) {
	fake := &fakeBedrock{
		invoke: func(context.Context, *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
			return &bedrockruntime.InvokeModelOutput{Body: []byte("{not json")}, nil
		},
	}
	client := newTestClient(t, fake)

	_, err := client.GenerateImage(context.Background(), "prompt")
	var decodeErr *quiz.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func newTestClientWithBreaker(t *testing.T, bedrock bedrockAPI, maxFailures uint32) *Client {
	t.Helper()
	client := newTestClient(t, bedrock)
	client.breaker = newBreaker(&config.Config{
		BreakerMaxFailures:  maxFailures,
		BreakerOpenInterval: time.Minute,
	}, zerolog.Nop())
	return client
}

func TestGenerateImage_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	fake := &fakeBedrock{
		invoke: func(context.Context, *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
			return nil, errors.New("connection refused")
		},
	}
	client := newTestClientWithBreaker(t, fake, 2)

	for i := 0; i < 2; i++ {
		_, err := client.GenerateImage(context.Background(), "prompt")
		var providerErr *quiz.ProviderError
		require.ErrorAs(t, err, &providerErr)
		assert.Equal(t, "invoke_model", providerErr.Op)
	}
	require.Equal(t, 2, fake.calls)

	// Circuit is open: the call fails fast without reaching the provider.
	_, err := client.GenerateImage(context.Background(), "prompt")
	var providerErr *quiz.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "circuit_breaker", providerErr.Op)
	assert.Equal(t, 2, fake.calls)
}

func TestGenerateImage_RefusalsDoNotTripBreaker(t *testing.T) {
	fake := &fakeBedrock{
		invoke: func(context.Context, *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
			return nil, &smithy.GenericAPIError{
				Code:    "ValidationException",
				Message: "blocked by our content filters",
			}
		},
	}
	client := newTestClientWithBreaker(t, fake, 2)

	for i := 0; i < 5; i++ {
		_, err := client.GenerateImage(context.Background(), "prompt")
		var refusal *quiz.RefusalError
		require.ErrorAs(t, err, &refusal, "call %d should still reach the provider", i+1)
	}
	assert.Equal(t, 5, fake.calls, "refusals must not open the circuit")
}

func TestClassifyInvokeError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect string
	}{
		{
			name: "validation exception naming the filter",
			err: &smithy.GenericAPIError{
				Code:    "ValidationException",
				Message: "blocked by our content filters",
			},
			expect: "refusal",
		},
		{
			name: "validation exception about request shape",
			err: &smithy.GenericAPIError{
				Code:    "ValidationException",
				Message: "invalid value for imageWidth",
			},
			expect: "provider",
		},
		{
			name: "throttling",
			err: &smithy.GenericAPIError{
				Code:    "ThrottlingException",
				Message: "rate exceeded",
			},
			expect: "provider",
		},
		{
			name:   "plain transport error",
			err:    errors.New("dial tcp: i/o timeout"),
			expect: "provider",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			classified := classifyInvokeError(tc.err)
			var refusal *quiz.RefusalError
			var providerErr *quiz.ProviderError
			switch tc.expect {
			case "refusal":
				require.ErrorAs(t, classified, &refusal)
			case "provider":
				require.ErrorAs(t, classified, &providerErr)
			}
		})
	}
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, "success", outcomeOf(nil))
	assert.Equal(t, "refused", outcomeOf(&quiz.RefusalError{Reason: "filtered"}))
	assert.Equal(t, "decode_error", outcomeOf(&quiz.DecodeError{Reason: "empty"}))
	assert.Equal(t, "provider_error", outcomeOf(&quiz.ProviderError{Op: "invoke_model", Err: errors.New("boom")}))
	assert.Equal(t, "provider_error", outcomeOf(errors.New("unclassified")))
}
