package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"organquiz/internal/config"
	"organquiz/internal/domain/quiz"
	"organquiz/internal/infrastructure/metrics"
)

// bedrockAPI is the slice of the Bedrock runtime client the generator needs.
type bedrockAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Client generates subject images through AWS Bedrock. Implements
// quiz.ImageSource: one Build→Invoke→Materialize pass per call, each failure
// reported as a typed error so the retry controller can classify it.
type Client struct {
	bedrock      bedrockAPI
	builder      *Builder
	materializer *Materializer
	modelID      string
	timeout      time.Duration
	breaker      *gobreaker.CircuitBreaker
	log          zerolog.Logger
}

func NewClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.BedrockRegion),
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	materializer, err := NewMaterializer(cfg.ScratchDir, log)
	if err != nil {
		return nil, err
	}

	client := &Client{
		bedrock:      bedrockruntime.NewFromConfig(awsCfg),
		builder:      NewBuilder(cfg),
		materializer: materializer,
		modelID:      cfg.BedrockModelID,
		timeout:      cfg.InvokeTimeout,
		log:          log.With().Str("component", "bedrock-client").Logger(),
	}

	if cfg.BreakerEnabled {
		client.breaker = newBreaker(cfg, client.log)
	}
	return client, nil
}

// newBreaker guards the provider against systemic outages: repeated
// transport failures open the circuit so a dead endpoint fails rounds fast
// instead of walking the whole pool. Refusals are per-subject policy
// decisions and do not count as failures.
func newBreaker(cfg *config.Config, log zerolog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "bedrock-invoke",
		Timeout: cfg.BreakerOpenInterval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var refusal *quiz.RefusalError
			return errors.As(err, &refusal)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("provider circuit breaker state change")
		},
	})
}

// GenerateImage runs one full generation attempt for the prompt.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (artifact *quiz.Artifact, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordGeneration(outcomeOf(err), time.Since(start).Seconds())
	}()

	body, err := json.Marshal(c.builder.Build(prompt))
	if err != nil {
		return nil, fmt.Errorf("marshal generation request: %w", err)
	}

	payload, err := c.invoke(ctx, body)
	if err != nil {
		return nil, err
	}
	return c.materializer.Materialize(payload)
}

func (c *Client) invoke(ctx context.Context, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	call := func() (interface{}, error) {
		out, err := c.bedrock.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
			ModelId:     aws.String(c.modelID),
			Body:        body,
			ContentType: aws.String("application/json"),
			Accept:      aws.String("application/json"),
		})
		if err != nil {
			return nil, classifyInvokeError(err)
		}
		return out.Body, nil
	}

	var (
		result interface{}
		err    error
	)
	if c.breaker != nil {
		result, err = c.breaker.Execute(call)
	} else {
		result, err = call()
	}
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &quiz.ProviderError{Op: "circuit_breaker", Err: err}
		}
		return nil, err
	}
	return result.([]byte), nil
}

// classifyInvokeError separates content-policy refusals, which are
// recoverable by switching subjects, from transport/auth/shape failures.
// Titan reports filter hits as a ValidationException naming the content
// filter.
func classifyInvokeError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode() == "ValidationException" && isFilterMessage(apiErr.ErrorMessage()) {
			return &quiz.RefusalError{Reason: apiErr.ErrorMessage()}
		}
		return &quiz.ProviderError{Op: apiErr.ErrorCode(), Err: err}
	}
	return &quiz.ProviderError{Op: "invoke_model", Err: err}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case isRefusal(err):
		return "refused"
	case isDecodeError(err):
		return "decode_error"
	default:
		return "provider_error"
	}
}

func isRefusal(err error) bool {
	var refusal *quiz.RefusalError
	return errors.As(err, &refusal)
}

func isDecodeError(err error) bool {
	var decode *quiz.DecodeError
	return errors.As(err, &decode)
}
