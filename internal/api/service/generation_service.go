package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"github.com/AppKaki/blockly-ulisp/internal/events"
	"github.com/AppKaki/blockly-ulisp/internal/gen"
	"github.com/AppKaki/blockly-ulisp/internal/workspace"
	"github.com/AppKaki/blockly-ulisp/pkg"
)

// ErrInvalidDocument marks requests whose document cannot be loaded or
// fails validation.
var ErrInvalidDocument = errors.New("invalid workspace document")

// Cache keeps generation results between requests.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

type GenerateInput struct {
	Format   workspace.Format
	Document []byte
	// Options replaces the service defaults when set.
	Options *gen.Options
	// Overrides is a JSON object of option fields applied on top of Options
	// or the defaults. Absent fields keep their value.
	Overrides json.RawMessage
}

type GenerateOutput struct {
	Result *gen.Result
	Digest string
	Cached bool
}

type GenerationService struct {
	logger    zerolog.Logger
	defaults  gen.Options
	generator *gen.Generator
	cache     Cache
	publisher events.Publisher
}

type GenerationOption func(*GenerationService)

func WithCache(c Cache) GenerationOption {
	return func(s *GenerationService) { s.cache = c }
}

func WithPublisher(p events.Publisher) GenerationOption {
	return func(s *GenerationService) { s.publisher = p }
}

func NewGenerationService(logger zerolog.Logger, defaults gen.Options, opts ...GenerationOption) *GenerationService {
	s := &GenerationService{
		logger:    logger,
		defaults:  defaults,
		generator: gen.NewGenerator(defaults, logger),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Generate loads the document and turns it into program text. Results are
// served from and stored in the cache when one is configured; fresh results
// are announced on the publisher. Neither cache nor publisher failures fail
// the call.
func (s *GenerationService) Generate(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	generator, err := s.generatorFor(in)
	if err != nil {
		return nil, err
	}
	opts := generator.Options()
	digest, err := Digest(in.Format, in.Document, opts)
	if err != nil {
		return nil, err
	}
	key := "gen:" + digest

	if s.cache != nil {
		var cached gen.Result
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to read generation cache")
		} else if found {
			s.logger.Debug().Str("digest", digest).Msg("Generation served from cache")
			return &GenerateOutput{Result: &cached, Digest: digest, Cached: true}, nil
		}
	}

	ws, err := workspace.Load(in.Format, in.Document, "request")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := workspace.Validate(ws); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	res, err := s.run(generator, ws)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, res); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to store generation result")
		}
	}
	if s.publisher != nil {
		ev := events.ProgramGenerated{
			Digest:      digest,
			Format:      string(in.Format),
			Bytes:       len(res.Code),
			Definitions: len(res.Definitions),
			GeneratedAt: time.Now().UTC(),
		}
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.Warn().Err(err).Str("digest", digest).Msg("Failed to publish generation event")
		}
	}
	return &GenerateOutput{Result: res, Digest: digest}, nil
}

// Defaults returns the options requests start from.
func (s *GenerationService) Defaults() gen.Options {
	return s.defaults
}

// generatorFor returns the shared generator unless the request changes the
// options.
func (s *GenerationService) generatorFor(in GenerateInput) (*gen.Generator, error) {
	raw := bytes.TrimSpace(in.Overrides)
	hasOverrides := len(raw) > 0 && string(raw) != "null"
	if in.Options == nil && !hasOverrides {
		return s.generator, nil
	}
	opts := s.defaults
	if in.Options != nil {
		opts = *in.Options
	}
	if hasOverrides {
		if err := json.Unmarshal(raw, &opts); err != nil {
			return nil, fmt.Errorf("%w: options: %w", ErrInvalidDocument, err)
		}
	}
	if err := pkg.Validate(&opts); err != nil {
		return nil, fmt.Errorf("%w: options: %w", ErrInvalidDocument, err)
	}
	return gen.NewGenerator(opts, s.logger), nil
}

// run converts a panic inside a block handler into an error so one bad
// document cannot take the process down.
func (s *GenerationService) run(generator *gen.Generator, ws *workspace.Workspace) (res *gen.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("Code generation panicked")
			res, err = nil, fmt.Errorf("generation failed: %v", r)
		}
	}()
	return generator.Generate(ws)
}

// Digest identifies a generation request with a BLAKE2b-256 hash: the same
// document, format and options always give the same digest.
func Digest(format workspace.Format, document []byte, opts gen.Options) (string, error) {
	if format == "" {
		format = workspace.FormatJSON
	}
	encoded, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("encode options: %w", err)
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	h.Write([]byte(format))
	h.Write([]byte{0})
	h.Write(encoded)
	h.Write([]byte{0})
	h.Write(document)
	return hex.EncodeToString(h.Sum(nil)), nil
}
