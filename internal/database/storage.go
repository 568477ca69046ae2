package database

import (
	"context"
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/listatree/hypothesis/internal/backend"
	"github.com/listatree/hypothesis/internal/codec"
	"github.com/listatree/hypothesis/internal/converter"
	"github.com/listatree/hypothesis/internal/descriptor"
	"github.com/listatree/hypothesis/internal/strategy"
)

// Storage saves and fetches the examples of one descriptor. It is created by
// ExampleDatabase.StorageFor and never changes afterwards.
type Storage struct {
	descriptor  descriptor.Descriptor
	fingerprint string
	key         string
	converter   converter.Converter
	strategy    strategy.Strategy
	backend     backend.Backend
	logger      *zap.Logger
}

// Key returns the backend key, the descriptor's display string
func (s *Storage) Key() string {
	return s.key
}

// Descriptor returns the descriptor the storage was created for
func (s *Storage) Descriptor() descriptor.Descriptor {
	return s.descriptor
}

// Converter returns the converter shared by every storage of this shape
func (s *Storage) Converter() converter.Converter {
	return s.converter
}

// Encode validates v and returns the JSON text Save would store for it
func (s *Storage) Encode(v any) (string, error) {
	if !s.strategy.CouldHaveProduced(v) {
		err := newShapeMismatch(v, s.descriptor)
		s.logger.Warn("refusing to save example",
			zap.String("key", s.key),
			zap.String("value", err.Value))
		return "", err
	}

	encoded, err := s.converter.Encode(v)
	if err != nil {
		return "", fmt.Errorf("encoding example for %s: %w", s.key, err)
	}
	text, err := codec.Marshal(encoded)
	if err != nil {
		return "", fmt.Errorf("serializing example for %s: %w", s.key, err)
	}
	return text, nil
}

// Save validates, encodes and stores v. Nothing is written when validation
// or encoding fails. Saving an already stored example is a no-op.
func (s *Storage) Save(ctx context.Context, v any) error {
	text, err := s.Encode(v)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, s.key, text); err != nil {
		return fmt.Errorf("saving example for %s: %w", s.key, err)
	}
	s.logger.Debug("saved example", zap.String("key", s.key), zap.String("text", text))
	return nil
}

// SaveEncoded stores an example given as JSON text. The text is decoded and
// validated first, then stored in canonical form. The decoded value is
// returned.
func (s *Storage) SaveEncoded(ctx context.Context, text string) (any, error) {
	v, err := s.Decode(text)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Decode turns stored JSON text back into a value and validates it
func (s *Storage) Decode(text string) (any, error) {
	j, err := codec.Unmarshal(text)
	if err != nil {
		return nil, fmt.Errorf("reading example for %s: %w", s.key, err)
	}
	v, err := s.converter.Decode(j)
	if err != nil {
		return nil, fmt.Errorf("decoding example for %s: %w", s.key, err)
	}
	if !s.strategy.CouldHaveProduced(v) {
		return nil, newShapeMismatch(v, s.descriptor)
	}
	return v, nil
}

// Fetch returns the stored examples as a lazy sequence. Every iteration
// reads the backend again. Iteration stops at the first record that cannot
// be decoded or no longer matches the descriptor, yielding its error.
func (s *Storage) Fetch(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		texts, err := s.backend.Fetch(ctx, s.key)
		if err != nil {
			yield(nil, fmt.Errorf("fetching examples for %s: %w", s.key, err))
			return
		}
		s.logger.Debug("fetched examples", zap.String("key", s.key), zap.Int("count", len(texts)))

		for _, text := range texts {
			v, err := s.Decode(text)
			if err != nil {
				s.logger.Warn("invalid stored example",
					zap.String("key", s.key),
					zap.String("text", text),
					zap.Error(err))
				yield(nil, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// FetchAll collects Fetch into a slice
func (s *Storage) FetchAll(ctx context.Context) ([]any, error) {
	var out []any
	for v, err := range s.Fetch(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
