package sink

import (
	"context"
	"errors"
	"io"

	"github.com/nao1215/spider/internal/model"
)

// Sink persists a matrix under a destination tag.
type Sink interface {
	Save(ctx context.Context, matrix model.Matrix, tag string) error
}

// Multi saves each matrix to every sink in order.
// It stops at the first failure, so later sinks may miss that matrix.
type Multi struct {
	sinks []Sink
}

// NewMulti creates a fan-out sink.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Save implements Sink.
func (m *Multi) Save(ctx context.Context, matrix model.Matrix, tag string) error {
	for _, s := range m.sinks {
		if err := s.Save(ctx, matrix, tag); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if c, ok := s.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of sinks.
func (m *Multi) Len() int {
	return len(m.sinks)
}

func checkMatrix(matrix model.Matrix) error {
	if len(matrix.Header()) == 0 {
		return ErrEmptyMatrix
	}
	return nil
}
