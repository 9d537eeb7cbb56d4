package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hetulpatel/pairwatch/internal/classifier"
	"github.com/hetulpatel/pairwatch/internal/pairs"
)

// Report is the outcome for one newly observed pair.
type Report struct {
	CycleID    string
	ObservedAt time.Time
	Snapshot   pairs.Snapshot
	Verdict    classifier.Verdict
}

// Sink receives the reports produced by one polling cycle.
type Sink interface {
	Name() string
	Emit(ctx context.Context, reports []Report) error
}

// Multi fans reports out to every sink. A failing sink does not prevent the
// others from receiving the batch.
type Multi []Sink

func (m Multi) Name() string {
	return "multi"
}

func (m Multi) Emit(ctx context.Context, reports []Report) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Emit(ctx, reports); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
