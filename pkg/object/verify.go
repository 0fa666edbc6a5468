package object

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// VerifyProblem describes one object that failed verification.
type VerifyProblem struct {
	Hash Hash
	Err  error
}

// Verify re-reads every stored object, checking that it decompresses,
// decodes, and hashes to its own name. Objects that fail are reported as
// problems; I/O errors unrelated to a specific object abort the run.
func (s *Store) Verify(ctx context.Context, workers int) ([]VerifyProblem, error) {
	if workers <= 0 {
		workers = 4
	}

	var (
		mu       sync.Mutex
		problems []VerifyProblem
	)
	report := func(h Hash, err error) {
		mu.Lock()
		defer mu.Unlock()
		problems = append(problems, VerifyProblem{Hash: h, Err: err})
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for h, err := range s.All() {
		if err != nil {
			_ = eg.Wait()
			return nil, fmt.Errorf("verify: %w", err)
		}
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			envelope, err := s.Get(h)
			if err != nil {
				if errors.Is(err, ErrCorrupt) {
					report(h, err)
					return nil
				}
				return err
			}
			if got := HashEnvelope(envelope); got != h {
				report(h, &CorruptError{Hash: h, Reason: "content hashes to " + string(got), Declared: -1, Actual: -1})
				return nil
			}
			if _, err := Decode(envelope); err != nil {
				report(h, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	slices.SortFunc(problems, func(a, b VerifyProblem) int {
		switch {
		case a.Hash < b.Hash:
			return -1
		case a.Hash > b.Hash:
			return 1
		}
		return 0
	})
	s.logger.Debug("verify finished", zap.Int("problems", len(problems)))
	return problems, nil
}
