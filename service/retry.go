package service

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

// maxWriteAttempts bounds the read-decide-write cycle of a guarded
// ledger write
const maxWriteAttempts = 3

// withConflictRetry runs fn up to attempts times, retrying only when it
// reports ErrConflict. Any other outcome, success included, is returned
// as-is. The last conflict is returned once the budget is exhausted.
func withConflictRetry(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = fn(ctx)
		if err == nil || !errors.Is(err, ErrConflict) {
			return err
		}

		log.WithFields(log.Fields{
			"attempt":     attempt,
			"maxAttempts": attempts,
		}).Warn("Guarded write lost a race, retrying")
	}
	return err
}
