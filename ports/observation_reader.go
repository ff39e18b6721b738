package ports

import (
	"context"

	"rxprev/domain/prevalence"
)

// ObservationReader loads a whole observation collection into memory.
// A record missing a required field fails the read with
// core.ErrMalformedObservation; no partial batch is returned.
type ObservationReader interface {
	ReadObservations(ctx context.Context) (*prevalence.Batch, error)
}
