package sheets

import (
	"context"

	"feira/internal/core"
)

// TripWriter is the outbound port for the spreadsheet export: one call
// appends every line item of a finalized trip.
type TripWriter interface {
	Append(ctx context.Context, trip core.Trip) error
}
