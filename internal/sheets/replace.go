package sheets

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"financas/internal/core"
)

const replaceInsertConcurrency = 8

// ReplaceCharges makes charges the whole card-charge collection of st.
// Stores implementing ChargeReplacer do it in one step; for the rest every
// existing charge is deleted and the new ones are inserted concurrently.
// Every charge is validated before anything is deleted, so only a store
// failure part way can leave a partial collection.
func ReplaceCharges(ctx context.Context, st Store, charges []core.CardCharge) error {
	if r, ok := st.(ChargeReplacer); ok {
		return r.ReplaceCharges(ctx, charges)
	}

	for _, c := range charges {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("charge %s: %w", c.ID, err)
		}
	}

	snap, err := st.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load charges: %w", err)
	}
	for _, c := range snap.Charges {
		if err := st.DeleteCharge(ctx, c.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("delete charge %s: %w", c.ID, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(replaceInsertConcurrency)
	for _, c := range charges {
		g.Go(func() error {
			if err := st.InsertCharge(gctx, c); err != nil {
				return fmt.Errorf("insert charge %s: %w", c.ID, err)
			}
			return nil
		})
	}
	return g.Wait()
}
