package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/simulate"
	"github.com/Zachdehooge/riskmap-dashboard/internal/store"
)

// SeedCompanies fills an empty company table with simulated credit
// profiles. It returns how many were inserted; a populated table is left
// alone.
func SeedCompanies(ctx context.Context, st *store.Store, seed int64, now time.Time) (int, error) {
	n, err := st.CountCompanies(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	profiles := simulate.New(seed, model.AllClientTypes()).CreditProfiles(now)
	if err := st.InsertCompanies(ctx, profiles); err != nil {
		return 0, fmt.Errorf("seed companies: %w", err)
	}
	log.Printf("[server] seeded %d companies", len(profiles))
	return len(profiles), nil
}
