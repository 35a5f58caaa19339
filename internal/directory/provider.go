// Package directory loads and normalizes the community directory. Data can
// come from Postgres, a JSON export, or a compiled-in static roster; a
// provider chain tries each source in order so the site keeps rendering when
// the database is unavailable.
package directory

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/harborview-living/directory-cli/internal/model"
)

// ErrNoData signals that a provider has no communities to offer. The chain
// treats it as "try the next source", not a failure.
var ErrNoData = eris.New("directory: no data")

// Provider supplies the community list from one source.
type Provider interface {
	Name() string
	Load(ctx context.Context) ([]model.Community, error)
}

// Chain tries providers in order and returns the first non-empty result.
type Chain struct {
	providers []Provider
}

// NewChain builds a Chain over the given providers.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Load implements Provider. Provider errors downgrade to a fallthrough; only
// when every source fails or is empty does Load return ErrNoData.
func (c *Chain) Load(ctx context.Context) ([]model.Community, error) {
	log := zap.L().With(zap.String("component", "directory.chain"))

	for _, p := range c.providers {
		communities, err := p.Load(ctx)
		if err != nil {
			if !eris.Is(err, ErrNoData) {
				log.Debug("provider failed, trying next",
					zap.String("provider", p.Name()),
					zap.Error(err),
				)
			}
			continue
		}
		if len(communities) == 0 {
			continue
		}
		log.Debug("directory loaded",
			zap.String("provider", p.Name()),
			zap.Int("communities", len(communities)),
		)
		return communities, nil
	}

	return nil, ErrNoData
}

// Name implements Provider.
func (c *Chain) Name() string { return "chain" }
