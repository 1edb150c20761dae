package slug

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/modvault/modvault-backend/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultMaxAttempts disambiguated candidates tried before giving up
const DefaultMaxAttempts = 5

var slugCollisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "slug_collisions_total",
		Help: "Slug candidates rejected because another record already uses them",
	},
	[]string{"table"},
)

// Lookup reports whether a slug is taken in a table by any record other than excludeID
type Lookup interface {
	SlugExists(ctx context.Context, table, slug, excludeID string) (bool, error)
}

// Resolver finds a free slug for a title. The unique index on each table stays
// the authoritative guard; this check only avoids the common collision.
type Resolver struct {
	lookup      Lookup
	maxAttempts int
	token       func() string
}

// NewResolver creates a Resolver; maxAttempts < 1 falls back to DefaultMaxAttempts
func NewResolver(lookup Lookup, maxAttempts int) *Resolver {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Resolver{
		lookup:      lookup,
		maxAttempts: maxAttempts,
		token:       RandomToken,
	}
}

// WithTokenSource replaces the disambiguator generator
func (r *Resolver) WithTokenSource(fn func() string) *Resolver {
	r.token = fn
	return r
}

// Resolve returns Generate(title) when it is free in table, otherwise the first
// free Generate(title, token). excludeID is the record being edited ("" on create).
func (r *Resolver) Resolve(ctx context.Context, title, table, excludeID string) (string, error) {
	candidate := Generate(title, "")
	if candidate == "" {
		return "", common.NewValidationError("title", "must contain at least one letter or digit")
	}

	taken, err := r.lookup.SlugExists(ctx, table, candidate, excludeID)
	if err != nil {
		return "", err
	}
	if !taken {
		return candidate, nil
	}

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		slugCollisionsTotal.WithLabelValues(table).Inc()

		next := Generate(title, r.token())
		taken, err = r.lookup.SlugExists(ctx, table, next, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return next, nil
		}
	}

	slugCollisionsTotal.WithLabelValues(table).Inc()
	return "", &common.SlugGenerationFailedError{
		Table:     table,
		Candidate: candidate,
		Attempts:  r.maxAttempts,
	}
}

// RandomToken 8 hex characters taken from a random UUID
func RandomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
