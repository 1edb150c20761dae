package storage

import (
	"strings"

	pkglogger "github.com/modvault/modvault-backend/pkg/logger"
)

// Resolver maps (pathOrURL, bucket) to an absolute public URL
type Resolver struct {
	bases map[string]string
}

// NewResolver bases maps bucket name to public base URL
func NewResolver(bases map[string]string) *Resolver {
	trimmed := make(map[string]string, len(bases))
	for bucket, base := range bases {
		trimmed[bucket] = strings.TrimRight(base, "/")
	}
	return &Resolver{bases: trimmed}
}

// Known reports whether bucket has a configured base URL
func (r *Resolver) Known(bucket string) bool {
	_, ok := r.bases[bucket]
	return ok
}

// Resolve returns absolute http(s) URLs unchanged, "" for empty input and
// base/path otherwise. A path in an unknown bucket is returned as given.
func (r *Resolver) Resolve(pathOrURL, bucket string) string {
	p := strings.TrimSpace(pathOrURL)
	if p == "" || IsAbsoluteURL(p) {
		return p
	}

	base, ok := r.bases[bucket]
	if !ok {
		pkglogger.GetLogger().Debug().Str("bucket", bucket).Msg("no public base url for bucket")
		return p
	}
	return base + "/" + strings.TrimLeft(p, "/")
}

// IsAbsoluteURL http:// or https:// (case-insensitive)
func IsAbsoluteURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
