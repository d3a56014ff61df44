// Package storage selects and constructs the concrete adapter behind
// domain.Storage from a DATABASE_URL connection string, mirroring the
// backend-registry pattern used for pluggable object-storage backends:
// each adapter package registers itself by scheme in an init() function,
// and this package never imports either adapter directly.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/faiscadev/flaglite/internal/domain"
)

// Storage is an alias for domain.Storage so adapter packages and callers
// in this package don't need to import domain directly for the common
// case.
type Storage = domain.Storage

// FactoryFunc constructs a domain.Storage from a DSN with its scheme
// prefix already stripped.
type FactoryFunc func(ctx context.Context, dsn string) (Storage, error)

var factories = make(map[string]FactoryFunc)

// Register is called from each adapter package's init().
func Register(scheme string, factory FactoryFunc) {
	factories[scheme] = factory
}

// New dispatches to the registered factory whose scheme prefixes
// databaseURL, choosing the adapter at startup from the connection
// string alone.
func New(ctx context.Context, databaseURL string) (Storage, error) {
	scheme, rest, ok := strings.Cut(databaseURL, ":")
	if !ok {
		return nil, fmt.Errorf("invalid DATABASE_URL %q: missing scheme", databaseURL)
	}

	factory, ok := factories[scheme]
	if !ok {
		return nil, fmt.Errorf("unsupported storage backend %q (must be 'sqlite' or 'postgres')", scheme)
	}

	return factory(ctx, rest)
}
