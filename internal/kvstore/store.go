package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("kvstore: not found")

// Store persists opaque values by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory    = "memory"
	BackendFile      = "file"
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	// Path is the directory for the file backend.
	Path string
	// DSN is the sqlite data source, e.g. "file:cart.db".
	DSN string
	// ProjectID and Collection configure the firestore backend.
	ProjectID  string
	Collection string
}

// Open constructs the backend named in opts. An empty backend means memory.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return NewFile(opts.Path)
	case BackendSQLite:
		return NewSQLite(ctx, opts.DSN)
	case BackendFirestore:
		return NewFirestore(ctx, opts.ProjectID, opts.Collection)
	default:
		return nil, fmt.Errorf("kvstore: unknown backend %q", opts.Backend)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("kvstore: key is required")
	}
	return nil
}
