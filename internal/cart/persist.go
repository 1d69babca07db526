package cart

import (
	"context"
	"errors"
	"strings"

	"thiepcuoi.vn/web/internal/kvstore"
)

// StorageKey is the fixed key the serialized item list lives under.
const StorageKey = "cartItems"

// Persister reads and writes the serialized item list for one browser session.
// Load returns nil data when nothing has been stored yet.
type Persister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// SessionKey scopes StorageKey to a browser session.
func SessionKey(sessionID string) string {
	return StorageKey + ":" + strings.TrimSpace(sessionID)
}

// KVPersister stores the cart under a single key of a kvstore.Store.
type KVPersister struct {
	Store kvstore.Store
	Key   string
}

// NewKVPersister binds a kvstore to the session's cart key.
func NewKVPersister(store kvstore.Store, sessionID string) KVPersister {
	return KVPersister{Store: store, Key: SessionKey(sessionID)}
}

func (p KVPersister) Load(ctx context.Context) ([]byte, error) {
	if p.Store == nil {
		return nil, errors.New("cart: storage unavailable")
	}
	b, err := p.Store.Get(ctx, p.Key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	return b, err
}

func (p KVPersister) Save(ctx context.Context, data []byte) error {
	if p.Store == nil {
		return errors.New("cart: storage unavailable")
	}
	return p.Store.Set(ctx, p.Key, data)
}
