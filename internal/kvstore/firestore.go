package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultCollection = "webKV"

// Firestore stores each key as a document in one collection.
// FIRESTORE_EMULATOR_HOST is honoured by the client library.
type Firestore struct {
	client     *firestore.Client
	collection string
}

type firestoreDoc struct {
	Value     []byte    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// NewFirestore connects to projectID and stores documents under collection.
func NewFirestore(ctx context.Context, projectID, collection string) (*Firestore, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, errors.New("kvstore: firestore backend requires a project id")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("kvstore: firestore client: %w", err)
	}
	return NewFirestoreWithClient(client, collection), nil
}

// NewFirestoreWithClient wraps an existing client.
func NewFirestoreWithClient(client *firestore.Client, collection string) *Firestore {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = defaultCollection
	}
	return &Firestore{client: client, collection: collection}
}

func (f *Firestore) doc(key string) *firestore.DocumentRef {
	// document ids may not contain '/'
	return f.client.Collection(f.collection).Doc(strings.ReplaceAll(key, "/", "_"))
}

func (f *Firestore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	snap, err := f.doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kvstore: firestore get %s: %w", key, err)
	}
	var doc firestoreDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("kvstore: firestore decode %s: %w", key, err)
	}
	return doc.Value, nil
}

func (f *Firestore) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := f.doc(key).Set(ctx, firestoreDoc{Value: value, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("kvstore: firestore set %s: %w", key, err)
	}
	return nil
}

func (f *Firestore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if _, err := f.doc(key).Delete(ctx); err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("kvstore: firestore delete %s: %w", key, err)
	}
	return nil
}

func (f *Firestore) Close() error { return f.client.Close() }
