package kvstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestBackendsRoundTrip(t *testing.T) {
	ctx := context.Background()
	cases := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemory() },
		"file": func(t *testing.T) Store {
			s, err := NewFile(filepath.Join(t.TempDir(), "kv"))
			if err != nil {
				t.Fatalf("new file store: %v", err)
			}
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLite(ctx, "file:"+filepath.Join(t.TempDir(), "kv.db"))
			if err != nil {
				t.Fatalf("new sqlite store: %v", err)
			}
			return s
		},
	}

	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			store := build(t)
			t.Cleanup(func() { _ = store.Close() })

			if _, err := store.Get(ctx, "cartItems:abc"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := store.Set(ctx, "cartItems:abc", []byte(`[{"id":"1"}]`)); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := store.Set(ctx, "cartItems:abc", []byte(`[{"id":"2"}]`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, err := store.Get(ctx, "cartItems:abc")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(got) != `[{"id":"2"}]` {
				t.Fatalf("unexpected value %q", got)
			}
			if err := store.Delete(ctx, "cartItems:abc"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := store.Delete(ctx, "cartItems:abc"); err != nil {
				t.Fatalf("delete missing key should be a no-op: %v", err)
			}
			if _, err := store.Get(ctx, "cartItems:abc"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
		})
	}
}

func TestFileKeysStayInsideDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFile(dir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	p := store.path("../../etc/passwd")
	if filepath.Dir(p) != dir {
		t.Fatalf("expected key file inside %s, got %s", dir, p)
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), Options{Backend: "redis"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	s, err := Open(context.Background(), Options{})
	if err != nil {
		t.Fatalf("open default: %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Fatalf("expected memory backend by default, got %T", s)
	}
}

func TestRejectsEmptyKey(t *testing.T) {
	if err := NewMemory().Set(context.Background(), " ", nil); err == nil {
		t.Fatalf("expected error for blank key")
	}
}
