package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

// storeFactories lets every contract test run against each implementation.
func storeFactories(t *testing.T) map[string]func() Store {
	t.Helper()
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"sqlite": func() Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "loopz.db"))
			if err != nil {
				t.Fatalf("NewSQLiteStore: %v", err)
			}
			return s
		},
	}
}

func TestStore_GetMissingKey(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			defer s.Close()

			_, err := s.Get(context.Background(), KeyLogs)
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			defer s.Close()
			ctx := context.Background()

			if err := s.Put(ctx, KeyGoals, []byte(`{"buildingHours":10}`)); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			got, err := s.Get(ctx, KeyGoals)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != `{"buildingHours":10}` {
				t.Errorf("Get() = %s", got)
			}
		})
	}
}

func TestStore_PutOverwrites(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			defer s.Close()
			ctx := context.Background()

			_ = s.Put(ctx, KeyStreaks, []byte("1"))
			if err := s.Put(ctx, KeyStreaks, []byte("2")); err != nil {
				t.Fatalf("second Put() error = %v", err)
			}
			got, _ := s.Get(ctx, KeyStreaks)
			if string(got) != "2" {
				t.Errorf("Get() = %s, want 2", got)
			}
		})
	}
}

func TestStore_DeleteAndKeys(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			defer s.Close()
			ctx := context.Background()

			for _, k := range []string{KeyStreaks, KeyLogs, KeyGoals} {
				if err := s.Put(ctx, k, []byte("{}")); err != nil {
					t.Fatalf("Put(%s) error = %v", k, err)
				}
			}
			if err := s.Delete(ctx, KeyGoals); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if err := s.Delete(ctx, "missing"); err != nil {
				t.Errorf("Delete(missing) error = %v, want nil", err)
			}

			keys, err := s.Keys(ctx)
			if err != nil {
				t.Fatalf("Keys() error = %v", err)
			}
			want := []string{KeyLogs, KeyStreaks}
			if !reflect.DeepEqual(keys, want) {
				t.Errorf("Keys() = %v, want %v", keys, want)
			}
		})
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Put(ctx, KeyLogs, []byte("abc"))

	got, _ := s.Get(ctx, KeyLogs)
	got[0] = 'z'

	again, _ := s.Get(ctx, KeyLogs)
	if string(again) != "abc" {
		t.Errorf("stored value mutated through returned slice: %s", again)
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	s.Close()
	if err := s.Put(context.Background(), KeyLogs, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Put() after Close error = %v, want ErrClosed", err)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "loopz.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := s.Put(ctx, KeyLogs, []byte(`{}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	s.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.Get(ctx, KeyLogs); err != nil {
		t.Errorf("Get() after reopen error = %v", err)
	}
	if ts, err := reopened.UpdatedAt(ctx, KeyLogs); err != nil || ts.IsZero() {
		t.Errorf("UpdatedAt() = %v, %v", ts, err)
	}
}

func TestSQLiteStore_InMemory(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Put(context.Background(), KeyGoals, []byte("{}")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
}
