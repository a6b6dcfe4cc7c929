// Package ledgertest is the conformance suite every ledger storage
// backend must pass.
package ledgertest

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/glyphforge/sphinx/lib/ledger"
)

// Common runs the shared backend contract against a factory and its
// parameters.
func Common(t *testing.T, factory ledger.Factory, data json.RawMessage) {
	t.Helper()

	if err := factory.Valid(data); err != nil {
		t.Fatalf("config does not validate: %v", err)
	}

	st, err := factory.Build(t.Context(), data)
	if err != nil {
		t.Fatalf("can't build store: %v", err)
	}

	t.Run("get missing", func(t *testing.T) {
		if _, err := st.Get(t.Context(), "ledgertest:missing"); !errors.Is(err, ledger.ErrNotFound) {
			t.Errorf("want ledger.ErrNotFound, got: %v", err)
		}
	})

	t.Run("set get roundtrip", func(t *testing.T) {
		want := []byte("hello")
		if err := st.Set(t.Context(), "ledgertest:roundtrip", want, 0); err != nil {
			t.Fatalf("can't set: %v", err)
		}

		got, err := st.Get(t.Context(), "ledgertest:roundtrip")
		if err != nil {
			t.Fatalf("can't get: %v", err)
		}

		if !bytes.Equal(got, want) {
			t.Errorf("want %q, got: %q", want, got)
		}
	})

	t.Run("set overwrites", func(t *testing.T) {
		key := "ledgertest:overwrite"
		if err := st.Set(t.Context(), key, []byte("one"), 0); err != nil {
			t.Fatalf("can't set: %v", err)
		}
		if err := st.Set(t.Context(), key, []byte("two"), 0); err != nil {
			t.Fatalf("can't overwrite: %v", err)
		}

		got, err := st.Get(t.Context(), key)
		if err != nil {
			t.Fatalf("can't get: %v", err)
		}
		if string(got) != "two" {
			t.Errorf("want %q, got: %q", "two", got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		key := "ledgertest:delete"
		if err := st.Set(t.Context(), key, []byte("doomed"), 0); err != nil {
			t.Fatalf("can't set: %v", err)
		}
		if err := st.Delete(t.Context(), key); err != nil {
			t.Fatalf("can't delete: %v", err)
		}
		if _, err := st.Get(t.Context(), key); !errors.Is(err, ledger.ErrNotFound) {
			t.Errorf("want ledger.ErrNotFound after delete, got: %v", err)
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		if err := st.Delete(t.Context(), "ledgertest:never-existed"); !errors.Is(err, ledger.ErrNotFound) {
			t.Errorf("want ledger.ErrNotFound, got: %v", err)
		}
	})

	t.Run("expiry", func(t *testing.T) {
		key := "ledgertest:expiry"
		if err := st.Set(t.Context(), key, []byte("ephemeral"), 10*time.Millisecond); err != nil {
			t.Fatalf("can't set: %v", err)
		}

		time.Sleep(50 * time.Millisecond)

		if _, err := st.Get(t.Context(), key); !errors.Is(err, ledger.ErrNotFound) {
			t.Errorf("want ledger.ErrNotFound after expiry, got: %v", err)
		}
	})
}
