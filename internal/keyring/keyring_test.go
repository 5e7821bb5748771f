package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGet(t *testing.T) {
	gokeyring.MockInit()

	creds := New("")
	connStr := "postgres://tester@localhost:5432/momentum?sslmode=disable"
	if err := creds.Set(connStr); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := creds.Get()
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != connStr {
		t.Errorf("Get() = %q, want %q", got, connStr)
	}

	// entries are scoped per user
	if _, err := New("other").Get(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for another user, got %v", err)
	}
}

func TestSetEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := New("").Set(""); err == nil {
		t.Error("Set(\"\") should return an error")
	}
}

func TestDelete(t *testing.T) {
	gokeyring.MockInit()
	creds := New("")

	if err := creds.Delete(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() on empty keyring = %v, want ErrNotFound", err)
	}

	if err := creds.Set("host=localhost dbname=momentum"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := creds.Delete(); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := creds.Get(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete() = %v, want ErrNotFound", err)
	}
}

func TestUnavailable(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("dbus not running"))
	defer gokeyring.MockInit()

	creds := New("")
	if creds.Available() {
		t.Error("Available() should be false when the keyring errors")
	}
	if _, err := creds.Get(); !errors.Is(err, ErrKeyringUnavailable) {
		t.Errorf("Get() = %v, want ErrKeyringUnavailable", err)
	}
}

func TestResolve(t *testing.T) {
	gokeyring.MockInit()

	path := "/tmp/momentum.db"
	got, err := Resolve(path)
	if err != nil || got != path {
		t.Errorf("Resolve(%q) = %q, %v", path, got, err)
	}

	if _, err := Resolve(Reference); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(keyring) with nothing stored = %v, want ErrNotFound", err)
	}

	connStr := "postgres://tester@localhost/momentum"
	if err := New("").Set(connStr); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	got, err = Resolve(Reference)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got != connStr {
		t.Errorf("Resolve() = %q, want %q", got, connStr)
	}
}
