// Package store reads and writes secrets held by an external secret service.
//
// Two backends exist. CLI shells out to the vault command line client and is
// the default. API talks to the same server over its HTTP API. Both address a
// secret as <namespace>/<name> and keep the payload in a single field.
package store

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Defaults for the secret path layout.
const (
	DefaultNamespace = "password-store"
	DefaultField     = "data"
)

var (
	// ErrNotFound indicates no secret exists under the requested name.
	ErrNotFound = errors.New("secret not found")

	// ErrEmptyName indicates a blank secret name.
	ErrEmptyName = errors.New("secret name is required")
)

// Store is the set of operations vaultpass needs from a secret service.
type Store interface {
	// Read streams the payload stored under name into w.
	Read(ctx context.Context, name string, w io.Writer) error

	// Exists reports whether a secret is stored under name.
	Exists(ctx context.Context, name string) (bool, error)

	// Write stores everything read from r as the payload for name,
	// replacing any previous value.
	Write(ctx context.Context, name string, r io.Reader) error
}

// Layout addresses secrets inside the store.
type Layout struct {
	Namespace string
	Field     string
}

func (l Layout) namespace() string {
	ns := strings.Trim(strings.TrimSpace(l.Namespace), "/")
	if ns == "" {
		return DefaultNamespace
	}
	return ns
}

func (l Layout) field() string {
	if f := strings.TrimSpace(l.Field); f != "" {
		return f
	}
	return DefaultField
}

// Path returns the store path for name, e.g. password-store/mail/work.
// Names are opaque and used as given.
func (l Layout) Path(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	return l.namespace() + "/" + name, nil
}
