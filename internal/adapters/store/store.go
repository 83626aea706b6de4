package store

import (
	"authbot/internal/core/port"
	"fmt"
)

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
)

// DefaultPath derives the state file name from the bot name, e.g. AuthBot.db.
func DefaultPath(botName string, backend Backend) string {
	switch backend {
	case BackendFile:
		return botName + ".yaml"
	default:
		return botName + ".db"
	}
}

// Open returns the identity store for the configured backend.
func Open(backend Backend, path string) (port.IdentityStore, error) {
	switch backend {
	case BackendSQLite:
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendFile:
		return NewFileStore(path), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
