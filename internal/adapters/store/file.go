package store

import (
	"authbot/internal/adapters/file"
	"authbot/internal/core/domain"
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type document struct {
	Authorized map[domain.Identity]domain.IdentityMetadata `yaml:"authorized"`
	Pending    map[domain.Identity]domain.IdentityMetadata `yaml:"pending"`
}

// FileStore keeps both sets in one YAML document that is replaced atomically on every persist.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) (map[domain.Identity]domain.IdentityMetadata,
	map[domain.Identity]domain.IdentityMetadata, error) {
	data, ok, err := file.ReadIfExists(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrStoreCorrupt, err)
	}

	if !ok {
		log.Info().Str("path", s.path).Msg("no state file yet, starting empty")
		return map[domain.Identity]domain.IdentityMetadata{}, map[domain.Identity]domain.IdentityMetadata{}, nil
	}

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("%w: decode %s: %w", domain.ErrStoreCorrupt, s.path, err)
	}

	if doc.Authorized == nil {
		doc.Authorized = make(map[domain.Identity]domain.IdentityMetadata)
	}
	if doc.Pending == nil {
		doc.Pending = make(map[domain.Identity]domain.IdentityMetadata)
	}

	return doc.Authorized, doc.Pending, nil
}

func (s *FileStore) Persist(_ context.Context, authorized, pending map[domain.Identity]domain.IdentityMetadata) error {
	data, err := yaml.Marshal(document{Authorized: authorized, Pending: pending})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	return file.WriteAtomic(s.path, data, 0o600)
}

func (s *FileStore) Close() error {
	return nil
}
