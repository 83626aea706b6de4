package service

import (
	"authbot/internal/core/domain"
	"authbot/internal/core/port"
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/rs/zerolog/log"
)

// BotState owns the authorized and pending sets and persists them on every mutation.
// An identity is never in both sets at once.
type BotState struct {
	mutex      sync.Mutex
	adminID    domain.Identity
	authorized map[domain.Identity]domain.IdentityMetadata
	pending    map[domain.Identity]domain.IdentityMetadata
	store      port.IdentityStore
}

// NewBotState loads the persisted sets and seeds the admin when it is missing.
func NewBotState(ctx context.Context, store port.IdentityStore, adminID domain.Identity) (*BotState, error) {
	authorized, pending, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity store: %w", err)
	}

	if authorized == nil {
		authorized = make(map[domain.Identity]domain.IdentityMetadata)
	}
	if pending == nil {
		pending = make(map[domain.Identity]domain.IdentityMetadata)
	}

	s := &BotState{
		adminID:    adminID,
		authorized: authorized,
		pending:    pending,
		store:      store,
	}

	_, seeded := authorized[adminID]
	_, stalePending := pending[adminID]
	if !seeded || stalePending {
		log.Info().Int64("adminId", int64(adminID)).Msg("seeding admin into authorized set")
		delete(s.pending, adminID)
		if !seeded {
			s.authorized[adminID] = domain.IdentityMetadata{}
		}
		if err := s.persist(ctx); err != nil {
			return nil, err
		}
	}

	log.Debug().
		Int("authorized", len(s.authorized)).
		Int("pending", len(s.pending)).
		Msg("loaded bot state")

	return s, nil
}

func (s *BotState) AdminID() domain.Identity {
	return s.adminID
}

func (s *BotState) IsAdmin(id domain.Identity) bool {
	return id == s.adminID
}

func (s *BotState) IsAuthorized(id domain.Identity) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, ok := s.authorized[id]
	return ok
}

func (s *BotState) IsPending(id domain.Identity) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, ok := s.pending[id]
	return ok
}

// RecordPending adds id to the pending set unless it is already known.
// It reports whether the identity was newly added.
func (s *BotState) RecordPending(ctx context.Context, id domain.Identity, meta domain.IdentityMetadata) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.authorized[id]; ok {
		return false, nil
	}
	if _, ok := s.pending[id]; ok {
		return false, nil
	}

	s.pending[id] = meta
	if err := s.persist(ctx); err != nil {
		delete(s.pending, id)
		return false, err
	}

	return true, nil
}

// Authorize moves id from pending (keeping its metadata) into the authorized set and persists both.
func (s *BotState) Authorize(ctx context.Context, id domain.Identity) (domain.IdentityMetadata, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	meta, wasPending := s.pending[id]
	previous, wasAuthorized := s.authorized[id]
	if wasAuthorized && !wasPending {
		return previous, nil
	}

	delete(s.pending, id)
	s.authorized[id] = meta

	if err := s.persist(ctx); err != nil {
		if wasPending {
			s.pending[id] = meta
		}
		if wasAuthorized {
			s.authorized[id] = previous
		} else {
			delete(s.authorized, id)
		}
		return domain.IdentityMetadata{}, err
	}

	return meta, nil
}

// Authorized returns a copy of the authorized set.
func (s *BotState) Authorized() map[domain.Identity]domain.IdentityMetadata {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return maps.Clone(s.authorized)
}

// Pending returns a copy of the pending set.
func (s *BotState) Pending() map[domain.Identity]domain.IdentityMetadata {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return maps.Clone(s.pending)
}

func (s *BotState) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.store.Close()
}

// persist must be called with the mutex held.
func (s *BotState) persist(ctx context.Context) error {
	err := s.store.Persist(ctx, s.authorized, s.pending)
	if err != nil {
		err = fmt.Errorf("failed to persist bot state: %w", err)
		log.Error().Err(err).Send()
		return err
	}

	return nil
}
