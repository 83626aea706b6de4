package service

import (
	"authbot/internal/core/domain"
	"context"
	"maps"
	"time"
)

type mockStore struct {
	authorized   map[domain.Identity]domain.IdentityMetadata
	pending      map[domain.Identity]domain.IdentityMetadata
	loadErr      error
	persistErr   error
	persistCalls int
	closed       bool
}

func (m *mockStore) Load(_ context.Context) (map[domain.Identity]domain.IdentityMetadata,
	map[domain.Identity]domain.IdentityMetadata, error) {
	if m.loadErr != nil {
		return nil, nil, m.loadErr
	}
	return maps.Clone(m.authorized), maps.Clone(m.pending), nil
}

func (m *mockStore) Persist(_ context.Context, authorized, pending map[domain.Identity]domain.IdentityMetadata) error {
	m.persistCalls++
	if m.persistErr != nil {
		return m.persistErr
	}
	m.authorized = maps.Clone(authorized)
	m.pending = maps.Clone(pending)
	return nil
}

func (m *mockStore) Close() error {
	m.closed = true
	return nil
}

type notification struct {
	target domain.Identity
	text   string
}

type mockNotifier struct {
	sent    []notification
	sendErr error
}

func (m *mockNotifier) Notify(_ context.Context, target domain.Identity, text string) error {
	m.sent = append(m.sent, notification{target: target, text: text})
	return m.sendErr
}

type mockCommand struct {
	calls []*domain.Message
	err   error
}

func (m *mockCommand) Respond(_ context.Context, _ time.Duration, message *domain.Message) error {
	m.calls = append(m.calls, message)
	return m.err
}

func (m *mockCommand) GetCommand() string {
	return "/test"
}
