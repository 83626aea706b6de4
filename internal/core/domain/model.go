package domain

import "fmt"

// Identity is the chat id Telegram assigns to a participant.
type Identity int64

// IdentityMetadata holds the display name captured on first contact.
type IdentityMetadata struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

type Message struct {
	ID        int
	ChatID    Identity
	FirstName string
	LastName  string
	Username  string
	Command   string
	Args      []string
	Text      string
	Edited    bool
}

// DisplayName joins first and last name the way warnings show them.
func (m *Message) DisplayName() string {
	return fmt.Sprintf("%s %s", m.FirstName, m.LastName)
}

func (m *Message) Metadata() IdentityMetadata {
	return IdentityMetadata{FirstName: m.FirstName, LastName: m.LastName}
}

// PendingPolicy decides how often the admin hears about an unauthorized identity.
type PendingPolicy string

const (
	NotifyOnce   PendingPolicy = "notify_once"
	NotifyAlways PendingPolicy = "notify_always"
)
