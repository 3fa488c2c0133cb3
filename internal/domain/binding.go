package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BindingType identifies the kind of external source a binding connects to
type BindingType string

const (
	BindingDocStore     BindingType = "doc_store"
	BindingDrive        BindingType = "drive"
	BindingMailbox      BindingType = "mailbox"
	BindingIssueTracker BindingType = "issue_tracker"
	BindingRelationalDB BindingType = "relational_db"
	BindingWiki         BindingType = "wiki"
)

// BindingTypes lists every supported binding type
var BindingTypes = []BindingType{
	BindingDocStore,
	BindingDrive,
	BindingMailbox,
	BindingIssueTracker,
	BindingRelationalDB,
	BindingWiki,
}

// Valid reports whether t is a known binding type
func (t BindingType) Valid() bool {
	for _, known := range BindingTypes {
		if t == known {
			return true
		}
	}
	return false
}

// BindingStatus is the connection state of a binding
type BindingStatus string

const (
	StatusConnected    BindingStatus = "connected"
	StatusDisconnected BindingStatus = "disconnected"
	StatusError        BindingStatus = "error"
)

// Valid reports whether s is a known status
func (s BindingStatus) Valid() bool {
	return s == StatusConnected || s == StatusDisconnected || s == StatusError
}

// SourceBinding is a configured link to one external data source
type SourceBinding struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Type        BindingType
	Name        string
	Config      BindingConfig
	Status      BindingStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// SealedConfig is the encrypted form of Config as stored
	SealedConfig []byte
}

type sourceBindingJSON struct {
	ID          uuid.UUID     `json:"id"`
	WorkspaceID uuid.UUID     `json:"workspace_id"`
	Type        BindingType   `json:"type"`
	Name        string        `json:"name"`
	Config      BindingConfig `json:"config"`
	Status      BindingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// MarshalJSON renders the binding with secrets removed from its config
func (b SourceBinding) MarshalJSON() ([]byte, error) {
	var cfg BindingConfig
	if b.Config != nil {
		cfg = b.Config.Redacted()
	}
	return json.Marshal(sourceBindingJSON{
		ID:          b.ID,
		WorkspaceID: b.WorkspaceID,
		Type:        b.Type,
		Name:        b.Name,
		Config:      cfg,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	})
}

// BindingCreate represents binding creation data
type BindingCreate struct {
	Type   BindingType     `json:"type" validate:"required"`
	Name   string          `json:"name" validate:"required,max=255"`
	Config json.RawMessage `json:"config"`
}

// BindingUpdate represents binding update data
type BindingUpdate struct {
	Name   *string         `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Config json.RawMessage `json:"config,omitempty"`
	Status *BindingStatus  `json:"status,omitempty"`
}
