package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// BindingConfig is the typed configuration of a source binding. Each binding
// type has exactly one concrete config struct.
type BindingConfig interface {
	// BindingType returns the binding type this config belongs to
	BindingType() BindingType

	// DisplayField names the notable config field, e.g. "board"
	DisplayField() string

	// DisplayName returns the human name of that field, or ""
	DisplayName() string

	// Redacted returns a copy with credentials blanked
	Redacted() BindingConfig
}

// DocStoreConfig configures a document store (Notion-style database)
type DocStoreConfig struct {
	Token          string `json:"token,omitempty"`
	DatabaseID     string `json:"database_id,omitempty" validate:"omitempty,max=255"`
	CollectionName string `json:"collection_name,omitempty" validate:"omitempty,max=255"`
}

func (c DocStoreConfig) BindingType() BindingType { return BindingDocStore }
func (c DocStoreConfig) DisplayField() string     { return "collection" }
func (c DocStoreConfig) DisplayName() string      { return c.CollectionName }
func (c DocStoreConfig) Redacted() BindingConfig {
	c.Token = redact(c.Token)
	return c
}

// DriveConfig configures a file drive folder
type DriveConfig struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	FolderID     string `json:"folder_id,omitempty" validate:"omitempty,max=255"`
	FolderName   string `json:"folder_name,omitempty" validate:"omitempty,max=255"`
}

func (c DriveConfig) BindingType() BindingType { return BindingDrive }
func (c DriveConfig) DisplayField() string     { return "folder" }
func (c DriveConfig) DisplayName() string      { return c.FolderName }
func (c DriveConfig) Redacted() BindingConfig {
	c.AccessToken = redact(c.AccessToken)
	c.RefreshToken = redact(c.RefreshToken)
	return c
}

// MailboxConfig configures a mailbox
type MailboxConfig struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Address      string `json:"address,omitempty" validate:"omitempty,email"`
	Label        string `json:"label,omitempty" validate:"omitempty,max=255"`
}

func (c MailboxConfig) BindingType() BindingType { return BindingMailbox }
func (c MailboxConfig) DisplayField() string     { return "mailbox" }
func (c MailboxConfig) DisplayName() string      { return c.Address }
func (c MailboxConfig) Redacted() BindingConfig {
	c.AccessToken = redact(c.AccessToken)
	c.RefreshToken = redact(c.RefreshToken)
	return c
}

// IssueTrackerConfig configures a board on an issue tracker
type IssueTrackerConfig struct {
	APIKey    string `json:"api_key,omitempty"`
	Token     string `json:"token,omitempty"`
	BoardID   string `json:"board_id,omitempty" validate:"omitempty,max=255"`
	BoardName string `json:"board_name,omitempty" validate:"omitempty,max=255"`
}

func (c IssueTrackerConfig) BindingType() BindingType { return BindingIssueTracker }
func (c IssueTrackerConfig) DisplayField() string     { return "board" }
func (c IssueTrackerConfig) DisplayName() string      { return c.BoardName }
func (c IssueTrackerConfig) Redacted() BindingConfig {
	c.APIKey = redact(c.APIKey)
	c.Token = redact(c.Token)
	return c
}

// RelationalDBConfig configures a database connection
type RelationalDBConfig struct {
	Engine   string `json:"engine" validate:"required,oneof=postgres mysql sqlite mongodb"`
	Host     string `json:"host,omitempty" validate:"omitempty,max=255"`
	Port     int    `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Database string `json:"database,omitempty" validate:"omitempty,max=255"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	SSLMode  string `json:"ssl_mode,omitempty" validate:"omitempty,oneof=disable require verify-ca verify-full prefer allow"`
	Path     string `json:"path,omitempty"`
}

func (c RelationalDBConfig) BindingType() BindingType { return BindingRelationalDB }
func (c RelationalDBConfig) DisplayField() string     { return "database" }
func (c RelationalDBConfig) DisplayName() string {
	if c.Database != "" {
		return c.Database
	}
	return c.Path
}
func (c RelationalDBConfig) Redacted() BindingConfig {
	c.Password = redact(c.Password)
	return c
}

// WikiConfig configures a wiki space
type WikiConfig struct {
	BaseURL   string `json:"base_url,omitempty" validate:"omitempty,url"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	APIToken  string `json:"api_token,omitempty"`
	SpaceKey  string `json:"space_key,omitempty" validate:"omitempty,max=255"`
	SpaceName string `json:"space_name,omitempty" validate:"omitempty,max=255"`
}

func (c WikiConfig) BindingType() BindingType { return BindingWiki }
func (c WikiConfig) DisplayField() string     { return "space" }
func (c WikiConfig) DisplayName() string      { return c.SpaceName }
func (c WikiConfig) Redacted() BindingConfig {
	c.APIToken = redact(c.APIToken)
	return c
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

// DecodeBindingConfig parses raw JSON into the config struct for t and
// validates it. An empty payload yields the zero config.
func DecodeBindingConfig(t BindingType, raw json.RawMessage) (BindingConfig, error) {
	var cfg BindingConfig
	switch t {
	case BindingDocStore:
		cfg = &DocStoreConfig{}
	case BindingDrive:
		cfg = &DriveConfig{}
	case BindingMailbox:
		cfg = &MailboxConfig{}
	case BindingIssueTracker:
		cfg = &IssueTrackerConfig{}
	case BindingRelationalDB:
		cfg = &RelationalDBConfig{}
	case BindingWiki:
		cfg = &WikiConfig{}
	default:
		return nil, NewValidationError("type", fmt.Sprintf("unsupported binding type %q", t))
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, cfg); err != nil {
			return nil, NewValidationError("config", "config must be a JSON object matching the binding type")
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return deref(cfg), nil
}

func deref(cfg BindingConfig) BindingConfig {
	switch c := cfg.(type) {
	case *DocStoreConfig:
		return *c
	case *DriveConfig:
		return *c
	case *MailboxConfig:
		return *c
	case *IssueTrackerConfig:
		return *c
	case *RelationalDBConfig:
		return *c
	case *WikiConfig:
		return *c
	}
	return cfg
}
