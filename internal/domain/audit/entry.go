package audit

import (
	"encoding/json"
	"time"

	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Action is the kind of mutation an audit entry records
type Action string

const (
	ActionCreate       Action = "CREATE"
	ActionUpdate       Action = "UPDATE"
	ActionDelete       Action = "DELETE"
	ActionDeactivate   Action = "DEACTIVATE"
	ActionApprove      Action = "APPROVE"
	ActionReject       Action = "REJECT"
	ActionRevokeAccess Action = "REVOKE_ACCESS"
)

// Entry is one immutable who-did-what record. Entries are append-only:
// nothing in the system updates or deletes them.
type Entry struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	ActorID    uuid.UUID
	Action     Action
	EntityType string
	EntityID   uuid.UUID
	Details    string // opaque JSON payload
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (Entry) TableName() string {
	return "audit_entries"
}

// NewEntry creates an audit entry, marshalling details to JSON
func NewEntry(tenantID, actorID uuid.UUID, action Action, entityType string, entityID uuid.UUID, details any) (*Entry, error) {
	if entityType == "" {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Audit entity type cannot be empty")
	}

	payload := ""
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_DETAILS", "Audit details are not serializable")
		}
		payload = string(raw)
	}

	return &Entry{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    payload,
		CreatedAt:  time.Now(),
	}, nil
}
