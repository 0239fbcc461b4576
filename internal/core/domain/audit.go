package domain

import (
	"encoding/json"
	"time"
)

const (
	AuditActionPurchase       = "purchase"
	AuditActionProductCreated = "product_created"
	AuditActionStatusUpdate   = "status_update"

	AuditEntityOrder   = "order"
	AuditEntityProduct = "product"
)

// AuditEntry is an append-only record of who did what to which entity.
type AuditEntry struct {
	ID            int64
	ActorID       int64
	Action        string
	EntityType    string
	EntityID      int64
	Details       json.RawMessage
	ClientAddress string
	CreatedAt     time.Time
}

// NewAuditEntry marshals details into the entry payload.
func NewAuditEntry(actorID int64, action, entityType string, entityID int64, details any, clientAddress string) (AuditEntry, error) {
	entry := AuditEntry{
		ActorID:       actorID,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		ClientAddress: clientAddress,
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return AuditEntry{}, err
		}
		entry.Details = raw
	}
	return entry, nil
}
