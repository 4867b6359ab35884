package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// AuditEntry represents an audit log entry
type AuditEntry struct {
	ID        string    `bson:"_id,omitempty" json:"_id,omitempty"`
	Service   string    `bson:"service" json:"service"`
	Action    string    `bson:"action" json:"action"`
	EntityID  string    `bson:"entity_id" json:"entityId"`
	ActorID   string    `bson:"actor_id,omitempty" json:"actorId,omitempty"`
	Data      bson.M    `bson:"data" json:"data"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
