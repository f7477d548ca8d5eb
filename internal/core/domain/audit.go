package domain

import "time"

// AuditEntry records a mutation performed by an authenticated user.
type AuditEntry struct {
	ActorID    int64     `bson:"actor_id"`
	ActorRole  Role      `bson:"actor_role"`
	Action     string    `bson:"action"`
	Resource   string    `bson:"resource"`
	ResourceID int64     `bson:"resource_id"`
	At         time.Time `bson:"at"`
}
