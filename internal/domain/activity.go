package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityAction classifies an audit record.
type ActivityAction string

const (
	ActionCreate   ActivityAction = "create"
	ActionUpdate   ActivityAction = "update"
	ActionDelete   ActivityAction = "delete"
	ActionLogin    ActivityAction = "login"
	ActionComplete ActivityAction = "complete"
	ActionOther    ActivityAction = "other"
)

// ActivityLog is an append-only audit record written alongside every
// mutating operation. Records are never updated or deleted by the
// application.
type ActivityLog struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       string             `bson:"userId" json:"userId"`
	Action       ActivityAction     `bson:"action" json:"action"`
	ResourceType string             `bson:"resourceType" json:"resourceType"`
	ResourceID   string             `bson:"resourceId,omitempty" json:"resourceId,omitempty"`
	Details      map[string]any     `bson:"details,omitempty" json:"details,omitempty"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
}
