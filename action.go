package gotrail

import (
	"time"
)

// ActionType classifies an action record.
type ActionType string

const (
	ActionCreation ActionType = "creation"
	ActionUpdate   ActionType = "update"
)

// Action is an append-only fact about the creation of an entity or a change to one of its tracked fields.
type Action struct {
	ID               any            `bson:"_id,omitempty" json:"id,omitempty"`
	EntityCollection string         `bson:"entity_collection" json:"entity_collection"`
	EntityID         any            `bson:"entity_id" json:"entity_id"`
	Field            string         `bson:"field,omitempty" json:"field,omitempty"`
	FieldLabel       string         `bson:"field_label,omitempty" json:"field_label,omitempty"`
	FieldType        string         `bson:"field_type,omitempty" json:"field_type,omitempty"`
	Type             ActionType     `bson:"type" json:"type"`
	OldValue         any            `bson:"old,omitempty" json:"old,omitempty"`
	NewValue         any            `bson:"new,omitempty" json:"new,omitempty"`
	Message          string         `bson:"message,omitempty" json:"message,omitempty"`
	User             any            `bson:"user" json:"user"`
	Data             map[string]any `bson:"data,omitempty" json:"data,omitempty"`
	CreatedAt        time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `bson:"updated_at" json:"updated_at"`
}

// ActionPage is one window of an entity's history, newest first.
type ActionPage struct {
	Actions []Action `json:"actions"`
	Total   int64    `json:"total"`
	Offset  int      `json:"offset"`
	Limit   int      `json:"limit"`
}
