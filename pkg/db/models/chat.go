package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatThread is the single conversation between a customer and the store.
type ChatThread struct {
	ID            uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID    uuid.UUID     `gorm:"column:customer_id;type:uuid;not null;uniqueIndex"`
	Messages      []ChatMessage `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE"`
	LastMessageAt *time.Time    `gorm:"column:last_message_at"`
	CreatedAt     time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

// ChatMessage is a single message inside a thread.
type ChatMessage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ThreadID  uuid.UUID `gorm:"column:thread_id;type:uuid;not null;index"`
	SenderID  uuid.UUID `gorm:"column:sender_id;type:uuid;not null"`
	Body      string    `gorm:"column:body;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
