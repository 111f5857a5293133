package model

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// OutboxStatus enumerates the dispatch state of a journal entry
type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "PENDING"
	OutboxPublished OutboxStatus = "PUBLISHED"
	OutboxFailed    OutboxStatus = "FAILED"
)

// OutboxEntry journals an identity provider operation performed (or
// attempted) alongside a local write. Entries are written in the same
// transaction as the local row and published to kafka by the dispatcher,
// giving operators a durable reconciliation trail for the dual-write.
type OutboxEntry struct {
	ID          string       `gorm:"type:char(26);primaryKey" json:"id"`
	Topic       string       `gorm:"type:varchar(128);not null" json:"topic"`
	Kind        string       `gorm:"type:varchar(64);not null" json:"kind"`
	Key         string       `gorm:"type:varchar(64)" json:"key"`
	Payload     string       `gorm:"type:text" json:"payload"`
	Status      OutboxStatus `gorm:"type:varchar(16);index;default:PENDING" json:"status"`
	Attempts    int          `gorm:"default:0" json:"attempts"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	PublishedAt *time.Time   `json:"publishedAt,omitempty"`
}

func (o *OutboxEntry) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = ulid.Make().String()
	}
	return nil
}
