package model

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// DeliveryItemStatus enumerates the delivery item lifecycle
type DeliveryItemStatus string

const (
	ItemPending   DeliveryItemStatus = "PENDING"
	ItemInTransit DeliveryItemStatus = "IN_TRANSIT"
	ItemDelivered DeliveryItemStatus = "DELIVERED"
	ItemFailed    DeliveryItemStatus = "FAILED"
)

// Valid reports whether s is a known delivery item status
func (s DeliveryItemStatus) Valid() bool {
	switch s {
	case ItemPending, ItemInTransit, ItemDelivered, ItemFailed:
		return true
	}
	return false
}

// DeliveryItem is one shipment line within a bordereau, identified by its
// bill-of-lading number. An item belongs to exactly one bordereau at a time;
// a scan may re-parent it to a different bordereau.
type DeliveryItem struct {
	ID                 string             `gorm:"type:char(26);primaryKey" json:"id"`
	BordereauNumber    string             `gorm:"type:varchar(32);index" json:"bordereauNumber"`
	BLNumber           string             `gorm:"column:bl_number;type:varchar(32);uniqueIndex;not null" json:"blNumber"`
	ClientCode         *string            `gorm:"type:varchar(32)" json:"clientCode,omitempty"`
	Client             *Client            `gorm:"foreignKey:ClientCode;references:ClientCode" json:"client,omitempty"`
	NombreColis        int                `json:"nombreColis"`
	NombreSachets      int                `json:"nombreSachets"`
	Status             DeliveryItemStatus `gorm:"type:varchar(16)" json:"status"`
	DeliveredAt        *time.Time         `json:"deliveredAt,omitempty"`
	DeliveryNotes      string             `gorm:"type:text" json:"deliveryNotes"`
	RecipientSignature string             `gorm:"type:text" json:"recipientSignature"`
	CreatedAt          time.Time          `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time          `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (d *DeliveryItem) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = ulid.Make().String()
	}
	return nil
}
