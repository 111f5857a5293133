package model

import "time"

// BordereauStatus enumerates the bordereau lifecycle
type BordereauStatus string

const (
	BordereauCreated    BordereauStatus = "CREATED"
	BordereauInProgress BordereauStatus = "IN_PROGRESS"
	BordereauCompleted  BordereauStatus = "COMPLETED"
	BordereauCancelled  BordereauStatus = "CANCELLED"
)

// Valid reports whether s is a known bordereau status
func (s BordereauStatus) Valid() bool {
	switch s {
	case BordereauCreated, BordereauInProgress, BordereauCompleted, BordereauCancelled:
		return true
	}
	return false
}

// Bordereau is a delivery manifest grouping delivery items for one
// driver/route on one date. OriginalDriverCode is assigned once, at the
// first driver assignment, and is never overwritten afterwards; only
// CurrentDriverCode moves on re-scan, reassignment or transfer.
type Bordereau struct {
	BordereauNumber    string          `gorm:"type:varchar(32);primaryKey" json:"bordereauNumber"`
	DeliveryDate       *time.Time      `gorm:"type:date" json:"deliveryDate,omitempty"`
	CurrentDriverCode  *string         `gorm:"type:varchar(32)" json:"currentDriverCode,omitempty"`
	CurrentDriver      *Driver         `gorm:"foreignKey:CurrentDriverCode;references:Code" json:"currentDriver,omitempty"`
	OriginalDriverCode *string         `gorm:"type:varchar(32)" json:"originalDriverCode,omitempty"`
	OriginalDriver     *Driver         `gorm:"foreignKey:OriginalDriverCode;references:Code" json:"originalDriver,omitempty"`
	SecteurCode        *string         `gorm:"type:varchar(32)" json:"secteurCode,omitempty"`
	Secteur            *Manager        `gorm:"foreignKey:SecteurCode;references:Code" json:"secteur,omitempty"`
	Status             BordereauStatus `gorm:"type:varchar(16)" json:"status"`
	DeliveryItems      []DeliveryItem  `gorm:"foreignKey:BordereauNumber;references:BordereauNumber;constraint:OnDelete:CASCADE" json:"deliveryItems"`
	ScannedAt          *time.Time      `json:"scannedAt,omitempty"`
	CompletedAt        *time.Time      `json:"completedAt,omitempty"`
	AutoCreated        bool            `gorm:"default:false" json:"autoCreated"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName keeps the French plural instead of the generated one
func (Bordereau) TableName() string {
	return "bordereaux"
}
