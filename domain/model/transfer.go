package model

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// TransferStatus enumerates the custody transfer lifecycle
type TransferStatus string

const (
	TransferPending   TransferStatus = "PENDING"
	TransferAccepted  TransferStatus = "ACCEPTED"
	TransferCompleted TransferStatus = "COMPLETED"
	TransferRejected  TransferStatus = "REJECTED"
)

// Valid reports whether s is a known transfer status
func (s TransferStatus) Valid() bool {
	switch s {
	case TransferPending, TransferAccepted, TransferCompleted, TransferRejected:
		return true
	}
	return false
}

// BordereauTransfer records a transfer of custody of a bordereau between
// two drivers. Completing a transfer moves the bordereau's current driver;
// the original driver is never touched.
type BordereauTransfer struct {
	ID              string         `gorm:"type:char(26);primaryKey" json:"id"`
	BordereauNumber string         `gorm:"type:varchar(32);index" json:"bordereauNumber"`
	Bordereau       *Bordereau     `gorm:"foreignKey:BordereauNumber;references:BordereauNumber" json:"bordereau,omitempty"`
	FromDriverCode  string         `gorm:"type:varchar(32)" json:"fromDriverCode"`
	FromDriver      *Driver        `gorm:"foreignKey:FromDriverCode;references:Code" json:"fromDriver,omitempty"`
	ToDriverCode    string         `gorm:"type:varchar(32)" json:"toDriverCode"`
	ToDriver        *Driver        `gorm:"foreignKey:ToDriverCode;references:Code" json:"toDriver,omitempty"`
	TransferredAt   *time.Time     `json:"transferredAt,omitempty"`
	TransferBarcode string         `gorm:"type:varchar(64);uniqueIndex" json:"transferBarcode"`
	Reason          string         `gorm:"type:varchar(255)" json:"reason"`
	Status          TransferStatus `gorm:"type:varchar(16)" json:"status"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (t *BordereauTransfer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = ulid.Make().String()
	}
	return nil
}
