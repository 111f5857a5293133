package model

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Realm roles mirrored from the identity provider
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleDriver  = "DRIVER"
)

// UserAccount is the identity bridge shared by Admin, Manager and Driver.
// ExternalID is the identity provider's user id; it is nil for placeholder
// accounts synthesized during bordereau ingestion and immutable once set.
type UserAccount struct {
	ID          string     `gorm:"type:char(26);primaryKey" json:"id"`
	ExternalID  *string    `gorm:"type:varchar(36);uniqueIndex" json:"externalId,omitempty"`
	Username    string     `gorm:"type:varchar(255);uniqueIndex" json:"username"`
	Code        string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`
	Role        string     `gorm:"type:varchar(16);not null" json:"role"`
	IsActive    bool       `gorm:"default:true" json:"isActive"`
	AutoCreated bool       `gorm:"default:false" json:"autoCreated"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	SyncedAt    *time.Time `json:"syncedAt,omitempty"`
}

// Provisioned reports whether the account is backed by a remote identity
func (u *UserAccount) Provisioned() bool {
	return u.ExternalID != nil && *u.ExternalID != ""
}

// Admin is an administrator account
type Admin struct {
	UserAccount
}

func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = ulid.Make().String()
	}
	a.Role = RoleAdmin
	return nil
}

// Manager runs one secteur; clients and drivers are scoped to it
type Manager struct {
	UserAccount
	SecteurName       *string `gorm:"type:varchar(255);uniqueIndex" json:"secteurName,omitempty"`
	Phone             string  `gorm:"type:varchar(32)" json:"phone"`
	Address           string  `gorm:"type:varchar(255)" json:"address"`
	AssignedAdminCode *string `gorm:"type:varchar(32)" json:"assignedAdminCode,omitempty"`
	AssignedAdmin     *Admin  `gorm:"foreignKey:AssignedAdminCode;references:Code" json:"assignedAdmin,omitempty"`
}

func (m *Manager) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = ulid.Make().String()
	}
	m.Role = RoleManager
	return nil
}

// Driver delivers bordereaux within a secteur
type Driver struct {
	UserAccount
	LicenseNumber       *string  `gorm:"type:varchar(64);uniqueIndex" json:"licenseNumber,omitempty"`
	Phone               string   `gorm:"type:varchar(32)" json:"phone"`
	AssignedManagerCode *string  `gorm:"type:varchar(32)" json:"assignedManagerCode,omitempty"`
	AssignedManager     *Manager `gorm:"foreignKey:AssignedManagerCode;references:Code" json:"assignedManager,omitempty"`
}

func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = ulid.Make().String()
	}
	d.Role = RoleDriver
	return nil
}
