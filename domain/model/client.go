package model

import "time"

// Client is a delivery destination (a pharmacy). AutoCreated marks rows
// synthesized by the scan workflow from a bare client code.
type Client struct {
	ClientCode  string    `gorm:"type:varchar(32);primaryKey" json:"clientCode"`
	Name        string    `gorm:"type:varchar(255)" json:"name"`
	Address     string    `gorm:"type:varchar(255)" json:"address"`
	Phone       string    `gorm:"type:varchar(32)" json:"phone"`
	Coordinates string    `gorm:"type:varchar(64)" json:"coordinates"`
	SecteurCode *string   `gorm:"type:varchar(32)" json:"secteurCode,omitempty"`
	Secteur     *Manager  `gorm:"foreignKey:SecteurCode;references:Code" json:"secteur,omitempty"`
	AutoCreated bool      `gorm:"default:false" json:"autoCreated"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
