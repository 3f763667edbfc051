// File: /models/location.go
package models

import (
	"time"
)

// Location is a point of interest, optionally pinned to a route.
type Location struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	Name         string       `json:"name" gorm:"not null;size:200"`
	Description  string       `json:"description" gorm:"type:text"`
	LocationType LocationType `json:"location_type" gorm:"size:50;not null"`
	Latitude     float64      `json:"latitude" gorm:"not null"`
	Longitude    float64      `json:"longitude" gorm:"not null"`
	RouteID      *uint        `json:"route" gorm:"index"`
	CreatorID    uint         `json:"creator_id" gorm:"not null;index"`
	CreatedAt    time.Time    `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time    `json:"updated_at"`

	Creator User    `json:"creator" gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE"`
	Images  []Image `json:"images" gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE"`
}

func (Location) TableName() string {
	return "locations"
}
