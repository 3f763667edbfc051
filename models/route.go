// File: /models/route.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Route is a ridden path shared by its creator. GeoJSON is stored and returned verbatim.
type Route struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Title        string         `json:"title" gorm:"not null;size:200;index"`
	Description  string         `json:"description" gorm:"type:text;not null"`
	Difficulty   Difficulty     `json:"difficulty" gorm:"size:20;not null;default:moderate;index"`
	GeoJSON      datatypes.JSON `json:"geojson" gorm:"column:geojson;not null"`
	Distance     float64        `json:"distance" gorm:"not null"`
	DurationDays *int           `json:"duration_days"`
	CreatorID    uint           `json:"creator_id" gorm:"not null;index"`
	CreatedAt    time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time      `json:"updated_at"`

	Creator   User       `json:"creator" gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE"`
	Locations []Location `json:"locations,omitempty" gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
	Images    []Image    `json:"images,omitempty" gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
	Comments  []Comment  `json:"comments,omitempty" gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
}

func (Route) TableName() string {
	return "routes"
}

// RouteCounts holds the live cardinality of a route's child collections.
type RouteCounts struct {
	Locations int64 `json:"locations_count"`
	Images    int64 `json:"images_count"`
	Comments  int64 `json:"comments_count"`
}
