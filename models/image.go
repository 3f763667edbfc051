package models

import (
	"time"
)

// Image is an uploaded picture. The route/location pair is nullable on both sides;
// Target reports which of them the image is actually attached to.
type Image struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	File       string    `json:"image" gorm:"column:image;not null;size:255"`
	Caption    string    `json:"caption" gorm:"size:200"`
	RouteID    *uint     `json:"route" gorm:"index"`
	LocationID *uint     `json:"location" gorm:"index"`
	UploaderID uint      `json:"uploader_id" gorm:"not null;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`

	Uploader User `json:"uploader" gorm:"foreignKey:UploaderID;constraint:OnDelete:CASCADE"`
}

func (Image) TableName() string {
	return "images"
}

type ImageTargetKind string

const (
	TargetRoute      ImageTargetKind = "route"
	TargetLocation   ImageTargetKind = "location"
	TargetUnattached ImageTargetKind = "unattached"
	TargetBoth       ImageTargetKind = "both"
)

// ImageTarget is the tagged view of the nullable route/location pair.
type ImageTarget struct {
	Kind ImageTargetKind
	ID   uint
}

func (i Image) Target() ImageTarget {
	switch {
	case i.RouteID != nil && i.LocationID != nil:
		return ImageTarget{Kind: TargetBoth}
	case i.RouteID != nil:
		return ImageTarget{Kind: TargetRoute, ID: *i.RouteID}
	case i.LocationID != nil:
		return ImageTarget{Kind: TargetLocation, ID: *i.LocationID}
	default:
		return ImageTarget{Kind: TargetUnattached}
	}
}
