package models

import (
	"time"
)

type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	RouteID   uint      `json:"route" gorm:"not null;index"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	Author User `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

func (Comment) TableName() string {
	return "comments"
}
