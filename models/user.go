// File: /models/user.go
package models

import (
	"time"
)

type User struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Username        string         `json:"username" gorm:"uniqueIndex;not null;size:150"`
	Email           string         `json:"email" gorm:"uniqueIndex;not null;size:254"`
	Password        string         `json:"-" gorm:"not null;size:255"`
	FirstName       string         `json:"first_name" gorm:"size:150"`
	LastName        string         `json:"last_name" gorm:"size:150"`
	Bio             string         `json:"bio" gorm:"type:text"`
	Avatar          *string        `json:"avatar" gorm:"size:500"`
	Country         string         `json:"country" gorm:"size:100"`
	MotorcycleType  MotorcycleType `json:"motorcycle_type" gorm:"size:20"`
	MotorcycleBrand string         `json:"motorcycle_brand" gorm:"size:100"`
	MotorcycleModel string         `json:"motorcycle_model" gorm:"size:100"`
	MotorcycleYear  *int           `json:"motorcycle_year"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
