package model

import "time"

type Course struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `json:"name" gorm:"not null"`
	Color     string    `json:"color" gorm:"not null;default:'#007bff'"` // hex badge color
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
