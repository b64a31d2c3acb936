package model

import "time"

type Question struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	TopicID   uint      `json:"topic_id" gorm:"not null;index"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	Answers   []Answer  `json:"answers,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
