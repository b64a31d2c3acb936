package model

import "time"

// Topic is a quiz unit inside a course. UserID is the authoring instructor;
// it is nullable so a topic survives its owner being removed.
type Topic struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	UserID    *uint      `json:"user_id,omitempty" gorm:"index"`
	User      *User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	Name      string     `json:"name" gorm:"not null"`
	CourseID  uint       `json:"course_id" gorm:"not null;index"`
	Course    Course     `json:"course,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
