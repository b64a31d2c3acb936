package model

import "time"

// Student is the learner profile, one-to-one with a student-role User.
// Courses is the enrollment set; completed topics are reachable through TakenTopic.
type Student struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex"`
	User      User      `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Courses   []Course  `json:"courses,omitempty" gorm:"many2many:student_courses"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
