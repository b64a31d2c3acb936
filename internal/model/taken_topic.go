package model

import "time"

// TakenTopic records one finalized topic attempt. The composite unique index is
// the exactly-once guarantee: a second finalization for the same (student, topic)
// fails at the storage layer instead of producing a duplicate row.
type TakenTopic struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	StudentID uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_taken_student_topic"`
	TopicID   uint      `json:"topic_id" gorm:"not null;uniqueIndex:idx_taken_student_topic"`
	Topic     Topic     `json:"topic,omitempty" gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE"`
	Score     float64   `json:"score" gorm:"not null"` // 0-100, two decimals
	Date      time.Time `json:"date" gorm:"not null;autoCreateTime"`
	CreatedAt time.Time `json:"created_at"`
}
