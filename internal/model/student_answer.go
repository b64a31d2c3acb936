package model

import "time"

// StudentAnswer records which answer a student picked for a question.
// QuestionID duplicates Answer.QuestionID so the at-most-one-answer-per-question
// invariant is a real database constraint, not just handler discipline.
type StudentAnswer struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	StudentID  uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_student_question"`
	QuestionID uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_student_question"`
	AnswerID   uint      `json:"answer_id" gorm:"not null;index"`
	Answer     Answer    `json:"answer,omitempty" gorm:"foreignKey:AnswerID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `json:"created_at"`
}
