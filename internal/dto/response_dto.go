package dto

import "time"

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type TokenResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type CourseResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// AnswerChoiceResponse deliberately omits is_correct: it is what a student
// sees while answering.
type AnswerChoiceResponse struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type QuestionResponse struct {
	ID      uint                   `json:"id"`
	TopicID uint                   `json:"topic_id"`
	Text    string                 `json:"text"`
	Answers []AnswerChoiceResponse `json:"answers,omitempty"`
}

// TopicSummaryResponse is a listing row for students and instructors.
type TopicSummaryResponse struct {
	ID            uint           `json:"id"`
	Name          string         `json:"name"`
	Course        CourseResponse `json:"course"`
	QuestionCount int            `json:"question_count"`
}

// TakenTopicResponse is one completed topic in the student's history.
type TakenTopicResponse struct {
	TopicID   uint           `json:"topic_id"`
	TopicName string         `json:"topic_name"`
	Course    CourseResponse `json:"course"`
	Score     float64        `json:"score"`
	Date      time.Time      `json:"date"`
}

// SessionResponse is the view-model for the take-topic flow. State is
// "in_progress", "completed" or "finalized"; question/progress are present
// while in progress, score/passed once completed.
type SessionResponse struct {
	State    string            `json:"state"`
	Question *QuestionResponse `json:"question,omitempty"`
	Progress int               `json:"progress"`
	Score    *float64          `json:"score,omitempty"`
	Passed   *bool             `json:"passed,omitempty"`
}
