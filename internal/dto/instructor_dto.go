package dto

import "time"

// AnswerAuthoringResponse includes is_correct, for the authoring surface only.
type AnswerAuthoringResponse struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionAuthoringResponse struct {
	ID      uint                      `json:"id"`
	Text    string                    `json:"text"`
	Answers []AnswerAuthoringResponse `json:"answers"`
}

type TopicAuthoringResponse struct {
	ID        uint                        `json:"id"`
	Name      string                      `json:"name"`
	CourseID  uint                        `json:"course_id"`
	Questions []QuestionAuthoringResponse `json:"questions,omitempty"`
	CreatedAt time.Time                   `json:"created_at"`
}
