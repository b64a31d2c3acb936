package dto

// SignUpRequest registers a user as a student or instructor.
type SignUpRequest struct {
	Username string `json:"username" binding:"required,min=3,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SubmitAnswerRequest is one answer for the question currently presented.
type SubmitAnswerRequest struct {
	QuestionID uint `json:"question_id" binding:"required"`
	AnswerID   uint `json:"answer_id" binding:"required"`
}

// AnswerCreateRequest is used within question authoring.
type AnswerCreateRequest struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionCreateRequest carries a prompt with its answer choices. Each
// question needs between 2 and 10 answers and at least one correct one; the
// correctness check happens in the service since binding can't express it.
type QuestionCreateRequest struct {
	Text    string                `json:"text" binding:"required"`
	Answers []AnswerCreateRequest `json:"answers" binding:"required,min=2,max=10,dive"`
}

// TopicCreateRequest creates a topic with optional nested questions.
type TopicCreateRequest struct {
	Name      string                  `json:"name" binding:"required,max=255"`
	CourseID  uint                    `json:"course_id" binding:"required"`
	Questions []QuestionCreateRequest `json:"questions" binding:"omitempty,dive"`
}

type TopicUpdateRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	CourseID uint   `json:"course_id" binding:"required"`
}
