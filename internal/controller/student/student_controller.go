package student

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/codecat-lms/codecat/internal/dto"
	"github.com/codecat-lms/codecat/internal/middleware"
	"github.com/codecat-lms/codecat/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
)

type StudentController struct {
	topicService   service.StudentTopicService
	sessionService service.TopicSessionService
}

func NewStudentController(topicService service.StudentTopicService, sessionService service.TopicSessionService) *StudentController {
	return &StudentController{topicService: topicService, sessionService: sessionService}
}

// ListTopics godoc
// @Summary (Student) List topics available to take
// @Description Topics in the student's enrolled courses with at least one question, excluding completed ones.
// @Tags Student - Topics
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.TopicSummaryResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /students/topics [get]
func (c *StudentController) ListTopics(ctx *gin.Context) {
	student, _ := middleware.StudentFrom(ctx)

	topics, err := c.topicService.AvailableTopics(student.StudentID)
	if err != nil {
		log.Error().Err(err).Uint("studentID", student.StudentID).Msg("ListTopics: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list topics"})
		return
	}
	ctx.JSON(http.StatusOK, topics)
}

// ListTakenTopics godoc
// @Summary (Student) List completed topics with scores
// @Tags Student - Topics
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.TakenTopicResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /students/taken-topics [get]
func (c *StudentController) ListTakenTopics(ctx *gin.Context) {
	student, _ := middleware.StudentFrom(ctx)

	taken, err := c.topicService.TakenTopics(student.StudentID)
	if err != nil {
		log.Error().Err(err).Uint("studentID", student.StudentID).Msg("ListTakenTopics: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list taken topics"})
		return
	}
	ctx.JSON(http.StatusOK, taken)
}

// TakeTopic godoc
// @Summary (Student) Get the current question of a topic session
// @Description Returns the next unanswered question with progress, or the completed state.
// @Tags Student - Sessions
// @Produce json
// @Security BearerAuth
// @Param topic_id path int true "Topic ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid Topic ID format"
// @Failure 404 {object} dto.ErrorResponse "Topic not found"
// @Failure 500 {object} dto.ErrorResponse
// @Router /students/topics/{topic_id}/session [get]
func (c *StudentController) TakeTopic(ctx *gin.Context) {
	student, _ := middleware.StudentFrom(ctx)
	topicID, ok := parseID(ctx, "topic_id")
	if !ok {
		return
	}

	outcome, err := c.sessionService.Take(student.StudentID, topicID)
	if err != nil {
		c.respondSessionError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toSessionResponse(outcome))
}

// SubmitAnswer godoc
// @Summary (Student) Submit an answer for the presented question
// @Description Records the answer and returns the next question, or the final score when the topic is complete.
// @Tags Student - Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param topic_id path int true "Topic ID"
// @Param submission body dto.SubmitAnswerRequest true "Question and chosen answer"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Topic not found"
// @Failure 422 {object} dto.ErrorResponse "Answer does not belong to the question"
// @Failure 500 {object} dto.ErrorResponse
// @Router /students/topics/{topic_id}/session [post]
func (c *StudentController) SubmitAnswer(ctx *gin.Context) {
	student, _ := middleware.StudentFrom(ctx)
	topicID, ok := parseID(ctx, "topic_id")
	if !ok {
		return
	}

	var req dto.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	outcome, err := c.sessionService.Submit(student.StudentID, topicID, req.QuestionID, req.AnswerID)
	if err != nil {
		c.respondSessionError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toSessionResponse(outcome))
}

func (c *StudentController) respondSessionError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAlreadyCompleted):
		// Benign: the topic is done, point the client at the completed state.
		ctx.JSON(http.StatusOK, dto.SessionResponse{State: string(service.StateCompleted)})
	case errors.Is(err, service.ErrValidation):
		ctx.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrNoQuestions):
		log.Error().Err(err).Msg("Session reached a topic with no questions")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Topic is misconfigured"})
	default:
		log.Error().Err(err).Msg("Session: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to process session"})
	}
}

func toSessionResponse(outcome *service.SessionOutcome) dto.SessionResponse {
	resp := dto.SessionResponse{
		State:    string(outcome.State),
		Progress: outcome.Progress,
		Score:    outcome.Score,
	}
	if outcome.Question != nil {
		var q dto.QuestionResponse
		copier.Copy(&q, outcome.Question)
		resp.Question = &q
	}
	if outcome.Score != nil {
		passed := outcome.Passed
		resp.Passed = &passed
	}
	return resp
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(param), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + param + " format"})
		return 0, false
	}
	return uint(val), true
}
