package instructor

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/codecat-lms/codecat/internal/dto"
	"github.com/codecat-lms/codecat/internal/middleware"
	"github.com/codecat-lms/codecat/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type TopicController struct {
	topicService service.InstructorTopicService
}

func NewTopicController(topicService service.InstructorTopicService) *TopicController {
	return &TopicController{topicService: topicService}
}

// CreateTopic godoc
// @Summary (Instructor) Create a topic, optionally with questions and answers
// @Tags Instructor - Topics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param topic_data body dto.TopicCreateRequest true "Topic with nested questions"
// @Success 201 {object} dto.TopicAuthoringResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /instructors/topics [post]
func (c *TopicController) CreateTopic(ctx *gin.Context) {
	instructor, _ := middleware.InstructorFrom(ctx)

	var req dto.TopicCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	topic, err := c.topicService.CreateTopic(instructor.UserID, req)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, topic)
}

// ListTopics godoc
// @Summary (Instructor) List own topics with question counts
// @Tags Instructor - Topics
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.TopicSummaryResponse
// @Router /instructors/topics [get]
func (c *TopicController) ListTopics(ctx *gin.Context) {
	instructor, _ := middleware.InstructorFrom(ctx)

	topics, err := c.topicService.ListOwnTopics(instructor.UserID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, topics)
}

// GetTopic godoc
// @Summary (Instructor) Get one of own topics with questions and answers
// @Tags Instructor - Topics
// @Produce json
// @Security BearerAuth
// @Param topic_id path int true "Topic ID"
// @Success 200 {object} dto.TopicAuthoringResponse
// @Failure 404 {object} dto.ErrorResponse "Topic not found"
// @Router /instructors/topics/{topic_id} [get]
func (c *TopicController) GetTopic(ctx *gin.Context) {
	instructor, _ := middleware.InstructorFrom(ctx)
	topicID, ok := parseID(ctx, "topic_id")
	if !ok {
		return
	}

	topic, err := c.topicService.GetTopic(instructor.UserID, topicID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, topic)
}

// UpdateTopic godoc
// @Summary (Instructor) Rename a topic or move it to another course
// @Tags Instructor - Topics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param topic_id path int true "Topic ID"
// @Param topic_data body dto.TopicUpdateRequest true "New name and course"
// @Success 200 {object} dto.TopicAuthoringResponse
// @Failure 404 {object} dto.ErrorResponse "Topic not found"
// @Router /instructors/topics/{topic_id} [put]
func (c *TopicController) UpdateTopic(ctx *gin.Context) {
	instructor, _ := middleware.InstructorFrom(ctx)
	topicID, ok := parseID(ctx, "topic_id")
	if !ok {
		return
	}

	var req dto.TopicUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	topic, err := c.topicService.UpdateTopic(instructor.UserID, topicID, req)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, topic)
}

// DeleteTopic godoc
// @Summary (Instructor) Delete a topic and its questions
// @Tags Instructor - Topics
// @Security BearerAuth
// @Param topic_id path int true "Topic ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse "Topic not found"
// @Router /instructors/topics/{topic_id} [delete]
func (c *TopicController) DeleteTopic(ctx *gin.Context) {
	instructor, _ := middleware.InstructorFrom(ctx)
	topicID, ok := parseID(ctx, "topic_id")
	if !ok {
		return
	}

	if err := c.topicService.DeleteTopic(instructor.UserID, topicID); err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AddQuestion godoc
// @Summary (Instructor) Add a question with answers to a topic
// @Tags Instructor - Topics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param topic_id path int true "Topic ID"
// @Param question_data body dto.QuestionCreateRequest true "Question with 2-10 answers, at least one correct"
// @Success 201 {object} dto.QuestionAuthoringResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid answer set"
// @Failure 404 {object} dto.ErrorResponse "Topic not found"
// @Router /instructors/topics/{topic_id}/questions [post]
func (c *TopicController) AddQuestion(ctx *gin.Context) {
	instructor, _ := middleware.InstructorFrom(ctx)
	topicID, ok := parseID(ctx, "topic_id")
	if !ok {
		return
	}

	var req dto.QuestionCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	question, err := c.topicService.AddQuestion(instructor.UserID, topicID, req)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, question)
}

// DeleteQuestion godoc
// @Summary (Instructor) Delete a question and its answers
// @Tags Instructor - Topics
// @Security BearerAuth
// @Param topic_id path int true "Topic ID"
// @Param question_id path int true "Question ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse "Topic or question not found"
// @Router /instructors/topics/{topic_id}/questions/{question_id} [delete]
func (c *TopicController) DeleteQuestion(ctx *gin.Context) {
	instructor, _ := middleware.InstructorFrom(ctx)
	topicID, ok := parseID(ctx, "topic_id")
	if !ok {
		return
	}
	questionID, ok := parseID(ctx, "question_id")
	if !ok {
		return
	}

	if err := c.topicService.DeleteQuestion(instructor.UserID, topicID, questionID); err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (c *TopicController) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
	default:
		log.Error().Err(err).Msg("Instructor topics: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to process request"})
	}
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(param), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + param + " format"})
		return 0, false
	}
	return uint(val), true
}
