package service

import (
	"errors"
	"fmt"

	"github.com/codecat-lms/codecat/internal/dto"
	"github.com/codecat-lms/codecat/internal/model"
	"github.com/codecat-lms/codecat/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// InstructorTopicService is the authoring surface. It owns the answer-set
// invariant the session engine relies on: 2 to 10 answers per question, at
// least one of them correct.
type InstructorTopicService interface {
	CreateTopic(instructorUserID uint, req dto.TopicCreateRequest) (*dto.TopicAuthoringResponse, error)
	ListOwnTopics(instructorUserID uint) ([]dto.TopicSummaryResponse, error)
	GetTopic(instructorUserID, topicID uint) (*dto.TopicAuthoringResponse, error)
	UpdateTopic(instructorUserID, topicID uint, req dto.TopicUpdateRequest) (*dto.TopicAuthoringResponse, error)
	DeleteTopic(instructorUserID, topicID uint) error
	AddQuestion(instructorUserID, topicID uint, req dto.QuestionCreateRequest) (*dto.QuestionAuthoringResponse, error)
	DeleteQuestion(instructorUserID, topicID, questionID uint) error
}

type instructorTopicService struct {
	topicRepo    repository.TopicRepository
	questionRepo repository.QuestionRepository
	courseRepo   repository.CourseRepository
}

func NewInstructorTopicService(
	topicRepo repository.TopicRepository,
	questionRepo repository.QuestionRepository,
	courseRepo repository.CourseRepository,
) InstructorTopicService {
	return &instructorTopicService{
		topicRepo:    topicRepo,
		questionRepo: questionRepo,
		courseRepo:   courseRepo,
	}
}

func validateAnswerSet(answers []dto.AnswerCreateRequest) error {
	if len(answers) < 2 || len(answers) > 10 {
		return fmt.Errorf("a question needs between 2 and 10 answers, got %d: %w", len(answers), ErrValidation)
	}
	for _, a := range answers {
		if a.IsCorrect {
			return nil
		}
	}
	return fmt.Errorf("a question needs at least one correct answer: %w", ErrValidation)
}

func (s *instructorTopicService) CreateTopic(instructorUserID uint, req dto.TopicCreateRequest) (*dto.TopicAuthoringResponse, error) {
	if _, err := s.courseRepo.FindByID(req.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course %d: %w", req.CourseID, ErrNotFound)
		}
		return nil, err
	}

	topic := model.Topic{
		UserID:   &instructorUserID,
		Name:     req.Name,
		CourseID: req.CourseID,
	}
	for _, q := range req.Questions {
		if err := validateAnswerSet(q.Answers); err != nil {
			return nil, err
		}
		question := model.Question{Text: q.Text}
		for _, a := range q.Answers {
			question.Answers = append(question.Answers, model.Answer{Text: a.Text, IsCorrect: a.IsCorrect})
		}
		topic.Questions = append(topic.Questions, question)
	}

	if err := s.topicRepo.Create(&topic); err != nil {
		log.Error().Err(err).Uint("instructorID", instructorUserID).Msg("CreateTopic: create failed")
		return nil, fmt.Errorf("creating topic: %w", err)
	}

	log.Info().Uint("topicID", topic.ID).Uint("instructorID", instructorUserID).
		Int("questions", len(topic.Questions)).Msg("Topic created")

	var resp dto.TopicAuthoringResponse
	if err := copier.Copy(&resp, &topic); err != nil {
		return nil, fmt.Errorf("preparing topic response: %w", err)
	}
	return &resp, nil
}

func (s *instructorTopicService) ListOwnTopics(instructorUserID uint) ([]dto.TopicSummaryResponse, error) {
	topics, err := s.topicRepo.FindAllByOwner(instructorUserID)
	if err != nil {
		log.Error().Err(err).Uint("instructorID", instructorUserID).Msg("ListOwnTopics: listing failed")
		return nil, fmt.Errorf("listing topics: %w", err)
	}

	resp := make([]dto.TopicSummaryResponse, 0, len(topics))
	for _, t := range topics {
		var row dto.TopicSummaryResponse
		if err := copier.Copy(&row, &t.Topic); err != nil {
			return nil, fmt.Errorf("preparing topic listing: %w", err)
		}
		row.QuestionCount = t.QuestionCount
		resp = append(resp, row)
	}
	return resp, nil
}

func (s *instructorTopicService) GetTopic(instructorUserID, topicID uint) (*dto.TopicAuthoringResponse, error) {
	topic, err := s.ownedTopicWithQuestions(instructorUserID, topicID)
	if err != nil {
		return nil, err
	}
	var resp dto.TopicAuthoringResponse
	if err := copier.Copy(&resp, topic); err != nil {
		return nil, fmt.Errorf("preparing topic response: %w", err)
	}
	return &resp, nil
}

func (s *instructorTopicService) UpdateTopic(instructorUserID, topicID uint, req dto.TopicUpdateRequest) (*dto.TopicAuthoringResponse, error) {
	topic, err := s.ownedTopic(instructorUserID, topicID)
	if err != nil {
		return nil, err
	}
	if _, err := s.courseRepo.FindByID(req.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course %d: %w", req.CourseID, ErrNotFound)
		}
		return nil, err
	}

	topic.Name = req.Name
	topic.CourseID = req.CourseID
	if err := s.topicRepo.Update(topic); err != nil {
		log.Error().Err(err).Uint("topicID", topicID).Msg("UpdateTopic: update failed")
		return nil, fmt.Errorf("updating topic: %w", err)
	}

	var resp dto.TopicAuthoringResponse
	if err := copier.Copy(&resp, topic); err != nil {
		return nil, fmt.Errorf("preparing topic response: %w", err)
	}
	return &resp, nil
}

func (s *instructorTopicService) DeleteTopic(instructorUserID, topicID uint) error {
	if _, err := s.ownedTopic(instructorUserID, topicID); err != nil {
		return err
	}
	if err := s.topicRepo.Delete(topicID); err != nil {
		log.Error().Err(err).Uint("topicID", topicID).Msg("DeleteTopic: delete failed")
		return fmt.Errorf("deleting topic: %w", err)
	}
	log.Info().Uint("topicID", topicID).Uint("instructorID", instructorUserID).Msg("Topic deleted")
	return nil
}

func (s *instructorTopicService) AddQuestion(instructorUserID, topicID uint, req dto.QuestionCreateRequest) (*dto.QuestionAuthoringResponse, error) {
	if _, err := s.ownedTopic(instructorUserID, topicID); err != nil {
		return nil, err
	}
	if err := validateAnswerSet(req.Answers); err != nil {
		return nil, err
	}

	question := model.Question{TopicID: topicID, Text: req.Text}
	for _, a := range req.Answers {
		question.Answers = append(question.Answers, model.Answer{Text: a.Text, IsCorrect: a.IsCorrect})
	}
	if err := s.questionRepo.Create(&question); err != nil {
		log.Error().Err(err).Uint("topicID", topicID).Msg("AddQuestion: create failed")
		return nil, fmt.Errorf("creating question: %w", err)
	}

	var resp dto.QuestionAuthoringResponse
	if err := copier.Copy(&resp, &question); err != nil {
		return nil, fmt.Errorf("preparing question response: %w", err)
	}
	return &resp, nil
}

func (s *instructorTopicService) DeleteQuestion(instructorUserID, topicID, questionID uint) error {
	if _, err := s.ownedTopic(instructorUserID, topicID); err != nil {
		return err
	}
	question, err := s.questionRepo.FindByID(questionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("question %d: %w", questionID, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if question.TopicID != topicID {
		return fmt.Errorf("question %d does not belong to topic %d: %w", questionID, topicID, ErrValidation)
	}
	return s.questionRepo.Delete(questionID)
}

// ownedTopic loads the topic and hides it behind ErrNotFound unless the
// instructor owns it.
func (s *instructorTopicService) ownedTopic(instructorUserID, topicID uint) (*model.Topic, error) {
	topic, err := s.topicRepo.FindByID(topicID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("topic %d: %w", topicID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if topic.UserID == nil || *topic.UserID != instructorUserID {
		return nil, fmt.Errorf("topic %d: %w", topicID, ErrNotFound)
	}
	return topic, nil
}

func (s *instructorTopicService) ownedTopicWithQuestions(instructorUserID, topicID uint) (*model.Topic, error) {
	if _, err := s.ownedTopic(instructorUserID, topicID); err != nil {
		return nil, err
	}
	return s.topicRepo.FindByIDWithQuestions(topicID)
}
