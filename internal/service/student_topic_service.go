package service

import (
	"fmt"

	"github.com/codecat-lms/codecat/internal/dto"
	"github.com/codecat-lms/codecat/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
)

// StudentTopicService serves the student's topic listings: what can still be
// taken and what has been completed.
type StudentTopicService interface {
	AvailableTopics(studentID uint) ([]dto.TopicSummaryResponse, error)
	TakenTopics(studentID uint) ([]dto.TakenTopicResponse, error)
}

type studentTopicService struct {
	studentRepo    repository.StudentRepository
	topicRepo      repository.TopicRepository
	takenTopicRepo repository.TakenTopicRepository
}

func NewStudentTopicService(
	studentRepo repository.StudentRepository,
	topicRepo repository.TopicRepository,
	takenTopicRepo repository.TakenTopicRepository,
) StudentTopicService {
	return &studentTopicService{
		studentRepo:    studentRepo,
		topicRepo:      topicRepo,
		takenTopicRepo: takenTopicRepo,
	}
}

// AvailableTopics lists topics in the student's enrolled courses that have at
// least one question and no finalization record yet. A topic disappears from
// this list the moment it is finalized, permanently.
func (s *studentTopicService) AvailableTopics(studentID uint) ([]dto.TopicSummaryResponse, error) {
	courseIDs, err := s.studentRepo.FindEnrolledCourseIDs(studentID)
	if err != nil {
		log.Error().Err(err).Uint("studentID", studentID).Msg("AvailableTopics: failed to load enrollments")
		return nil, fmt.Errorf("loading enrollments: %w", err)
	}

	topics, err := s.topicRepo.FindAvailableForStudent(courseIDs, studentID)
	if err != nil {
		log.Error().Err(err).Uint("studentID", studentID).Msg("AvailableTopics: listing failed")
		return nil, fmt.Errorf("listing available topics: %w", err)
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

func (s *studentTopicService) TakenTopics(studentID uint) ([]dto.TakenTopicResponse, error) {
	taken, err := s.takenTopicRepo.FindAllByStudent(studentID)
	if err != nil {
		log.Error().Err(err).Uint("studentID", studentID).Msg("TakenTopics: listing failed")
		return nil, fmt.Errorf("listing taken topics: %w", err)
	}

	resp := make([]dto.TakenTopicResponse, 0, len(taken))
	for _, tt := range taken {
		row := dto.TakenTopicResponse{
			TopicID:   tt.TopicID,
			TopicName: tt.Topic.Name,
			Score:     tt.Score,
			Date:      tt.Date,
		}
		copier.Copy(&row.Course, &tt.Topic.Course)
		resp = append(resp, row)
	}
	return resp, nil
}
