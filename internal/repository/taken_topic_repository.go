package repository

import (
	"errors"

	"github.com/codecat-lms/codecat/internal/model"
	"gorm.io/gorm"
)

type TakenTopicRepository interface {
	Create(takenTopic *model.TakenTopic) error
	// FindByStudentAndTopic returns (nil, nil) when no record exists.
	FindByStudentAndTopic(studentID, topicID uint) (*model.TakenTopic, error)
	FindAllByStudent(studentID uint) ([]model.TakenTopic, error)
}

type takenTopicRepository struct {
	db *gorm.DB
}

func NewTakenTopicRepository(db *gorm.DB) TakenTopicRepository {
	return &takenTopicRepository{db: db}
}

func (r *takenTopicRepository) Create(takenTopic *model.TakenTopic) error {
	return r.db.Create(takenTopic).Error
}

func (r *takenTopicRepository) FindByStudentAndTopic(studentID, topicID uint) (*model.TakenTopic, error) {
	var taken model.TakenTopic
	err := r.db.Where("student_id = ? AND topic_id = ?", studentID, topicID).First(&taken).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &taken, nil
}

func (r *takenTopicRepository) FindAllByStudent(studentID uint) ([]model.TakenTopic, error) {
	var taken []model.TakenTopic
	err := r.db.
		Preload("Topic").
		Preload("Topic.Course").
		Joins("JOIN topics ON topics.id = taken_topics.topic_id").
		Where("taken_topics.student_id = ?", studentID).
		Order("topics.name ASC").
		Find(&taken).Error
	return taken, err
}
