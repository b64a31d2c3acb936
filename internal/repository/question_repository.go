package repository

import (
	"github.com/codecat-lms/codecat/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	Create(question *model.Question) error
	FindByID(id uint) (*model.Question, error)
	// FindByTopicID returns the topic's questions in the session order:
	// prompt text ascending, id as the tiebreaker so the sequence is stable.
	FindByTopicID(topicID uint) ([]model.Question, error)
	CountByTopicID(topicID uint) (int64, error)
	Delete(id uint) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *model.Question) error {
	return r.db.Create(question).Error
}

func (r *questionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindByTopicID(topicID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Where("topic_id = ?", topicID).
		Order("text ASC, id ASC").
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) CountByTopicID(topicID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Question{}).Where("topic_id = ?", topicID).Count(&count).Error
	return count, err
}

func (r *questionRepository) Delete(id uint) error {
	return r.db.Delete(&model.Question{}, id).Error
}
