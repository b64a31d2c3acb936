package repository

import (
	"github.com/codecat-lms/codecat/internal/model"
	"gorm.io/gorm"
)

type AnswerRepository interface {
	FindByID(id uint) (*model.Answer, error)
	FindByQuestionID(questionID uint) ([]model.Answer, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) FindByID(id uint) (*model.Answer, error) {
	var answer model.Answer
	if err := r.db.First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepository) FindByQuestionID(questionID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.Where("question_id = ?", questionID).Order("id ASC").Find(&answers).Error
	return answers, err
}
