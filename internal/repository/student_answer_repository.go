package repository

import (
	"github.com/codecat-lms/codecat/internal/model"
	"gorm.io/gorm"
)

type StudentAnswerRepository interface {
	Create(studentAnswer *model.StudentAnswer) error
	// FindAnsweredQuestionIDs returns the ids of questions in the topic the
	// student has already answered.
	FindAnsweredQuestionIDs(studentID, topicID uint) ([]uint, error)
	// CountCorrect counts the student's answers in the topic flagged is_correct.
	CountCorrect(studentID, topicID uint) (int64, error)
}

type studentAnswerRepository struct {
	db *gorm.DB
}

func NewStudentAnswerRepository(db *gorm.DB) StudentAnswerRepository {
	return &studentAnswerRepository{db: db}
}

func (r *studentAnswerRepository) Create(studentAnswer *model.StudentAnswer) error {
	return r.db.Create(studentAnswer).Error
}

func (r *studentAnswerRepository) FindAnsweredQuestionIDs(studentID, topicID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.StudentAnswer{}).
		Joins("JOIN questions ON questions.id = student_answers.question_id").
		Where("student_answers.student_id = ? AND questions.topic_id = ?", studentID, topicID).
		Pluck("questions.id", &ids).Error
	return ids, err
}

func (r *studentAnswerRepository) CountCorrect(studentID, topicID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.StudentAnswer{}).
		Joins("JOIN answers ON answers.id = student_answers.answer_id").
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("student_answers.student_id = ? AND questions.topic_id = ? AND answers.is_correct = ?",
			studentID, topicID, true).
		Count(&count).Error
	return count, err
}
