package repository

import (
	"github.com/codecat-lms/codecat/internal/model"
	"gorm.io/gorm"
)

type StudentRepository interface {
	Create(student *model.Student) error
	FindByID(id uint) (*model.Student, error)
	FindByUserID(userID uint) (*model.Student, error)
	// FindEnrolledCourseIDs returns the ids of courses the student is registered in.
	FindEnrolledCourseIDs(studentID uint) ([]uint, error)
}

type studentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(student *model.Student) error {
	return r.db.Create(student).Error
}

func (r *studentRepository) FindByID(id uint) (*model.Student, error) {
	var student model.Student
	if err := r.db.Preload("Courses").First(&student, id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) FindByUserID(userID uint) (*model.Student, error) {
	var student model.Student
	if err := r.db.Where("user_id = ?", userID).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) FindEnrolledCourseIDs(studentID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Table("student_courses").
		Where("student_id = ?", studentID).
		Pluck("course_id", &ids).Error
	return ids, err
}
