package repository

import (
	"github.com/codecat-lms/codecat/internal/model"
	"gorm.io/gorm"
)

// TopicWithCount is a listing row: a topic plus its question count.
type TopicWithCount struct {
	model.Topic
	QuestionCount int
}

type TopicRepository interface {
	Create(topic *model.Topic) error
	FindByID(id uint) (*model.Topic, error)
	FindByIDWithQuestions(id uint) (*model.Topic, error)
	// FindAvailableForStudent lists topics in the given courses that the student
	// has not taken yet and that have at least one question, ordered by name.
	FindAvailableForStudent(courseIDs []uint, studentID uint) ([]TopicWithCount, error)
	FindAllByOwner(userID uint) ([]TopicWithCount, error)
	Update(topic *model.Topic) error
	Delete(id uint) error
}

type topicRepository struct {
	db *gorm.DB
}

func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Create(topic *model.Topic) error {
	// Nested questions and answers are created along with the topic.
	return r.db.Create(topic).Error
}

func (r *topicRepository) FindByID(id uint) (*model.Topic, error) {
	var topic model.Topic
	if err := r.db.Preload("Course").First(&topic, id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepository) FindByIDWithQuestions(id uint) (*model.Topic, error) {
	var topic model.Topic
	err := r.db.
		Preload("Course").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.text ASC, questions.id ASC")
		}).
		Preload("Questions.Answers").
		First(&topic, id).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepository) FindAvailableForStudent(courseIDs []uint, studentID uint) ([]TopicWithCount, error) {
	var results []TopicWithCount
	if len(courseIDs) == 0 {
		return results, nil
	}
	err := r.db.Model(&model.Topic{}).
		Select("topics.*, (SELECT COUNT(*) FROM questions WHERE questions.topic_id = topics.id) AS question_count").
		Where("topics.course_id IN ?", courseIDs).
		Where("topics.id NOT IN (?)",
			r.db.Model(&model.TakenTopic{}).Select("topic_id").Where("student_id = ?", studentID)).
		Where("(SELECT COUNT(*) FROM questions WHERE questions.topic_id = topics.id) > 0").
		Order("topics.name ASC").
		Scan(&results).Error
	return results, err
}

func (r *topicRepository) FindAllByOwner(userID uint) ([]TopicWithCount, error) {
	var results []TopicWithCount
	err := r.db.Model(&model.Topic{}).
		Select("topics.*, (SELECT COUNT(*) FROM questions WHERE questions.topic_id = topics.id) AS question_count").
		Where("topics.user_id = ?", userID).
		Order("topics.name ASC").
		Scan(&results).Error
	return results, err
}

func (r *topicRepository) Update(topic *model.Topic) error {
	return r.db.Save(topic).Error
}

func (r *topicRepository) Delete(id uint) error {
	// FK constraints cascade to questions and answers.
	return r.db.Delete(&model.Topic{}, id).Error
}
