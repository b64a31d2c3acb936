package repository

import "gorm.io/gorm"

// SessionRepos bundles the repositories the session engine needs inside one
// transaction. Every repository is bound to the same underlying connection.
type SessionRepos struct {
	Question      QuestionRepository
	Answer        AnswerRepository
	StudentAnswer StudentAnswerRepository
	TakenTopic    TakenTopicRepository
}

// NewSessionRepos binds the session repositories to db, which may be either
// the root connection or a transaction handle.
func NewSessionRepos(db *gorm.DB) SessionRepos {
	return SessionRepos{
		Question:      NewQuestionRepository(db),
		Answer:        NewAnswerRepository(db),
		StudentAnswer: NewStudentAnswerRepository(db),
		TakenTopic:    NewTakenTopicRepository(db),
	}
}

// UnitOfWork runs a function against transaction-bound repositories. The
// insert-check-finalize sequence of a submission runs through this so that a
// constraint violation rolls back every write.
type UnitOfWork interface {
	Run(fn func(r SessionRepos) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Run(fn func(r SessionRepos) error) error {
	return u.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewSessionRepos(tx))
	})
}
