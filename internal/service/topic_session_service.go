package service

import (
	"errors"
	"fmt"
	"math"

	"github.com/codecat-lms/codecat/internal/model"
	"github.com/codecat-lms/codecat/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PassThreshold is the score at or above which a finalized topic counts as
// passed. Reported to the caller, never gated on.
const PassThreshold = 50.0

type SessionState string

const (
	// StateInProgress: unanswered questions remain; Question and Progress are set.
	StateInProgress SessionState = "in_progress"
	// StateCompleted: the topic is finished for this student; Score is set when
	// the finalization record exists.
	StateCompleted SessionState = "completed"
	// StateFinalized: this submission closed the topic; Score and Passed are set.
	StateFinalized SessionState = "finalized"
)

// SessionOutcome is what the presentation layer renders after taking or
// submitting: the next question with its progress, or the completion result.
type SessionOutcome struct {
	State    SessionState
	Question *model.Question
	Progress int
	Score    *float64
	Passed   bool
}

// TopicSessionService is the take-topic engine: it resolves the next
// unanswered question, accepts one answer per question exactly once, and
// finalizes the score when the last question is answered.
type TopicSessionService interface {
	// Take returns the current session view for a GET: the next question with
	// progress, or the completed state.
	Take(studentID, topicID uint) (*SessionOutcome, error)
	// Submit records one answer and advances the session, finalizing it when
	// the last question was just answered.
	Submit(studentID, topicID, questionID, answerID uint) (*SessionOutcome, error)
	// ResolveUnanswered returns the questions of the topic the student has not
	// answered yet, in presentation order. Empty means the topic is complete.
	ResolveUnanswered(studentID, topicID uint) ([]model.Question, error)
}

type topicSessionService struct {
	topicRepo repository.TopicRepository
	repos     repository.SessionRepos
	uow       repository.UnitOfWork
}

func NewTopicSessionService(
	topicRepo repository.TopicRepository,
	repos repository.SessionRepos,
	uow repository.UnitOfWork,
) TopicSessionService {
	return &topicSessionService{topicRepo: topicRepo, repos: repos, uow: uow}
}

// Progress computes the percent shown while presenting a question.
// remainingBefore counts the unanswered questions including the one being
// presented. The formula is 100 - round((remainingBefore-1)/total*100); the
// final question therefore presents at exactly 100.
func Progress(totalQuestions, remainingBefore int) (int, error) {
	if totalQuestions <= 0 {
		return 0, fmt.Errorf("progress undefined for %d questions: %w", totalQuestions, ErrNoQuestions)
	}
	return 100 - int(math.Round(float64(remainingBefore-1)/float64(totalQuestions)*100)), nil
}

// roundScore converts a correct count into a 0-100 score with two decimals.
func roundScore(correct, total int64) float64 {
	return math.Round(float64(correct)/float64(total)*100.0*100) / 100
}

// filterUnanswered keeps the questions without an answer from the student.
// Input order (text asc, id asc) is preserved, so index 0 is the next question.
func filterUnanswered(questions []model.Question, answeredIDs []uint) []model.Question {
	answered := make(map[uint]struct{}, len(answeredIDs))
	for _, id := range answeredIDs {
		answered[id] = struct{}{}
	}
	remaining := make([]model.Question, 0, len(questions))
	for _, q := range questions {
		if _, ok := answered[q.ID]; !ok {
			remaining = append(remaining, q)
		}
	}
	return remaining
}

func resolveUnanswered(r repository.SessionRepos, studentID, topicID uint) ([]model.Question, error) {
	questions, err := r.Question.FindByTopicID(topicID)
	if err != nil {
		return nil, fmt.Errorf("listing questions for topic %d: %w", topicID, err)
	}
	answeredIDs, err := r.StudentAnswer.FindAnsweredQuestionIDs(studentID, topicID)
	if err != nil {
		return nil, fmt.Errorf("listing answered questions for student %d: %w", studentID, err)
	}
	return filterUnanswered(questions, answeredIDs), nil
}

func (s *topicSessionService) ResolveUnanswered(studentID, topicID uint) ([]model.Question, error) {
	return resolveUnanswered(s.repos, studentID, topicID)
}

func (s *topicSessionService) Take(studentID, topicID uint) (*SessionOutcome, error) {
	if _, err := s.findTopic(topicID); err != nil {
		return nil, err
	}

	taken, err := s.repos.TakenTopic.FindByStudentAndTopic(studentID, topicID)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		score := taken.Score
		return &SessionOutcome{State: StateCompleted, Score: &score, Passed: score >= PassThreshold}, nil
	}

	questions, err := s.repos.Question.FindByTopicID(topicID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		log.Error().Uint("topicID", topicID).Msg("Take: topic with zero questions reached the session engine")
		return nil, fmt.Errorf("topic %d: %w", topicID, ErrNoQuestions)
	}

	answeredIDs, err := s.repos.StudentAnswer.FindAnsweredQuestionIDs(studentID, topicID)
	if err != nil {
		return nil, err
	}
	remaining := filterUnanswered(questions, answeredIDs)
	if len(remaining) == 0 {
		// Every question answered but no finalization record: a submission
		// crashed between insert and finalize. The next Submit is refused and
		// the student sees the completed state.
		return &SessionOutcome{State: StateCompleted}, nil
	}

	progress, err := Progress(len(questions), len(remaining))
	if err != nil {
		return nil, err
	}
	question, err := withChoices(s.repos, remaining[0])
	if err != nil {
		return nil, err
	}
	return &SessionOutcome{State: StateInProgress, Question: question, Progress: progress}, nil
}

// withChoices attaches the answer choices to the question being presented.
func withChoices(r repository.SessionRepos, question model.Question) (*model.Question, error) {
	answers, err := r.Answer.FindByQuestionID(question.ID)
	if err != nil {
		return nil, fmt.Errorf("loading answers for question %d: %w", question.ID, err)
	}
	question.Answers = answers
	return &question, nil
}

func (s *topicSessionService) Submit(studentID, topicID, questionID, answerID uint) (*SessionOutcome, error) {
	if _, err := s.findTopic(topicID); err != nil {
		return nil, err
	}

	var outcome *SessionOutcome
	err := s.uow.Run(func(r repository.SessionRepos) error {
		var txErr error
		outcome, txErr = s.submitTx(r, studentID, topicID, questionID, answerID)
		return txErr
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent duplicate submission won the race. The transaction
		// rolled back with zero writes; answer with the committed state.
		log.Warn().
			Uint("studentID", studentID).Uint("topicID", topicID).Uint("questionID", questionID).
			Msg("Submit: duplicate write lost a race, returning authoritative state")
		return s.Take(studentID, topicID)
	}
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// submitTx runs the insert-check-finalize sequence. It executes inside one
// transaction: any error, including a uniqueness-constraint trip, rolls back
// the StudentAnswer insert.
func (s *topicSessionService) submitTx(r repository.SessionRepos, studentID, topicID, questionID, answerID uint) (*SessionOutcome, error) {
	taken, err := r.TakenTopic.FindByStudentAndTopic(studentID, topicID)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, fmt.Errorf("student %d, topic %d: %w", studentID, topicID, ErrAlreadyCompleted)
	}

	questions, err := r.Question.FindByTopicID(topicID)
	if err != nil {
		return nil, err
	}
	total := len(questions)
	if total == 0 {
		log.Error().Uint("topicID", topicID).Msg("Submit: topic with zero questions reached the session engine")
		return nil, fmt.Errorf("topic %d: %w", topicID, ErrNoQuestions)
	}

	var question *model.Question
	for i := range questions {
		if questions[i].ID == questionID {
			question = &questions[i]
			break
		}
	}
	if question == nil {
		return nil, fmt.Errorf("question %d does not belong to topic %d: %w", questionID, topicID, ErrValidation)
	}

	answer, err := r.Answer.FindByID(answerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("answer %d not found: %w", answerID, ErrValidation)
	}
	if err != nil {
		return nil, err
	}
	if answer.QuestionID != question.ID {
		return nil, fmt.Errorf("answer %d does not belong to question %d: %w", answerID, question.ID, ErrValidation)
	}

	answeredIDs, err := r.StudentAnswer.FindAnsweredQuestionIDs(studentID, topicID)
	if err != nil {
		return nil, err
	}
	remaining := filterUnanswered(questions, answeredIDs)
	if len(remaining) == 0 {
		return nil, fmt.Errorf("student %d, topic %d: %w", studentID, topicID, ErrAlreadyCompleted)
	}
	stillOpen := false
	for _, q := range remaining {
		if q.ID == question.ID {
			stillOpen = true
			break
		}
	}
	if !stillOpen {
		return nil, fmt.Errorf("question %d already answered: %w", question.ID, ErrValidation)
	}

	studentAnswer := model.StudentAnswer{
		StudentID:  studentID,
		QuestionID: question.ID,
		AnswerID:   answer.ID,
	}
	if err := r.StudentAnswer.Create(&studentAnswer); err != nil {
		return nil, err
	}

	remaining = filterUnanswered(remaining, []uint{question.ID})
	if len(remaining) > 0 {
		progress, err := Progress(total, len(remaining))
		if err != nil {
			return nil, err
		}
		next, err := withChoices(r, remaining[0])
		if err != nil {
			return nil, err
		}
		return &SessionOutcome{State: StateInProgress, Question: next, Progress: progress}, nil
	}

	return s.finalize(r, studentID, topicID, int64(total))
}

// finalize computes the score from the full answer history and persists the
// single TakenTopic for this (student, topic). Idempotent: an existing record
// is returned untouched.
func (s *topicSessionService) finalize(r repository.SessionRepos, studentID, topicID uint, total int64) (*SessionOutcome, error) {
	existing, err := r.TakenTopic.FindByStudentAndTopic(studentID, topicID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		score := existing.Score
		return &SessionOutcome{State: StateFinalized, Score: &score, Passed: score >= PassThreshold}, nil
	}

	correct, err := r.StudentAnswer.CountCorrect(studentID, topicID)
	if err != nil {
		return nil, err
	}
	score := roundScore(correct, total)

	takenTopic := model.TakenTopic{
		StudentID: studentID,
		TopicID:   topicID,
		Score:     score,
	}
	if err := r.TakenTopic.Create(&takenTopic); err != nil {
		return nil, err
	}

	log.Info().
		Uint("studentID", studentID).Uint("topicID", topicID).
		Float64("score", score).Int64("correct", correct).Int64("total", total).
		Msg("Topic finalized")

	return &SessionOutcome{State: StateFinalized, Score: &score, Passed: score >= PassThreshold}, nil
}

func (s *topicSessionService) findTopic(topicID uint) (*model.Topic, error) {
	topic, err := s.topicRepo.FindByID(topicID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("topic %d: %w", topicID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return topic, nil
}
