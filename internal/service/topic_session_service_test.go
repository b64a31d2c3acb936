package service

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"
	"testing"

	"github.com/codecat-lms/codecat/internal/model"
	"github.com/codecat-lms/codecat/internal/repository"
	"gorm.io/gorm"
)

// In-memory store implementing the repository interfaces the session engine
// uses. The composite unique constraints are emulated by returning
// gorm.ErrDuplicatedKey, matching what the postgres driver translation yields.
type fakeStore struct {
	mu             sync.Mutex
	topics         map[uint]model.Topic
	questions      map[uint]model.Question
	answers        map[uint]model.Answer
	studentAnswers map[string]model.StudentAnswer // key: student|question
	takenTopics    map[string]model.TakenTopic    // key: student|topic
	nextID         uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		topics:         map[uint]model.Topic{},
		questions:      map[uint]model.Question{},
		answers:        map[uint]model.Answer{},
		studentAnswers: map[string]model.StudentAnswer{},
		takenTopics:    map[string]model.TakenTopic{},
	}
}

func pairKey(a, b uint) string { return fmt.Sprintf("%d|%d", a, b) }

func (s *fakeStore) id() uint {
	s.nextID++
	return s.nextID
}

/* ---- TopicRepository ---- */

func (s *fakeStore) Create(topic *model.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	topic.ID = s.id()
	s.topics[topic.ID] = *topic
	return nil
}

func (s *fakeStore) FindByID(id uint) (*model.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.topics[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (s *fakeStore) FindByIDWithQuestions(id uint) (*model.Topic, error) { return s.FindByID(id) }

func (s *fakeStore) FindAvailableForStudent(courseIDs []uint, studentID uint) ([]repository.TopicWithCount, error) {
	return nil, nil
}

func (s *fakeStore) FindAllByOwner(userID uint) ([]repository.TopicWithCount, error) {
	return nil, nil
}

func (s *fakeStore) Update(topic *model.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[topic.ID] = *topic
	return nil
}

func (s *fakeStore) Delete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.topics, id)
	return nil
}

/* ---- questions / answers (read side of the session engine) ---- */

type fakeQuestionRepo struct{ store *fakeStore }

func (r fakeQuestionRepo) Create(q *model.Question) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	q.ID = r.store.id()
	r.store.questions[q.ID] = *q
	return nil
}

func (r fakeQuestionRepo) FindByID(id uint) (*model.Question, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	q, ok := r.store.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &q, nil
}

func (r fakeQuestionRepo) FindByTopicID(topicID uint) ([]model.Question, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var qs []model.Question
	for _, q := range r.store.questions {
		if q.TopicID == topicID {
			qs = append(qs, q)
		}
	}
	sort.Slice(qs, func(i, j int) bool {
		if qs[i].Text != qs[j].Text {
			return qs[i].Text < qs[j].Text
		}
		return qs[i].ID < qs[j].ID
	})
	return qs, nil
}

func (r fakeQuestionRepo) CountByTopicID(topicID uint) (int64, error) {
	qs, _ := r.FindByTopicID(topicID)
	return int64(len(qs)), nil
}

func (r fakeQuestionRepo) Delete(id uint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.questions, id)
	return nil
}

type fakeAnswerRepo struct{ store *fakeStore }

func (r fakeAnswerRepo) FindByID(id uint) (*model.Answer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.answers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (r fakeAnswerRepo) FindByQuestionID(questionID uint) ([]model.Answer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var as []model.Answer
	for _, a := range r.store.answers {
		if a.QuestionID == questionID {
			as = append(as, a)
		}
	}
	sort.Slice(as, func(i, j int) bool { return as[i].ID < as[j].ID })
	return as, nil
}

/* ---- student answers / taken topics (write side) ---- */

type fakeStudentAnswerRepo struct{ store *fakeStore }

func (r fakeStudentAnswerRepo) Create(sa *model.StudentAnswer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := pairKey(sa.StudentID, sa.QuestionID)
	if _, exists := r.store.studentAnswers[key]; exists {
		return gorm.ErrDuplicatedKey
	}
	sa.ID = r.store.id()
	r.store.studentAnswers[key] = *sa
	return nil
}

func (r fakeStudentAnswerRepo) FindAnsweredQuestionIDs(studentID, topicID uint) ([]uint, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var ids []uint
	for _, sa := range r.store.studentAnswers {
		if sa.StudentID != studentID {
			continue
		}
		if q, ok := r.store.questions[sa.QuestionID]; ok && q.TopicID == topicID {
			ids = append(ids, sa.QuestionID)
		}
	}
	return ids, nil
}

func (r fakeStudentAnswerRepo) CountCorrect(studentID, topicID uint) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, sa := range r.store.studentAnswers {
		if sa.StudentID != studentID {
			continue
		}
		q, ok := r.store.questions[sa.QuestionID]
		if !ok || q.TopicID != topicID {
			continue
		}
		if a, ok := r.store.answers[sa.AnswerID]; ok && a.IsCorrect {
			count++
		}
	}
	return count, nil
}

type fakeTakenTopicRepo struct{ store *fakeStore }

func (r fakeTakenTopicRepo) Create(tt *model.TakenTopic) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := pairKey(tt.StudentID, tt.TopicID)
	if _, exists := r.store.takenTopics[key]; exists {
		return gorm.ErrDuplicatedKey
	}
	tt.ID = r.store.id()
	r.store.takenTopics[key] = *tt
	return nil
}

func (r fakeTakenTopicRepo) FindByStudentAndTopic(studentID, topicID uint) (*model.TakenTopic, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tt, ok := r.store.takenTopics[pairKey(studentID, topicID)]
	if !ok {
		return nil, nil
	}
	return &tt, nil
}

func (r fakeTakenTopicRepo) FindAllByStudent(studentID uint) ([]model.TakenTopic, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var tts []model.TakenTopic
	for _, tt := range r.store.takenTopics {
		if tt.StudentID == studentID {
			tts = append(tts, tt)
		}
	}
	return tts, nil
}

func sessionRepos(store *fakeStore) repository.SessionRepos {
	return repository.SessionRepos{
		Question:      fakeQuestionRepo{store},
		Answer:        fakeAnswerRepo{store},
		StudentAnswer: fakeStudentAnswerRepo{store},
		TakenTopic:    fakeTakenTopicRepo{store},
	}
}

// fakeUow serializes transactions and rolls the write-side maps back on
// error, mirroring the all-or-nothing contract of the real transaction.
type fakeUow struct {
	store *fakeStore
	txMu  sync.Mutex
}

func (u *fakeUow) Run(fn func(r repository.SessionRepos) error) error {
	u.txMu.Lock()
	defer u.txMu.Unlock()

	u.store.mu.Lock()
	saSnap := maps.Clone(u.store.studentAnswers)
	ttSnap := maps.Clone(u.store.takenTopics)
	u.store.mu.Unlock()

	err := fn(sessionRepos(u.store))
	if err != nil {
		u.store.mu.Lock()
		u.store.studentAnswers = saSnap
		u.store.takenTopics = ttSnap
		u.store.mu.Unlock()
	}
	return err
}

func newSessionService(store *fakeStore) TopicSessionService {
	return NewTopicSessionService(store, sessionRepos(store), &fakeUow{store: store})
}

// seedTopic creates a topic with one question per prompt, each question
// getting one correct answer followed by two wrong ones. Returns the topic id,
// the question ids keyed by prompt, and the correct answer id per question.
func seedTopic(store *fakeStore, prompts ...string) (uint, map[string]uint, map[uint]uint) {
	topicID := store.id()
	store.topics[topicID] = model.Topic{ID: topicID, Name: "Loops", CourseID: 1}

	questionIDs := make(map[string]uint, len(prompts))
	correctAnswers := make(map[uint]uint, len(prompts))
	for _, prompt := range prompts {
		qID := store.id()
		store.questions[qID] = model.Question{ID: qID, TopicID: topicID, Text: prompt}
		questionIDs[prompt] = qID
		for i := 0; i < 3; i++ {
			aID := store.id()
			store.answers[aID] = model.Answer{ID: aID, QuestionID: qID, IsCorrect: i == 0}
			if i == 0 {
				correctAnswers[qID] = aID
			}
		}
	}
	return topicID, questionIDs, correctAnswers
}

func wrongAnswer(store *fakeStore, questionID uint) uint {
	for id, a := range store.answers {
		if a.QuestionID == questionID && !a.IsCorrect {
			return id
		}
	}
	return 0
}

const studentID = uint(7)

func TestTakeTopicWorkedExample(t *testing.T) {
	store := newFakeStore()
	topicID, qIDs, correct := seedTopic(store, "Q1 for loops", "Q2 while loops")
	svc := newSessionService(store)

	out, err := svc.Take(studentID, topicID)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if out.State != StateInProgress {
		t.Fatalf("state = %s, want %s", out.State, StateInProgress)
	}
	if out.Question == nil || out.Question.ID != qIDs["Q1 for loops"] {
		t.Fatalf("first question = %+v, want Q1", out.Question)
	}
	if out.Progress != 50 {
		t.Errorf("progress presenting Q1 = %d, want 50", out.Progress)
	}
	if len(out.Question.Answers) != 3 {
		t.Errorf("answer choices = %d, want 3", len(out.Question.Answers))
	}

	out, err = svc.Submit(studentID, topicID, qIDs["Q1 for loops"], correct[qIDs["Q1 for loops"]])
	if err != nil {
		t.Fatalf("Submit Q1: %v", err)
	}
	if out.State != StateInProgress {
		t.Fatalf("state after Q1 = %s, want %s", out.State, StateInProgress)
	}
	if out.Question.ID != qIDs["Q2 while loops"] {
		t.Fatalf("next question = %d, want Q2", out.Question.ID)
	}
	if out.Progress != 100 {
		t.Errorf("progress presenting Q2 = %d, want 100", out.Progress)
	}

	out, err = svc.Submit(studentID, topicID, qIDs["Q2 while loops"], correct[qIDs["Q2 while loops"]])
	if err != nil {
		t.Fatalf("Submit Q2: %v", err)
	}
	if out.State != StateFinalized {
		t.Fatalf("state after Q2 = %s, want %s", out.State, StateFinalized)
	}
	if out.Score == nil || *out.Score != 100.0 {
		t.Fatalf("score = %v, want 100.0", out.Score)
	}
	if !out.Passed {
		t.Error("passed = false, want true")
	}
	if len(store.takenTopics) != 1 {
		t.Fatalf("taken topics = %d, want exactly 1", len(store.takenTopics))
	}
	if len(store.studentAnswers) != 2 {
		t.Fatalf("student answers = %d, want 2", len(store.studentAnswers))
	}
}

func TestScoreFormula(t *testing.T) {
	cases := []struct {
		name      string
		questions int
		correct   int
		want      float64
		passed    bool
	}{
		{"one question, wrong", 1, 0, 0.0, false},
		{"one question, right", 1, 1, 100.0, true},
		{"two questions, one right", 2, 1, 50.0, true},
		{"ten questions, seven right", 10, 7, 70.0, true},
		{"ten questions, four right", 10, 4, 40.0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			prompts := make([]string, tc.questions)
			for i := range prompts {
				prompts[i] = fmt.Sprintf("question %02d", i)
			}
			topicID, qIDs, correct := seedTopic(store, prompts...)
			svc := newSessionService(store)

			var out *SessionOutcome
			var err error
			for i, prompt := range prompts {
				qID := qIDs[prompt]
				answerID := correct[qID]
				if i >= tc.correct {
					answerID = wrongAnswer(store, qID)
				}
				out, err = svc.Submit(studentID, topicID, qID, answerID)
				if err != nil {
					t.Fatalf("Submit %s: %v", prompt, err)
				}
			}

			if out.State != StateFinalized {
				t.Fatalf("final state = %s, want %s", out.State, StateFinalized)
			}
			if out.Score == nil || *out.Score != tc.want {
				t.Errorf("score = %v, want %v", out.Score, tc.want)
			}
			if out.Passed != tc.passed {
				t.Errorf("passed = %v, want %v", out.Passed, tc.passed)
			}
			if len(store.takenTopics) != 1 {
				t.Errorf("taken topics = %d, want exactly 1", len(store.takenTopics))
			}
		})
	}
}

func TestProgressMonotonicAcrossSession(t *testing.T) {
	store := newFakeStore()
	topicID, _, correct := seedTopic(store, "q a", "q b", "q c", "q d")
	svc := newSessionService(store)

	var seen []int
	for i := 0; i < 4; i++ {
		out, err := svc.Take(studentID, topicID)
		if err != nil {
			t.Fatalf("Take: %v", err)
		}
		if out.State != StateInProgress {
			t.Fatalf("state = %s, want %s", out.State, StateInProgress)
		}
		seen = append(seen, out.Progress)

		qID := out.Question.ID
		if _, err := svc.Submit(studentID, topicID, qID, correct[qID]); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Fatalf("progress decreased: %v", seen)
		}
	}
	if seen[len(seen)-1] != 100 {
		t.Errorf("final presentation progress = %d, want 100", seen[len(seen)-1])
	}
}

func TestResolverOrderStableByTextThenID(t *testing.T) {
	store := newFakeStore()
	topicID := store.id()
	store.topics[topicID] = model.Topic{ID: topicID, Name: "Order", CourseID: 1}

	// Inserted out of order, with a duplicate prompt to exercise the id tiebreak.
	for _, q := range []model.Question{
		{Text: "zebra"},
		{Text: "apple"},
		{Text: "mango"},
		{Text: "apple"},
	} {
		id := store.id()
		q.ID = id
		q.TopicID = topicID
		store.questions[id] = q
	}

	svc := newSessionService(store)
	questions, err := svc.ResolveUnanswered(studentID, topicID)
	if err != nil {
		t.Fatalf("ResolveUnanswered: %v", err)
	}

	texts := make([]string, len(questions))
	for i, q := range questions {
		texts[i] = q.Text
	}
	want := []string{"apple", "apple", "mango", "zebra"}
	for i := range want {
		if texts[i] != want[i] {
			t.Fatalf("order = %v, want %v", texts, want)
		}
	}
	if questions[0].ID > questions[1].ID {
		t.Errorf("duplicate prompts not ordered by id: %d then %d", questions[0].ID, questions[1].ID)
	}
}

func TestSubmitAnswerFromOtherQuestionRejected(t *testing.T) {
	store := newFakeStore()
	topicID, qIDs, correct := seedTopic(store, "first", "second")
	svc := newSessionService(store)

	// Answer belongs to "second" but is submitted against "first".
	_, err := svc.Submit(studentID, topicID, qIDs["first"], correct[qIDs["second"]])
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(store.studentAnswers) != 0 {
		t.Fatalf("student answers = %d, want 0 (no side effects)", len(store.studentAnswers))
	}
}

func TestSubmitQuestionOutsideTopicRejected(t *testing.T) {
	store := newFakeStore()
	topicID, _, _ := seedTopic(store, "only")
	_, otherQIDs, otherCorrect := seedTopic(store, "foreign")
	svc := newSessionService(store)

	qID := otherQIDs["foreign"]
	_, err := svc.Submit(studentID, topicID, qID, otherCorrect[qID])
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(store.studentAnswers) != 0 {
		t.Fatal("expected zero writes")
	}
}

func TestResubmitAfterCompletionIsRefused(t *testing.T) {
	store := newFakeStore()
	topicID, qIDs, correct := seedTopic(store, "solo")
	svc := newSessionService(store)

	qID := qIDs["solo"]
	out, err := svc.Submit(studentID, topicID, qID, correct[qID])
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.State != StateFinalized {
		t.Fatalf("state = %s, want %s", out.State, StateFinalized)
	}
	scoreBefore := store.takenTopics[pairKey(studentID, topicID)].Score

	_, err = svc.Submit(studentID, topicID, qID, correct[qID])
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("err = %v, want ErrAlreadyCompleted", err)
	}
	if len(store.takenTopics) != 1 {
		t.Fatalf("taken topics = %d, want exactly 1", len(store.takenTopics))
	}
	if got := store.takenTopics[pairKey(studentID, topicID)].Score; got != scoreBefore {
		t.Errorf("score mutated: %v -> %v", scoreBefore, got)
	}
}

func TestTakeCompletedTopicShortCircuits(t *testing.T) {
	store := newFakeStore()
	topicID, qIDs, correct := seedTopic(store, "solo")
	svc := newSessionService(store)

	if _, err := svc.Submit(studentID, topicID, qIDs["solo"], correct[qIDs["solo"]]); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	out, err := svc.Take(studentID, topicID)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if out.State != StateCompleted {
		t.Fatalf("state = %s, want %s", out.State, StateCompleted)
	}
	if out.Question != nil {
		t.Error("completed topic must never re-present a question")
	}
	if out.Score == nil || *out.Score != 100.0 {
		t.Errorf("score = %v, want 100.0", out.Score)
	}
}

func TestConcurrentFinalSubmissionsFinalizeOnce(t *testing.T) {
	store := newFakeStore()
	topicID, qIDs, correct := seedTopic(store, "last one")
	svc := newSessionService(store)

	qID := qIDs["last one"]
	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(studentID, topicID, qID, correct[qID])
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, benign int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrAlreadyCompleted), errors.Is(err, ErrValidation):
			benign++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || benign != 1 {
		t.Fatalf("successes = %d, benign refusals = %d, want 1 and 1", successes, benign)
	}
	if len(store.takenTopics) != 1 {
		t.Fatalf("taken topics = %d, want exactly 1", len(store.takenTopics))
	}
	if len(store.studentAnswers) != 1 {
		t.Fatalf("student answers = %d, want exactly 1", len(store.studentAnswers))
	}
}

// duplicatingUow simulates losing a constraint race: the transaction itself
// aborts with a duplicate-key error even though the pre-checks passed.
type duplicatingUow struct {
	inner *fakeUow
	trip  bool
}

func (u *duplicatingUow) Run(fn func(r repository.SessionRepos) error) error {
	if u.trip {
		u.trip = false
		return gorm.ErrDuplicatedKey
	}
	return u.inner.Run(fn)
}

func TestConstraintViolationAnsweredWithAuthoritativeState(t *testing.T) {
	store := newFakeStore()
	topicID, qIDs, correct := seedTopic(store, "alpha", "beta")
	uow := &duplicatingUow{inner: &fakeUow{store: store}, trip: true}
	svc := NewTopicSessionService(store, sessionRepos(store), uow)

	// The aborted transaction must not surface as an error: the caller gets
	// the recomputed session state instead.
	out, err := svc.Submit(studentID, topicID, qIDs["alpha"], correct[qIDs["alpha"]])
	if err != nil {
		t.Fatalf("Submit after constraint trip: %v", err)
	}
	if out.State != StateInProgress {
		t.Fatalf("state = %s, want %s", out.State, StateInProgress)
	}
	if out.Question == nil || out.Question.ID != qIDs["alpha"] {
		t.Fatalf("question = %+v, want alpha (still unanswered)", out.Question)
	}
	if len(store.studentAnswers) != 0 {
		t.Fatal("aborted transaction must leave zero rows")
	}
}

func TestTakeZeroQuestionTopicIsConfigurationError(t *testing.T) {
	store := newFakeStore()
	topicID := store.id()
	store.topics[topicID] = model.Topic{ID: topicID, Name: "Empty", CourseID: 1}
	svc := newSessionService(store)

	if _, err := svc.Take(studentID, topicID); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("err = %v, want ErrNoQuestions", err)
	}
}

func TestSubmitUnknownTopic(t *testing.T) {
	store := newFakeStore()
	svc := newSessionService(store)

	if _, err := svc.Submit(studentID, 99, 1, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestProgressFormula(t *testing.T) {
	cases := []struct {
		total, remaining, want int
	}{
		{2, 2, 50},
		{2, 1, 100},
		{4, 4, 25},
		{4, 1, 100},
		{10, 10, 10},
		{1, 1, 100},
	}
	for _, tc := range cases {
		got, err := Progress(tc.total, tc.remaining)
		if err != nil {
			t.Fatalf("Progress(%d, %d): %v", tc.total, tc.remaining, err)
		}
		if got != tc.want {
			t.Errorf("Progress(%d, %d) = %d, want %d", tc.total, tc.remaining, got, tc.want)
		}
	}

	if _, err := Progress(0, 1); !errors.Is(err, ErrNoQuestions) {
		t.Errorf("Progress with zero questions: err = %v, want ErrNoQuestions", err)
	}
}
