package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stemsi/lms-backend/internal/cache"
	"github.com/stemsi/lms-backend/internal/grading"
	"github.com/stemsi/lms-backend/internal/model"
	"github.com/stemsi/lms-backend/internal/repository"
)

var errStoreDown = errors.New("store down")

type fakeQuizStore struct {
	mu      sync.Mutex
	quizzes map[uuid.UUID]model.Quiz
	err     error
}

func newFakeQuizStore(quizzes ...model.Quiz) *fakeQuizStore {
	s := &fakeQuizStore{quizzes: make(map[uuid.UUID]model.Quiz)}
	for _, q := range quizzes {
		s.quizzes[q.ID] = q
	}
	return s
}

func (s *fakeQuizStore) GetByID(_ context.Context, id uuid.UUID) (*model.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	q, ok := s.quizzes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &q, nil
}

func (s *fakeQuizStore) Create(_ context.Context, q *model.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	q.ID = uuid.New()
	s.quizzes[q.ID] = *q
	return nil
}

func (s *fakeQuizStore) ListByCourse(_ context.Context, courseID uuid.UUID) ([]model.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Quiz
	for _, q := range s.quizzes {
		if q.CourseID == courseID {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeQuestionStore struct {
	mu        sync.Mutex
	questions []model.Question
	options   []model.Option
	listCalls int
	err       error
	// afterListOptions runs once the options were read, outside the lock.
	afterListOptions func()
}

func (s *fakeQuestionStore) add(q model.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	opts := q.Options
	q.Options = nil
	s.questions = append(s.questions, q)
	s.options = append(s.options, opts...)
}

func (s *fakeQuestionStore) ListByQuiz(_ context.Context, quizID uuid.UUID) ([]model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	var out []model.Question
	for _, q := range s.questions {
		if q.QuizID == quizID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *fakeQuestionStore) ListByIDs(_ context.Context, ids []uuid.UUID) ([]model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Question
	for _, q := range s.questions {
		if want[q.ID] {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *fakeQuestionStore) ListOptionsByQuestions(_ context.Context, ids []uuid.UUID) ([]model.Option, error) {
	s.mu.Lock()
	hook := s.afterListOptions
	s.afterListOptions = nil
	defer func() {
		if hook != nil {
			hook()
		}
	}()
	defer s.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Option
	for _, o := range s.options {
		if want[o.QuestionID] {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeQuestionStore) CreateWithOptions(_ context.Context, q *model.Question) error {
	if s.err != nil {
		return s.err
	}
	q.ID = uuid.New()
	for i := range q.Options {
		q.Options[i].ID = uuid.New()
		q.Options[i].QuestionID = q.ID
	}
	cp := *q
	cp.Options = append([]model.Option(nil), q.Options...)
	s.add(cp)
	return nil
}

// fakeResultStore mirrors the repository's conditional attempt reservation.
type fakeResultStore struct {
	mu        sync.Mutex
	results   []model.GradingResult
	counters  map[[2]uuid.UUID]int
	countErr  error
	insertErr error
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{counters: make(map[[2]uuid.UUID]int)}
}

func (s *fakeResultStore) CountByQuizAndStudent(_ context.Context, quizID, studentID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	n := 0
	for _, r := range s.results {
		if r.QuizID == quizID && r.StudentID == studentID {
			n++
		}
	}
	return n, nil
}

func (s *fakeResultStore) Insert(_ context.Context, res *model.GradingResult, attemptsAllowed int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	key := [2]uuid.UUID{res.QuizID, res.StudentID}
	if s.counters[key] >= attemptsAllowed {
		return repository.ErrAttemptLimitReached
	}
	s.counters[key]++
	res.AttemptNumber = s.counters[key]
	res.ID = uuid.New()
	s.results = append(s.results, *res)
	return nil
}

func (s *fakeResultStore) GetByID(_ context.Context, id uuid.UUID) (*model.GradingResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.results {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeResultStore) List(_ context.Context, f model.ResultFilter) ([]model.GradingResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.GradingResult
	for _, r := range s.results {
		if f.StudentID != nil && r.StudentID != *f.StudentID {
			continue
		}
		if f.QuizID != nil && r.QuizID != *f.QuizID {
			continue
		}
		if f.CourseID != nil && r.CourseID != *f.CourseID {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}

func (s *fakeResultStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// fakeSheetCache mirrors the versioned write of the Redis sheet cache.
type fakeSheetCache struct {
	mu          sync.Mutex
	sheets      map[uuid.UUID]grading.Sheet
	versions    map[uuid.UUID]int64
	getErr      error
	invalidated []uuid.UUID
}

func newFakeSheetCache() *fakeSheetCache {
	return &fakeSheetCache{sheets: make(map[uuid.UUID]grading.Sheet), versions: make(map[uuid.UUID]int64)}
}

func (c *fakeSheetCache) Get(_ context.Context, quizID uuid.UUID) (*grading.Sheet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	sh, ok := c.sheets[quizID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return &sh, nil
}

func (c *fakeSheetCache) Version(_ context.Context, quizID uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[quizID], nil
}

func (c *fakeSheetCache) Set(_ context.Context, sheet *grading.Sheet, version int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[sheet.QuizID] != version {
		return cache.ErrStaleSheet
	}
	c.sheets[sheet.QuizID] = *sheet
	return nil
}

func (c *fakeSheetCache) Invalidate(_ context.Context, quizID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sheets, quizID)
	c.versions[quizID]++
	c.invalidated = append(c.invalidated, quizID)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []model.SubmissionEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, ev model.SubmissionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

type fakeStatsStore struct {
	stats map[uuid.UUID]model.QuizStats
}

func (s *fakeStatsStore) GetByQuiz(_ context.Context, quizID uuid.UUID) (*model.QuizStats, error) {
	st, ok := s.stats[quizID]
	if !ok {
		return &model.QuizStats{QuizID: quizID}, nil
	}
	return &st, nil
}
