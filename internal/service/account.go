// Package service contains the account store: registration, the session
// pointer, preferences and quiz result recording.
package service

import (
	"context"
	"fmt"
	"maps"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	pkgcrypto "github.com/ecostep/ecostep/internal/crypto"
	"github.com/ecostep/ecostep/internal/errs"
	"github.com/ecostep/ecostep/internal/model"
	"github.com/ecostep/ecostep/internal/repository"
	"github.com/ecostep/ecostep/internal/scoring"
)

// DefaultLanguage is assigned to new accounts.
const DefaultLanguage = "en"

// AccountService defines account and result operations over a single store.
type AccountService interface {
	// Register creates a user, persists the collection and logs the user in.
	Register(ctx context.Context, name, email, password string) (model.Profile, error)
	// Authenticate checks credentials and sets the session pointer.
	Authenticate(ctx context.Context, email, password string) (model.Profile, error)
	// EndSession clears the session pointer.
	EndSession(ctx context.Context) error
	// CurrentUser returns the logged-in profile or nil.
	CurrentUser(ctx context.Context) (*model.Profile, error)
	// UpdatePreferences merges patch into the current user's preferences.
	UpdatePreferences(ctx context.Context, patch model.PreferencesPatch) (model.Profile, error)
	// RecordResult appends a result for the current user; false when anonymous.
	RecordResult(ctx context.Context, score, outOf int, categories map[string]int) (bool, error)
	// History returns the current user's results, oldest first.
	History(ctx context.Context) ([]model.Result, error)
	// SubmitQuiz scores answers and records the result when logged in.
	SubmitQuiz(ctx context.Context, answers scoring.Answers) (Submission, error)
}

// Submission is the outcome of SubmitQuiz.
type Submission struct {
	Score      int                `json:"score"`
	Max        int                `json:"max"`
	Categories map[string]int     `json:"categories"`
	Assessment scoring.Assessment `json:"assessment"`
	Recorded   bool               `json:"recorded"`
}

type AccountServiceImpl struct {
	mu sync.Mutex

	store    repository.Store
	hasher   pkgcrypto.Hasher
	now      func() time.Time
	rnd      *rand.Rand
	log      *zap.Logger
	defaults model.Preferences
}

// Option configures AccountServiceImpl.
type Option func(*AccountServiceImpl)

// WithHasher sets the password digest. Legacy is used when unset.
func WithHasher(h pkgcrypto.Hasher) Option {
	return func(s *AccountServiceImpl) { s.hasher = h }
}

// WithClock sets the time source. The location of the returned time decides
// calendar-day boundaries for streaks.
func WithClock(now func() time.Time) Option {
	return func(s *AccountServiceImpl) { s.now = now }
}

// WithRand sets the random source used for assessments.
func WithRand(r *rand.Rand) Option {
	return func(s *AccountServiceImpl) { s.rnd = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *AccountServiceImpl) { s.log = l }
}

// WithDefaultPreferences sets the preferences assigned at registration.
func WithDefaultPreferences(p model.Preferences) Option {
	return func(s *AccountServiceImpl) { s.defaults = p }
}

// NewAccountService constructs AccountService over store.
func NewAccountService(store repository.Store, opts ...Option) *AccountServiceImpl {
	s := &AccountServiceImpl{
		store:    store,
		hasher:   pkgcrypto.Legacy{},
		now:      time.Now,
		log:      zap.NewNop(),
		defaults: model.Preferences{Language: DefaultLanguage},
	}
	for _, o := range opts {
		o(s)
	}
	if s.defaults.Language == "" {
		s.defaults.Language = DefaultLanguage
	}
	return s
}

func findUser(users []model.User, email string) int {
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return i
		}
	}
	return -1
}

func (s *AccountServiceImpl) load(ctx context.Context) ([]model.User, error) {
	users, err := s.store.LoadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

func (s *AccountServiceImpl) save(ctx context.Context, users []model.User) error {
	if err := s.store.SaveUsers(ctx, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// current resolves the session pointer. idx is -1 when nobody is logged in or
// the pointer names a user that no longer exists.
func (s *AccountServiceImpl) current(ctx context.Context) ([]model.User, int, error) {
	email, err := s.store.Session(ctx)
	if err != nil {
		return nil, -1, fmt.Errorf("load session: %w", err)
	}
	if email == "" {
		return nil, -1, nil
	}
	users, err := s.load(ctx)
	if err != nil {
		return nil, -1, err
	}
	return users, findUser(users, email), nil
}

// Register validates input, rejects duplicate emails case-insensitively and
// logs the new user in.
func (s *AccountServiceImpl) Register(ctx context.Context, name, email, password string) (model.Profile, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || strings.TrimSpace(password) == "" {
		return model.Profile{}, errs.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load(ctx)
	if err != nil {
		return model.Profile{}, err
	}
	if findUser(users, email) >= 0 {
		return model.Profile{}, errs.ErrDuplicateEmail
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return model.Profile{}, err
	}
	digest, err := s.hasher.Digest(password)
	if err != nil {
		return model.Profile{}, fmt.Errorf("digest: %w", err)
	}

	u := model.User{
		ID:           uid.String(),
		Name:         name,
		Email:        email,
		PasswordHash: digest,
		CreatedAt:    model.At(s.now()),
		Preferences:  s.defaults,
		History:      []model.Result{},
		Goals:        []model.Goal{},
		Badges:       []string{},
	}
	users = append(users, u)
	if err := s.save(ctx, users); err != nil {
		return model.Profile{}, err
	}
	if err := s.store.SetSession(ctx, u.Email); err != nil {
		return model.Profile{}, fmt.Errorf("set session: %w", err)
	}

	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("email", u.Email))
	return u.Profile(), nil
}

// Authenticate reports unknown email and wrong password identically.
func (s *AccountServiceImpl) Authenticate(ctx context.Context, email, password string) (model.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.Profile{}, errs.ErrMissingCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load(ctx)
	if err != nil {
		return model.Profile{}, err
	}
	i := findUser(users, email)
	if i < 0 || !s.hasher.Verify(password, users[i].PasswordHash) {
		s.log.Info("login failed", zap.String("email", email))
		return model.Profile{}, errs.ErrInvalidCredentials
	}
	u := users[i]
	if err := s.store.SetSession(ctx, u.Email); err != nil {
		return model.Profile{}, fmt.Errorf("set session: %w", err)
	}

	s.log.Info("user logged in", zap.String("user_id", u.ID))
	return u.Profile(), nil
}

// EndSession clears the session pointer whether or not one is set.
func (s *AccountServiceImpl) EndSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SetSession(ctx, ""); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// CurrentUser returns nil when nobody is logged in or the session pointer is dangling.
func (s *AccountServiceImpl) CurrentUser(ctx context.Context) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, i, err := s.current(ctx)
	if err != nil || i < 0 {
		return nil, err
	}
	p := users[i].Profile()
	return &p, nil
}

// UpdatePreferences requires a session.
func (s *AccountServiceImpl) UpdatePreferences(ctx context.Context, patch model.PreferencesPatch) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, i, err := s.current(ctx)
	if err != nil {
		return model.Profile{}, err
	}
	if i < 0 {
		return model.Profile{}, errs.ErrNotLoggedIn
	}
	users[i].Preferences = patch.Apply(users[i].Preferences)
	if err := s.save(ctx, users); err != nil {
		return model.Profile{}, err
	}
	return users[i].Profile(), nil
}

// RecordResult appends a result stamped with the current time, advances the
// streak and awards badges. It returns false without touching the store when
// nobody is logged in.
func (s *AccountServiceImpl) RecordResult(ctx context.Context, score, outOf int, categories map[string]int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, i, err := s.current(ctx)
	if err != nil {
		return false, err
	}
	if i < 0 {
		return false, nil
	}

	now := s.now()
	u := &users[i]

	var last model.Timestamp
	if n := len(u.History); n > 0 {
		last = u.History[n-1].TS
	}
	cats := maps.Clone(categories)
	if cats == nil {
		cats = map[string]int{}
	}
	u.History = append(u.History, model.Result{
		TS:         model.At(now),
		Score:      score,
		Max:        outOf,
		Categories: cats,
	})

	prevDays := u.Streak.Days
	u.Streak = scoring.AdvanceStreak(u.Streak, last, now)
	var added []string
	u.Badges, added = scoring.AwardBadges(u.Badges, len(u.History), score, outOf)

	if err := s.save(ctx, users); err != nil {
		return false, err
	}

	s.log.Info("result recorded",
		zap.String("user_id", u.ID),
		zap.Int("score", score),
		zap.Int("max", outOf),
		zap.Int("streak_days", u.Streak.Days),
	)
	if u.Streak.Days != prevDays {
		s.log.Debug("streak changed", zap.String("user_id", u.ID), zap.Int("from", prevDays), zap.Int("to", u.Streak.Days))
	}
	for _, b := range added {
		s.log.Info("badge awarded", zap.String("user_id", u.ID), zap.String("badge", b))
	}
	return true, nil
}

// History returns an empty slice when nobody is logged in.
func (s *AccountServiceImpl) History(ctx context.Context) ([]model.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, i, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	if i < 0 {
		return []model.Result{}, nil
	}
	h := model.CloneHistory(users[i].History)
	if h == nil {
		h = []model.Result{}
	}
	return h, nil
}

// SubmitQuiz scores a full set of answers. Anonymous submissions are scored
// but not recorded.
func (s *AccountServiceImpl) SubmitQuiz(ctx context.Context, answers scoring.Answers) (Submission, error) {
	score, err := scoring.ComputeScore(answers)
	if err != nil {
		return Submission{}, err
	}
	sub := Submission{
		Score:      score,
		Max:        scoring.MaxScore,
		Categories: answers.Breakdown(),
	}
	if s.rnd != nil {
		sub.Assessment = scoring.CategorizeScoreRand(score, scoring.MaxScore, s.rnd)
	} else {
		sub.Assessment = scoring.CategorizeScore(score, scoring.MaxScore)
	}
	sub.Recorded, err = s.RecordResult(ctx, score, scoring.MaxScore, sub.Categories)
	if err != nil {
		return Submission{}, err
	}
	return sub, nil
}
