package service

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	pkgcrypto "github.com/ecostep/ecostep/internal/crypto"
	"github.com/ecostep/ecostep/internal/errs"
	"github.com/ecostep/ecostep/internal/model"
	"github.com/ecostep/ecostep/internal/repository"
	"github.com/ecostep/ecostep/internal/repository/memory"
	"github.com/ecostep/ecostep/internal/scoring"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Set(t time.Time) { c.t = t }

// failingStore wraps memory.Store and fails selected calls.
type failingStore struct {
	*memory.Store

	loadErr    error
	saveErr    error
	sessionErr error
	setErr     error

	saveCalls int
}

var _ repository.Store = (*failingStore)(nil)

func (f *failingStore) LoadUsers(ctx context.Context) ([]model.User, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.Store.LoadUsers(ctx)
}
func (f *failingStore) SaveUsers(ctx context.Context, users []model.User) error {
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.Store.SaveUsers(ctx, users)
}
func (f *failingStore) Session(ctx context.Context) (string, error) {
	if f.sessionErr != nil {
		return "", f.sessionErr
	}
	return f.Store.Session(ctx)
}
func (f *failingStore) SetSession(ctx context.Context, email string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.SetSession(ctx, email)
}

var testLoc = time.FixedZone("test", 2*3600)

func newService(t *testing.T) (*AccountServiceImpl, *memory.Store, *fakeClock) {
	t.Helper()
	st := memory.New()
	clk := &fakeClock{t: time.Date(2024, 6, 1, 10, 0, 0, 0, testLoc)}
	return NewAccountService(st, WithClock(clk.Now)), st, clk
}

func mustRegister(t *testing.T, s *AccountServiceImpl, name, email, pw string) model.Profile {
	t.Helper()
	p, err := s.Register(context.Background(), name, email, pw)
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return p
}

func TestAccount_Register_LogsIn(t *testing.T) {
	t.Parallel()
	s, st, clk := newService(t)
	ctx := context.Background()

	p := mustRegister(t, s, "Alice", "alice@example.com", "pw")
	if p.ID == "" || p.Name != "Alice" || p.Email != "alice@example.com" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.CreatedAt != model.At(clk.Now()) {
		t.Fatalf("createdAt=%d", p.CreatedAt)
	}
	if p.Preferences != (model.Preferences{Language: "en"}) {
		t.Fatalf("preferences=%+v", p.Preferences)
	}

	cur, err := s.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if cur == nil || cur.ID != p.ID {
		t.Fatalf("current user = %+v, want %s", cur, p.ID)
	}
	if len(cur.History) != 0 || cur.Streak != (model.Streak{}) || len(cur.Badges) != 0 {
		t.Fatalf("fresh user not empty: %+v", cur)
	}

	if email, _ := st.Session(ctx); email != "alice@example.com" {
		t.Fatalf("session=%q", email)
	}
	if !bytes.Contains(st.Raw(), []byte(pkgcrypto.LegacyDigest("pw"))) {
		t.Fatalf("stored document lacks legacy digest: %s", st.Raw())
	}
}

func TestAccount_Register_Validation(t *testing.T) {
	t.Parallel()
	s, st, _ := newService(t)
	ctx := context.Background()

	cases := [][3]string{
		{"", "a@b.c", "pw"},
		{"A", "", "pw"},
		{"A", "a@b.c", ""},
		{"  ", "a@b.c", "pw"},
		{"A", " \t", "pw"},
	}
	for _, c := range cases {
		if _, err := s.Register(ctx, c[0], c[1], c[2]); !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("Register(%q,%q,%q) err=%v, want ErrValidation", c[0], c[1], c[2], err)
		}
	}
	if len(st.Raw()) != 0 {
		t.Fatalf("validation failure must not write: %s", st.Raw())
	}
}

func TestAccount_Register_DuplicateEmailCaseInsensitive(t *testing.T) {
	t.Parallel()
	s, _, _ := newService(t)
	ctx := context.Background()

	mustRegister(t, s, "Alice", "Alice@Example.com", "pw")
	if _, err := s.Register(ctx, "Other", "alice@example.COM", "pw2"); !errors.Is(err, errs.ErrDuplicateEmail) {
		t.Fatalf("err=%v, want ErrDuplicateEmail", err)
	}

	mustRegister(t, s, "Bob", "bob@example.com", "pw")
	cur, _ := s.CurrentUser(ctx)
	if cur == nil || cur.Email != "bob@example.com" {
		t.Fatalf("session should follow the latest registration: %+v", cur)
	}
}

func TestAccount_Register_DefaultPreferences(t *testing.T) {
	t.Parallel()
	s := NewAccountService(memory.New(), WithDefaultPreferences(model.Preferences{DarkMode: true}))

	p, err := s.Register(context.Background(), "A", "a@b.c", "pw")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !p.Preferences.DarkMode || p.Preferences.Language != "en" || p.Preferences.Notifications {
		t.Fatalf("preferences=%+v", p.Preferences)
	}
}

func TestAccount_Authenticate(t *testing.T) {
	t.Parallel()
	s, st, _ := newService(t)
	ctx := context.Background()

	mustRegister(t, s, "Alice", "Alice@Example.com", "secret")
	if err := s.EndSession(ctx); err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	if _, err := s.Authenticate(ctx, "", "secret"); !errors.Is(err, errs.ErrMissingCredentials) {
		t.Fatalf("empty email err=%v", err)
	}
	if _, err := s.Authenticate(ctx, "alice@example.com", ""); !errors.Is(err, errs.ErrMissingCredentials) {
		t.Fatalf("empty password err=%v", err)
	}
	if _, err := s.Authenticate(ctx, "alice@example.com", "wrong"); !errors.Is(err, errs.ErrInvalidCredentials) {
		t.Fatalf("wrong password err=%v", err)
	}
	if _, err := s.Authenticate(ctx, "nobody@example.com", "secret"); !errors.Is(err, errs.ErrInvalidCredentials) {
		t.Fatalf("unknown email err=%v", err)
	}
	if cur, _ := s.CurrentUser(ctx); cur != nil {
		t.Fatalf("failed logins must not set a session: %+v", cur)
	}

	p, err := s.Authenticate(ctx, "ALICE@example.com", "secret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.Email != "Alice@Example.com" {
		t.Fatalf("email=%q", p.Email)
	}
	if email, _ := st.Session(ctx); email != "Alice@Example.com" {
		t.Fatalf("session must hold stored spelling, got %q", email)
	}
}

func TestAccount_Authenticate_Argon2(t *testing.T) {
	t.Parallel()
	st := memory.New()
	s := NewAccountService(st, WithHasher(pkgcrypto.Argon2{}))
	ctx := context.Background()

	if _, err := s.Register(ctx, "A", "a@b.c", "pw"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !bytes.Contains(st.Raw(), []byte("argon2id$")) {
		t.Fatalf("expected argon2 digest in %s", st.Raw())
	}
	if _, err := s.Authenticate(ctx, "a@b.c", "pw"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if _, err := s.Authenticate(ctx, "a@b.c", "nope"); !errors.Is(err, errs.ErrInvalidCredentials) {
		t.Fatalf("err=%v", err)
	}
}

func TestAccount_EndSession_AndDanglingPointer(t *testing.T) {
	t.Parallel()
	s, st, _ := newService(t)
	ctx := context.Background()

	if err := s.EndSession(ctx); err != nil {
		t.Fatalf("EndSession without session: %v", err)
	}

	mustRegister(t, s, "A", "a@b.c", "pw")
	if err := s.EndSession(ctx); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if cur, _ := s.CurrentUser(ctx); cur != nil {
		t.Fatalf("logged out user still current: %+v", cur)
	}

	if err := st.SetSession(ctx, "ghost@b.c"); err != nil {
		t.Fatal(err)
	}
	cur, err := s.CurrentUser(ctx)
	if err != nil || cur != nil {
		t.Fatalf("dangling pointer: cur=%+v err=%v", cur, err)
	}
	if _, err := s.UpdatePreferences(ctx, model.PreferencesPatch{}); !errors.Is(err, errs.ErrNotLoggedIn) {
		t.Fatalf("dangling pointer must count as logged out, err=%v", err)
	}
}

func TestAccount_UpdatePreferences(t *testing.T) {
	t.Parallel()
	s, _, _ := newService(t)
	ctx := context.Background()

	if _, err := s.UpdatePreferences(ctx, model.PreferencesPatch{}); !errors.Is(err, errs.ErrNotLoggedIn) {
		t.Fatalf("err=%v, want ErrNotLoggedIn", err)
	}

	mustRegister(t, s, "A", "a@b.c", "pw")
	dark, lang := true, "fr"
	p, err := s.UpdatePreferences(ctx, model.PreferencesPatch{DarkMode: &dark})
	if err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	if !p.Preferences.DarkMode || p.Preferences.Language != "en" {
		t.Fatalf("merge lost fields: %+v", p.Preferences)
	}
	p, err = s.UpdatePreferences(ctx, model.PreferencesPatch{Language: &lang})
	if err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	if !p.Preferences.DarkMode || p.Preferences.Language != "fr" {
		t.Fatalf("second merge: %+v", p.Preferences)
	}

	cur, _ := s.CurrentUser(ctx)
	if cur.Preferences != p.Preferences {
		t.Fatalf("preferences not persisted: %+v", cur.Preferences)
	}
}

func TestAccount_RecordResult_Anonymous(t *testing.T) {
	t.Parallel()
	s, st, _ := newService(t)
	ctx := context.Background()

	mustRegister(t, s, "A", "a@b.c", "pw")
	if err := s.EndSession(ctx); err != nil {
		t.Fatal(err)
	}
	before := st.Raw()

	ok, err := s.RecordResult(ctx, 5, 15, nil)
	if err != nil || ok {
		t.Fatalf("anonymous RecordResult: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(before, st.Raw()) {
		t.Fatalf("anonymous RecordResult altered the collection")
	}

	h, err := s.History(ctx)
	if err != nil || h == nil || len(h) != 0 {
		t.Fatalf("anonymous history: %v %v", h, err)
	}
}

func TestAccount_RecordResult_StreakAndBadges(t *testing.T) {
	t.Parallel()
	s, _, clk := newService(t)
	ctx := context.Background()
	mustRegister(t, s, "A", "a@b.c", "pw")

	record := func(score int) model.Profile {
		t.Helper()
		ok, err := s.RecordResult(ctx, score, 15, map[string]int{"transport": 1})
		if err != nil || !ok {
			t.Fatalf("RecordResult: ok=%v err=%v", ok, err)
		}
		cur, err := s.CurrentUser(ctx)
		if err != nil || cur == nil {
			t.Fatalf("CurrentUser: %v", err)
		}
		return *cur
	}

	// Day 1, late evening.
	clk.Set(time.Date(2024, 6, 1, 23, 58, 0, 0, testLoc))
	p := record(9)
	if p.Streak.Days != 1 || p.Streak.LastTS != model.At(clk.Now()) {
		t.Fatalf("first result streak: %+v", p.Streak)
	}
	if !slices.Equal(p.Badges, []string{scoring.BadgeFirstCompletion}) {
		t.Fatalf("badges=%v", p.Badges)
	}
	firstTS := p.Streak.LastTS

	// Same day.
	clk.Set(time.Date(2024, 6, 1, 23, 59, 0, 0, testLoc))
	p = record(8)
	if p.Streak.Days != 1 || p.Streak.LastTS != firstTS {
		t.Fatalf("same-day streak: %+v", p.Streak)
	}
	if !slices.Equal(p.Badges, []string{scoring.BadgeFirstCompletion}) {
		t.Fatalf("first-completion must appear once: %v", p.Badges)
	}

	// Two minutes later, next calendar day.
	clk.Set(time.Date(2024, 6, 2, 0, 1, 0, 0, testLoc))
	p = record(4)
	if p.Streak.Days != 2 || p.Streak.LastTS != model.At(clk.Now()) {
		t.Fatalf("consecutive-day streak: %+v", p.Streak)
	}
	if !slices.Equal(p.Badges, []string{scoring.BadgeFirstCompletion, scoring.BadgeLowFootprint}) {
		t.Fatalf("badges=%v", p.Badges)
	}

	// Skip June 3rd.
	clk.Set(time.Date(2024, 6, 4, 12, 0, 0, 0, testLoc))
	p = record(5)
	if p.Streak.Days != 1 {
		t.Fatalf("skipped day must reset: %+v", p.Streak)
	}
	if len(p.Badges) != 2 {
		t.Fatalf("badges duplicated: %v", p.Badges)
	}

	h, err := s.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	scores := make([]int, len(h))
	for i, r := range h {
		scores[i] = r.Score
	}
	if !slices.Equal(scores, []int{9, 8, 4, 5}) {
		t.Fatalf("history order: %v", scores)
	}
	if h[0].Max != 15 || h[0].Categories["transport"] != 1 {
		t.Fatalf("result fields: %+v", h[0])
	}

	h[0].Categories["transport"] = 3
	again, _ := s.History(ctx)
	if again[0].Categories["transport"] != 1 {
		t.Fatalf("History must return a copy")
	}
}

func TestAccount_RecordResult_NilCategoriesStoredEmpty(t *testing.T) {
	t.Parallel()
	s, _, _ := newService(t)
	ctx := context.Background()
	mustRegister(t, s, "A", "a@b.c", "pw")

	if ok, err := s.RecordResult(ctx, 7, 15, nil); err != nil || !ok {
		t.Fatalf("RecordResult: ok=%v err=%v", ok, err)
	}
	h, _ := s.History(ctx)
	if h[0].Categories == nil {
		t.Fatalf("categories must be an empty map, not nil")
	}
}

func TestAccount_SubmitQuiz(t *testing.T) {
	t.Parallel()
	st := memory.New()
	s := NewAccountService(st, WithRand(rand.New(rand.NewPCG(1, 2))))
	ctx := context.Background()

	all := func(v int) scoring.Answers {
		a := scoring.Answers{}
		for _, c := range scoring.Categories {
			a[c] = v
		}
		return a
	}

	sub, err := s.SubmitQuiz(ctx, all(3))
	if err != nil {
		t.Fatalf("SubmitQuiz: %v", err)
	}
	if sub.Score != 15 || sub.Max != 15 || sub.Recorded {
		t.Fatalf("anonymous submission: %+v", sub)
	}
	if sub.Assessment.Band != scoring.BandChange || sub.Assessment.Trees != 1 {
		t.Fatalf("assessment=%+v", sub.Assessment)
	}

	if _, err := s.SubmitQuiz(ctx, scoring.Answers{scoring.Transport: 1}); !errors.Is(err, errs.ErrIncompleteAnswer) {
		t.Fatalf("err=%v, want ErrIncompleteAnswer", err)
	}

	mustRegister(t, s, "A", "a@b.c", "pw")
	sub, err = s.SubmitQuiz(ctx, all(0))
	if err != nil {
		t.Fatalf("SubmitQuiz: %v", err)
	}
	if sub.Score != 0 || !sub.Recorded || sub.Assessment.Band != scoring.BandChampion {
		t.Fatalf("submission: %+v", sub)
	}
	if sub.Assessment.Trees < 8 || sub.Assessment.Trees > 10 {
		t.Fatalf("trees=%d", sub.Assessment.Trees)
	}
	h, _ := s.History(ctx)
	if len(h) != 1 || len(h[0].Categories) != len(scoring.Categories) {
		t.Fatalf("history=%+v", h)
	}
}

func TestAccount_StoreErrorsPropagate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	boom := errors.New("boom")

	fs := &failingStore{Store: memory.New(), saveErr: boom}
	s := NewAccountService(fs)
	if _, err := s.Register(ctx, "A", "a@b.c", "pw"); !errors.Is(err, boom) {
		t.Fatalf("save err=%v", err)
	}
	if email, _ := fs.Store.Session(ctx); email != "" {
		t.Fatalf("failed registration must not log in, session=%q", email)
	}

	fs = &failingStore{Store: memory.New()}
	s = NewAccountService(fs)
	mustRegister(t, s, "A", "a@b.c", "pw")

	fs.loadErr = boom
	if _, err := s.Authenticate(ctx, "a@b.c", "pw"); !errors.Is(err, boom) {
		t.Fatalf("load err=%v", err)
	}
	if _, err := s.CurrentUser(ctx); !errors.Is(err, boom) {
		t.Fatalf("CurrentUser err=%v", err)
	}
	fs.loadErr = nil

	fs.sessionErr = boom
	if _, err := s.History(ctx); !errors.Is(err, boom) {
		t.Fatalf("History err=%v", err)
	}
	fs.sessionErr = nil

	fs.setErr = boom
	if err := s.EndSession(ctx); !errors.Is(err, boom) {
		t.Fatalf("EndSession err=%v", err)
	}
	fs.setErr = nil

	fs.saveErr = boom
	calls := fs.saveCalls
	if ok, err := s.RecordResult(ctx, 3, 15, nil); ok || !errors.Is(err, boom) {
		t.Fatalf("RecordResult ok=%v err=%v", ok, err)
	}
	if fs.saveCalls != calls+1 {
		t.Fatalf("RecordResult must write the collection once, got %d calls", fs.saveCalls-calls)
	}
	fs.saveErr = nil
	if h, _ := s.History(ctx); len(h) != 0 {
		t.Fatalf("failed write must not leave a result: %+v", h)
	}
}

func TestAccount_RoundTripThroughStore(t *testing.T) {
	t.Parallel()
	s, st, clk := newService(t)
	ctx := context.Background()

	mustRegister(t, s, "A", "a@b.c", "pw")
	for i := 0; i < 3; i++ {
		clk.Set(clk.Now().Add(time.Hour))
		if _, err := s.RecordResult(ctx, i, 15, nil); err != nil {
			t.Fatal(err)
		}
	}
	mustRegister(t, s, "B", "b@b.c", "pw")

	// A second service over the same store sees the same documents.
	other := NewAccountService(st)
	if _, err := other.Authenticate(ctx, "a@b.c", "pw"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	h, err := other.History(ctx)
	if err != nil || len(h) != 3 || h[0].Score != 0 || h[2].Score != 2 {
		t.Fatalf("history=%+v err=%v", h, err)
	}
}
