// Package model defines domain entities used by services and repositories.
package model

import (
	"maps"
	"slices"
	"time"
)

// Timestamp is a Unix time in milliseconds. Zero means unset.
type Timestamp int64

// At converts t to a millisecond timestamp.
func At(t time.Time) Timestamp { return Timestamp(t.UnixMilli()) }

// Time returns the timestamp as a time.Time in the local location.
func (ts Timestamp) Time() time.Time { return time.UnixMilli(int64(ts)) }

// IsZero reports whether the timestamp is unset.
func (ts Timestamp) IsZero() bool { return ts == 0 }

// Preferences holds per-user display settings.
type Preferences struct {
	DarkMode      bool   `json:"darkMode"`
	Notifications bool   `json:"notifications"`
	Language      string `json:"language"`
}

// PreferencesPatch is a partial preferences update. Nil fields are left unchanged.
type PreferencesPatch struct {
	DarkMode      *bool   `json:"darkMode,omitempty"`
	Notifications *bool   `json:"notifications,omitempty"`
	Language      *string `json:"language,omitempty"`
}

// Apply merges the patch into p and returns the result.
func (pp PreferencesPatch) Apply(p Preferences) Preferences {
	if pp.DarkMode != nil {
		p.DarkMode = *pp.DarkMode
	}
	if pp.Notifications != nil {
		p.Notifications = *pp.Notifications
	}
	if pp.Language != nil {
		p.Language = *pp.Language
	}
	return p
}

// Result is a single completed quiz submission.
type Result struct {
	TS         Timestamp      `json:"ts"`
	Score      int            `json:"score"`
	Max        int            `json:"max"`
	Categories map[string]int `json:"categories"`
}

// Goal is a user-declared target. Stored for completeness; no operation mutates it.
type Goal struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Target   int       `json:"target"`
	Period   string    `json:"period"`
	Progress int       `json:"progress"`
	StartTS  Timestamp `json:"startTs"`
}

// Streak counts consecutive calendar days with at least one result.
type Streak struct {
	Days   int       `json:"days"`
	LastTS Timestamp `json:"lastTs"` // 0 before the first result
}

// User is a registered account as persisted in the users document.
type User struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"passwordHash"` // see crypto.Hasher; demo digest by default
	CreatedAt    Timestamp   `json:"createdAt"`
	Preferences  Preferences `json:"preferences"`
	History      []Result    `json:"history"`
	Goals        []Goal      `json:"goals"`
	Badges       []string    `json:"badges"`
	Streak       Streak      `json:"streak"`
}

// Profile is the sanitized view of a User handed to callers; it never carries the digest.
type Profile struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	CreatedAt   Timestamp   `json:"createdAt"`
	Preferences Preferences `json:"preferences"`
	History     []Result    `json:"history"`
	Goals       []Goal      `json:"goals"`
	Badges      []string    `json:"badges"`
	Streak      Streak      `json:"streak"`
}

// Profile returns a deep copy of u without the password digest.
func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		CreatedAt:   u.CreatedAt,
		Preferences: u.Preferences,
		History:     CloneHistory(u.History),
		Goals:       slices.Clone(u.Goals),
		Badges:      slices.Clone(u.Badges),
		Streak:      u.Streak,
	}
}

// CloneHistory deep-copies results including their category maps.
func CloneHistory(h []Result) []Result {
	if h == nil {
		return nil
	}
	out := make([]Result, len(h))
	for i, r := range h {
		r.Categories = maps.Clone(r.Categories)
		out[i] = r
	}
	return out
}
