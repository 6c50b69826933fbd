// Package session holds the signed-in user's credentials and reading
// preferences. Values are explicit objects handed to the catalog controller;
// nothing in the program reads them from ambient state.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	sessionFile     = "session.json"
	preferencesFile = "preferences.json"
)

// PreferencesTTL is how long saved reading preferences stay valid.
const PreferencesTTL = 7 * 24 * time.Hour

// Session is an authenticated user. The zero value means signed out.
type Session struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// SignedIn reports whether both halves of the credential are present.
func (s Session) SignedIn() bool {
	return strings.TrimSpace(s.Email) != "" && strings.TrimSpace(s.Token) != ""
}

// Preferences describe the reader for AI recommendations.
type Preferences struct {
	Goal        string    `json:"reading_goal"`
	Description string    `json:"reading_goal_description"`
	Mood        string    `json:"reading_mood"`
	SavedAt     time.Time `json:"saved_at"`
}

// Expired reports whether the preferences are older than PreferencesTTL.
func (p Preferences) Expired(now time.Time) bool {
	return p.SavedAt.IsZero() || now.Sub(p.SavedAt) > PreferencesTTL
}

// Empty reports whether no preference was given.
func (p Preferences) Empty() bool {
	return p.Goal == "" && p.Description == "" && p.Mood == ""
}

// Store persists sessions and preferences.
type Store interface {
	LoadSession() (Session, error)
	SaveSession(Session) error
	ClearSession() error
	LoadPreferences() (Preferences, error)
	SavePreferences(Preferences) error
}

// FileStore keeps session.json and preferences.json in a directory.
type FileStore struct {
	Dir string
	now func() time.Time
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir, now: time.Now}
}

// LoadSession reads session.json. A missing file yields a signed-out session.
func (s *FileStore) LoadSession() (Session, error) {
	var sess Session
	if err := s.read(sessionFile, &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// SaveSession writes session.json with 0600 permissions.
func (s *FileStore) SaveSession(sess Session) error {
	return s.write(sessionFile, sess, 0600)
}

// ClearSession removes session.json.
func (s *FileStore) ClearSession() error {
	err := os.Remove(filepath.Join(s.Dir, sessionFile))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// LoadPreferences reads preferences.json. Expired preferences are reported as empty.
func (s *FileStore) LoadPreferences() (Preferences, error) {
	var prefs Preferences
	if err := s.read(preferencesFile, &prefs); err != nil {
		return Preferences{}, err
	}
	if prefs.Expired(s.now()) {
		return Preferences{}, nil
	}
	return prefs, nil
}

// SavePreferences stamps and writes preferences.json.
func (s *FileStore) SavePreferences(prefs Preferences) error {
	prefs.SavedAt = s.now()
	return s.write(preferencesFile, prefs, 0644)
}

func (s *FileStore) read(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) write(name string, v any, perm os.FileMode) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Dir, name), data, perm)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.Mutex
	sess  Session
	prefs Preferences
}

func (m *MemoryStore) LoadSession() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess, nil
}

func (m *MemoryStore) SaveSession(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = s
	return nil
}

func (m *MemoryStore) ClearSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = Session{}
	return nil
}

func (m *MemoryStore) LoadPreferences() (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs, nil
}

func (m *MemoryStore) SavePreferences(p Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.SavedAt = time.Now()
	m.prefs = p
	return nil
}
