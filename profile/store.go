package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/blindtrader/game"
)

// Store persists a single profile.
type Store interface {
	Load() (Profile, error)
	Save(Profile) error
}

// FileStore keeps the profile as YAML. A missing file loads as a new profile.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore { return &FileStore{Path: path} }

func (s *FileStore) Load() (Profile, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}

	p := New()
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", s.Path, err)
	}
	if p.UnlockedAchievements == nil {
		p.UnlockedAchievements = []AchievementID{}
	}
	return p, nil
}

func (s *FileStore) Save(p Profile) error {
	b, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create profile dir: %w", err)
		}
	}
	if err := os.WriteFile(s.Path, b, 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// MemoryStore keeps the profile in memory.
type MemoryStore struct {
	mu    sync.Mutex
	p     Profile
	saved bool
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load() (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return New(), nil
	}
	p := s.p
	p.UnlockedAchievements = append([]AchievementID{}, s.p.UnlockedAchievements...)
	return p, nil
}

func (s *MemoryStore) Save(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p
	s.p.UnlockedAchievements = append([]AchievementID{}, p.UnlockedAchievements...)
	s.saved = true
	return nil
}

// Record loads the profile from st, applies a finished game and saves it.
func Record(st Store, history []game.RoundResult, sessionReturn float64) (Update, error) {
	p, err := st.Load()
	if err != nil {
		return Update{}, err
	}
	u := p.Apply(history, sessionReturn)
	if err := st.Save(u.Profile); err != nil {
		return Update{}, err
	}
	return u, nil
}
