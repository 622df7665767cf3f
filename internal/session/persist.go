package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"adminkit.org/internal/authsvc"
)

// Snapshot is the serialized form of the session state.
type Snapshot struct {
	Authenticated   bool                `json:"authenticated"`
	Credentials     authsvc.Credentials `json:"credentials"`
	User            authsvc.Profile     `json:"user"`
	Roles           []authsvc.Role      `json:"roles,omitempty"`
	Permissions     []string            `json:"permissions,omitempty"`
	Abilities       []Ability           `json:"abilities,omitempty"`
	AdminAbilities  []Ability           `json:"admin_abilities,omitempty"`
	ScopedAbilities []Ability           `json:"scoped_abilities,omitempty"`
	ResetPassword   ResetPasswordState  `json:"reset_password"`
}

// Persister stores and restores a session snapshot across process restarts.
type Persister interface {
	Save(snap Snapshot) error
	Load() (Snapshot, bool, error)
}

// FilePersister keeps the snapshot as a JSON file, written atomically.
type FilePersister struct {
	path string
}

// NewFilePersister persists snapshots at path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

func (p *FilePersister) Save(snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p.path)
}

func (p *FilePersister) Load() (Snapshot, bool, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

// snapshotLocked captures the current state. Caller holds s.mu.
func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Authenticated:   s.authenticated,
		Credentials:     s.creds,
		User:            s.user,
		Roles:           append([]authsvc.Role{}, s.roles...),
		Permissions:     append([]string{}, s.permissions...),
		Abilities:       append([]Ability{}, s.abilities...),
		AdminAbilities:  append([]Ability{}, s.adminAbilities...),
		ScopedAbilities: append([]Ability{}, s.scopedAbilities...),
		ResetPassword:   s.reset,
	}
}

// save persists the current state. Persistence failures are logged, never
// propagated: session actions must not fail because the snapshot could not
// be written.
func (s *Store) save() {
	if s.persister == nil {
		return
	}
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	if err := s.persister.Save(snap); err != nil {
		s.log.Warn("persist session snapshot failed", zap.Error(err))
	}
}

// Restore rehydrates state from the persister, if a snapshot exists.
func (s *Store) Restore() error {
	if s.persister == nil {
		return nil
	}
	snap, ok, err := s.persister.Load()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = snap.Authenticated
	s.creds = snap.Credentials
	s.user = snap.User
	s.roles = snap.Roles
	s.permissions = snap.Permissions
	s.abilities = snap.Abilities
	s.adminAbilities = snap.AdminAbilities
	s.scopedAbilities = snap.ScopedAbilities
	s.reset = snap.ResetPassword
	return nil
}
