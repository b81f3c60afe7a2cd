package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/logger"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

// State is the signed-in identity. A zero State means signed out.
type State struct {
	User        *scoutjar.User
	Talent      *scoutjar.Talent
	ProfileMode scoutjar.ProfileMode
}

// SignedIn reports whether a talent record is present.
func (s State) SignedIn() bool { return s.Talent != nil }

func (s State) TalentID() scoutjar.ID {
	if s.Talent == nil {
		return ""
	}
	return s.Talent.TalentID
}

// UserID prefers the user record and falls back to the talent's user_id.
func (s State) UserID() scoutjar.ID {
	if s.User != nil && !s.User.UserID.IsZero() {
		return s.User.UserID
	}
	if s.Talent != nil {
		return s.Talent.UserID
	}
	return ""
}

func (s State) clone() State {
	out := State{ProfileMode: s.ProfileMode}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.Talent != nil {
		t := *s.Talent
		t.Skills = append([]string(nil), s.Talent.Skills...)
		out.Talent = &t
	}
	return out
}

// Session is the single owner of the persisted identity. Reads return
// copies; writes go through Mutate so the store and memory stay in step.
type Session struct {
	store  Store
	logger *zap.Logger

	mu    sync.RWMutex
	state State
}

func New(store Store, log *zap.Logger) *Session {
	return &Session{
		store:  store,
		logger: logger.WithFields(log),
	}
}

// Load replaces the in-memory state with what the store holds. Entries that
// fail to decode are logged and treated as absent.
func (s *Session) Load(ctx context.Context) (State, error) {
	var next State

	user, err := s.loadUser(ctx)
	if err != nil {
		return State{}, err
	}
	next.User = user

	talent, err := s.loadTalent(ctx)
	if err != nil {
		return State{}, err
	}
	next.Talent = talent

	mode, ok, err := s.store.Get(ctx, KeyProfileMode)
	if err != nil {
		return State{}, fmt.Errorf("loading %s: %w", KeyProfileMode, err)
	}
	if ok {
		if parsed, valid := scoutjar.ParseProfileMode(mode); valid {
			next.ProfileMode = parsed
		} else {
			s.logger.Warn("ignoring stored profile mode", zap.String("value", mode))
		}
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	return next.clone(), nil
}

func (s *Session) loadUser(ctx context.Context) (*scoutjar.User, error) {
	raw, ok, err := s.store.Get(ctx, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", KeyUser, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var user scoutjar.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("ignoring unparsable session entry", zap.String("key", KeyUser), zap.Error(err))
		return nil, nil
	}
	return &user, nil
}

func (s *Session) loadTalent(ctx context.Context) (*scoutjar.Talent, error) {
	raw, ok, err := s.store.Get(ctx, KeyTalent)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", KeyTalent, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var talent scoutjar.Talent
	if err := json.Unmarshal([]byte(raw), &talent); err != nil {
		s.logger.Warn("ignoring unparsable session entry", zap.String("key", KeyTalent), zap.Error(err))
		return nil, nil
	}
	return &talent, nil
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Mutate applies fn to a copy of the state, writes the keys that changed,
// then publishes the copy. If fn or a write fails the published state is
// left as it was.
func (s *Session) Mutate(ctx context.Context, fn func(*State) error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(&next); err != nil {
		return s.state.clone(), err
	}

	prev, err := encodeState(s.state)
	if err != nil {
		return s.state.clone(), err
	}
	cur, err := encodeState(next)
	if err != nil {
		return s.state.clone(), err
	}

	for _, key := range Keys {
		if prev[key] == cur[key] {
			continue
		}
		if cur[key] == "" {
			err = s.store.Remove(ctx, key)
		} else {
			err = s.store.Set(ctx, key, cur[key])
		}
		if err != nil {
			return s.state.clone(), fmt.Errorf("persisting %s: %w", key, err)
		}
	}

	s.state = next
	return next.clone(), nil
}

// Clear removes every session key and resets the state, even when the
// store fails.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{}
	if err := s.store.Remove(ctx, Keys...); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

func encodeState(st State) (map[string]string, error) {
	out := make(map[string]string, len(Keys))

	if st.User != nil {
		data, err := json.Marshal(st.User)
		if err != nil {
			return nil, err
		}
		out[KeyUser] = string(data)
	}
	if st.Talent != nil {
		data, err := json.Marshal(st.Talent)
		if err != nil {
			return nil, err
		}
		out[KeyTalent] = string(data)
	}
	out[KeyProfileMode] = string(st.ProfileMode)

	return out, nil
}
