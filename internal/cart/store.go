package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"doorstep/pkg/redis"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// KV is the slice of Redis the store needs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Update(ctx context.Context, key string, ttl time.Duration, fn func(old []byte) ([]byte, error)) error
	Del(ctx context.Context, key string) error
}

var _ KV = (*redis.Client)(nil)

var ErrSessionNotFound = errors.New("session not found")

const maxUpdateAttempts = 10

// Store keeps one Session per visitor in Redis.
type Store struct {
	kv     KV
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewStore(kv KV, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		kv:     kv,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Get loads a session. A missing or expired session comes back fresh.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := s.Lookup(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return NewSession(id), nil
	}
	return sess, err
}

// Lookup is Get without the fallback: it returns ErrSessionNotFound when
// nothing usable is stored under id.
func (s *Store) Lookup(ctx context.Context, id string) (*Session, error) {
	data, err := s.kv.Get(ctx, sessionKey(id))
	if errors.Is(err, redis.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	sess, ok := s.decode(id, data)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Store) Save(ctx context.Context, sess *Session) error {
	data, err := s.encode(sess)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, sessionKey(sess.ID), data, s.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Update applies fn to the stored session, or to a fresh one when none is
// stored, and writes the result. Concurrent writers are detected and fn is
// rerun on the newer state, so fn must only derive its changes from the
// session it is given. Nothing is written when fn fails.
func (s *Store) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	return s.update(ctx, id, false, fn)
}

// UpdateExisting is Update for a session that must already exist; it fails
// with ErrSessionNotFound otherwise.
func (s *Store) UpdateExisting(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	return s.update(ctx, id, true, fn)
}

func (s *Store) update(ctx context.Context, id string, mustExist bool, fn func(*Session) error) (*Session, error) {
	var sess *Session

	attempt := func() error {
		err := s.kv.Update(ctx, sessionKey(id), s.ttl, func(old []byte) ([]byte, error) {
			current, ok := s.decode(id, old)
			if !ok {
				if mustExist {
					return nil, ErrSessionNotFound
				}
				current = NewSession(id)
			}
			if err := fn(current); err != nil {
				return nil, err
			}
			sess = current
			return s.encode(current)
		})
		if errors.Is(err, redis.ErrConflict) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 5 * time.Millisecond
	policy.MaxInterval = 100 * time.Millisecond

	err := backoff.RetryNotify(
		attempt,
		backoff.WithContext(backoff.WithMaxRetries(policy, maxUpdateAttempts-1), ctx),
		func(err error, next time.Duration) {
			s.logger.Debug("Session changed during update, retrying",
				zap.String("session_id", id),
				zap.Duration("next_attempt_in", next))
		},
	)
	if errors.Is(err, redis.ErrConflict) {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.kv.Del(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// decode reports false for missing or unreadable data.
func (s *Store) decode(id string, data []byte) (*Session, bool) {
	if data == nil {
		return nil, false
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.Warn("Dropping unreadable session",
			zap.String("session_id", id),
			zap.Error(err))
		return nil, false
	}
	return &sess, true
}

func (s *Store) encode(sess *Session) ([]byte, error) {
	sess.UpdatedAt = s.now().UTC()

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("cart:%s", id)
}
