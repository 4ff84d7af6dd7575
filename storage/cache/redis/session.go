package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/Mithesh23/kmit-club-sub001/core"
	"github.com/Mithesh23/kmit-club-sub001/core/account"
	"github.com/Mithesh23/kmit-club-sub001/core/session"
)

const (
	sessionPrefix = "session:"
	subjectPrefix = "sessions:"
)

// Open connects to redis and checks the connection.
func Open(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

// sessionRepository stores each session under its own key, expiring with the session.
// The IDs of the sessions of an account are indexed in a set.
type sessionRepository struct {
	client redis.UniversalClient
	nowFn  func() time.Time
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(client redis.UniversalClient) session.Repository {
	return &sessionRepository{client: client, nowFn: core.Now}
}

func sessionKey(id string) string {
	return sessionPrefix + id
}

func subjectKey(role account.Role, subjectID string) string {
	return subjectPrefix + string(role) + ":" + subjectID
}

func (repo *sessionRepository) ttl(expiresAt time.Time) time.Duration {
	return expiresAt.Sub(repo.nowFn())
}

func (repo *sessionRepository) CreateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	ttl := repo.ttl(sess.ExpiresAt)
	if ttl <= 0 {
		return sess, nil
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "encoding session")
	}

	subKey := subjectKey(sess.Role, sess.SubjectID)
	_, err = repo.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(sess.ID), data, ttl)
		pipe.SAdd(ctx, subKey, sess.ID)
		pipe.Expire(ctx, subKey, ttl) // every session has the same lifetime: the newest expires last
		return nil
	})
	if err != nil {
		return session.Session{}, errors.Wrap(err, "storing session")
	}
	return sess, nil
}

func (repo *sessionRepository) GetSession(ctx context.Context, id string) (session.Session, error) {
	data, err := repo.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, errors.Wrap(err, "getting session")
	}

	var sess session.Session
	if err = json.Unmarshal(data, &sess); err != nil {
		return session.Session{}, errors.Wrap(err, "decoding session")
	}
	return sess, nil
}

// UpdateSessionExpiry only rewrites a session key that still exists, so a session closed
// concurrently is not brought back.
func (repo *sessionRepository) UpdateSessionExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	sess, err := repo.GetSession(ctx, id)
	if err != nil {
		return err
	}
	ttl := repo.ttl(expiresAt)
	if ttl <= 0 {
		return repo.DeleteSession(ctx, id)
	}
	sess.ExpiresAt = expiresAt
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}

	var updated *redis.BoolCmd
	_, err = repo.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		updated = pipe.SetXX(ctx, sessionKey(id), data, ttl)
		pipe.Expire(ctx, subjectKey(sess.Role, sess.SubjectID), ttl)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "updating session")
	}
	if !updated.Val() {
		return session.ErrNotFound
	}
	return nil
}

func (repo *sessionRepository) DeleteSession(ctx context.Context, id string) error {
	sess, err := repo.GetSession(ctx, id)
	if err != nil {
		if err == session.ErrNotFound {
			return nil
		}
		return err
	}
	_, err = repo.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(id))
		pipe.SRem(ctx, subjectKey(sess.Role, sess.SubjectID), id)
		return nil
	})
	return errors.Wrap(err, "deleting session")
}

func (repo *sessionRepository) DeleteSubjectSessions(ctx context.Context, role account.Role, subjectID string, excludedIDs ...string) error {
	subKey := subjectKey(role, subjectID)
	ids, err := repo.client.SMembers(ctx, subKey).Result()
	if err != nil {
		return errors.Wrap(err, "listing subject sessions")
	}

	excluded := make(map[string]bool, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = true
	}
	keys := make([]string, 0, len(ids))
	members := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		if !excluded[id] {
			keys = append(keys, sessionKey(id))
			members = append(members, id)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	_, err = repo.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.SRem(ctx, subKey, members...)
		return nil
	})
	return errors.Wrap(err, "deleting subject sessions")
}

// DeleteExpiredSessions removes the IDs of expired sessions from the account indexes.
// Session keys expire on their own.
func (repo *sessionRepository) DeleteExpiredSessions(ctx context.Context, _ time.Time) (int64, error) {
	var cnt int64
	iter := repo.client.Scan(ctx, 0, subjectPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		subKey := iter.Val()
		ids, err := repo.client.SMembers(ctx, subKey).Result()
		if err != nil {
			return cnt, errors.Wrap(err, "listing subject sessions")
		}
		for _, id := range ids {
			exists, err := repo.client.Exists(ctx, sessionKey(id)).Result()
			if err != nil {
				return cnt, errors.Wrap(err, "checking session")
			}
			if exists == 0 {
				if err = repo.client.SRem(ctx, subKey, id).Err(); err != nil {
					return cnt, errors.Wrap(err, "pruning session")
				}
				cnt++
			}
		}
	}
	return cnt, errors.Wrap(iter.Err(), "scanning subject sessions")
}
