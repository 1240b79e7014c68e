// Package repo: solution documents in Redis.
//
// Layout:
//
//	solutions:<docID>               hash {problemId, username, solutionLink, createdAt, updatedAt}
//	solutions:problem:<problemId>   sorted set of docIDs scored by createdAt (unix µs)
//
// PutSolution watches the hash and writes in MULTI/EXEC. HSETNX guards
// createdAt, HSET refreshes the rest and ZADD NX indexes the document once
// under its original createdAt. A document whose problemId changes (ids of
// the form problemId_username can collide) leaves its old index.
package repo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/tbourn/go-crud-backend/internal/domain"
)

const (
	redisDocPrefix     = "solutions:"
	redisProblemPrefix = "solutions:problem:"
)

// RedisSolutions is the Redis-backed solution document store.
type RedisSolutions struct {
	Client redis.UniversalClient
}

// NewRedisSolutions returns a document store over client.
func NewRedisSolutions(client redis.UniversalClient) *RedisSolutions {
	return &RedisSolutions{Client: client}
}

func redisDocKey(docID string) string         { return redisDocPrefix + docID }
func redisProblemKey(problemID string) string { return redisProblemPrefix + problemID }

// GetSolution returns the document with docID, or ErrNotFound.
func (s *RedisSolutions) GetSolution(ctx context.Context, docID string) (*domain.Solution, error) {
	fields, err := s.Client.HGetAll(ctx, redisDocKey(docID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis: hgetall")
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return decodeSolution(docID, fields)
}

// maxPutRetries bounds optimistic retries when the watched hash changes
// between the read and EXEC.
const maxPutRetries = 5

// PutSolution inserts sol, or updates every field of the existing document
// except createdAt.
func (s *RedisSolutions) PutSolution(ctx context.Context, sol *domain.Solution) error {
	key := redisDocKey(sol.DocID)
	created := sol.CreatedAt.UTC()

	write := func(tx *redis.Tx) error {
		prev, err := tx.HGet(ctx, key, "problemId").Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			if prev != "" && prev != sol.ProblemID {
				p.ZRem(ctx, redisProblemKey(prev), sol.DocID)
			}
			p.HSetNX(ctx, key, "createdAt", created.Format(time.RFC3339Nano))
			p.HSet(ctx, key,
				"problemId", sol.ProblemID,
				"username", sol.Username,
				"solutionLink", sol.SolutionLink,
				"updatedAt", sol.UpdatedAt.UTC().Format(time.RFC3339Nano),
			)
			p.ZAddNX(ctx, redisProblemKey(sol.ProblemID), redis.Z{
				Score:  float64(created.UnixMicro()),
				Member: sol.DocID,
			})
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < maxPutRetries; i++ {
		err = s.Client.Watch(ctx, write, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return errors.Wrap(err, "redis: put solution")
	}
	return nil
}

// ListSolutions returns the documents for problemID, newest first. Equal
// scores keep the sorted set's native order.
func (s *RedisSolutions) ListSolutions(ctx context.Context, problemID string) ([]domain.Solution, error) {
	ids, err := s.Client.ZRevRange(ctx, redisProblemKey(problemID), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis: zrevrange")
	}
	out := make([]domain.Solution, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	pipe := s.Client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, redisDocKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "redis: hgetall batch")
	}
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// index entry without a document
			continue
		}
		sol, err := decodeSolution(ids[i], fields)
		if err != nil {
			return nil, err
		}
		if sol.ProblemID != problemID {
			// stale entry left by a document that moved problem
			continue
		}
		out = append(out, *sol)
	}
	return out, nil
}

func decodeSolution(docID string, f map[string]string) (*domain.Solution, error) {
	created, err := time.Parse(time.RFC3339Nano, f["createdAt"])
	if err != nil {
		return nil, errors.Wrapf(err, "redis: decode createdAt of %s", docID)
	}
	updated, err := time.Parse(time.RFC3339Nano, f["updatedAt"])
	if err != nil {
		return nil, errors.Wrapf(err, "redis: decode updatedAt of %s", docID)
	}
	return &domain.Solution{
		DocID:        docID,
		ProblemID:    f["problemId"],
		Username:     f["username"],
		SolutionLink: f["solutionLink"],
		CreatedAt:    created,
		UpdatedAt:    updated,
	}, nil
}
