package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// claimScript returns expired leases to the ready set, then leases up to n due ids.
var claimScript = redis.NewScript(`
local ready, leased = KEYS[1], KEYS[2]
local now = tonumber(ARGV[1])
local n = tonumber(ARGV[2])
local lease = tonumber(ARGV[3])

local expired = redis.call('ZRANGEBYSCORE', leased, '-inf', now)
for _, id in ipairs(expired) do
  redis.call('ZREM', leased, id)
  redis.call('ZADD', ready, now, id)
end

local ids = redis.call('ZRANGEBYSCORE', ready, '-inf', now, 'LIMIT', 0, n)
for _, id in ipairs(ids) do
  redis.call('ZREM', ready, id)
  redis.call('ZADD', leased, now + lease, id)
end
return ids
`)

// RedisQueue keeps due times and leases in sorted sets and payloads in a hash.
type RedisQueue struct {
	rdb   redis.UniversalClient
	lease time.Duration
	now   func() time.Time

	readyKey   string
	leasedKey  string
	payloadKey string
	deadKey    string
}

// NewRedisQueue creates a queue under the given key prefix.
func NewRedisQueue(rdb redis.UniversalClient, prefix string, lease time.Duration) *RedisQueue {
	return &RedisQueue{
		rdb:        rdb,
		lease:      lease,
		now:        time.Now,
		readyKey:   prefix + ":ready",
		leasedKey:  prefix + ":leased",
		payloadKey: prefix + ":payload",
		deadKey:    prefix + ":dead",
	}
}

// NewRedisClient parses url and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, url, password string, timeout time.Duration) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	if timeout > 0 {
		opts.DialTimeout = timeout
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func (q *RedisQueue) dueScore(delay time.Duration) float64 {
	return float64(q.now().Add(delay).UnixMilli())
}

func (q *RedisQueue) Enqueue(ctx context.Context, job *Job, delay time.Duration) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}
	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, q.payloadKey, job.ID, raw)
		pipe.ZAdd(ctx, q.readyKey, redis.Z{Score: q.dueScore(delay), Member: job.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue %s job %s: %w", job.Type, job.ID, err)
	}
	return nil
}

func (q *RedisQueue) Claim(ctx context.Context, n int) ([]*Job, error) {
	if n <= 0 {
		return nil, nil
	}
	ids, err := claimScript.Run(ctx, q.rdb,
		[]string{q.readyKey, q.leasedKey},
		q.now().UnixMilli(), n, q.lease.Milliseconds(),
	).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("claim failed: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	payloads, err := q.rdb.HMGet(ctx, q.payloadKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("hmget failed: %w", err)
	}

	jobs := make([]*Job, 0, len(ids))
	for i, p := range payloads {
		raw, ok := p.(string)
		if !ok {
			// payload already acked by a previous lease holder
			q.rdb.ZRem(ctx, q.leasedKey, ids[i])
			continue
		}
		job := new(Job)
		if err := json.Unmarshal([]byte(raw), job); err != nil {
			_, _ = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.ZRem(ctx, q.leasedKey, ids[i])
				pipe.HDel(ctx, q.payloadKey, ids[i])
				pipe.HSet(ctx, q.deadKey, ids[i], raw)
				return nil
			})
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (q *RedisQueue) Ack(ctx context.Context, job *Job) error {
	_, err := q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, q.leasedKey, job.ID)
		pipe.HDel(ctx, q.payloadKey, job.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to ack job %s: %w", job.ID, err)
	}
	return nil
}

func (q *RedisQueue) Retry(ctx context.Context, job *Job, delay time.Duration) error {
	job.Attempt++
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}
	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, q.leasedKey, job.ID)
		pipe.HSet(ctx, q.payloadKey, job.ID, raw)
		pipe.ZAdd(ctx, q.readyKey, redis.Z{Score: q.dueScore(delay), Member: job.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to retry job %s: %w", job.ID, err)
	}
	return nil
}

type deadEntry struct {
	Job    *Job      `json:"job"`
	Reason string    `json:"reason"`
	DiedAt time.Time `json:"died_at"`
}

func (q *RedisQueue) Bury(ctx context.Context, job *Job, reason string) error {
	raw, err := json.Marshal(deadEntry{Job: job, Reason: reason, DiedAt: q.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode dead job %s: %w", job.ID, err)
	}
	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, q.leasedKey, job.ID)
		pipe.HDel(ctx, q.payloadKey, job.ID)
		pipe.HSet(ctx, q.deadKey, job.ID, raw)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to bury job %s: %w", job.ID, err)
	}
	return nil
}

// Len reports the number of jobs waiting, leased and dead.
func (q *RedisQueue) Len(ctx context.Context) (ready, leased, dead int64, err error) {
	cmds, err := q.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZCard(ctx, q.readyKey)
		pipe.ZCard(ctx, q.leasedKey)
		pipe.HLen(ctx, q.deadKey)
		return nil
	})
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to read queue length: %w", err)
	}
	return cmds[0].(*redis.IntCmd).Val(), cmds[1].(*redis.IntCmd).Val(), cmds[2].(*redis.IntCmd).Val(), nil
}
