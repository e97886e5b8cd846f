package queue

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// promoterBatch bounds how many due jobs move per tick per set.
const promoterBatch = 100

// promoter moves due jobs from the delayed and retry sorted sets onto
// their ready lists. Multiple nodes may run promoters concurrently; ZREM
// acts as the claim, so each job is promoted exactly once.
type promoter struct {
	client   redis.UniversalClient
	logger   *slog.Logger
	keys     keys
	interval time.Duration
}

func (p *promoter) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.promote(ctx, p.keys.delayed())
			p.promote(ctx, p.keys.retry())
		}
	}
}

func (p *promoter) promote(ctx context.Context, set string) {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	members, err := p.client.ZRangeByScore(ctx, set, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   now,
		Count: promoterBatch,
	}).Result()
	if err != nil || len(members) == 0 {
		if err != nil && ctx.Err() == nil {
			p.logger.ErrorContext(ctx, "promoter scan failed",
				slog.String("set", set),
				slog.Any("error", err),
			)
		}
		return
	}

	for _, member := range members {
		removed, err := p.client.ZRem(ctx, set, member).Result()
		if err != nil || removed == 0 {
			// Another node claimed it first.
			continue
		}
		job, err := decodeJob([]byte(member))
		if err != nil {
			p.client.LPush(ctx, p.keys.dead(), member)
			continue
		}
		if err := p.client.LPush(ctx, p.keys.ready(job.Queue), member).Err(); err != nil {
			p.logger.ErrorContext(ctx, "promote push failed",
				slog.String("job_id", job.ID),
				slog.Any("error", err),
			)
			// Put it back so the job is not lost.
			p.client.ZAdd(ctx, set, redis.Z{Score: float64(time.Now().UnixMilli()), Member: member})
		}
	}
}
