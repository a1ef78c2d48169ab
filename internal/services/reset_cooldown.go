package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const resetHourlyLimit = 10

// ResetCooldown throttles password-reset emails per address. A nil
// *ResetCooldown (no Redis configured) never throttles.
type ResetCooldown struct {
	rdb      *redis.Client
	cooldown time.Duration
}

func NewResetCooldown(rdb *redis.Client, cooldown time.Duration) *ResetCooldown {
	if rdb == nil {
		return nil
	}
	return &ResetCooldown{rdb: rdb, cooldown: cooldown}
}

func cooldownKey(email string) string  { return "reset:cooldown:" + email }
func sendCountKey(email string) string { return "reset:send_count:" + email }

// Acquire reserves a send slot for email. It fails with ErrValidation while
// the previous code is still cooling down or the hourly limit is used up.
func (c *ResetCooldown) Acquire(ctx context.Context, email string) error {
	if c == nil {
		return nil
	}

	ok, err := c.rdb.SetNX(ctx, cooldownKey(email), "1", c.cooldown).Result()
	if err != nil {
		return err
	}
	if !ok {
		return validationError("Please wait before requesting another code")
	}

	// The window starts with the first send; NX keeps later sends from
	// extending it, and a counter left without a TTL gets one back.
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, sendCountKey(email))
	pipe.ExpireNX(ctx, sendCountKey(email), time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	if incr.Val() > resetHourlyLimit {
		return validationError("Too many reset requests. Try again later.")
	}
	return nil
}

// Release drops the cooldown so a failed send can be retried immediately.
func (c *ResetCooldown) Release(ctx context.Context, email string) {
	if c == nil {
		return
	}
	c.rdb.Del(ctx, cooldownKey(email))
}
