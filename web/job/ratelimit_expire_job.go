package job

import (
	"time"

	"github.com/mhsanaei/userhub/web/cache"
)

// RateLimitExpireJob advances the embedded redis clock so expired
// rate-limit counters are dropped. It does nothing against an external
// server.
type RateLimitExpireJob struct {
	interval time.Duration
}

func NewRateLimitExpireJob(interval time.Duration) *RateLimitExpireJob {
	return &RateLimitExpireJob{interval: interval}
}

func (j *RateLimitExpireJob) Run() {
	cache.Advance(j.interval)
}
