package job

import (
	"context"
	"time"

	"github.com/mhsanaei/userhub/logger"
	"github.com/mhsanaei/userhub/util/metrics"
	"github.com/mhsanaei/userhub/web/service"
)

const userCountTimeout = 10 * time.Second

// UserCountJob publishes the number of registered users as a gauge.
type UserCountJob struct {
	users *service.UserService
}

func NewUserCountJob(users *service.UserService) *UserCountJob {
	return &UserCountJob{users: users}
}

func (j *UserCountJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), userCountTimeout)
	defer cancel()

	n, err := j.users.Count(ctx)
	if err != nil {
		logger.Warning("user count job err:", err)
		return
	}
	metrics.UsersTotal.Set(float64(n))
}
