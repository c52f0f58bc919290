package job

import (
	"github.com/mhsanaei/userhub/database"
	"github.com/mhsanaei/userhub/logger"
)

// CheckpointJob folds the SQLite write-ahead log back into the database file.
type CheckpointJob struct{}

func NewCheckpointJob() *CheckpointJob {
	return new(CheckpointJob)
}

func (j *CheckpointJob) Run() {
	if !database.IsSQLite() {
		return
	}
	if err := database.Checkpoint(); err != nil {
		logger.Warning("checkpoint job err:", err)
	}
}
