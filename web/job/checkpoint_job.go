package job

import (
	"github.com/dboika/folio/database"
	"github.com/dboika/folio/logger"
	"github.com/dboika/folio/util/common"

	"gorm.io/gorm"
)

// CheckpointJob folds the SQLite write-ahead log back into the main
// database file so it does not grow without bound.
type CheckpointJob struct {
	db *gorm.DB
}

func NewCheckpointJob(db *gorm.DB) *CheckpointJob {
	return &CheckpointJob{db: db}
}

func (j *CheckpointJob) Run() {
	defer common.Recover("checkpoint job panic")

	if !database.IsSQLite(j.db) {
		return
	}
	if err := database.Checkpoint(j.db); err != nil {
		logger.Warning("checkpoint job err:", err)
		return
	}
	logger.Debug("sqlite WAL checkpoint done")
}
