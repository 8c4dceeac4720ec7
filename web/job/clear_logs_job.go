package job

import (
	"io"
	"os"

	"github.com/dboika/folio/logger"
	"github.com/dboika/folio/util/common"
)

// ClearLogsJob moves the log file into "<path>.prev", replacing the older
// copy, and truncates it. The logger writes in append mode, so it keeps
// working on the truncated file.
type ClearLogsJob struct {
	path string
}

func NewClearLogsJob(path string) *ClearLogsJob {
	return &ClearLogsJob{path: path}
}

func (j *ClearLogsJob) Run() {
	defer common.Recover("clear logs job panic")

	if err := j.rotate(); err != nil {
		logger.Warning("clear logs job err:", err)
	}
}

func (j *ClearLogsJob) rotate() error {
	src, err := os.Open(j.path)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}
	defer src.Close()

	prev, err := os.OpenFile(j.path+".prev", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(prev, src); err != nil {
		prev.Close()
		return err
	}
	if err := prev.Close(); err != nil {
		return err
	}
	return os.Truncate(j.path, 0)
}
