package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDatasetRefresh regenerates a run and loads it into PostgreSQL.
	TaskDatasetRefresh = "dataset:refresh"
	// TaskReportRender renders the full report bundle to disk.
	TaskReportRender = "report:render"
)

// DatasetRefreshPayload selects the run to regenerate. A zero seed falls
// back to the configured default.
type DatasetRefreshPayload struct {
	Seed int64 `json:"seed"`
}

// ReportRenderPayload selects the run and output location for a render.
type ReportRenderPayload struct {
	Seed      int64  `json:"seed"`
	OutputDir string `json:"output_dir,omitempty"`
}

// NewDatasetRefreshTask constructs an Asynq task for a refresh run.
func NewDatasetRefreshTask(seed int64) (*asynq.Task, error) {
	data, err := json.Marshal(DatasetRefreshPayload{Seed: seed})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDatasetRefresh, data), nil
}

// NewReportRenderTask constructs an Asynq task for a bundle render.
func NewReportRenderTask(seed int64, outputDir string) (*asynq.Task, error) {
	data, err := json.Marshal(ReportRenderPayload{Seed: seed, OutputDir: outputDir})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportRender, data), nil
}
