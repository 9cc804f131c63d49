package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/misa-sim/misa-sim/internal/dataset"
	"github.com/misa-sim/misa-sim/internal/ledger"
)

func TestReportRenderJobWritesBundle(t *testing.T) {
	sc := dataset.DefaultScenario(99)
	sc.Start = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	sc.End = time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)

	dir := t.TempDir()
	job := NewReportRenderJob(ledger.DefaultChart(), sc, sc.End, dir, nil, nil)

	task, err := NewReportRenderTask(0, "")
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := job.Handle(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}

	path := filepath.Join(dir, "misa_bundle_99.zip")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected bundle at %s: %v", path, err)
	}
	if info.Size() == 0 {
		t.Fatal("bundle archive is empty")
	}
}

func TestDatasetRefreshTaskPayloadRoundTrip(t *testing.T) {
	task, err := NewDatasetRefreshTask(42)
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if task.Type() != TaskDatasetRefresh {
		t.Fatalf("unexpected task type %s", task.Type())
	}
}
