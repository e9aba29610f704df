package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/aliskhannn/watermarker/internal/model"
)

func sampleReport() *model.Report {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &model.Report{
		BatchID:    uuid.New(),
		TargetDir:  "output",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Results: []model.JobResult{
			{JobID: uuid.New(), SourcePath: "in/a.png", State: model.JobSucceeded, OutputPath: "output/a.png", Format: model.FormatPNG, Width: 10, Height: 10, Bytes: 2048},
			model.Failure(model.Job{ID: uuid.New(), SourcePath: "in/b.png"}, errors.New("decode failed")),
		},
		DiscoveryErrors: []model.DiscoveryFailure{{Path: "missing", Error: "discover missing: path does not exist"}},
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	r := sampleReport()
	for _, res := range r.Results {
		p.Result(res)
	}
	p.Warnf("%d inputs write %s", 2, "output/a.png")
	p.Summary(r)

	out := buf.String()
	for _, want := range []string{
		"✓ Saved output/a.png (10x10, 2.0 kB)",
		"✗ Failed in/b.png: decode failed",
		"✗ discover missing: path does not exist",
		"Warning: 2 inputs write output/a.png",
		"Done: 1 succeeded, 2 failed, 2.0 kB written in 1.5s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("non-terminal output contains escape codes")
	}
}

func TestPrinterConcurrent(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)

	res := model.JobResult{State: model.JobSucceeded, OutputPath: "x.png"}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Result(res)
		}()
	}
	wg.Wait()

	if n := strings.Count(buf.String(), "\n"); n != 50 {
		t.Errorf("got %d lines, want 50", n)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	r := sampleReport()

	jsonPath := filepath.Join(dir, "reports", "batch.json")
	if err := WriteFile(jsonPath, r); err != nil {
		t.Fatalf("WriteFile json: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["batch_id"] != r.BatchID.String() || len(decoded["results"].([]interface{})) != 2 {
		t.Errorf("json report = %v", decoded)
	}

	yamlPath := filepath.Join(dir, "batch.YML")
	if err := WriteFile(yamlPath, r); err != nil {
		t.Fatalf("WriteFile yaml: %v", err)
	}
	data, err = os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	var node map[string]interface{}
	if err := yaml.Unmarshal(data, &node); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if node["target_dir"] != "output" {
		t.Errorf("yaml report = %v", node)
	}
	if !strings.Contains(string(data), "error: decode failed") {
		t.Errorf("yaml lacks failure message:\n%s", data)
	}
}
