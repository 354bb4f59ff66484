package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// timeLayout is the timestamp format of the progress file.
const timeLayout = "2006-01-02T15:04:05.000000"

// progressFile is the on-disk progress document.
type progressFile struct {
	CompletedTasks []string        `json:"completed_tasks"`
	FailedTasks    []failureRecord `json:"failed_tasks"`
	QualityScores  []scoreRecord   `json:"quality_scores"`
	LastUpdated    string          `json:"last_updated,omitempty"`
}

type failureRecord struct {
	TaskID   string `json:"task_id"`
	Error    string `json:"error"`
	FailedAt string `json:"failed_at"`
}

type scoreRecord struct {
	TaskID       string `json:"task_id"`
	QualityScore string `json:"quality_score"`
	CompletedAt  string `json:"completed_at"`
}

func emptyProgress() *progressFile {
	return &progressFile{
		CompletedTasks: []string{},
		FailedTasks:    []failureRecord{},
		QualityScores:  []scoreRecord{},
	}
}

func readProgress(path string) (*progressFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := emptyProgress()
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	if p.CompletedTasks == nil {
		p.CompletedTasks = []string{}
	}
	if p.FailedTasks == nil {
		p.FailedTasks = []failureRecord{}
	}
	if p.QualityScores == nil {
		p.QualityScores = []scoreRecord{}
	}
	return p, nil
}

func writeProgress(path string, p *progressFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create progress directory: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'), 0644)
}

// writeFileAtomic writes data via a temp file in the same directory and a
// rename, so readers never see a partial file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".progress-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename progress file: %w", err)
	}

	success = true
	return nil
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

// parseTime accepts the progress layout and RFC 3339. Unparseable values
// yield the zero time.
func parseTime(s string) time.Time {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
