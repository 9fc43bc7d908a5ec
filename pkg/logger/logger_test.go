package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	l, err := NewLogger(t.TempDir(), false)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	t.Cleanup(l.Close)
	return l
}

func TestLogWritesCategoryFile(t *testing.T) {
	l := newTestLogger(t)
	day := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return day }

	l.Log(LogEntry{Level: LevelInfo, Category: CategoryFace, Action: "search", Message: "matched"})

	path := filepath.Join(l.logDir, "face_2024-03-05.log")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s: %v", path, err)
	}
}

func TestReadLogsFilters(t *testing.T) {
	l := newTestLogger(t)
	base := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	tick := 0
	l.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	l.Log(LogEntry{Level: LevelInfo, Category: CategoryFace, Action: "search", Message: "matched person"})
	l.Log(LogEntry{Level: LevelError, Category: CategoryFace, Action: "detect", Message: "detector down", Error: errors.New("timeout").Error()})
	l.Log(LogEntry{Level: LevelInfo, Category: CategoryEvent, Action: "save", Message: "image saved"})

	tests := []struct {
		name string
		opts ReadLogsOptions
		want []string
	}{
		{"all newest first", ReadLogsOptions{}, []string{"save", "detect", "search"}},
		{"by category", ReadLogsOptions{Category: CategoryFace}, []string{"detect", "search"}},
		{"by level", ReadLogsOptions{Level: LevelError}, []string{"detect"}},
		{"search error text", ReadLogsOptions{Search: "TIMEOUT"}, []string{"detect"}},
		{"limit", ReadLogsOptions{Lines: 1}, []string{"save"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Date = base
			got, err := l.ReadLogs(tt.opts)
			if err != nil {
				t.Fatalf("ReadLogs: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(got), len(tt.want))
			}
			for i, action := range tt.want {
				if got[i].Action != action {
					t.Errorf("entry %d action = %q, want %q", i, got[i].Action, action)
				}
			}
		})
	}
}

func TestMinLevelDropsEntries(t *testing.T) {
	l := newTestLogger(t)
	l.SetMinLevel(LevelWarn)

	l.Log(LogEntry{Level: LevelInfo, Category: CategoryQueue, Action: "enqueue", Message: "ok"})

	files, err := l.ListLogFiles()
	if err != nil {
		t.Fatalf("ListLogFiles: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no log files, got %v", files)
	}
}
