package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Category represents a log category
type Category string

const (
	CategoryAuth      Category = "auth"
	CategoryWebSocket Category = "websocket"
	CategoryAPI       Category = "api"
	CategoryDB        Category = "db"
	CategoryFace      Category = "face"
	CategoryEvent     Category = "event"
	CategoryQueue     Category = "queue"
	CategoryScheduler Category = "scheduler"
	CategoryStartup   Category = "startup"
)

// Categories lists every category that ReadLogs scans by default.
var Categories = []Category{
	CategoryAuth, CategoryWebSocket, CategoryAPI, CategoryDB, CategoryFace,
	CategoryEvent, CategoryQueue, CategoryScheduler, CategoryStartup,
}

// Level represents log level
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     Level                  `json:"level"`
	Category  Category               `json:"category"`
	Action    string                 `json:"action"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	UserID    string                 `json:"user_id,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Duration  string                 `json:"duration,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Logger writes one JSON-lines file per category per day
type Logger struct {
	mu       sync.Mutex
	logDir   string
	writers  map[Category]*os.File
	console  io.Writer
	minLevel Level
	now      func() time.Time
}

var (
	defaultLogger *Logger
	defaultMu     sync.Mutex
)

// Init replaces the default logger
func Init(logDir string, console bool) error {
	l, err := NewLogger(logDir, console)
	if err != nil {
		return err
	}

	defaultMu.Lock()
	old := defaultLogger
	defaultLogger = l
	defaultMu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// NewLogger creates a new logger
func NewLogger(logDir string, console bool) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &Logger{
		logDir:   logDir,
		writers:  make(map[Category]*os.File),
		minLevel: LevelDebug,
		now:      time.Now,
	}
	if console {
		l.console = os.Stdout
	}
	return l, nil
}

// SetMinLevel drops entries below the given level
func (l *Logger) SetMinLevel(level Level) {
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
}

func (l *Logger) fileName(category Category, day time.Time) string {
	return fmt.Sprintf("%s_%s.log", category, day.Format("2006-01-02"))
}

// getWriter returns the category file for today, rotating at midnight.
// Caller must hold l.mu.
func (l *Logger) getWriter(category Category, ts time.Time) (io.Writer, error) {
	filename := l.fileName(category, ts)

	if writer, exists := l.writers[category]; exists {
		if filepath.Base(writer.Name()) == filename {
			return writer, nil
		}
		writer.Close()
		delete(l.writers, category)
	}

	file, err := os.OpenFile(filepath.Join(l.logDir, filename), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	l.writers[category] = file
	return file, nil
}

// Log writes a log entry
func (l *Logger) Log(entry LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if levelRank[entry.Level] < levelRank[l.minLevel] {
		return
	}
	entry.Timestamp = l.now()

	jsonData, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling log entry: %v\n", err)
		return
	}

	writer, err := l.getWriter(entry.Category, entry.Timestamp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting log writer: %v\n", err)
	} else {
		fmt.Fprintln(writer, string(jsonData))
	}

	if l.console != nil {
		l.printToConsole(entry)
	}
}

// printToConsole prints formatted log to console
func (l *Logger) printToConsole(entry LogEntry) {
	levelColors := map[Level]string{
		LevelDebug: "\033[36m", // Cyan
		LevelInfo:  "\033[32m", // Green
		LevelWarn:  "\033[33m", // Yellow
		LevelError: "\033[31m", // Red
	}
	reset := "\033[0m"

	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]%s [%s] [%s] %s: %s",
		levelColors[entry.Level],
		entry.Level,
		reset,
		entry.Timestamp.Format("15:04:05.000"),
		entry.Category,
		entry.Action,
		entry.Message,
	)
	if entry.UserID != "" {
		fmt.Fprintf(&b, " (user: %s)", entry.UserID)
	}
	if entry.Duration != "" {
		fmt.Fprintf(&b, " (duration: %s)", entry.Duration)
	}
	if entry.Error != "" {
		fmt.Fprintf(&b, " ERROR: %s", entry.Error)
	}
	b.WriteByte('\n')

	if len(entry.Data) > 0 {
		dataJSON, _ := json.MarshalIndent(entry.Data, "    ", "  ")
		fmt.Fprintf(&b, "    Data: %s\n", dataJSON)
	}

	io.WriteString(l.console, b.String())
}

// Close closes all file writers
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, writer := range l.writers {
		writer.Close()
	}
	l.writers = make(map[Category]*os.File)
}

// Default returns the default logger, creating one under ./logs on first use
func Default() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultLogger == nil {
		l, err := NewLogger("logs", true)
		if err != nil {
			l = &Logger{logDir: os.TempDir(), writers: make(map[Category]*os.File), console: os.Stdout, minLevel: LevelDebug, now: time.Now}
		}
		defaultLogger = l
	}
	return defaultLogger
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func write(level Level, category Category, action, message string, err error, data map[string]interface{}) {
	Default().Log(LogEntry{
		Level:    level,
		Category: category,
		Action:   action,
		Message:  message,
		Error:    errString(err),
		Data:     data,
	})
}

// Auth logs authentication related events
func Auth(action, message string, data map[string]interface{}) {
	write(LevelInfo, CategoryAuth, action, message, nil, data)
}

// AuthError logs authentication errors
func AuthError(action, message string, err error, data map[string]interface{}) {
	write(LevelError, CategoryAuth, action, message, err, data)
}

// WebSocket logs WebSocket related events
func WebSocket(action, message string, data map[string]interface{}) {
	write(LevelInfo, CategoryWebSocket, action, message, nil, data)
}

// API logs API request/response events
func API(action, message string, data map[string]interface{}) {
	write(LevelInfo, CategoryAPI, action, message, nil, data)
}

func DB(action, message string, data map[string]interface{}) {
	write(LevelDebug, CategoryDB, action, message, nil, data)
}

// Face logs face search operations
func Face(action, message string, data map[string]interface{}) {
	write(LevelInfo, CategoryFace, action, message, nil, data)
}

func FaceWarn(action, message string, data map[string]interface{}) {
	write(LevelWarn, CategoryFace, action, message, nil, data)
}

// FaceError logs face search errors
func FaceError(action, message string, err error, data map[string]interface{}) {
	write(LevelError, CategoryFace, action, message, err, data)
}

// Event logs capture event processing
func Event(action, message string, data map[string]interface{}) {
	write(LevelInfo, CategoryEvent, action, message, nil, data)
}

func EventError(action, message string, err error, data map[string]interface{}) {
	write(LevelError, CategoryEvent, action, message, err, data)
}

// Queue logs task queue operations
func Queue(action, message string, data map[string]interface{}) {
	write(LevelInfo, CategoryQueue, action, message, nil, data)
}

func QueueError(action, message string, err error, data map[string]interface{}) {
	write(LevelError, CategoryQueue, action, message, err, data)
}

// Scheduler logs scheduled job runs
func Scheduler(action, message string, data map[string]interface{}) {
	write(LevelInfo, CategoryScheduler, action, message, nil, data)
}

func SchedulerWarn(action, message string, data map[string]interface{}) {
	write(LevelWarn, CategoryScheduler, action, message, nil, data)
}

func SchedulerError(action, message string, err error, data map[string]interface{}) {
	write(LevelError, CategoryScheduler, action, message, err, data)
}

// Startup logs startup/initialization events
func Startup(action, message string, data map[string]interface{}) {
	write(LevelInfo, CategoryStartup, action, message, nil, data)
}

// StartupError logs startup errors
func StartupError(action, message string, err error, data map[string]interface{}) {
	write(LevelError, CategoryStartup, action, message, err, data)
}

// StartupWarn logs startup warnings
func StartupWarn(action, message string, data map[string]interface{}) {
	write(LevelWarn, CategoryStartup, action, message, nil, data)
}

// Info logs info level message
func Info(category Category, action, message string, data map[string]interface{}) {
	write(LevelInfo, category, action, message, nil, data)
}

// Error logs error level message
func Error(category Category, action, message string, err error, data map[string]interface{}) {
	write(LevelError, category, action, message, err, data)
}

// Debug logs debug level message
func Debug(category Category, action, message string, data map[string]interface{}) {
	write(LevelDebug, category, action, message, nil, data)
}

// Warn logs warning level message
func Warn(category Category, action, message string, data map[string]interface{}) {
	write(LevelWarn, category, action, message, nil, data)
}

// ReadLogsOptions options for reading logs
type ReadLogsOptions struct {
	Category Category  // Filter by category (empty = all)
	Level    Level     // Filter by level (empty = all)
	Lines    int       // Number of lines to return (default 100)
	Search   string    // Search in message/action/error
	Date     time.Time // Day to read (zero = today)
}

// ReadLogs reads log entries from files
func ReadLogs(opts ReadLogsOptions) ([]LogEntry, error) {
	return Default().ReadLogs(opts)
}

// ReadLogs reads log entries from the logger's log directory, newest first
func (l *Logger) ReadLogs(opts ReadLogsOptions) ([]LogEntry, error) {
	if opts.Lines <= 0 {
		opts.Lines = 100
	}
	if opts.Lines > 1000 {
		opts.Lines = 1000
	}
	day := opts.Date
	if day.IsZero() {
		day = l.now()
	}

	categories := Categories
	if opts.Category != "" {
		categories = []Category{opts.Category}
	}

	search := strings.ToLower(opts.Search)
	var entries []LogEntry

	for _, cat := range categories {
		file, err := os.Open(filepath.Join(l.logDir, l.fileName(cat, day)))
		if err != nil {
			continue
		}

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var entry LogEntry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}

			if opts.Level != "" && entry.Level != opts.Level {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(entry.Message), search) &&
				!strings.Contains(strings.ToLower(entry.Action), search) &&
				!strings.Contains(strings.ToLower(entry.Error), search) {
				continue
			}

			entries = append(entries, entry)
		}
		file.Close()
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if len(entries) > opts.Lines {
		entries = entries[:opts.Lines]
	}

	return entries, nil
}

// GetLogDir returns the log directory path
func GetLogDir() string {
	return Default().logDir
}

// ListLogFiles returns list of log files
func ListLogFiles() ([]string, error) {
	return Default().ListLogFiles()
}

// ListLogFiles returns the .log files in the log directory
func (l *Logger) ListLogFiles() ([]string, error) {
	dirEntries, err := os.ReadDir(l.logDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range dirEntries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".log" {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}
