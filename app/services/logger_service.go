package services

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logDayLayout = "2006-01-02"

// LoggerService handles application logging. Entries go to stdout in
// console form and to a daily YYYY-MM-DD.log file as JSON.
type LoggerService struct {
	logDir string
	file   *dailyFile
	logger *zap.Logger
	level  zap.AtomicLevel
}

// NewLoggerService creates a logger writing under logDir at the given level
// ("debug", "info", "warn" or "error"). When the directory cannot be
// created, logging continues on stdout only.
func NewLoggerService(logDir, level string) *LoggerService {
	s := &LoggerService{logDir: logDir}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	s.level = zap.NewAtomicLevelAt(lvl)

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stdout), s.level),
	}

	if err := os.MkdirAll(logDir, 0755); err == nil {
		s.file = &dailyFile{dir: logDir}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), s.file, s.level))
	}

	s.logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))

	if s.file == nil {
		s.LogWarning("Could not create log directory, logging to stdout only", logDir)
	} else {
		s.LogInfo("Logger initialized", fmt.Sprintf("Log directory: %s", logDir))
	}
	return s
}

// NewNopLogger returns a logger that discards everything. Used by tests.
func NewNopLogger() *LoggerService {
	return &LoggerService{logger: zap.NewNop(), level: zap.NewAtomicLevel()}
}

// Zap returns the structured logger for packages that take a *zap.Logger
func (s *LoggerService) Zap() *zap.Logger {
	return s.logger.WithOptions(zap.AddCallerSkip(-1))
}

// SetLevel changes the minimum level at runtime
func (s *LoggerService) SetLevel(level string) error {
	return s.level.UnmarshalText([]byte(level))
}

// LogInfo logs an informational message
func (s *LoggerService) LogInfo(message string, details ...string) {
	s.logger.Info(message, detailFields(details)...)
}

// LogWarning logs a warning message
func (s *LoggerService) LogWarning(message string, details ...string) {
	s.logger.Warn(message, detailFields(details)...)
}

// LogError logs an error message
func (s *LoggerService) LogError(message string, err error, details ...string) {
	fields := detailFields(details)
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	s.logger.Error(message, fields...)
}

// LogPanic logs a panic with stack trace
func (s *LoggerService) LogPanic(recovered interface{}) {
	s.logger.Error("Recovered from panic",
		zap.Any("panic", recovered),
		zap.ByteString("stack", debug.Stack()))
}

// RecoverPanic is a helper to recover from panics in goroutines
func (s *LoggerService) RecoverPanic() {
	if r := recover(); r != nil {
		s.LogPanic(r)
	}
}

// GetLogDirectory returns the directory where logs are stored
func (s *LoggerService) GetLogDirectory() string {
	return s.logDir
}

// GetTodayLogPath returns the path to today's log file
func (s *LoggerService) GetTodayLogPath() string {
	return filepath.Join(s.logDir, time.Now().Format(logDayLayout)+".log")
}

// CleanOldLogs removes log files older than specified days
func (s *LoggerService) CleanOldLogs(daysToKeep int) error {
	files, err := os.ReadDir(s.logDir)
	if err != nil {
		return err
	}

	cutoffDate := time.Now().AddDate(0, 0, -daysToKeep)

	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".log" {
			continue
		}

		info, err := file.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoffDate) {
			filePath := filepath.Join(s.logDir, file.Name())
			s.LogInfo("Deleting old log file", filePath)
			os.Remove(filePath)
		}
	}

	return nil
}

// Close flushes and closes the log file
func (s *LoggerService) Close() {
	_ = s.logger.Sync()
	if s.file != nil {
		s.file.Close()
	}
}

func detailFields(details []string) []zap.Field {
	if len(details) == 0 || details[0] == "" {
		return nil
	}
	return []zap.Field{zap.String("details", details[0])}
}

// dailyFile is a zapcore.WriteSyncer that switches to a new file when the day changes
type dailyFile struct {
	mu         sync.Mutex
	dir        string
	file       *os.File
	currentDay string
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.rotate(); err != nil {
		return 0, err
	}
	return d.file.Write(p)
}

func (d *dailyFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	return d.file.Sync()
}

func (d *dailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	d.currentDay = ""
	return err
}

// rotate opens the file for the current day if it is not already open
func (d *dailyFile) rotate() error {
	today := time.Now().Format(logDayLayout)
	if d.currentDay == today && d.file != nil {
		return nil
	}

	if d.file != nil {
		d.file.Close()
	}

	path := filepath.Join(d.dir, today+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		d.file = nil
		return fmt.Errorf("failed to open log file: %w", err)
	}

	d.file = file
	d.currentDay = today
	return nil
}
