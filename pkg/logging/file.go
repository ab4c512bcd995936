package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileLoggerConfig holds configuration for file logging
type FileLoggerConfig struct {
	// Path is the log file path
	Path string
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSize is the maximum size in bytes before rotation (0 = no rotation)
	MaxSize int64
	// MaxBackups is the maximum number of backup files to keep
	MaxBackups int
}

// RotatingFile is an append-only log file rotated by size
type RotatingFile struct {
	path        string
	maxSize     int64
	maxBackups  int
	mu          sync.Mutex
	file        *os.File
	currentSize int64
}

// OpenRotatingFile opens (or creates) the log file described by config
func OpenRotatingFile(config FileLoggerConfig) (*RotatingFile, error) {
	// Ensure directory exists
	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	return &RotatingFile{
		path:        config.Path,
		maxSize:     config.MaxSize,
		maxBackups:  config.MaxBackups,
		file:        file,
		currentSize: info.Size(),
	}, nil
}

// NewFileLogger creates a logger writing to a rotating file
func NewFileLogger(config FileLoggerConfig) (*ZerologLogger, error) {
	file, err := OpenRotatingFile(config)
	if err != nil {
		return nil, err
	}
	return New(config.Level, Output{Writer: file, Format: config.Format}).Attach(file), nil
}

// Write implements io.Writer. Each call carries one complete entry.
func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, os.ErrClosed
	}

	// Check rotation before writing
	if r.maxSize > 0 && r.currentSize >= r.maxSize {
		r.rotate()
	}

	n, err := r.file.Write(p)
	r.currentSize += int64(n)
	return n, err
}

// Close closes the current file
func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// rotate shifts backups and reopens the log file (lock held)
func (r *RotatingFile) rotate() {
	r.file.Close()

	for i := r.maxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", r.path, i)
		newPath := fmt.Sprintf("%s.%d", r.path, i+1)
		os.Rename(oldPath, newPath)
	}

	os.Rename(r.path, r.path+".1")

	if r.maxBackups > 0 {
		oldestPath := fmt.Sprintf("%s.%d", r.path, r.maxBackups+1)
		os.Remove(oldestPath)
	}

	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		r.file = nil
		return
	}

	r.file = file
	r.currentSize = 0
}
