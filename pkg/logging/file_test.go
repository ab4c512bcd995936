package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestOpenRotatingFile_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nested", "sync.log")

	f, err := OpenRotatingFile(FileLoggerConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.FileExists(t, path)
}

func TestOpenRotatingFile_AppendsAndSeedsSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")
	previous := strings.Repeat("x", 30) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(previous), 0644))

	t.Run("AppendsBelowLimit", func(t *testing.T) {
		f, err := OpenRotatingFile(FileLoggerConfig{Path: path, MaxSize: 1024, MaxBackups: 1})
		require.NoError(t, err)
		_, err = f.Write([]byte("next\n"))
		require.NoError(t, err)
		require.NoError(t, f.Close())

		assert.Equal(t, previous+"next\n", readFile(t, path))
		assert.NoFileExists(t, path+".1")
	})

	t.Run("ExistingSizeCountsTowardLimit", func(t *testing.T) {
		f, err := OpenRotatingFile(FileLoggerConfig{Path: path, MaxSize: 20, MaxBackups: 1})
		require.NoError(t, err)
		_, err = f.Write([]byte("fresh\n"))
		require.NoError(t, err)
		require.NoError(t, f.Close())

		assert.Equal(t, previous+"next\n", readFile(t, path+".1"))
		assert.Equal(t, "fresh\n", readFile(t, path))
	})
}

func TestRotatingFile_ShiftsBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")

	// Every write after the first exceeds the limit and rotates
	f, err := OpenRotatingFile(FileLoggerConfig{Path: path, MaxSize: 1, MaxBackups: 2})
	require.NoError(t, err)
	for _, entry := range []string{"1", "2", "3", "4"} {
		_, err := f.Write([]byte(entry))
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())

	assert.Equal(t, "4", readFile(t, path))
	assert.Equal(t, "3", readFile(t, path+".1"))
	assert.Equal(t, "2", readFile(t, path+".2"))
	assert.NoFileExists(t, path+".3", "only MaxBackups backups are kept")
}

func TestRotatingFile_NoRotationWithoutLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")

	f, err := OpenRotatingFile(FileLoggerConfig{Path: path, MaxBackups: 3})
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		_, err := f.Write([]byte("entry\n"))
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())

	assert.Equal(t, 50, strings.Count(readFile(t, path), "\n"))
	assert.NoFileExists(t, path+".1")
}

func TestRotatingFile_WriteAfterClose(t *testing.T) {
	f, err := OpenRotatingFile(FileLoggerConfig{Path: filepath.Join(t.TempDir(), "sync.log")})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = f.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.NoError(t, f.Close(), "closing twice is harmless")
}

func TestNewFileLogger_LevelAndFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")

	logger, err := NewFileLogger(FileLoggerConfig{Path: path, Format: FormatJSON, Level: InfoLevel})
	require.NoError(t, err)

	ctx := context.Background()
	logger.Debug(ctx, "comparing", Fields{"path": "a.txt"})
	logger.WithFields(Fields{"pass_id": "p1"}).Error(ctx, "copy failed", errors.New("disk full"), Fields{"path": "b.txt"})
	require.NoError(t, logger.Close())

	lines := strings.Split(strings.TrimSpace(readFile(t, path)), "\n")
	require.Len(t, lines, 1, "debug entries are below the file level")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "copy failed", entry["message"])
	assert.Equal(t, "disk full", entry["error"])
	assert.Equal(t, "p1", entry["pass_id"])
	assert.Equal(t, "b.txt", entry["path"])
	assert.NotNil(t, entry["timestamp"])
}

func TestNewFileLogger_OwnsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")

	logger, err := NewFileLogger(FileLoggerConfig{Path: path, Format: FormatText, Level: InfoLevel})
	require.NoError(t, err)
	logger.Info(context.Background(), "a.txt was created", Fields{"pass_id": "p1"})
	require.NoError(t, logger.Close())

	// The rotating file was attached, so Close released the handle
	require.Len(t, *logger.closers, 0)
	text := readFile(t, path)
	assert.Contains(t, text, "[INFO]")
	assert.Contains(t, text, "pass_id=p1")
}

func TestConsoleAndFileTee(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")
	file, err := OpenRotatingFile(FileLoggerConfig{Path: path})
	require.NoError(t, err)

	var console bytes.Buffer
	logger := New(InfoLevel,
		Output{Writer: &console, Format: FormatText, MinLevel: ErrorLevel},
		Output{Writer: file, Format: FormatJSON},
	).Attach(file)

	ctx := context.Background()
	logger.Info(ctx, "pass completed", nil)
	logger.Warn(ctx, "metadata not preserved", nil)
	logger.Error(ctx, "pass failed", errors.New("permission denied"), nil)
	require.NoError(t, logger.Close())

	assert.Equal(t, 3, strings.Count(readFile(t, path), "\n"), "the file receives every entry")
	assert.Equal(t, 1, strings.Count(console.String(), "\n"), "the console only receives errors")
	assert.Contains(t, console.String(), "pass failed")

	_, err = file.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed, "the logger closed the attached file")
}

func TestFileLogger_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")
	logger, err := NewFileLogger(FileLoggerConfig{Path: path, Format: FormatJSON, Level: InfoLevel})
	require.NoError(t, err)

	ctx := context.Background()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				logger.Info(ctx, "entry", Fields{"goroutine": id, "i": i})
			}
		}(g)
	}
	wg.Wait()
	require.NoError(t, logger.Close())

	lines := strings.Split(strings.TrimSpace(readFile(t, path)), "\n")
	require.Len(t, lines, 400)
	for _, line := range lines {
		assert.True(t, json.Valid([]byte(line)), "interleaved entry: %q", line)
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	ctx := context.Background()
	logger.Error(ctx, "dropped", errors.New("boom"), Fields{"k": "v"})
	logger.WithFields(Fields{"component": "tree"}).Info(ctx, "dropped", nil)
	assert.NoError(t, logger.Close())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DebugLevel,
		"DEBUG":   DebugLevel,
		"info":    InfoLevel,
		"warn":    WarnLevel,
		"warning": WarnLevel,
		"ERROR":   ErrorLevel,
		"verbose": InfoLevel,
		"":        InfoLevel,
	}
	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), "ParseLevel(%q)", input)
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelString(DebugLevel))
	assert.Equal(t, "WARN", LevelString(WarnLevel))
	assert.Equal(t, "UNKNOWN", LevelString(Level(99)))
}
