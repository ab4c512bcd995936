package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/sdejongh/syncreplica/pkg/compare"
	"github.com/sdejongh/syncreplica/pkg/config"
	"github.com/sdejongh/syncreplica/pkg/fileops"
	"github.com/sdejongh/syncreplica/pkg/logging"
	"github.com/sdejongh/syncreplica/pkg/ratelimit"
	"github.com/sdejongh/syncreplica/pkg/storage"
	"github.com/sdejongh/syncreplica/pkg/tree"
)

// app holds the components shared by the run and diff commands
type app struct {
	source     storage.Backend
	replica    storage.Backend
	comparator *tree.Comparator
	ops        *fileops.Ops
}

// newApp opens both trees and wires the comparator and file operations
func newApp(cfg *config.Config, logger logging.Logger) (*app, error) {
	source, err := storage.NewLocal(cfg.Sync.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to create source backend: %w", err)
	}

	replica, err := storage.NewLocal(cfg.Sync.Replica)
	if err != nil {
		return nil, fmt.Errorf("failed to create replica backend: %w", err)
	}

	exclude, err := tree.NewMatcher(cfg.Exclude)
	if err != nil {
		return nil, err
	}

	bandwidth, err := cfg.Performance.BandwidthBytes()
	if err != nil {
		return nil, err
	}

	comparator := tree.NewComparator(
		source,
		replica,
		compare.NewBinaryComparator(cfg.Performance.BufferSize),
		exclude,
		logger,
	)

	ops := fileops.New(source, replica,
		fileops.WithLimiter(ratelimit.NewLimiter(bandwidth)),
		fileops.WithExclude(exclude),
		fileops.WithLogger(logger),
		fileops.WithBufferSize(cfg.Performance.BufferSize),
	)

	return &app{
		source:     source,
		replica:    replica,
		comparator: comparator,
		ops:        ops,
	}, nil
}

func (a *app) Close() error {
	a.source.Close()
	return a.replica.Close()
}

// loggers holds the diagnostics logger and, when a log file is configured,
// a logger writing to that file only
type loggers struct {
	console logging.Logger
	file    logging.Logger
}

func (l *loggers) Close() error {
	return l.console.Close()
}

// createLoggers builds the console logger (stderr) teed to the optional
// rotating log file
func createLoggers(cfg *config.Config, stderr io.Writer) (*loggers, error) {
	level := logging.ParseLevel(cfg.Logging.Level)
	format := logging.ParseFormat(cfg.Logging.Format)

	console := logging.Output{
		Writer: stderr,
		Format: logging.FormatText,
		Color:  cfg.Output.Color && isTerminal(stderr),
	}
	if cfg.Output.Quiet {
		console.MinLevel = logging.ErrorLevel
	}

	if cfg.Logging.File == "" {
		return &loggers{console: logging.New(level, console)}, nil
	}

	file, err := logging.OpenRotatingFile(logging.FileLoggerConfig{
		Path:       cfg.Logging.File,
		Format:     format,
		Level:      level,
		MaxSize:    cfg.Logging.MaxSize * 1024 * 1024,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	fileOut := logging.Output{Writer: file, Format: format}
	return &loggers{
		console: logging.New(level, console, fileOut).Attach(file),
		file:    logging.New(level, fileOut),
	}, nil
}

// isTerminal reports whether w is a console, including Cygwin and MSYS
// pseudo-terminals on Windows
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
