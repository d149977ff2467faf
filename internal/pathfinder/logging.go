package pathfinder

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"

	"github.com/SirJonasM/fpga-router/pkg/apperror"
	"github.com/SirJonasM/fpga-router/pkg/logger"
)

// NopLogger drops all iteration results.
type NopLogger struct{}

// Log implements Logging.
func (NopLogger) Log(*IterationResult) {}

// TerminalLogger writes iteration telemetry to the structured logger.
type TerminalLogger struct{}

// Log implements Logging.
func (TerminalLogger) Log(result *IterationResult) {
	logger.Info("iteration finished",
		"test_id", result.Config.ID,
		"iteration", result.Iteration,
		"solver", string(result.Config.Solver),
		"conflicts", result.Conflicts,
		"longest_path_cost", result.LongestPathCost,
		"total_wire_use", result.TotalWireUse,
		"wire_reuse", result.WireReuse,
		"duration_us", result.DurationMicroseconds,
	)
}

// FileLogger appends one JSON line per iteration to a file. Safe for
// concurrent use.
type FileLogger struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

// NewFileLogger opens (or creates) the log file in append mode.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeLoadError, "could not open log file: "+path)
	}
	return &FileLogger{
		file:   f,
		writer: bufio.NewWriter(f),
	}, nil
}

// Log implements Logging.
func (l *FileLogger) Log(result *IterationResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	l.writer.Write(data)
	l.writer.WriteByte('\n')
}

// Close flushes buffered lines and closes the file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.writer.Flush(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}
