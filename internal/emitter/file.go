package emitter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	coremodel "NetSentry/internal/core/model"
)

// FileSink appends alerts as JSON lines to a per-run file under the spool
// directory, named by the time the sink was opened.
type FileSink struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

// NewFileSink creates the spool directory if needed and opens a new file.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create spool directory: %w", err)
	}

	fileName := fmt.Sprintf("alerts_%s.jsonl", time.Now().Format("2006-01-02_15-04-05"))
	file, err := os.OpenFile(filepath.Join(path, fileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open spool file: %w", err)
	}

	return &FileSink{file: file, writer: bufio.NewWriter(file)}, nil
}

func (s *FileSink) Write(alert coremodel.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	return s.writer.WriteByte('\n')
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writer.Flush(); err != nil {
		return err
	}
	return s.file.Close()
}
