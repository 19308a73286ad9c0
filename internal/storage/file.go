package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"redscraper/internal/types"
)

// JSONStorage buffers results and writes them as one indented JSON array on
// Close.
type JSONStorage struct {
	path    string
	results []types.Result
	mu      sync.Mutex
	logger  *slog.Logger
}

// NewJSONStorage creates a JSON file storage.
func NewJSONStorage(outputPath string, logger *slog.Logger) (*JSONStorage, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &JSONStorage{
		path:   outputPath,
		logger: logger.With("component", "json_storage"),
	}, nil
}

func (s *JSONStorage) Name() string { return "json" }

func (s *JSONStorage) Store(results []types.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, results...)
	s.logger.Debug("results buffered", "count", len(results), "total", len(s.results))
	return nil
}

func (s *JSONStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.results); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	s.logger.Info("JSON written", "path", s.path, "results", len(s.results))
	return nil
}

// JSONLStorage writes results as newline-delimited JSON, streaming each
// batch as it arrives.
type JSONLStorage struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLStorage creates a JSONL file storage.
func NewJSONLStorage(outputPath string, logger *slog.Logger) (*JSONLStorage, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return &JSONLStorage{
		path:   outputPath,
		file:   f,
		enc:    json.NewEncoder(f),
		logger: logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStorage) Name() string { return "jsonl" }

func (s *JSONLStorage) Store(results []types.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range results {
		if err := s.enc.Encode(r); err != nil {
			return fmt.Errorf("encode JSONL line: %w", err)
		}
	}
	s.count += len(results)
	return nil
}

func (s *JSONLStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Info("JSONL written", "path", s.path, "results", s.count)
	return s.file.Close()
}
