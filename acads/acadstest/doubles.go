package acadstest

import (
	"context"
	"sync"
)

// SheetRecorder is a ReportWriter that keeps every sheet in memory.
type SheetRecorder struct {
	mu      sync.Mutex
	Sheets  map[string][][]interface{}
	Headers map[string][]string
	Err     error
}

func NewSheetRecorder() *SheetRecorder {
	return &SheetRecorder{Sheets: map[string][][]interface{}{}, Headers: map[string][]string{}}
}

func (s *SheetRecorder) EnsureSheetExists(ctx context.Context, sheetName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.Sheets[sheetName]; !ok {
		s.Sheets[sheetName] = nil
	}
	return nil
}

func (s *SheetRecorder) Clear(ctx context.Context, sheetName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sheets[sheetName] = nil
	delete(s.Headers, sheetName)
	return nil
}

func (s *SheetRecorder) SetHeaders(ctx context.Context, sheetName string, headers []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Headers[sheetName] = append([]string(nil), headers...)
	return nil
}

func (s *SheetRecorder) AppendRows(ctx context.Context, sheetName string, rows [][]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sheets[sheetName] = append(s.Sheets[sheetName], rows...)
	return nil
}

// Images hands out a fixed URL and records the queries it was asked for.
type Images struct {
	mu      sync.Mutex
	URL     string
	Queries []string
}

func (i *Images) RandomImage(ctx context.Context, query string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Queries = append(i.Queries, query)
	return i.URL
}
