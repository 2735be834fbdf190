// Package model provides value objects for API parameter validation.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// TaskID represents a task ID value object.
type TaskID struct {
	value int64
}

// ParseTaskID parses a task ID from a path segment.
func ParseTaskID(idStr string) (*TaskID, error) {
	if idStr == "" {
		return nil, fmt.Errorf("task ID is required")
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid task ID: must be a positive integer")
	}

	return &TaskID{value: id}, nil
}

// Int64 returns the ID value.
func (t *TaskID) Int64() int64 {
	return t.value
}

// CompletionFilter represents the single boolean filter on the task list.
// The zero value (and nil) matches every task.
type CompletionFilter struct {
	completed *bool
}

// AllTasks returns a filter that matches every task.
func AllTasks() *CompletionFilter {
	return &CompletionFilter{}
}

// OnlyCompleted returns a filter matching tasks whose completed flag equals the argument.
func OnlyCompleted(completed bool) *CompletionFilter {
	return &CompletionFilter{completed: &completed}
}

// NewCompletionFilter creates a completion filter from a query parameter.
func NewCompletionFilter(s string) (*CompletionFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return AllTasks(), nil
	case "true", "1", "completed", "done":
		return OnlyCompleted(true), nil
	case "false", "0", "active", "pending":
		return OnlyCompleted(false), nil
	default:
		return nil, fmt.Errorf("invalid completed parameter. Use 'true' or 'false'")
	}
}

// Completed returns the filtered state and whether the filter is active.
func (f *CompletionFilter) Completed() (bool, bool) {
	if f == nil || f.completed == nil {
		return false, false
	}
	return *f.completed, true
}

// Match reports whether the task passes the filter.
func (f *CompletionFilter) Match(t *Task) bool {
	completed, ok := f.Completed()
	return !ok || t.Completed == completed
}

// String returns the query parameter form of the filter.
func (f *CompletionFilter) String() string {
	completed, ok := f.Completed()
	if !ok {
		return ""
	}
	return strconv.FormatBool(completed)
}

// ExportFormat represents an export format value object.
type ExportFormat struct {
	value string
}

// Supported export formats.
const (
	ExportJSON = "json"
	ExportCSV  = "csv"
	ExportPDF  = "pdf"
)

// NewExportFormat creates a new export format value object. Empty means JSON.
func NewExportFormat(s string) (*ExportFormat, error) {
	format := strings.ToLower(strings.TrimSpace(s))
	switch format {
	case "":
		return &ExportFormat{value: ExportJSON}, nil
	case ExportJSON, ExportCSV, ExportPDF:
		return &ExportFormat{value: format}, nil
	default:
		return nil, NewValidationError(fmt.Sprintf("unsupported export format: %s", s))
	}
}

// String returns the format name.
func (e *ExportFormat) String() string {
	return e.value
}
