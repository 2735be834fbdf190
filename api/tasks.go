package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/stsysd/tasuku/export"
	"github.com/stsysd/tasuku/model"
)

// TaskBody represents the JSON body for creating or updating a task.
type TaskBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// decodeTaskBody decodes and trims a task body.
func decodeTaskBody(r *http.Request) (*TaskBody, error) {
	var body TaskBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	body.Title = strings.TrimSpace(body.Title)
	body.Description = strings.TrimSpace(body.Description)
	return &body, nil
}

// ListTasksParams represents parameters for listing tasks.
type ListTasksParams struct {
	Filter *model.CompletionFilter
}

// NewListTasksParams creates parameters for task listing from HTTP request.
func NewListTasksParams(r *http.Request) (*ListTasksParams, error) {
	filter, err := model.NewCompletionFilter(r.URL.Query().Get("completed"))
	if err != nil {
		return nil, err
	}
	return &ListTasksParams{Filter: filter}, nil
}

// handleListTasks はタスク一覧を取得するハンドラーです。
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	// パラメータを検証
	params, err := NewListTasksParams(r)
	if err != nil {
		s.writeJSONError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	tasks, err := s.repo.List(r.Context(), params.Filter)
	if err != nil {
		s.writeRepositoryError(w, r, err, "list tasks")
		return
	}
	// 空配列を返すためにnilチェック
	if tasks == nil {
		tasks = []*model.Task{}
	}

	s.writeJSON(w, r, http.StatusOK, tasks)
}

// CreateTaskParams represents parameters for creating a task.
type CreateTaskParams struct {
	Title       string
	Description string
}

// NewCreateTaskParams creates parameters for task creation from HTTP request.
func NewCreateTaskParams(r *http.Request) (*CreateTaskParams, error) {
	body, err := decodeTaskBody(r)
	if err != nil {
		return nil, err
	}
	return &CreateTaskParams{Title: body.Title, Description: body.Description}, nil
}

// handleCreateTask はタスク作成エンドポイントのハンドラーです。
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	// パラメータを検証
	params, err := NewCreateTaskParams(r)
	if err != nil {
		s.writeJSONError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	// タイトルの検証はリポジトリで行う
	task, err := s.repo.Add(r.Context(), params.Title, params.Description)
	s.metrics.observeOperation("add", err)
	if err != nil {
		s.writeRepositoryError(w, r, err, "create task")
		return
	}

	s.writeJSON(w, r, http.StatusCreated, task)
}

// TaskIDParams represents parameters that only carry a task ID.
type TaskIDParams struct {
	TaskID *model.TaskID
}

// NewTaskIDParams creates parameters from the task_id path value.
func NewTaskIDParams(r *http.Request) (*TaskIDParams, error) {
	taskID, err := model.ParseTaskID(r.PathValue("task_id"))
	if err != nil {
		return nil, err
	}
	return &TaskIDParams{TaskID: taskID}, nil
}

// handleGetTask は特定のIDのタスクを取得するハンドラーです。
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	params, err := NewTaskIDParams(r)
	if err != nil {
		s.writeJSONError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	task, err := s.repo.Find(r.Context(), params.TaskID.Int64())
	if err != nil {
		s.writeRepositoryError(w, r, err, "retrieve task")
		return
	}

	s.writeJSON(w, r, http.StatusOK, task)
}

// UpdateTaskParams represents parameters for updating a task.
type UpdateTaskParams struct {
	TaskID      *model.TaskID
	Title       string
	Description string
}

// NewUpdateTaskParams creates parameters for task update from HTTP request.
func NewUpdateTaskParams(r *http.Request) (*UpdateTaskParams, error) {
	taskID, err := model.ParseTaskID(r.PathValue("task_id"))
	if err != nil {
		return nil, err
	}

	body, err := decodeTaskBody(r)
	if err != nil {
		return nil, err
	}

	return &UpdateTaskParams{
		TaskID:      taskID,
		Title:       body.Title,
		Description: body.Description,
	}, nil
}

// handleUpdateTask は特定のIDのタスクを更新するハンドラーです。
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	params, err := NewUpdateTaskParams(r)
	if err != nil {
		s.writeJSONError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	task, err := s.repo.Edit(r.Context(), params.TaskID.Int64(), params.Title, params.Description)
	s.metrics.observeOperation("edit", err)
	if err != nil {
		s.writeRepositoryError(w, r, err, "update task")
		return
	}

	s.writeJSON(w, r, http.StatusOK, task)
}

// handleToggleTask は完了状態を切り替えるハンドラーです。
func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	params, err := NewTaskIDParams(r)
	if err != nil {
		s.writeJSONError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	task, err := s.repo.ToggleComplete(r.Context(), params.TaskID.Int64())
	s.metrics.observeOperation("toggle", err)
	if err != nil {
		s.writeRepositoryError(w, r, err, "toggle task")
		return
	}

	s.writeJSON(w, r, http.StatusOK, task)
}

// handleDeleteTask は特定のIDのタスクを削除するハンドラーです。
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	params, err := NewTaskIDParams(r)
	if err != nil {
		s.writeJSONError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.repo.Delete(r.Context(), params.TaskID.Int64())
	s.metrics.observeOperation("delete", err)
	if err != nil {
		s.writeRepositoryError(w, r, err, "delete task")
		return
	}

	// 削除成功のレスポンスを返す
	w.WriteHeader(http.StatusNoContent)
}

// ClearCompletedResponse は完了済みタスク一括削除のレスポンスです。
type ClearCompletedResponse struct {
	Deleted int `json:"deleted"`
}

// handleClearCompletedTasks は完了済みタスクを一括削除するハンドラーです。
func (s *Server) handleClearCompletedTasks(w http.ResponseWriter, r *http.Request) {
	n, err := s.repo.ClearCompleted(r.Context())
	s.metrics.observeOperation("clear_completed", err)
	if err != nil {
		s.writeRepositoryError(w, r, err, "delete completed tasks")
		return
	}

	s.writeJSON(w, r, http.StatusOK, ClearCompletedResponse{Deleted: n})
}

// ExportParams represents parameters for exporting tasks.
type ExportParams struct {
	Format *model.ExportFormat
	Filter *model.CompletionFilter
}

// NewExportParams creates parameters for export from HTTP request.
func NewExportParams(r *http.Request) (*ExportParams, error) {
	query := r.URL.Query()

	format, err := model.NewExportFormat(query.Get("format"))
	if err != nil {
		return nil, err
	}

	filter, err := model.NewCompletionFilter(query.Get("completed"))
	if err != nil {
		return nil, err
	}

	return &ExportParams{Format: format, Filter: filter}, nil
}

// handleExport はタスク一覧をエクスポートするハンドラーです。
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	params, err := NewExportParams(r)
	if err != nil {
		s.writeJSONError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.exporter.Export(r.Context(), params.Format, params.Filter)
	if err != nil {
		s.writeRepositoryError(w, r, err, "export tasks")
		return
	}

	w.Header().Set("Content-Type", export.ContentType(params.Format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="tasks.%s"`, params.Format))
	if _, err := w.Write(data); err != nil {
		s.requestLog(r).WithError(err).Error("error writing export")
	}
}
