package api

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/stsysd/tasuku/model"
)

// pages はページごとにパース済みのテンプレートです。
type pages struct {
	index *template.Template
	add   *template.Template
	edit  *template.Template
}

var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04")
	},
}

// mustParsePages は埋め込まれたテンプレートをパースします。
func mustParsePages() *pages {
	parse := func(name string) *template.Template {
		return template.Must(template.New("base.html").Funcs(templateFuncs).
			ParseFS(assets, "templates/base.html", "templates/"+name))
	}
	return &pages{
		index: parse("index.html"),
		add:   parse("add_task.html"),
		edit:  parse("edit_task.html"),
	}
}

// taskForm はフォームの入力値です。
type taskForm struct {
	Title       string
	Description string
}

// pageData はテンプレートに渡す値です。
type pageData struct {
	Flash     *flash
	Tasks     []*model.Task
	Task      *model.Task
	Form      taskForm
	Filter    string
	Total     int
	Completed int
}

// render はテンプレートをバッファに描画してから書き出します。
func (s *Server) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, status int, data *pageData) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		s.requestLog(r).WithError(err).Error("failed to render template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// readTaskForm はフォームから入力値を取り出して前後の空白を除去します。
func readTaskForm(r *http.Request) (taskForm, error) {
	if err := r.ParseForm(); err != nil {
		return taskForm{}, err
	}
	return taskForm{
		Title:       strings.TrimSpace(r.PostForm.Get("title")),
		Description: strings.TrimSpace(r.PostForm.Get("description")),
	}, nil
}

// handleIndex はタスク一覧ページのハンドラーです。
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := &pageData{Flash: popFlash(w, r)}

	filter, err := model.NewCompletionFilter(r.URL.Query().Get("completed"))
	if err != nil {
		data.Flash = &flash{Category: flashError, Message: err.Error()}
		filter = model.AllTasks()
	}
	data.Filter = filter.String()

	all, err := s.repo.List(r.Context(), model.AllTasks())
	if err != nil {
		s.requestLog(r).WithError(err).Error("failed to list tasks")
		http.Error(w, "Failed to list tasks", http.StatusInternalServerError)
		return
	}
	for _, t := range all {
		if t.Completed {
			data.Completed++
		}
		if filter.Match(t) {
			data.Tasks = append(data.Tasks, t)
		}
	}
	data.Total = len(all)

	s.render(w, r, s.pages.index, http.StatusOK, data)
}

// handleAddForm はタスク追加フォームのハンドラーです。
func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.pages.add, http.StatusOK, &pageData{Flash: popFlash(w, r)})
}

// handleAddSubmit はタスク追加フォームの送信を処理します。
func (s *Server) handleAddSubmit(w http.ResponseWriter, r *http.Request) {
	form, err := readTaskForm(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	_, err = s.repo.Add(r.Context(), form.Title, form.Description)
	s.metrics.observeOperation("add", err)
	switch {
	case err == nil:
		redirectWithFlash(w, r, flashSuccess, "Task added successfully!")
	case model.IsValidationError(err):
		// 入力値を残したままフォームを再表示
		s.render(w, r, s.pages.add, http.StatusBadRequest, &pageData{
			Flash: &flash{Category: flashError, Message: "Task title is required!"},
			Form:  form,
		})
	default:
		s.requestLog(r).WithError(err).Error("failed to add task")
		http.Error(w, "Failed to add task", http.StatusInternalServerError)
	}
}

// findForPage はパスのIDからタスクを取得します。
// 見つからない場合はフラッシュを設定してトップページへ戻し、nilを返します。
func (s *Server) findForPage(w http.ResponseWriter, r *http.Request) *model.Task {
	taskID, err := model.ParseTaskID(r.PathValue("task_id"))
	if err != nil {
		redirectWithFlash(w, r, flashError, "Task not found!")
		return nil
	}

	task, err := s.repo.Find(r.Context(), taskID.Int64())
	if err != nil {
		s.handlePageError(w, r, err, "find task")
		return nil
	}
	return task
}

// handlePageError はHTMLページでのリポジトリエラーを処理します。
func (s *Server) handlePageError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if errors.Is(err, model.ErrTaskNotFound) {
		redirectWithFlash(w, r, flashError, "Task not found!")
		return
	}
	s.requestLog(r).WithError(err).Errorf("failed to %s", action)
	http.Error(w, "Failed to "+action, http.StatusInternalServerError)
}

// handleEditForm はタスク編集フォームのハンドラーです。
func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	task := s.findForPage(w, r)
	if task == nil {
		return
	}
	s.render(w, r, s.pages.edit, http.StatusOK, &pageData{
		Flash: popFlash(w, r),
		Task:  task,
		Form:  taskForm{Title: task.Title, Description: task.Description},
	})
}

// handleEditSubmit はタスク編集フォームの送信を処理します。
func (s *Server) handleEditSubmit(w http.ResponseWriter, r *http.Request) {
	task := s.findForPage(w, r)
	if task == nil {
		return
	}

	form, err := readTaskForm(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	_, err = s.repo.Edit(r.Context(), task.ID, form.Title, form.Description)
	s.metrics.observeOperation("edit", err)
	switch {
	case err == nil:
		redirectWithFlash(w, r, flashSuccess, "Task updated successfully!")
	case model.IsValidationError(err):
		s.render(w, r, s.pages.edit, http.StatusBadRequest, &pageData{
			Flash: &flash{Category: flashError, Message: "Task title is required!"},
			Task:  task,
			Form:  form,
		})
	default:
		s.handlePageError(w, r, err, "update task")
	}
}

// handleToggleComplete は完了状態を切り替えてトップページへ戻ります。
func (s *Server) handleToggleComplete(w http.ResponseWriter, r *http.Request) {
	taskID, err := model.ParseTaskID(r.PathValue("task_id"))
	if err != nil {
		redirectWithFlash(w, r, flashError, "Task not found!")
		return
	}

	task, err := s.repo.ToggleComplete(r.Context(), taskID.Int64())
	s.metrics.observeOperation("toggle", err)
	if err != nil {
		s.handlePageError(w, r, err, "toggle task")
		return
	}

	status := "marked as incomplete"
	if task.Completed {
		status = "completed"
	}
	redirectWithFlash(w, r, flashSuccess, fmt.Sprintf("Task %s!", status))
}

// handleDelete はタスクを削除してトップページへ戻ります。
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	taskID, err := model.ParseTaskID(r.PathValue("task_id"))
	if err != nil {
		redirectWithFlash(w, r, flashError, "Task not found!")
		return
	}

	err = s.repo.Delete(r.Context(), taskID.Int64())
	s.metrics.observeOperation("delete", err)
	if err != nil {
		s.handlePageError(w, r, err, "delete task")
		return
	}
	redirectWithFlash(w, r, flashSuccess, "Task deleted successfully!")
}

// handleClearCompleted は完了済みタスクを一括削除してトップページへ戻ります。
func (s *Server) handleClearCompleted(w http.ResponseWriter, r *http.Request) {
	n, err := s.repo.ClearCompleted(r.Context())
	s.metrics.observeOperation("clear_completed", err)
	if err != nil {
		s.handlePageError(w, r, err, "delete completed tasks")
		return
	}

	if n == 0 {
		redirectWithFlash(w, r, flashInfo, "No completed tasks to delete!")
		return
	}
	redirectWithFlash(w, r, flashSuccess, fmt.Sprintf("%d completed task(s) deleted!", n))
}
