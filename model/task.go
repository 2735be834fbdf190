// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"errors"
	"strings"
	"time"
)

// Task はひとつのToDo項目を表すモデルです。
type Task struct {
	ID          int64     `json:"id"`          // タスクID（作成時に採番、再利用しない）
	Title       string    `json:"title"`       // タイトル（空文字不可）
	Description string    `json:"description"` // 説明
	Completed   bool      `json:"completed"`   // 完了フラグ
	CreatedAt   time.Time `json:"created_at"`  // 作成日時
	UpdatedAt   time.Time `json:"updated_at"`  // 更新日時
}

// NewTask は新しいTaskインスタンスを作成します。
// タイトルは前後の空白を除去してから検証します。
func NewTask(id int64, title, description string, now time.Time) (*Task, error) {
	t := &Task{
		ID:          id,
		Title:       strings.TrimSpace(title),
		Description: description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTask は既存のTaskインスタンスを作成します。
func LoadTask(id int64, title, description string, completed bool, createdAt, updatedAt time.Time) (*Task, error) {
	t := &Task{
		ID:          id,
		Title:       title,
		Description: description,
		Completed:   completed,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate はタスクのデータバリデーションを行います。
func (t *Task) Validate() error {
	if t.ID <= 0 {
		return errors.New("id must be positive")
	}
	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError(ErrTitleRequired)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("created_at is required")
	}
	if t.UpdatedAt.IsZero() {
		return errors.New("updated_at is required")
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return errors.New("updated_at must not be before created_at")
	}
	return nil
}

// Edit はタイトルと説明を上書きし、更新日時を進めます。
// タイトルが空の場合は何も変更せずにValidationErrorを返します。
func (t *Task) Edit(title, description string, now time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return NewValidationError(ErrTitleRequired)
	}
	t.Title = title
	t.Description = description
	t.touch(now)
	return nil
}

// ToggleComplete は完了フラグを反転し、更新日時を進めます。
func (t *Task) ToggleComplete(now time.Time) {
	t.Completed = !t.Completed
	t.touch(now)
}

// touch は更新日時を設定します。時計が巻き戻ってもCreatedAtより前にはしません。
func (t *Task) touch(now time.Time) {
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.UpdatedAt = now
}

// Clone はタスクのコピーを返します。
func (t *Task) Clone() *Task {
	c := *t
	return &c
}
