// Package repository は、タスクの採番・更新ルール・一覧順序を管理するリポジトリを提供します。
package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/stsysd/tasuku/model"
	"github.com/stsysd/tasuku/store"
)

// TaskRepository はタスクコレクションとID採番を所有するリポジトリです。
// すべての操作はひとつのミューテックスで直列化されます。
type TaskRepository struct {
	mu     sync.Mutex
	store  store.TaskStore
	clock  clock.Clock
	nextID int64
}

// NewTaskRepository は新しいTaskRepositoryを作成します。
// 採番はストア内の最大ID+1から始まります（空なら1）。
func NewTaskRepository(ctx context.Context, st store.TaskStore, clk clock.Clock) (*TaskRepository, error) {
	if clk == nil {
		clk = clock.New()
	}

	maxID, err := st.MaxTaskID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize id counter: %w", err)
	}

	return &TaskRepository{
		store:  st,
		clock:  clk,
		nextID: maxID + 1,
	}, nil
}

// ListAll はすべてのタスクを挿入順で返します。
func (r *TaskRepository) ListAll(ctx context.Context) ([]*model.Task, error) {
	return r.List(ctx, model.AllTasks())
}

// List は完了状態で絞り込んだタスクを挿入順で返します。
func (r *TaskRepository) List(ctx context.Context, filter *model.CompletionFilter) ([]*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.store.ListTasks(ctx, filter)
}

// Add は新しいタスクを末尾に追加します。
// タイトルが空（空白のみを含む）の場合は何も変更せずにValidationErrorを返します。
func (r *TaskRepository) Add(ctx context.Context, title, description string) (*model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, model.NewValidationError(model.ErrTitleRequired)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	task, err := model.NewTask(r.nextID, title, description, r.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := r.store.InsertTask(ctx, task); err != nil {
		return nil, err
	}

	// 追加に成功したときだけ採番を進める
	r.nextID++
	return task.Clone(), nil
}

// Find は指定IDのタスクを返します。
func (r *TaskRepository) Find(ctx context.Context, id int64) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.store.GetTask(ctx, id)
}

// Edit はタイトルと説明を上書きします。IDと作成日時は変更しません。
func (r *TaskRepository) Edit(ctx context.Context, id int64, title, description string) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 存在確認を先に行う
	task, err := r.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := task.Edit(title, description, r.clock.Now()); err != nil {
		return nil, err
	}
	if err := r.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ToggleComplete は完了状態を反転します。
func (r *TaskRepository) ToggleComplete(ctx context.Context, id int64) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, err := r.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	task.ToggleComplete(r.clock.Now())
	if err := r.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete は指定IDのタスクを削除します。存在しない場合はNotFoundErrorを返しますが、
// コレクションは変更されません。採番は巻き戻しません。
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.store.DeleteTask(ctx, id)
}

// ClearCompleted は完了済みのタスクをすべて削除し、その件数を返します。
func (r *TaskRepository) ClearCompleted(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.store.DeleteCompletedTasks(ctx)
}

// Counts は全件数と完了済み件数を返します。
func (r *TaskRepository) Counts(ctx context.Context) (total, completed int, err error) {
	tasks, err := r.ListAll(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	return len(tasks), completed, nil
}
