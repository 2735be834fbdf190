// Package store は、タスクコレクションの保持機能を提供します。
package store

import (
	"context"

	"github.com/stsysd/tasuku/model"
)

// TaskStore は挿入順を保ったタスクコレクションを扱うインターフェースです。
// 採番と更新ルールはリポジトリ側の責務で、ストアは渡された値をそのまま保持します。
type TaskStore interface {
	// InsertTask はタスクをコレクションの末尾に追加します。
	InsertTask(ctx context.Context, task *model.Task) error
	// GetTask は指定されたIDのタスクを取得します。
	GetTask(ctx context.Context, id int64) (*model.Task, error)
	// UpdateTask は指定されたタスクを位置を変えずに上書きします。
	UpdateTask(ctx context.Context, task *model.Task) error
	// DeleteTask は指定されたIDのタスクを削除します。
	DeleteTask(ctx context.Context, id int64) error
	// DeleteCompletedTasks は完了済みのタスクをすべて削除し、削除件数を返します。
	DeleteCompletedTasks(ctx context.Context) (int, error)
	// ListTasks はフィルタに一致するタスクを挿入順で取得します。
	ListTasks(ctx context.Context, filter *model.CompletionFilter) ([]*model.Task, error)
	// MaxTaskID は保持しているタスクの最大IDを返します（空なら0）。
	MaxTaskID(ctx context.Context) (int64, error)
	// Close はストアを閉じます。
	Close() error
}
