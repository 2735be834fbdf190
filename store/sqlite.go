package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stsysd/tasuku/db"
	"github.com/stsysd/tasuku/model"
)

// インメモリSQLiteのDSN。ファイルには一切書き込みません。
const memoryDSN = ":memory:"

// MigrationFunc はスキーマを適用する関数です。
type MigrationFunc func(*sql.DB) error

// SQLiteStore はインメモリSQLiteを使用したTaskStoreの実装です。
type SQLiteStore struct {
	conn    *sql.DB
	queries *db.Queries
}

// NewSQLiteStore は新しいSQLiteStoreを作成します。
func NewSQLiteStore(migrate MigrationFunc) (*SQLiteStore, error) {
	// SQLiteデータベースへの接続
	conn, err := sql.Open("sqlite3", memoryDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	// :memory: は接続ごとに別のDBになるため、接続を1本に固定する
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)
	conn.SetConnMaxIdleTime(0)

	// マイグレーションの実行
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize database tables: %w", err)
	}

	return &SQLiteStore{
		conn:    conn,
		queries: db.New(conn),
	}, nil
}

// InsertTask は新しいタスクをデータベースに保存します。
func (s *SQLiteStore) InsertTask(ctx context.Context, task *model.Task) error {
	// バリデーション
	if err := task.Validate(); err != nil {
		return err
	}

	// sqlcで生成されたクエリを使用
	err := s.queries.CreateTask(ctx, db.CreateTaskParams{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   formatTime(task.CreatedAt),
		UpdatedAt:   formatTime(task.UpdatedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetTask は指定されたIDのタスクを取得します。
func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	// sqlcで生成されたクエリを使用
	dbTask, err := s.queries.GetTask(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return toModel(dbTask)
}

// UpdateTask は指定されたタスクを更新します。
func (s *SQLiteStore) UpdateTask(ctx context.Context, task *model.Task) error {
	// バリデーション
	if err := task.Validate(); err != nil {
		return err
	}

	// sqlcで生成されたクエリを使用
	result, err := s.queries.UpdateTask(ctx, db.UpdateTaskParams{
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		UpdatedAt:   formatTime(task.UpdatedAt),
		ID:          task.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	// 更新された行数を確認
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	// タスクが見つからない場合
	if rowsAffected == 0 {
		return model.NewNotFoundError(task.ID)
	}

	return nil
}

// DeleteTask は指定されたIDのタスクを削除します。
func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) error {
	// sqlcで生成されたクエリを使用
	result, err := s.queries.DeleteTask(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	// 削除された行数を確認
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	// タスクが見つからない場合
	if rowsAffected == 0 {
		return model.NewNotFoundError(id)
	}

	return nil
}

// DeleteCompletedTasks は完了済みのタスクをすべて削除します。
func (s *SQLiteStore) DeleteCompletedTasks(ctx context.Context) (int, error) {
	result, err := s.queries.DeleteCompletedTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete completed tasks: %w", err)
	}

	// 削除された行数を取得
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

// ListTasks はフィルタに一致するタスクをID順（=挿入順）で取得します。
func (s *SQLiteStore) ListTasks(ctx context.Context, filter *model.CompletionFilter) ([]*model.Task, error) {
	var dbTasks []db.Task
	var err error
	if completed, ok := filter.Completed(); ok {
		dbTasks, err = s.queries.ListTasksByCompleted(ctx, completed)
	} else {
		dbTasks, err = s.queries.ListTasks(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	// 結果の変換
	tasks := make([]*model.Task, 0, len(dbTasks))
	for _, dbTask := range dbTasks {
		task, err := toModel(dbTask)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// MaxTaskID は保存されているタスクの最大IDを返します。
func (s *SQLiteStore) MaxTaskID(ctx context.Context) (int64, error) {
	maxID, err := s.queries.GetMaxTaskID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get max task id: %w", err)
	}
	return maxID, nil
}

// Close はデータベース接続を閉じます。
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// formatTime は日時をRFC3339Nano形式の文字列に統一します。
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// toModel はDBの行をモデルに変換します。
func toModel(row db.Task) (*model.Task, error) {
	// 文字列から時間に変換
	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	updatedAt, err := time.Parse(time.RFC3339Nano, row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return model.LoadTask(row.ID, row.Title, row.Description, row.Completed, createdAt, updatedAt)
}
