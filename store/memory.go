package store

import (
	"context"
	"fmt"

	"github.com/stsysd/tasuku/model"
)

// MemoryStore はスライスを使用したTaskStoreの実装です。
// 排他制御は行わないため、呼び出し側で直列化してください。
type MemoryStore struct {
	tasks []*model.Task
}

// NewMemoryStore は空のMemoryStoreを作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// indexOf は指定IDのタスクの位置を返します。見つからない場合は-1です。
func (s *MemoryStore) indexOf(id int64) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// InsertTask はタスクのコピーを末尾に追加します。
func (s *MemoryStore) InsertTask(ctx context.Context, task *model.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	if s.indexOf(task.ID) >= 0 {
		return fmt.Errorf("duplicate task id: %d", task.ID)
	}
	s.tasks = append(s.tasks, task.Clone())
	return nil
}

// GetTask は指定されたIDのタスクのコピーを返します。
func (s *MemoryStore) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, model.NewNotFoundError(id)
	}
	return s.tasks[i].Clone(), nil
}

// UpdateTask は同じIDのタスクをその場で置き換えます。
func (s *MemoryStore) UpdateTask(ctx context.Context, task *model.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	i := s.indexOf(task.ID)
	if i < 0 {
		return model.NewNotFoundError(task.ID)
	}
	s.tasks[i] = task.Clone()
	return nil
}

// DeleteTask は指定されたIDのタスクを取り除きます。残りの順序は保たれます。
func (s *MemoryStore) DeleteTask(ctx context.Context, id int64) error {
	i := s.indexOf(id)
	if i < 0 {
		return model.NewNotFoundError(id)
	}
	copy(s.tasks[i:], s.tasks[i+1:])
	s.tasks[len(s.tasks)-1] = nil
	s.tasks = s.tasks[:len(s.tasks)-1]
	return nil
}

// DeleteCompletedTasks は完了済みタスクをその場で詰めて取り除きます。
func (s *MemoryStore) DeleteCompletedTasks(ctx context.Context) (int, error) {
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(s.tasks) - len(kept)
	// 詰めた後ろ側の参照を切る
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = kept
	return removed, nil
}

// ListTasks はフィルタに一致するタスクのコピーを挿入順で返します。
func (s *MemoryStore) ListTasks(ctx context.Context, filter *model.CompletionFilter) ([]*model.Task, error) {
	tasks := make([]*model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if filter.Match(t) {
			tasks = append(tasks, t.Clone())
		}
	}
	return tasks, nil
}

// MaxTaskID は保持しているタスクの最大IDを返します。
func (s *MemoryStore) MaxTaskID(ctx context.Context) (int64, error) {
	var maxID int64
	for _, t := range s.tasks {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID, nil
}

// Close は何もしません。
func (s *MemoryStore) Close() error {
	return nil
}
