package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stsysd/tasuku/db"
	"github.com/stsysd/tasuku/model"
)

// 各実装に共通のテストを流すためのファクトリ
var factories = map[string]func(t *testing.T) TaskStore{
	"memory": func(t *testing.T) TaskStore {
		return NewMemoryStore()
	},
	"sqlite": func(t *testing.T) TaskStore {
		s, err := NewSQLiteStore(db.Migrate)
		if err != nil {
			t.Fatalf("Failed to create SQLite store: %v", err)
		}
		return s
	},
}

var baseTime = time.Date(2025, 5, 21, 14, 30, 0, 123456789, time.UTC)

func setupTestStore(t *testing.T, factory func(t *testing.T) TaskStore) TaskStore {
	t.Helper()
	s := factory(t)
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func mustTask(t *testing.T, id int64, title string, completed bool) *model.Task {
	t.Helper()
	created := baseTime.Add(time.Duration(id) * time.Minute)
	task, err := model.LoadTask(id, title, title+" description", completed, created, created)
	if err != nil {
		t.Fatalf("Failed to build task: %v", err)
	}
	return task
}

func ids(tasks []*model.Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestTaskStore_InsertAndGet(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := setupTestStore(t, factory)

			task := mustTask(t, 1, "Learn Go", false)
			if err := s.InsertTask(ctx, task); err != nil {
				t.Fatalf("InsertTask failed: %v", err)
			}

			got, err := s.GetTask(ctx, 1)
			if err != nil {
				t.Fatalf("GetTask failed: %v", err)
			}
			if got.Title != task.Title || got.Description != task.Description || got.Completed != task.Completed {
				t.Errorf("Expected %+v, got %+v", task, got)
			}
			if !got.CreatedAt.Equal(task.CreatedAt) || !got.UpdatedAt.Equal(task.UpdatedAt) {
				t.Errorf("Timestamps not preserved: %v/%v vs %v/%v", got.CreatedAt, got.UpdatedAt, task.CreatedAt, task.UpdatedAt)
			}

			// 返された値を書き換えてもストアには影響しない
			got.Title = "mutated"
			again, _ := s.GetTask(ctx, 1)
			if again.Title != "Learn Go" {
				t.Errorf("Store state leaked through returned task: %q", again.Title)
			}

			// 重複IDは拒否される
			if err := s.InsertTask(ctx, mustTask(t, 1, "dup", false)); err == nil {
				t.Error("Expected error for duplicate id, got nil")
			}
		})
	}
}

func TestTaskStore_GetNotFound(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			s := setupTestStore(t, factory)

			_, err := s.GetTask(context.Background(), 99)
			if !errors.Is(err, model.ErrTaskNotFound) {
				t.Errorf("Expected ErrTaskNotFound, got %v", err)
			}
		})
	}
}

func TestTaskStore_UpdateKeepsPosition(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := setupTestStore(t, factory)

			for i, title := range []string{"A", "B", "C"} {
				if err := s.InsertTask(ctx, mustTask(t, int64(i+1), title, false)); err != nil {
					t.Fatalf("InsertTask failed: %v", err)
				}
			}

			updated := mustTask(t, 1, "A2", true)
			updated.UpdatedAt = updated.CreatedAt.Add(time.Hour)
			if err := s.UpdateTask(ctx, updated); err != nil {
				t.Fatalf("UpdateTask failed: %v", err)
			}

			tasks, err := s.ListTasks(ctx, model.AllTasks())
			if err != nil {
				t.Fatalf("ListTasks failed: %v", err)
			}
			if diff := cmp.Diff([]int64{1, 2, 3}, ids(tasks)); diff != "" {
				t.Errorf("Order changed after update (-want +got):\n%s", diff)
			}
			if tasks[0].Title != "A2" || !tasks[0].Completed || !tasks[0].UpdatedAt.Equal(updated.UpdatedAt) {
				t.Errorf("Update not applied: %+v", tasks[0])
			}

			// 存在しないタスクの更新
			if err := s.UpdateTask(ctx, mustTask(t, 42, "X", false)); !errors.Is(err, model.ErrTaskNotFound) {
				t.Errorf("Expected ErrTaskNotFound, got %v", err)
			}
		})
	}
}

func TestTaskStore_Delete(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := setupTestStore(t, factory)

			for i := int64(1); i <= 3; i++ {
				s.InsertTask(ctx, mustTask(t, i, "task", false))
			}

			if err := s.DeleteTask(ctx, 2); err != nil {
				t.Fatalf("DeleteTask failed: %v", err)
			}
			if err := s.DeleteTask(ctx, 2); !errors.Is(err, model.ErrTaskNotFound) {
				t.Errorf("Expected ErrTaskNotFound on second delete, got %v", err)
			}

			tasks, _ := s.ListTasks(ctx, model.AllTasks())
			if diff := cmp.Diff([]int64{1, 3}, ids(tasks)); diff != "" {
				t.Errorf("Unexpected tasks after delete (-want +got):\n%s", diff)
			}

			// 削除しても最大IDは残りのタスクから求まる
			maxID, err := s.MaxTaskID(ctx)
			if err != nil {
				t.Fatalf("MaxTaskID failed: %v", err)
			}
			if maxID != 3 {
				t.Errorf("Expected max id 3, got %d", maxID)
			}
		})
	}
}

func TestTaskStore_DeleteCompletedTasks(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := setupTestStore(t, factory)

			completed := map[int64]bool{1: true, 2: false, 3: true, 4: false, 5: true}
			for id := int64(1); id <= 5; id++ {
				s.InsertTask(ctx, mustTask(t, id, "task", completed[id]))
			}

			n, err := s.DeleteCompletedTasks(ctx)
			if err != nil {
				t.Fatalf("DeleteCompletedTasks failed: %v", err)
			}
			if n != 3 {
				t.Errorf("Expected 3 deleted, got %d", n)
			}

			tasks, _ := s.ListTasks(ctx, model.AllTasks())
			if diff := cmp.Diff([]int64{2, 4}, ids(tasks)); diff != "" {
				t.Errorf("Unexpected remaining tasks (-want +got):\n%s", diff)
			}

			// 完了済みがなければ0件
			n, err = s.DeleteCompletedTasks(ctx)
			if err != nil || n != 0 {
				t.Errorf("Expected 0 deleted, got %d (err=%v)", n, err)
			}
		})
	}
}

func TestTaskStore_ListTasksFilter(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := setupTestStore(t, factory)

			s.InsertTask(ctx, mustTask(t, 1, "A", false))
			s.InsertTask(ctx, mustTask(t, 2, "B", true))
			s.InsertTask(ctx, mustTask(t, 3, "C", false))

			tests := []struct {
				name   string
				filter *model.CompletionFilter
				want   []int64
			}{
				{"all", model.AllTasks(), []int64{1, 2, 3}},
				{"nil", nil, []int64{1, 2, 3}},
				{"completed", model.OnlyCompleted(true), []int64{2}},
				{"active", model.OnlyCompleted(false), []int64{1, 3}},
			}
			for _, tt := range tests {
				tasks, err := s.ListTasks(ctx, tt.filter)
				if err != nil {
					t.Fatalf("%s: ListTasks failed: %v", tt.name, err)
				}
				if diff := cmp.Diff(tt.want, ids(tasks)); diff != "" {
					t.Errorf("%s: unexpected ids (-want +got):\n%s", tt.name, diff)
				}
			}
		})
	}
}

func TestTaskStore_MaxTaskIDEmpty(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			maxID, err := setupTestStore(t, factory).MaxTaskID(context.Background())
			if err != nil {
				t.Fatalf("MaxTaskID failed: %v", err)
			}
			if maxID != 0 {
				t.Errorf("Expected 0 for empty store, got %d", maxID)
			}
		})
	}
}

func TestTaskStore_RejectsInvalidTask(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			s := setupTestStore(t, factory)
			invalid := &model.Task{ID: 1, Title: " ", CreatedAt: baseTime, UpdatedAt: baseTime}
			if err := s.InsertTask(context.Background(), invalid); !model.IsValidationError(err) {
				t.Errorf("Expected ValidationError, got %v", err)
			}
		})
	}
}
