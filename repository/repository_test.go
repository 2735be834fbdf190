package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"
	"github.com/stsysd/tasuku/db"
	"github.com/stsysd/tasuku/model"
	"github.com/stsysd/tasuku/store"
)

var startTime = time.Date(2025, 5, 21, 9, 0, 0, 0, time.UTC)

// テスト用のリポジトリを生成するヘルパー関数
func newTestRepository(t *testing.T) (*TaskRepository, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(startTime)
	repo, err := NewTaskRepository(context.Background(), store.NewMemoryStore(), mock)
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	return repo, mock
}

type taskSummary struct {
	ID        int64
	Title     string
	Completed bool
}

func summarize(tasks []*model.Task) []taskSummary {
	out := make([]taskSummary, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskSummary{ID: t.ID, Title: t.Title, Completed: t.Completed})
	}
	return out
}

func TestAddAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	repo, mock := newTestRepository(t)

	var prev int64
	seen := map[int64]bool{}
	for i := 0; i < 20; i++ {
		task, err := repo.Add(ctx, "task", "")
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if task.ID <= prev {
			t.Errorf("Expected id greater than %d, got %d", prev, task.ID)
		}
		if seen[task.ID] {
			t.Errorf("Duplicate id %d", task.ID)
		}
		seen[task.ID] = true
		prev = task.ID
		mock.Add(time.Second)
	}
}

func TestAddSetsFields(t *testing.T) {
	repo, _ := newTestRepository(t)

	task, err := repo.Add(context.Background(), "  Learn Go ", "Build a todo app")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if task.ID != 1 {
		t.Errorf("Expected first id 1, got %d", task.ID)
	}
	if task.Title != "Learn Go" {
		t.Errorf("Expected trimmed title, got %q", task.Title)
	}
	if task.Completed {
		t.Error("Expected new task to be incomplete")
	}
	if !task.CreatedAt.Equal(startTime) || !task.UpdatedAt.Equal(startTime) {
		t.Errorf("Expected timestamps %v, got %v/%v", startTime, task.CreatedAt, task.UpdatedAt)
	}
}

func TestAddRejectsBlankTitle(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)
	repo.Add(ctx, "existing", "")

	tests := []struct {
		name        string
		title       string
		description string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", "x"},
		{"tabs and newlines", "\t\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Add(ctx, tt.title, tt.description)
			var validationErr *model.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if validationErr.Message != "title required" {
				t.Errorf("Expected reason %q, got %q", "title required", validationErr.Message)
			}

			tasks, _ := repo.ListAll(ctx)
			if len(tasks) != 1 {
				t.Errorf("Expected collection size 1, got %d", len(tasks))
			}
		})
	}

	// 失敗した追加で採番は進まない
	task, err := repo.Add(ctx, "next", "")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if task.ID != 2 {
		t.Errorf("Expected id 2 after failed adds, got %d", task.ID)
	}
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)
	added, _ := repo.Add(ctx, "A", "a")

	found, err := repo.Find(ctx, added.ID)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found.Title != "A" || found.Description != "a" {
		t.Errorf("Unexpected task: %+v", found)
	}

	_, err = repo.Find(ctx, 99)
	var nf *model.NotFoundError
	if !errors.As(err, &nf) || nf.ID != 99 {
		t.Errorf("Expected NotFoundError(99), got %v", err)
	}
}

func TestReturnedTasksAreCopies(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)
	added, _ := repo.Add(ctx, "A", "")

	added.Title = "changed"
	added.Completed = true

	tasks, _ := repo.ListAll(ctx)
	tasks[0].Title = "changed again"

	found, _ := repo.Find(ctx, 1)
	if found.Title != "A" || found.Completed {
		t.Errorf("Repository state was mutated from outside: %+v", found)
	}
}

func TestEdit(t *testing.T) {
	ctx := context.Background()
	repo, mock := newTestRepository(t)
	original, _ := repo.Add(ctx, "Old", "old")

	mock.Add(time.Minute)
	edited, err := repo.Edit(ctx, original.ID, " New ", "new")
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}

	if edited.Title != "New" || edited.Description != "new" {
		t.Errorf("Expected New/new, got %q/%q", edited.Title, edited.Description)
	}
	if !edited.UpdatedAt.Equal(startTime.Add(time.Minute)) {
		t.Errorf("Expected UpdatedAt to be refreshed, got %v", edited.UpdatedAt)
	}
	if edited.ID != original.ID || !edited.CreatedAt.Equal(original.CreatedAt) {
		t.Error("Edit must leave ID and CreatedAt unchanged")
	}

	found, _ := repo.Find(ctx, original.ID)
	if diff := cmp.Diff(edited, found); diff != "" {
		t.Errorf("Stored task differs from returned task (-returned +stored):\n%s", diff)
	}
}

func TestEditValidation(t *testing.T) {
	ctx := context.Background()
	repo, mock := newTestRepository(t)
	original, _ := repo.Add(ctx, "Keep", "keep")

	mock.Add(time.Minute)
	if _, err := repo.Edit(ctx, original.ID, "   ", "ignored"); !model.IsValidationError(err) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}

	found, _ := repo.Find(ctx, original.ID)
	if diff := cmp.Diff(original, found); diff != "" {
		t.Errorf("Task mutated by failed edit (-want +got):\n%s", diff)
	}
}

func TestEditNotFound(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)
	repo.Add(ctx, "A", "")
	before, _ := repo.ListAll(ctx)

	// 存在しないIDは空タイトルよりも先にNotFoundとして報告される
	for _, title := range []string{"new", ""} {
		_, err := repo.Edit(ctx, 42, title, "")
		if !errors.Is(err, model.ErrTaskNotFound) {
			t.Errorf("Expected ErrTaskNotFound for title %q, got %v", title, err)
		}
	}

	after, _ := repo.ListAll(ctx)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("Collection mutated (-before +after):\n%s", diff)
	}
}

func TestToggleCompleteTwice(t *testing.T) {
	ctx := context.Background()
	repo, mock := newTestRepository(t)
	task, _ := repo.Add(ctx, "A", "")

	mock.Add(time.Second)
	first, err := repo.ToggleComplete(ctx, task.ID)
	if err != nil {
		t.Fatalf("ToggleComplete failed: %v", err)
	}
	if !first.Completed {
		t.Error("Expected completed after first toggle")
	}
	if !first.UpdatedAt.Equal(startTime.Add(time.Second)) {
		t.Errorf("Expected UpdatedAt after first toggle, got %v", first.UpdatedAt)
	}

	mock.Add(time.Second)
	second, err := repo.ToggleComplete(ctx, task.ID)
	if err != nil {
		t.Fatalf("ToggleComplete failed: %v", err)
	}
	if second.Completed != task.Completed {
		t.Error("Expected original completed value after second toggle")
	}
	if !second.UpdatedAt.Equal(startTime.Add(2 * time.Second)) {
		t.Errorf("Expected UpdatedAt after second toggle, got %v", second.UpdatedAt)
	}

	if _, err := repo.ToggleComplete(ctx, 99); !errors.Is(err, model.ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)
	repo.Add(ctx, "A", "")
	repo.Add(ctx, "B", "")
	repo.Add(ctx, "C", "")

	if err := repo.Delete(ctx, 2); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	tasks, _ := repo.ListAll(ctx)
	want := []taskSummary{{1, "A", false}, {3, "C", false}}
	if diff := cmp.Diff(want, summarize(tasks)); diff != "" {
		t.Errorf("Unexpected tasks after delete (-want +got):\n%s", diff)
	}

	// 2回目の削除はNotFoundで、何も変わらない
	if err := repo.Delete(ctx, 2); !errors.Is(err, model.ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound on second delete, got %v", err)
	}
	again, _ := repo.ListAll(ctx)
	if diff := cmp.Diff(tasks, again); diff != "" {
		t.Errorf("Collection mutated by second delete (-want +got):\n%s", diff)
	}
}

func TestDeleteDoesNotReuseIDs(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)
	repo.Add(ctx, "A", "")
	last, _ := repo.Add(ctx, "B", "")

	repo.Delete(ctx, last.ID)
	next, err := repo.Add(ctx, "C", "")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if next.ID != 3 {
		t.Errorf("Expected id 3 (ids are never reused), got %d", next.ID)
	}
}

func TestClearCompleted(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)
	for _, title := range []string{"A", "B", "C", "D", "E"} {
		repo.Add(ctx, title, "")
	}
	repo.ToggleComplete(ctx, 2)
	repo.ToggleComplete(ctx, 4)
	repo.ToggleComplete(ctx, 5)

	n, err := repo.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 removed, got %d", n)
	}

	tasks, _ := repo.ListAll(ctx)
	want := []taskSummary{{1, "A", false}, {3, "C", false}}
	if diff := cmp.Diff(want, summarize(tasks)); diff != "" {
		t.Errorf("Unexpected remaining tasks (-want +got):\n%s", diff)
	}

	// 完了済みがなければ0を返し、何も変えない
	n, err = repo.ClearCompleted(ctx)
	if err != nil || n != 0 {
		t.Errorf("Expected 0 removed, got %d (err=%v)", n, err)
	}
	again, _ := repo.ListAll(ctx)
	if diff := cmp.Diff(tasks, again); diff != "" {
		t.Errorf("Collection mutated (-want +got):\n%s", diff)
	}
}

func TestListFilter(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)
	repo.Add(ctx, "A", "")
	repo.Add(ctx, "B", "")
	repo.Add(ctx, "C", "")
	repo.ToggleComplete(ctx, 2)

	done, _ := repo.List(ctx, model.OnlyCompleted(true))
	if diff := cmp.Diff([]taskSummary{{2, "B", true}}, summarize(done)); diff != "" {
		t.Errorf("Unexpected completed tasks (-want +got):\n%s", diff)
	}

	open, _ := repo.List(ctx, model.OnlyCompleted(false))
	if diff := cmp.Diff([]taskSummary{{1, "A", false}, {3, "C", false}}, summarize(open)); diff != "" {
		t.Errorf("Unexpected open tasks (-want +got):\n%s", diff)
	}

	total, completed, err := repo.Counts(ctx)
	if err != nil || total != 3 || completed != 1 {
		t.Errorf("Counts() = %d, %d, %v; want 3, 1, nil", total, completed, err)
	}
}

func TestEndToEnd(t *testing.T) {
	for name, newStore := range map[string]func() (store.TaskStore, error){
		"memory": func() (store.TaskStore, error) { return store.NewMemoryStore(), nil },
		"sqlite": func() (store.TaskStore, error) { return store.NewSQLiteStore(db.Migrate) },
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			st, err := newStore()
			if err != nil {
				t.Fatalf("Failed to create store: %v", err)
			}
			defer st.Close()

			repo, err := NewTaskRepository(ctx, st, clock.NewMock())
			if err != nil {
				t.Fatalf("Failed to create repository: %v", err)
			}

			a, _ := repo.Add(ctx, "A", "")
			b, _ := repo.Add(ctx, "B", "")
			if a.ID != 1 || b.ID != 2 {
				t.Fatalf("Expected ids 1 and 2, got %d and %d", a.ID, b.ID)
			}
			if _, err := repo.ToggleComplete(ctx, 1); err != nil {
				t.Fatalf("ToggleComplete failed: %v", err)
			}
			n, err := repo.ClearCompleted(ctx)
			if err != nil || n != 1 {
				t.Fatalf("ClearCompleted() = %d, %v; want 1, nil", n, err)
			}

			tasks, err := repo.ListAll(ctx)
			if err != nil {
				t.Fatalf("ListAll failed: %v", err)
			}
			if diff := cmp.Diff([]taskSummary{{2, "B", false}}, summarize(tasks)); diff != "" {
				t.Errorf("Unexpected final list (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCounterStartsAfterExistingTasks(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	existing, _ := model.LoadTask(7, "seeded", "", false, startTime, startTime)
	st.InsertTask(ctx, existing)

	repo, err := NewTaskRepository(ctx, st, nil)
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	task, _ := repo.Add(ctx, "next", "")
	if task.ID != 8 {
		t.Errorf("Expected id 8, got %d", task.ID)
	}
}

func TestConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			repo.Add(ctx, "concurrent", "")
		}()
	}
	wg.Wait()

	tasks, _ := repo.ListAll(ctx)
	if len(tasks) != 50 {
		t.Fatalf("Expected 50 tasks, got %d", len(tasks))
	}
	for i, task := range tasks {
		if task.ID != int64(i+1) {
			t.Errorf("Expected id %d at position %d, got %d", i+1, i, task.ID)
		}
	}
}
