// Package seed は起動時に投入するサンプルタスクを提供します。
package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/stsysd/tasuku/model"
	"gopkg.in/yaml.v3"
)

// Task は投入するタスクの定義です。
type Task struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Completed   bool   `yaml:"completed"`
}

// File はシードファイルの形式です。
type File struct {
	Tasks []Task `yaml:"tasks"`
}

// Repository はシード投入に必要なリポジトリ操作です。
type Repository interface {
	Add(ctx context.Context, title, description string) (*model.Task, error)
	ToggleComplete(ctx context.Context, id int64) (*model.Task, error)
}

// Defaults は組み込みのサンプルタスク3件を返します。3件目は完了済みです。
func Defaults() []Task {
	return []Task{
		{Title: "Learn Go", Description: "Build a todo app with net/http and html/template"},
		{Title: "Buy groceries", Description: "Milk, eggs, bread, and fruits"},
		{Title: "Exercise", Description: "30 minutes of cardio", Completed: true},
	}
}

// LoadFile はYAMLファイルからシードを読み込みます。
func LoadFile(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	return f.Tasks, nil
}

// Apply はシードを通常の追加操作で投入し、作成されたタスクを返します。
// 完了済みのものは追加後に完了状態へ切り替えます。
func Apply(ctx context.Context, repo Repository, tasks []Task) ([]*model.Task, error) {
	created := make([]*model.Task, 0, len(tasks))
	for i, s := range tasks {
		task, err := repo.Add(ctx, s.Title, s.Description)
		if err != nil {
			return created, fmt.Errorf("seed #%d: %w", i+1, err)
		}
		if s.Completed {
			task, err = repo.ToggleComplete(ctx, task.ID)
			if err != nil {
				return created, fmt.Errorf("seed #%d: %w", i+1, err)
			}
		}
		created = append(created, task)
	}
	return created, nil
}
