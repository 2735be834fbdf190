// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"errors"
	"fmt"
)

// センチネルエラー - タスクが見つからない場合
var ErrTaskNotFound = errors.New("task not found")

// ErrTitleRequired はタイトル未入力時のメッセージです。
const ErrTitleRequired = "title required"

// ValidationError はバリデーションエラーを表す型
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError はValidationErrorを生成するヘルパー関数
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// NotFoundError は指定IDのタスクが存在しないことを表す型
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %d not found", e.ID)
}

// Is は errors.Is(err, ErrTaskNotFound) を成立させます。
func (e *NotFoundError) Is(target error) bool {
	return target == ErrTaskNotFound
}

// NewNotFoundError はNotFoundErrorを生成するヘルパー関数
func NewNotFoundError(id int64) error {
	return &NotFoundError{ID: id}
}

// IsValidationError はerrがValidationErrorかどうかを判定します。
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
