// Package export はタスク一覧をJSON・CSV・PDFで書き出す機能を提供します。
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/stsysd/tasuku/model"
)

// Lister はエクスポート対象のタスクを取得するインターフェースです。
type Lister interface {
	List(ctx context.Context, filter *model.CompletionFilter) ([]*model.Task, error)
}

// Exporter はタスク一覧を各形式に変換します。
type Exporter struct {
	tasks Lister
}

// NewExporter は新しいExporterを作成します。
func NewExporter(tasks Lister) *Exporter {
	return &Exporter{tasks: tasks}
}

// ContentType は形式に対応するMIMEタイプを返します。
func ContentType(format *model.ExportFormat) string {
	switch format.String() {
	case model.ExportCSV:
		return "text/csv; charset=utf-8"
	case model.ExportPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

// Export はフィルタに一致するタスクを指定形式で書き出します。
func (e *Exporter) Export(ctx context.Context, format *model.ExportFormat, filter *model.CompletionFilter) ([]byte, error) {
	tasks, err := e.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	switch format.String() {
	case model.ExportJSON:
		return json.MarshalIndent(tasks, "", "  ")
	case model.ExportCSV:
		return toCSV(tasks)
	case model.ExportPDF:
		return toPDF(tasks)
	default:
		return nil, model.NewValidationError(fmt.Sprintf("unsupported export format: %s", format))
	}
}

var csvHeader = []string{"id", "title", "description", "completed", "created_at", "updated_at"}

func toCSV(tasks []*model.Task) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		record := []string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Description,
			strconv.FormatBool(t.Completed),
			t.CreatedAt.Format(time.RFC3339),
			t.UpdatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toPDF(tasks []*model.Task) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// コアフォントはcp1252なので、UTF-8の文字列を変換してから書き込む
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task List")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	if len(tasks) == 0 {
		pdf.Cell(40, 6, "No tasks")
	}
	for _, t := range tasks {
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s #%d %s", mark, t.ID, t.Title)
		if t.Description != "" {
			line += " - " + t.Description
		}
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
