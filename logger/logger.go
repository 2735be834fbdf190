// Package logger は構造化ログの初期化を提供します。
package logger

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// New はJSON形式の構造化ロガーを生成します。
// レベルが解釈できない場合はinfoになります。
func New(out io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	// JSON形式で出力
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	return l
}

// ForService はservice欄を付与したエントリを返します。
func ForService(l *logrus.Logger, service string) *logrus.Entry {
	return l.WithField("service", service)
}

// WithRequestID はrequest_id欄を付与したエントリを返します。
func WithRequestID(entry *logrus.Entry, requestID string) *logrus.Entry {
	if requestID == "" {
		return entry
	}
	return entry.WithField("request_id", requestID)
}
