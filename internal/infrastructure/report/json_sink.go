package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"NewsDedup/internal/domain"
	"NewsDedup/internal/ports"
)

// JSONSink writes reports as indented JSON files into a directory.
type JSONSink struct {
	dir    string
	logger *slog.Logger
}

var _ ports.ReportSink = (*JSONSink)(nil)

// NewJSONSink targets dir; an empty dir means the working directory.
func NewJSONSink(dir string, logger *slog.Logger) *JSONSink {
	if dir == "" {
		dir = "."
	}
	return &JSONSink{dir: dir, logger: logger}
}

// WriteReport encodes report into dir/name, replacing any previous file.
// The file is written next to its destination and renamed into place.
func (s *JSONSink) WriteReport(ctx context.Context, name string, report any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.NewFailure(domain.FailureReportSink, "write report", err)
	}
	if name == "" || filepath.Base(name) != name {
		return "", domain.NewFailure(domain.FailureReportSink, "write report",
			fmt.Errorf("invalid report file name %q", name))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(report); err != nil {
		return "", domain.NewFailure(domain.FailureReportSink, "encode report", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", domain.NewFailure(domain.FailureReportSink, "create report dir", err)
	}

	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return "", domain.NewFailure(domain.FailureReportSink, "create report file", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return "", domain.NewFailure(domain.FailureReportSink, "write report file", err)
	}
	if err := tmp.Close(); err != nil {
		return "", domain.NewFailure(domain.FailureReportSink, "close report file", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", domain.NewFailure(domain.FailureReportSink, "rename report file", err)
	}

	if s.logger != nil {
		s.logger.Info("report saved", "path", path)
	}
	return path, nil
}
