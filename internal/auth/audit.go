// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package auth

import (
	"encoding/csv"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"
)

// AuditStatus is the outcome recorded for a login attempt.
type AuditStatus string

// Attempt outcomes as written to the log.
const (
	StatusSuccess AuditStatus = "SUCCESS"
	StatusFailure AuditStatus = "FAILURE"
)

// auditTimeFormat is the timestamp layout of audit rows.
const auditTimeFormat = "2006-01-02 15:04:05"

// auditHeader is the CSV header row, written once when the file is created.
var auditHeader = []string{"timestamp", "username", "status", "origin"}

// AuditEntry is one immutable row of the login audit log.
type AuditEntry struct {
	Timestamp time.Time
	Username  string
	Status    AuditStatus
	Origin    string
}

// AuditLog is an append-only CSV record of login attempts. Appends are
// best-effort: failures are logged operationally and never surfaced, so
// auditing can never block or fail the login path it observes.
type AuditLog struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// NewAuditLog creates an audit log appending to path.
func NewAuditLog(path string, logger *slog.Logger) *AuditLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLog{path: path, logger: logger, now: time.Now}
}

// Record appends one attempt row, creating the file with a header row when
// absent. Errors are logged and swallowed.
func (l *AuditLog) Record(username string, status AuditStatus, origin string) {
	_, statErr := os.Stat(l.path)
	writeHeader := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		l.logger.Warn("audit log append failed", "path", l.path, "error", err)
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(auditHeader); err != nil {
			l.logger.Warn("audit log header write failed", "path", l.path, "error", err)
			return
		}
	}

	row := []string{
		l.now().Format(auditTimeFormat),
		username,
		string(status),
		origin,
	}
	if err := w.Write(row); err != nil {
		l.logger.Warn("audit log append failed", "path", l.path, "error", err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		l.logger.Warn("audit log flush failed", "path", l.path, "error", err)
	}
}

// RecentFailures returns the FAILURE rows for origin among the last limit
// physical rows of the log. Only the tail is inspected: interleaved
// successes count against the window, so heavy success traffic can push
// older failures out of view.
func (l *AuditLog) RecentFailures(origin string, limit int) []AuditEntry {
	f, err := os.Open(l.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("audit log read failed", "path", l.path, "error", err)
		}
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(auditHeader)
	rows, err := r.ReadAll()
	if err != nil {
		l.logger.Warn("audit log read failed", "path", l.path, "error", err)
		return nil
	}
	if len(rows) > 0 && rows[0][0] == auditHeader[0] {
		rows = rows[1:]
	}

	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}

	var failures []AuditEntry
	for _, row := range rows {
		if row[3] != origin || AuditStatus(row[2]) != StatusFailure {
			continue
		}
		ts, parseErr := time.ParseInLocation(auditTimeFormat, row[0], time.Local)
		if parseErr != nil {
			l.logger.Warn("audit row has malformed timestamp", "row", row[0])
		}
		failures = append(failures, AuditEntry{
			Timestamp: ts,
			Username:  row[1],
			Status:    StatusFailure,
			Origin:    row[3],
		})
	}
	return failures
}
