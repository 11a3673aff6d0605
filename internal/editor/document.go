// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package editor

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Sentinel errors for document operations.
var (
	ErrDocumentExists   = errors.New("document already exists")
	ErrDocumentNotFound = errors.New("document not found")
)

// backupKeepCount is how many backups per cleanup survive in the document
// backup directory. Unlike user-store backups, document backups are capped.
const backupKeepCount = 10

// DocumentInfo describes one document on disk.
type DocumentInfo struct {
	Path       string
	Name       string
	Size       int64
	ModifiedAt time.Time
}

// DocumentStats aggregates the document directory.
type DocumentStats struct {
	Count     int
	TotalSize int64
	AvgSize   int64
	Oldest    time.Time
	Newest    time.Time
}

// DocumentManager owns the documents directory: plain .txt files named
// doc_<id>.txt plus whatever users rename them to. Saves take a backup of
// the previous content first.
type DocumentManager struct {
	docsDir    string
	backupsDir string
	logger     *slog.Logger
	now        func() time.Time
}

// NewDocumentManager creates a manager over docsDir, keeping pre-save
// backups under backupsDir.
func NewDocumentManager(docsDir, backupsDir string, logger *slog.Logger) *DocumentManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentManager{
		docsDir:    docsDir,
		backupsDir: backupsDir,
		logger:     logger,
		now:        time.Now,
	}
}

// Create writes a new document with the given content and returns its path.
func (m *DocumentManager) Create(content string) (string, error) {
	name := "doc_" + strings.ToLower(ulid.Make().String()) + ".txt"
	path := filepath.Join(m.docsDir, name)

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", oops.Code("DOC_CREATE_FAILED").With("path", path).Wrap(err)
	}
	m.logger.Debug("document created", "path", path, "bytes", len(content))
	return path, nil
}

// Save overwrites path with content. When the file already exists its
// previous content is backed up first; a failed backup aborts the save.
func (m *DocumentManager) Save(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		if err := m.backup(path); err != nil {
			return err
		}
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return oops.Code("DOC_SAVE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}

// Load returns the content of the document at path.
func (m *DocumentManager) Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", oops.Code("DOC_NOT_FOUND").With("path", path).Wrap(ErrDocumentNotFound)
		}
		return "", oops.Code("DOC_LOAD_FAILED").With("path", path).Wrap(err)
	}
	return string(data), nil
}

// Delete removes the document at path.
func (m *DocumentManager) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return oops.Code("DOC_NOT_FOUND").With("path", path).Wrap(ErrDocumentNotFound)
		}
		return oops.Code("DOC_DELETE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}

// Rename moves the document at oldPath to newName inside the same
// directory, appending .txt when missing. It refuses to overwrite an
// existing document.
func (m *DocumentManager) Rename(oldPath, newName string) (string, error) {
	if !strings.HasSuffix(newName, ".txt") {
		newName += ".txt"
	}
	newPath := filepath.Join(filepath.Dir(oldPath), newName)

	if _, err := os.Stat(newPath); err == nil {
		return "", oops.Code("DOC_EXISTS").With("path", newPath).Wrap(ErrDocumentExists)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", oops.Code("DOC_NOT_FOUND").With("path", oldPath).Wrap(ErrDocumentNotFound)
		}
		return "", oops.Code("DOC_RENAME_FAILED").With("from", oldPath).With("to", newPath).Wrap(err)
	}
	return newPath, nil
}

// List returns the .txt documents whose names match pattern, newest first.
// An empty pattern matches everything. Unreadable entries are logged and
// skipped.
func (m *DocumentManager) List(pattern string) ([]DocumentInfo, error) {
	var matcher glob.Glob
	if pattern != "" {
		var err error
		matcher, err = glob.Compile(pattern)
		if err != nil {
			return nil, oops.Code("DOC_BAD_PATTERN").With("pattern", pattern).Wrap(err)
		}
	}

	paths, err := filepath.Glob(filepath.Join(m.docsDir, "*.txt"))
	if err != nil {
		return nil, oops.Code("DOC_LIST_FAILED").With("dir", m.docsDir).Wrap(err)
	}

	docs := make([]DocumentInfo, 0, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)
		if matcher != nil && !matcher.Match(name) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			m.logger.Warn("skipping unreadable document", "path", path, "error", err)
			continue
		}
		docs = append(docs, DocumentInfo{
			Path:       path,
			Name:       name,
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ModifiedAt.After(docs[j].ModifiedAt)
	})
	return docs, nil
}

// Stats aggregates size and age over all documents.
func (m *DocumentManager) Stats() (DocumentStats, error) {
	docs, err := m.List("")
	if err != nil {
		return DocumentStats{}, err
	}

	stats := DocumentStats{Count: len(docs)}
	for _, doc := range docs {
		stats.TotalSize += doc.Size
	}
	if len(docs) > 0 {
		stats.AvgSize = stats.TotalSize / int64(len(docs))
		stats.Newest = docs[0].ModifiedAt
		stats.Oldest = docs[len(docs)-1].ModifiedAt
	}
	return stats, nil
}

// backup copies path into the backup directory as <name>.backup_<ts> and
// prunes old backups past the retention cap.
func (m *DocumentManager) backup(path string) error {
	if err := os.MkdirAll(m.backupsDir, 0o700); err != nil {
		return oops.Code("DOC_BACKUP_FAILED").With("dir", m.backupsDir).Wrap(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return oops.Code("DOC_BACKUP_FAILED").With("path", path).Wrap(err)
	}

	name := filepath.Base(path) + ".backup_" + m.now().Format("20060102_150405")
	if err := os.WriteFile(filepath.Join(m.backupsDir, name), data, 0o600); err != nil {
		return oops.Code("DOC_BACKUP_FAILED").With("path", name).Wrap(err)
	}

	m.cleanupBackups()
	return nil
}

// cleanupBackups removes the oldest backups past the retention cap. The
// timestamp suffix sorts lexicographically, so name order is age order per
// document; across documents the cap applies to the directory as a whole.
func (m *DocumentManager) cleanupBackups() {
	backups, err := filepath.Glob(filepath.Join(m.backupsDir, "*.backup_*"))
	if err != nil || len(backups) <= backupKeepCount {
		return
	}
	sort.Strings(backups)
	for _, old := range backups[:len(backups)-backupKeepCount] {
		if err := os.Remove(old); err != nil {
			m.logger.Warn("could not remove old backup", "path", old, "error", err)
		}
	}
}
