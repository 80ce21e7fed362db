// Package activity keeps a daily JSONL journal of the releases a scan
// reported.
package activity

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	filePrefix = "activity-"
	fileSuffix = ".jsonl"
	dateLayout = "2006-01-02"
)

// Entry is one reported release.
type Entry struct {
	Timestamp  time.Time `json:"ts"`
	Root       string    `json:"root"`
	Release    string    `json:"release"`
	DirName    string    `json:"dir_name,omitempty"`
	IMDbID     string    `json:"imdb_id,omitempty"`
	Title      string    `json:"title,omitempty"`
	Year       int       `json:"year,omitempty"`
	Quality    string    `json:"quality,omitempty"`
	Group      string    `json:"group,omitempty"`
	SizeMB     float64   `json:"size_mb"`
	Files      int       `json:"files"`
	DVD        bool      `json:"dvd,omitempty"`
	Ignored    bool      `json:"ignored,omitempty"`
	Identified bool      `json:"identified"`
}

// Logger appends entries to activity-YYYY-MM-DD.jsonl under its directory.
type Logger struct {
	mu          sync.Mutex
	dir         string
	now         func() time.Time
	currentFile *os.File
	currentDate string
}

// NewLogger creates dir if needed and returns a journal writing into it.
func NewLogger(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating activity dir: %w", err)
	}
	return &Logger{dir: dir, now: time.Now}, nil
}

// Log stamps entry and appends it to today's file.
func (l *Logger) Log(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry.Timestamp = now

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	today := now.Format(dateLayout)
	if l.currentDate != today || l.currentFile == nil {
		if err := l.rotateFile(today); err != nil {
			return err
		}
	}

	_, err = l.currentFile.Write(append(line, '\n'))
	return err
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentFile == nil {
		return nil
	}
	err := l.currentFile.Close()
	l.currentFile = nil
	return err
}

// Dir returns the journal directory.
func (l *Logger) Dir() string {
	return l.dir
}

// PruneOld removes journal files older than retentionDays. Non-positive
// retention keeps everything.
func (l *Logger) PruneOld(retentionDays int) (removed int, err error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := l.now().AddDate(0, 0, -retentionDays)

	files, err := l.journalFiles()
	if err != nil {
		return 0, err
	}

	var errs []error
	for _, f := range files {
		if !f.date.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(l.dir, f.name)); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

func (l *Logger) rotateFile(date string) error {
	if l.currentFile != nil {
		l.currentFile.Close()
		l.currentFile = nil
	}

	filePath := filepath.Join(l.dir, filePrefix+date+fileSuffix)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	l.currentFile = file
	l.currentDate = date
	return nil
}

type journalFile struct {
	name string
	date time.Time
}

// journalFiles lists journal files, newest first.
func (l *Logger) journalFiles() ([]journalFile, error) {
	dirEntries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, err
	}

	var files []journalFile
	for _, e := range dirEntries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		date, err := time.ParseInLocation(dateLayout, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix), time.Local)
		if err != nil {
			continue
		}
		files = append(files, journalFile{name: name, date: date})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].date.After(files[j].date) })
	return files, nil
}

// Recent returns up to limit entries, newest first. Malformed lines are
// skipped.
func (l *Logger) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	files, err := l.journalFiles()
	if err != nil {
		return nil, err
	}

	var results []Entry
	for _, f := range files {
		entries, err := readEntries(filepath.Join(l.dir, f.name))
		if err != nil {
			continue
		}
		for i := len(entries) - 1; i >= 0; i-- {
			results = append(results, entries[i])
			if len(results) >= limit {
				return results, nil
			}
		}
	}
	return results, nil
}

func readEntries(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []Entry
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, sc.Err()
}
