package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound 表示指定名称的报告不存在。
var ErrNotFound = errors.New("report not found")

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

const extension = ".json"

// Store 将报告保存在 basePath 下，布局为 <basePath>/<name>.json。
type Store struct {
	basePath string

	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

// Entry 描述一次写入结果。
type Entry struct {
	Name      string `json:"name"`
	FilePath  string `json:"file_path"`
	SizeBytes int64  `json:"size_bytes"`
}

// NewStore 以 basePath 为根目录创建报告存储，目录不存在时自动创建。
func NewStore(basePath string) (*Store, error) {
	if basePath == "" {
		return nil, errors.New("storage path required")
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage path: %w", err)
	}
	return &Store{basePath: abs, locks: make(map[string]*entryLock)}, nil
}

// Save 原子写入报告。
func (s *Store) Save(ctx context.Context, name string, r Report) (*Entry, error) {
	filePath, err := s.path(name)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	unlock := s.lockEntry(name)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tempFile, err := os.CreateTemp(s.basePath, ".report-*")
	if err != nil {
		return nil, err
	}
	tempName := tempFile.Name()

	_, err = tempFile.Write(body)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempName)
		return nil, err
	}
	if err := os.Rename(tempName, filePath); err != nil {
		os.Remove(tempName)
		return nil, err
	}

	return &Entry{Name: name, FilePath: filePath, SizeBytes: int64(len(body))}, nil
}

// Load 读取报告，不存在时返回 ErrNotFound。
func (s *Store) Load(ctx context.Context, name string) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	filePath, err := s.path(name)
	if err != nil {
		return Report{}, err
	}
	body, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Report{}, ErrNotFound
		}
		return Report{}, err
	}
	var r Report
	if err := json.Unmarshal(body, &r); err != nil {
		return Report{}, fmt.Errorf("decode report %s: %w", name, err)
	}
	return r, nil
}

// Remove 删除报告，不存在时为空操作。
func (s *Store) Remove(name string) error {
	filePath, err := s.path(name)
	if err != nil {
		return err
	}
	unlock := s.lockEntry(name)
	defer unlock()
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// List 返回已保存报告的名称（已排序）。
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), extension) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), extension)
		if namePattern.MatchString(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) lockEntry(name string) func() {
	s.mu.Lock()
	lock := s.locks[name]
	if lock == nil {
		lock = &entryLock{}
		s.locks[name] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, name)
		}
		s.mu.Unlock()
	}
}

func (s *Store) path(name string) (string, error) {
	if !namePattern.MatchString(name) {
		return "", fmt.Errorf("invalid report name %q", name)
	}
	return filepath.Join(s.basePath, name+extension), nil
}
