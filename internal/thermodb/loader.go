package thermodb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultCacheTTL 是解析结果在内存中的默认保留时间。
	DefaultCacheTTL = 10 * time.Minute
	// DefaultWorkers 是 LoadAll 的默认并发度。
	DefaultWorkers = 4
)

// Loader 负责从磁盘加载 thermodb 文档，并按“绝对路径 + 修改时间”缓存解析结果，
// 文件被修改后会自动重新解析。
type Loader struct {
	cache   *gocache.Cache
	workers int
}

// NewLoader 创建 Loader；ttl/workers 非正数时使用默认值。
func NewLoader(ttl time.Duration, workers int) *Loader {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Loader{
		cache:   gocache.New(ttl, 2*ttl),
		workers: workers,
	}
}

// Load 读取并解析单个文档。
func (l *Loader) Load(path string) (*FileReference, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve thermodb path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat thermodb %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("thermodb %s is a directory", path)
	}

	key := abs + "@" + strconv.FormatInt(info.ModTime().UnixNano(), 10)
	if cached, ok := l.cache.Get(key); ok {
		if ref, ok := cached.(*FileReference); ok {
			return ref, nil
		}
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read thermodb %s: %w", path, err)
	}
	ref, err := Parse(content, path)
	if err != nil {
		return nil, err
	}
	l.cache.SetDefault(key, ref)
	return ref, nil
}

// LoadAll 并发加载多个文档，结果顺序与 paths 一致；任一失败即返回首个错误。
func (l *Loader) LoadAll(ctx context.Context, paths []string) ([]*FileReference, error) {
	refs := make([]*FileReference, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ref, err := l.Load(path)
			if err != nil {
				return err
			}
			refs[i] = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

// Cached 返回当前缓存条目数，便于诊断。
func (l *Loader) Cached() int {
	return l.cache.ItemCount()
}
