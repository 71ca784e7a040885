package server

import (
	"context"
	"errors"
	"sync"

	"github.com/thermolink/thermolink/internal/hub"
)

// Guard 串行化对同一个 Hub 的访问：读操作与构建共享读锁，写操作独占。
type Guard struct {
	mu  sync.RWMutex
	hub *hub.Hub
}

// NewGuard 包装已配置好的 Hub。
func NewGuard(h *hub.Hub) (*Guard, error) {
	if h == nil {
		return nil, errors.New("hub is required")
	}
	return &Guard{hub: h}, nil
}

// Read 在读锁下执行 fn，fn 不得修改 Hub。
func (g *Guard) Read(fn func(*hub.Hub) error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fn(g.hub)
}

// Write 在写锁下执行 fn。
func (g *Guard) Write(fn func(*hub.Hub) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.hub)
}

// Build 在读锁下构建，多个构建可以并发执行。
func (g *Guard) Build(ctx context.Context) (*hub.DataSource, *hub.EquationSource, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hub.Build(ctx)
}
