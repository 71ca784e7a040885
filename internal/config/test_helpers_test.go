package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testConfigPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join("testdata", name)
}

// writeTempConfig 写入全局段并为每个组分名生成 [[Component]] 段，Source 统一为 <name>.yml。
func writeTempConfig(t *testing.T, globals string, components ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(strings.TrimSpace(globals))
	b.WriteString("\n")
	for _, name := range components {
		fmt.Fprintf(&b, "\n[[Component]]\nName = %q\nSource = %q\n", name, strings.ToLower(name)+".yml")
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}
