package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

var repoRoot string

func init() {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return
	}
	dir := filepath.Dir(file)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			repoRoot = dir
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func projectRoot(t *testing.T) string {
	t.Helper()
	if repoRoot == "" {
		t.Fatal("无法定位项目根目录")
	}
	return repoRoot
}

func configFixture(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(projectRoot(t), "internal", "config", "testdata", name)
}

// useBufferWriters 在测试期间把 stdOut/stdErr 替换为内存缓冲。
func useBufferWriters(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	prevOut, prevErr := stdOut, stdErr
	stdOut, stdErr = outBuf, errBuf

	t.Cleanup(func() {
		stdOut, stdErr = prevOut, prevErr
	})
	return outBuf, errBuf
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	file := filepath.Join(dir, name)
	if err := os.WriteFile(file, []byte(strings.TrimSpace(content)+"\n"), 0o600); err != nil {
		t.Fatalf("写入 %s 失败: %v", name, err)
	}
	return file
}

// writeWorkspace 生成一份引用 CO2 测试文档的配置与规则文件，返回配置路径。
func writeWorkspace(t *testing.T, rules string, extra string) string {
	t.Helper()
	dir := t.TempDir()
	rulePath := writeFile(t, dir, "rules.yml", rules)
	source := filepath.Join(projectRoot(t), "internal", "thermodb", "testdata", "co2.yml")
	return writeFile(t, dir, "config.toml", fmt.Sprintf(`
LogLevel = "warn"
StoragePath = %q
RuleFile = %q
%s

[[Component]]
Name = "CO2"
Source = %q
`, filepath.Join(dir, "storage"), rulePath, extra, source))
}
