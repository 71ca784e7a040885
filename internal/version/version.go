package version

import "fmt"

// Version/Commit 可在构建时通过 -ldflags 注入。
var (
	Version = "0.1.0"
	Commit  = "dev"
)

// Full 返回 CLI 打印用的版本字符串。
func Full() string {
	return fmt.Sprintf("thermolink %s (%s)", Version, Commit)
}
