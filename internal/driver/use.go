package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// useDirective matches `use "path";` at the start of a (possibly
// indented) line, capturing the quoted path.
var useDirective = regexp.MustCompile(`(?m)^[ \t]*use\s+"([^"]+)"\s*;[ \t]*$`)

// ResolveUse is the compile-time prescan spec.md §9 recommends in place
// of a runtime OP_USE: every `use "path";` line is replaced in place by
// the (recursively resolved) contents of that file, relative to dir.
// Cycles are rejected rather than looped forever.
func ResolveUse(source, dir string) (string, error) {
	return resolveUse(source, dir, map[string]bool{})
}

func resolveUse(source, dir string, visiting map[string]bool) (string, error) {
	var resolveErr error
	result := useDirective.ReplaceAllStringFunc(source, func(match string) string {
		if resolveErr != nil {
			return match
		}
		sub := useDirective.FindStringSubmatch(match)
		path := sub[1]
		full := filepath.Join(dir, path)
		abs, err := filepath.Abs(full)
		if err != nil {
			resolveErr = err
			return match
		}
		if visiting[abs] {
			resolveErr = fmt.Errorf("cyclic use of %q", path)
			return match
		}
		data, err := os.ReadFile(full)
		if err != nil {
			resolveErr = fmt.Errorf("use %q: %w", path, err)
			return match
		}
		visiting[abs] = true
		expanded, err := resolveUse(string(data), filepath.Dir(full), visiting)
		delete(visiting, abs)
		if err != nil {
			resolveErr = err
			return match
		}
		return expanded
	})
	if resolveErr != nil {
		return "", resolveErr
	}
	return result, nil
}
