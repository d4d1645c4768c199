package driver

import "strings"

// Literate implements the `.l`-suffixed file convention spec.md §6
// describes: only text between a pair of `---` fence lines is kept,
// so a literate source file can carry surrounding prose commentary
// that the lexer never sees.
func Literate(source string) string {
	lines := strings.Split(source, "\n")
	var out []string
	inFence := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "---" {
			inFence = !inFence
			continue
		}
		if inFence {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// IsLiterate reports whether filename's extension marks it as
// literate-mode source (spec.md §6: "files ending in l").
func IsLiterate(filename string) bool {
	return strings.HasSuffix(filename, ".l") || strings.HasSuffix(filename, ".mt.l")
}
