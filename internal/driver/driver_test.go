package driver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ramsaycarslaw/mt/internal/driver"
)

func TestLiterateKeepsOnlyFencedContent(t *testing.T) {
	source := "This is prose explaining the example.\n---\nprint 1;\n---\nMore prose afterwards.\n"
	require.Equal(t, "print 1;", driver.Literate(source))
}

func TestIsLiterateDetectsDotLSuffix(t *testing.T) {
	require.True(t, driver.IsLiterate("tutorial.l"))
	require.False(t, driver.IsLiterate("program.mt"))
}

func TestResolveUseInlinesReferencedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "helper.mt"), []byte(`fn helper() { return 1; }`), 0o644))

	main := `use "helper.mt";
print helper();`
	resolved, err := driver.ResolveUse(main, dir)
	require.NoError(t, err)
	require.Contains(t, resolved, "fn helper()")
}

func TestResolveUseRejectsCycles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mt"), []byte(`use "b.mt";`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.mt"), []byte(`use "a.mt";`), 0o644))

	_, err := driver.ResolveUse(`use "a.mt";`, dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cyclic")
}
