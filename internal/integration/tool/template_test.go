package tool

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileVars(t *testing.T) {
	dir := t.TempDir()
	v := newFileVars(filepath.Join(dir, "main.cpp"))

	require.Equal(t, filepath.Join(dir, "main.cpp"), v.path)
	require.Equal(t, "main", v.stem)
	require.Equal(t, dir, v.dir)

	require.Equal(t, fileVars{}, newFileVars(""))
}

func TestExpand(t *testing.T) {
	t.Setenv("ACC_TEST_CXX", "clang++")
	v := fileVars{path: "/src/a.cpp", stem: "a", dir: "/src"}

	tests := []struct {
		in   string
		want string
	}{
		{"$FILE_PATH", "/src/a.cpp"},
		{"${FILE_STEM}", "a"},
		{"-o${FILE_DIR}/${FILE_STEM}", "-o/src/a"},
		{"${ACC_TEST_CXX}", "clang++"},
		{"${ACC_TEST_CC:gcc}", "gcc"},
		{"${ACC_TEST_CXX:g++}", "clang++"},
		{"$ACC_TEST_UNSET", "$ACC_TEST_UNSET"},
		{"${ACC_TEST_UNSET}", "${ACC_TEST_UNSET}"},
		{"${ACC_TEST_UNSET:}", ""},
		{"plain", "plain"},
		{"$$", "$$"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, v.expand(tt.in))
		})
	}
}

func TestExpandAllCopies(t *testing.T) {
	v := fileVars{path: "/src/a.rs", stem: "a", dir: "/src"}
	args := []string{"rustc", "$FILE_PATH"}

	got := v.expandAll(args)

	require.Equal(t, []string{"rustc", "/src/a.rs"}, got)
	require.Equal(t, "$FILE_PATH", args[1])
}

func TestEnviron(t *testing.T) {
	v := fileVars{path: "/src/a.py", stem: "a", dir: "/src"}
	env := v.environ()

	require.Contains(t, env, "FILE_PATH=/src/a.py")
	require.Contains(t, env, "FILE_STEM=a")
	require.Contains(t, env, "FILE_DIR=/src")

	require.NotContains(t, fileVars{}.environ(), "FILE_PATH=")
}
