package sandbox

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecker_IsPathInProject(t *testing.T) {
	root := t.TempDir()

	testCases := []struct {
		description string
		path        string
		expect      bool
	}{
		{
			description: "relative file anchors to root",
			path:        "main.py",
			expect:      true,
		},
		{
			description: "nested relative path",
			path:        filepath.Join("src", "app", "main.py"),
			expect:      true,
		},
		{
			description: "absolute path inside root",
			path:        filepath.Join(root, "notes.txt"),
			expect:      true,
		},
		{
			description: "root itself",
			path:        root,
			expect:      true,
		},
		{
			description: "parent escape",
			path:        filepath.Join("..", "outside.txt"),
			expect:      false,
		},
		{
			description: "deep parent escape",
			path:        filepath.Join("sub", "..", "..", "outside.txt"),
			expect:      false,
		},
		{
			description: "absolute path outside root",
			path:        filepath.Dir(root),
			expect:      false,
		},
		{
			description: "home shorthand",
			path:        "~/secrets",
			expect:      false,
		},
		{
			description: "null byte",
			path:        "file\x00name",
			expect:      false,
		},
	}

	checker := New(root)
	for _, testCase := range testCases {
		actual := checker.IsPathInProject(testCase.path)
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestChecker_NoRootFailsClosed(t *testing.T) {
	checker := New("")
	assert.False(t, checker.IsPathInProject("anything.txt"))
	_, err := checker.ResolveInProject("anything.txt")
	assert.Error(t, err)
}

func TestChecker_SetRootRebinds(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	checker := New(first)
	assert.True(t, checker.IsPathInProject(filepath.Join(first, "a.txt")))

	err := checker.SetRoot(second)
	assert.Nil(t, err)
	assert.False(t, checker.IsPathInProject(filepath.Join(first, "a.txt")))
	assert.True(t, checker.IsPathInProject(filepath.Join(second, "a.txt")))
}

func TestChecker_ResolveInProject(t *testing.T) {
	root := t.TempDir()
	checker := New(root)

	resolved, err := checker.ResolveInProject(filepath.Join("sub", "file.txt"))
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "sub", "file.txt"), resolved)

	_, err = checker.ResolveInProject(filepath.Join("..", "file.txt"))
	assert.Error(t, err)
}
