package changelogbump

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSignature() *object.Signature {
	return &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()}
}

// initRepo creates a repository with the given files committed.
func initRepo(t *testing.T, files map[string]string) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
		_, err := wt.Add(name)
		require.NoError(t, err)
	}
	_, err = wt.Commit("Initial commit", &git.CommitOptions{Author: testSignature()})
	require.NoError(t, err)
	return dir, repo
}

func TestCheckClean(t *testing.T) {
	dir, _ := initRepo(t, map[string]string{"CHANGELOG.md": "# Changelog\n", "pyproject.toml": "[project]\nversion = \"1.0.0\"\n"})
	changelog := filepath.Join(dir, "CHANGELOG.md")

	require.NoError(t, CheckClean(dir, nil))

	require.NoError(t, os.WriteFile(changelog, []byte("# Changelog\n\nedited\n"), 0o644))
	assert.NoError(t, CheckClean(dir, []string{changelog}))

	err := CheckClean(dir, nil)
	assert.True(t, errors.Is(err, ErrDirtyWorktree), "got %v", err)
	assert.Contains(t, err.Error(), "CHANGELOG.md")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("untracked"), 0o644))
	err = CheckClean(dir, []string{changelog})
	assert.True(t, errors.Is(err, ErrDirtyWorktree), "got %v", err)
	assert.Contains(t, err.Error(), "notes.txt")
}

func TestCheckCleanOutsideRepository(t *testing.T) {
	assert.Error(t, CheckClean(t.TempDir(), nil))
}

func TestCommitAndTag(t *testing.T) {
	dir, repo := initRepo(t, map[string]string{"CHANGELOG.md": "# Changelog\n", "pyproject.toml": "[project]\nversion = \"1.0.0\"\n"})
	changelog := filepath.Join(dir, "CHANGELOG.md")
	manifest := filepath.Join(dir, "pyproject.toml")
	require.NoError(t, os.WriteFile(changelog, []byte("# Changelog\n\n## [1.0.1] - 2025-01-01\n"), 0o644))
	require.NoError(t, os.WriteFile(manifest, []byte("[project]\nversion = \"1.0.1\"\n"), 0o644))

	tag, err := CommitAndTag(dir, []string{changelog, manifest}, MustParse("1.0.1"), "v", true)
	require.NoError(t, err)
	assert.Equal(t, "v1.0.1", tag)

	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", commit.Message)

	ref, err := repo.Tag("v1.0.1")
	require.NoError(t, err)
	assert.Equal(t, head.Hash(), ref.Hash())

	assert.NoError(t, CheckClean(dir, nil))

	require.NoError(t, os.WriteFile(changelog, []byte("# Changelog\n\nagain\n"), 0o644))
	_, err = CommitAndTag(dir, []string{changelog}, MustParse("1.0.1"), "v", true)
	assert.True(t, errors.Is(err, ErrAlreadyExists), "got %v", err)
}

func TestCommitWithoutTag(t *testing.T) {
	dir, repo := initRepo(t, map[string]string{"CHANGELOG.md": "# Changelog\n"})
	changelog := filepath.Join(dir, "CHANGELOG.md")
	require.NoError(t, os.WriteFile(changelog, []byte("# Changelog\n\nnew\n"), 0o644))

	tag, err := CommitAndTag(dir, []string{changelog}, MustParse("0.2.0"), "v", false)
	require.NoError(t, err)
	assert.Empty(t, tag)

	tags, err := repo.Tags()
	require.NoError(t, err)
	count := 0
	require.NoError(t, tags.ForEach(func(*plumbing.Reference) error { count++; return nil }))
	assert.Zero(t, count)
}

func TestReleaseTags(t *testing.T) {
	dir, repo := initRepo(t, map[string]string{"README.md": "# Test"})
	head, err := repo.Head()
	require.NoError(t, err)

	for _, name := range []string{"v1.9.0", "v1.10.0", "v2.0.0-rc.1", "v0.1", "release-3.0.0", "v1.2.3+build.5"} {
		_, err := repo.CreateTag(name, head.Hash(), nil)
		require.NoError(t, err)
	}

	versions, err := ReleaseTags(dir, "v")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "1.9.0", versions[0].String())
	assert.Equal(t, "1.10.0", versions[1].String())

	latest, ok, err := LatestTag(dir, "release-")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3.0.0", latest.String())

	_, ok, err = LatestTag(dir, "nope-")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTagExists(t *testing.T) {
	dir, repo := initRepo(t, map[string]string{"README.md": "# Test"})
	head, err := repo.Head()
	require.NoError(t, err)
	_, err = repo.CreateTag("v1.0.0", head.Hash(), nil)
	require.NoError(t, err)

	exists, err := tagExists(dir, "v1.0.0")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = tagExists(dir, "v1.0.1")
	require.NoError(t, err)
	assert.False(t, exists)
}
