package changelogbump

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"golang.org/x/mod/semver"
)

// DefaultTagPrefix is prepended to the version when tagging a release commit.
const DefaultTagPrefix = "v"

// openRepo opens the repository containing dir, walking up to find .git.
func openRepo(dir string) (*git.Repository, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}
	logDebug("[git] opening repository at %s", dir)
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", dir, err)
	}
	return repo, nil
}

// repoRelative converts file paths into slash-separated paths relative to the
// worktree root, which is how go-git keys its status entries.
func repoRelative(root string, files []string) ([]string, error) {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		realRoot = root
	}
	rel := make([]string, 0, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving path %q: %w", f, err)
		}
		if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
			abs = filepath.Join(dir, filepath.Base(abs))
		}
		r, err := filepath.Rel(realRoot, abs)
		if err != nil || strings.HasPrefix(r, "..") {
			return nil, fmt.Errorf("%w: %s is outside the repository at %s", ErrInvalidArgument, f, root)
		}
		rel = append(rel, filepath.ToSlash(r))
	}
	return rel, nil
}

// CheckClean fails with ErrDirtyWorktree when the repository at dir has
// modified, staged or untracked files other than the allowed ones.
func CheckClean(dir string, allowed []string) error {
	repo, err := openRepo(dir)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("reading git status: %w", err)
	}

	rel, err := repoRelative(wt.Filesystem.Root(), allowed)
	if err != nil {
		return err
	}
	allowedSet := make(map[string]struct{}, len(rel))
	for _, r := range rel {
		allowedSet[r] = struct{}{}
	}

	var disallowed []string
	for path, st := range status {
		if st.Staging == git.Unmodified && st.Worktree == git.Unmodified {
			continue
		}
		if _, ok := allowedSet[path]; !ok {
			disallowed = append(disallowed, path)
		}
	}
	if len(disallowed) > 0 {
		sort.Strings(disallowed)
		return fmt.Errorf("%w; uncommitted files not included in commit: %v", ErrDirtyWorktree, disallowed)
	}
	return nil
}

// CommitAndTag stages files, commits them with the bare version as message
// and, when tag is set, creates a lightweight tag named prefix+version.
// It returns the tag name, or "" when no tag was created.
func CommitAndTag(dir string, files []string, version Version, prefix string, tag bool) (string, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}

	rel, err := repoRelative(wt.Filesystem.Root(), files)
	if err != nil {
		return "", err
	}
	for _, r := range rel {
		if _, err := wt.Add(r); err != nil {
			return "", fmt.Errorf("git add %s: %w", r, err)
		}
	}

	hash, err := wt.Commit(version.String(), &git.CommitOptions{Author: commitAuthor(repo)})
	if err != nil {
		return "", fmt.Errorf("git commit: %w", err)
	}
	logDebug("[git] committed %s as %s", version, hash)

	if !tag {
		return "", nil
	}
	name := prefix + version.String()
	if _, err := repo.CreateTag(name, hash, nil); err != nil {
		if errors.Is(err, git.ErrTagExists) {
			return "", fmt.Errorf("git tag %s: %w", name, ErrAlreadyExists)
		}
		return "", fmt.Errorf("git tag %s: %w", name, err)
	}
	logDebug("[git] tagged %s", name)
	return name, nil
}

// tagExists reports whether the repository at dir already has a tag named name.
func tagExists(dir, name string) (bool, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return false, err
	}
	if _, err := repo.Tag(name); err != nil {
		if errors.Is(err, git.ErrTagNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("looking up tag %s: %w", name, err)
	}
	return true, nil
}

// commitAuthor reads user.name and user.email from the repository and global
// git configuration.
func commitAuthor(repo *git.Repository) *object.Signature {
	sig := &object.Signature{Name: "changelogbump", Email: "changelogbump@localhost", When: time.Now()}
	for _, scope := range []gitconfig.Scope{gitconfig.GlobalScope, gitconfig.LocalScope} {
		cfg, err := repo.ConfigScoped(scope)
		if err != nil {
			continue
		}
		if cfg.User.Name != "" {
			sig.Name = cfg.User.Name
		}
		if cfg.User.Email != "" {
			sig.Email = cfg.User.Email
		}
	}
	return sig
}

// ReleaseTags lists the tags of the repository at dir that carry prefix
// followed by a release version. Pre-release and build-suffixed tags are
// skipped. The result is sorted ascending.
func ReleaseTags(dir, prefix string) ([]Version, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return nil, err
	}
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var versions []Version
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		raw := strings.TrimPrefix(name, prefix)
		canonical := "v" + raw
		if !semver.IsValid(canonical) || semver.Prerelease(canonical) != "" || semver.Build(canonical) != "" {
			return nil
		}
		v, err := Parse(raw)
		if err != nil {
			return nil
		}
		versions = append(versions, v)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	sort.Slice(versions, func(i, j int) bool { return versions[i].Less(versions[j]) })
	logDebug("[git] found %d release tags with prefix %q", len(versions), prefix)
	return versions, nil
}

// LatestTag returns the highest release tag of the repository at dir.
// ok is false when no release tag exists.
func LatestTag(dir, prefix string) (v Version, ok bool, err error) {
	versions, err := ReleaseTags(dir, prefix)
	if err != nil || len(versions) == 0 {
		return Version{}, false, err
	}
	return versions[len(versions)-1], true, nil
}
