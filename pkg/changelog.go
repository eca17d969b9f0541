package changelogbump

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

// DefaultChangelogPath is the changelog location used when none is configured.
const DefaultChangelogPath = "CHANGELOG.md"

// DefaultDateLayout is the time layout used for section dates.
const DefaultDateLayout = "2006-01-02"

//go:embed header.md
var defaultHeader string

// DefaultHeader returns the boilerplate written by Init when no custom header
// is supplied. It ends with an "## [Unreleased]" heading.
func DefaultHeader() string {
	return defaultHeader
}

// versionHeadingPattern matches released version headings such as
// "## [1.2.3] - 2025-08-01". "## [Unreleased]" is not a version heading, so
// new sections land below it.
var versionHeadingPattern = regexp.MustCompile(`^## \[\d+\.\d+\.\d+\]`)

// Category is one of the fixed change categories of a section.
type Category string

const (
	Added   Category = "added"
	Changed Category = "changed"
	Removed Category = "removed"
)

// Categories returns the categories in rendering order.
func Categories() []Category {
	return []Category{Added, Changed, Removed}
}

// Title returns the capitalized sub-heading for the category.
func (c Category) Title() string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Changes holds the items collected for each category, in entry order.
type Changes struct {
	Added   []string
	Changed []string
	Removed []string
}

// Items returns the items recorded for cat.
func (c Changes) Items(cat Category) []string {
	switch cat {
	case Added:
		return c.Added
	case Changed:
		return c.Changed
	case Removed:
		return c.Removed
	default:
		return nil
	}
}

// Add appends an item to cat.
func (c *Changes) Add(cat Category, item string) error {
	switch cat {
	case Added:
		c.Added = append(c.Added, item)
	case Changed:
		c.Changed = append(c.Changed, item)
	case Removed:
		c.Removed = append(c.Removed, item)
	default:
		return fmt.Errorf("%w: unknown changelog category %q", ErrInvalidArgument, cat)
	}
	return nil
}

// Count returns the total number of items.
func (c Changes) Count() int {
	return len(c.Added) + len(c.Changed) + len(c.Removed)
}

// IsEmpty reports whether no items were recorded.
func (c Changes) IsEmpty() bool {
	return c.Count() == 0
}

// Section is a single changelog entry before rendering.
type Section struct {
	Version Version
	Date    string
	Summary string
	Changes Changes
}

// IsEmpty reports whether the section has neither a summary nor items.
func (s Section) IsEmpty() bool {
	return strings.TrimSpace(s.Summary) == "" && s.Changes.IsEmpty()
}

// ComposeSection renders s as markdown. The heading comes first, then the
// summary paragraph when present, then one sub-heading and bullet list per
// non-empty category in the order added, changed, removed. The result has no
// trailing newline.
func ComposeSection(s Section) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## [%s] - %s", s.Version, s.Date)

	if summary := strings.TrimSpace(s.Summary); summary != "" {
		b.WriteString("\n\n")
		b.WriteString(summary)
	}

	for _, cat := range Categories() {
		items := s.Changes.Items(cat)
		if len(items) == 0 {
			continue
		}
		b.WriteString("\n\n### ")
		b.WriteString(cat.Title())
		b.WriteString("\n")
		for _, item := range items {
			b.WriteString("\n- ")
			b.WriteString(item)
		}
	}

	return b.String()
}

// IsVersionHeading reports whether line starts a released version section.
func IsVersionHeading(line string) bool {
	return versionHeadingPattern.MatchString(strings.TrimRight(line, "\r"))
}

// HasVersion reports whether document already contains a heading for v.
func HasVersion(document string, v Version) bool {
	prefix := "## [" + v.String() + "]"
	for _, line := range strings.Split(document, "\n") {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// Insert places section as one block immediately before the first version
// heading of document. When the document has no version heading the section
// is appended as the final content. CRLF documents keep CRLF line endings.
func Insert(document, section string) string {
	if strings.Contains(document, "\r\n") {
		lf := Insert(strings.ReplaceAll(document, "\r\n", "\n"), strings.ReplaceAll(section, "\r\n", "\n"))
		return strings.ReplaceAll(lf, "\n", "\r\n")
	}

	lines := strings.Split(document, "\n")
	for i, line := range lines {
		if !IsVersionHeading(line) {
			continue
		}
		out := make([]string, 0, len(lines)+3)
		out = append(out, lines[:i]...)
		if i > 0 && strings.TrimSpace(lines[i-1]) != "" {
			out = append(out, "")
		}
		out = append(out, section, "")
		out = append(out, lines[i:]...)
		return strings.Join(out, "\n")
	}

	body := strings.TrimRight(document, "\r\n")
	if strings.TrimSpace(body) == "" {
		return section + "\n"
	}
	return body + "\n\n" + section + "\n"
}

// Init creates a changelog at path containing header verbatim. It refuses to
// touch an existing file.
func Init(path, header string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", path, ErrAlreadyExists)
		}
		return fmt.Errorf("creating changelog %s: %w", path, err)
	}
	if _, err := f.WriteString(header); err != nil {
		f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("writing changelog %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing changelog %s: %w", path, err)
	}
	logDebug("initialized changelog %s", path)
	return nil
}

// ReadChangelog returns the changelog text at path.
func ReadChangelog(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("changelog %s: %w", path, ErrFileNotFound)
		}
		return "", fmt.Errorf("reading changelog %s: %w", path, err)
	}
	return string(data), nil
}

// UpdateFile inserts section into the changelog at path and writes it back.
func UpdateFile(path, section string) error {
	content, err := ReadChangelog(path)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, []byte(Insert(content, section))); err != nil {
		return fmt.Errorf("writing changelog %s: %w", path, err)
	}
	logDebug("inserted section into %s", path)
	return nil
}
