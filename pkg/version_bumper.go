package changelogbump

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// VersionPattern finds a version string inside a line of a source file.
// Pattern has three groups: the text before the version, the version itself
// (with an optional leading "v") and the text after it.
type VersionPattern struct {
	Pattern *regexp.Regexp
	Name    string
}

// CommonVersionPatterns are the places a version string usually shows up in
// files that travel alongside a manifest.
var CommonVersionPatterns = []VersionPattern{
	{
		Pattern: regexp.MustCompile(`("version"\s*:\s*")(v?\d+\.\d+\.\d+)(")`),
		Name:    "JSON version field",
	},
	{
		Pattern: regexp.MustCompile(`(__version__\s*=\s*["'])(v?\d+\.\d+\.\d+)(["'])`),
		Name:    "Python __version__",
	},
	{
		Pattern: regexp.MustCompile(`(?i)(version\s*[:=]\s*["']?)(v?\d+\.\d+\.\d+)(["']?)`),
		Name:    "version assignment",
	},
	{
		Pattern: regexp.MustCompile(`(<version>)(v?\d+\.\d+\.\d+)(</version>)`),
		Name:    "XML version tag",
	},
	{
		Pattern: regexp.MustCompile(`(@version\s+)(v?\d+\.\d+\.\d+)()`),
		Name:    "doc comment version",
	},
	{
		Pattern: regexp.MustCompile(`(?i)(current\s+version\D*?)(v?\d+\.\d+\.\d+)()`),
		Name:    "current version text",
	},
}

// MainVersionPatterns match declarations that are normally the version of
// the project itself rather than of a dependency.
var MainVersionPatterns = []VersionPattern{
	{
		Pattern: regexp.MustCompile(`^(\s*"version"\s*:\s*")(v?\d+\.\d+\.\d+)(")`),
		Name:    "root JSON version field",
	},
	{
		Pattern: regexp.MustCompile(`^(\s*version\s*=\s*["'])(v?\d+\.\d+\.\d+)(["'])`),
		Name:    "root TOML version field",
	},
	{
		Pattern: regexp.MustCompile(`^(\s*__version__\s*=\s*["'])(v?\d+\.\d+\.\d+)(["'])`),
		Name:    "Python __version__",
	},
	{
		Pattern: regexp.MustCompile(`(?i)^(\s*(?:export\s+)?VERSION\s*[:=]\s*["']?)(v?\d+\.\d+\.\d+)(["']?)`),
		Name:    "root VERSION assignment",
	},
}

// projectTables are the TOML tables whose version field belongs to the project.
var projectTables = map[string]bool{
	"":            true,
	"project":     true,
	"package":     true,
	"tool.poetry": true,
}

// VersionMatch is one version found in a file.
type VersionMatch struct {
	Line       int
	StartIndex int
	EndIndex   int
	FullMatch  string
	// Version is the matched version without a "v" prefix.
	Version string
	Pattern VersionPattern
	Prefix  string
	Suffix  string
	// VPrefix records whether the original text carried a "v" before the version.
	VPrefix bool
}

func newMatch(line string, lineNum int, loc []int, vp VersionPattern) VersionMatch {
	raw := line[loc[4]:loc[5]]
	return VersionMatch{
		Line:       lineNum + 1,
		StartIndex: loc[0],
		EndIndex:   loc[1],
		FullMatch:  line[loc[0]:loc[1]],
		Version:    strings.TrimPrefix(raw, "v"),
		Pattern:    vp,
		Prefix:     line[loc[2]:loc[3]],
		Suffix:     line[loc[6]:loc[7]],
		VPrefix:    strings.HasPrefix(raw, "v"),
	}
}

// FindVersionsInFile lists every version-looking string in the file.
// Overlapping matches from several patterns are reported once.
func FindVersionsInFile(filePath string) ([]VersionMatch, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", filePath, err)
	}

	type span struct{ line, start, end int }
	var matches []VersionMatch
	var taken []span

	for lineNum, line := range strings.Split(string(data), "\n") {
		for _, vp := range CommonVersionPatterns {
			for _, loc := range vp.Pattern.FindAllStringSubmatchIndex(line, -1) {
				overlaps := false
				for _, s := range taken {
					if s.line == lineNum && loc[4] < s.end && loc[5] > s.start {
						overlaps = true
						break
					}
				}
				if overlaps {
					continue
				}
				taken = append(taken, span{lineNum, loc[4], loc[5]})
				matches = append(matches, newMatch(line, lineNum, loc, vp))
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Line != matches[j].Line {
			return matches[i].Line < matches[j].Line
		}
		return matches[i].StartIndex < matches[j].StartIndex
	})
	return matches, nil
}

// FindMainVersionInFile returns the version that most likely belongs to the
// project, or nil when the file has none. Root level JSON fields and TOML
// fields of the project tables win over the first version-looking string.
func FindMainVersionInFile(filePath string) (*VersionMatch, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", filePath, err)
	}
	lines := strings.Split(string(data), "\n")
	isTOML := strings.EqualFold(filepath.Ext(filePath), ".toml")
	isJSON := strings.EqualFold(filepath.Ext(filePath), ".json")

	table := ""
	for lineNum, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isTOML && strings.HasPrefix(trimmed, "[") {
			table = tomlTableName(trimmed)
			continue
		}
		if isTOML && !projectTables[table] {
			continue
		}
		if isJSON && len(line)-len(strings.TrimLeft(line, " \t")) > 2 {
			continue
		}
		for _, vp := range MainVersionPatterns {
			if loc := vp.Pattern.FindStringSubmatchIndex(line); loc != nil {
				m := newMatch(line, lineNum, loc, vp)
				return &m, nil
			}
		}
	}

	matches, err := FindVersionsInFile(filePath)
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	return &matches[0], nil
}

// ReplaceVersionInFile writes newVersion over each match, keeping a "v"
// prefix where the original had one.
func ReplaceVersionInFile(filePath string, newVersion string, matches []VersionMatch) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading file %s: %w", filePath, err)
	}
	lines := strings.Split(string(data), "\n")

	byLine := make(map[int][]VersionMatch)
	for _, m := range matches {
		byLine[m.Line] = append(byLine[m.Line], m)
	}

	for lineNum, lineMatches := range byLine {
		if lineNum < 1 || lineNum > len(lines) {
			continue
		}
		// right to left so earlier offsets stay valid
		sort.Slice(lineMatches, func(i, j int) bool {
			return lineMatches[i].StartIndex > lineMatches[j].StartIndex
		})
		line := lines[lineNum-1]
		for _, m := range lineMatches {
			if m.StartIndex < 0 || m.EndIndex > len(line) || m.StartIndex >= m.EndIndex {
				continue
			}
			version := newVersion
			if m.VPrefix {
				version = "v" + newVersion
			}
			line = line[:m.StartIndex] + m.Prefix + version + m.Suffix + line[m.EndIndex:]
		}
		lines[lineNum-1] = line
	}

	return writeFileAtomic(filePath, []byte(strings.Join(lines, "\n")))
}

// BumpVersionInFile replaces only the main version of the file with
// newVersion. It reports false when the file holds no version.
func BumpVersionInFile(filePath string, newVersion string) (bool, error) {
	found, err := FindMainVersionInFile(filePath)
	if err != nil || found == nil {
		return false, err
	}
	if err := ReplaceVersionInFile(filePath, newVersion, []VersionMatch{*found}); err != nil {
		return false, err
	}
	logDebug("bumped %s in %s:%d to %s", found.Version, filePath, found.Line, newVersion)
	return true, nil
}

// BumpAllVersionsInFile replaces every version found in the file.
func BumpAllVersionsInFile(filePath string, newVersion string) (bool, error) {
	matches, err := FindVersionsInFile(filePath)
	if err != nil || len(matches) == 0 {
		return false, err
	}
	if err := ReplaceVersionInFile(filePath, newVersion, matches); err != nil {
		return false, err
	}
	return true, nil
}
