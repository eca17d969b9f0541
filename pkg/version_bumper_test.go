package changelogbump

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindVersionsInFile(t *testing.T) {
	type found struct {
		version string
		line    int
	}
	tests := []struct {
		name     string
		file     string
		content  string
		expected []found
	}{
		{
			name: "package.json",
			file: "package.json",
			content: `{
  "name": "my-app",
  "version": "1.2.3",
  "description": "Test app"
}`,
			expected: []found{{"1.2.3", 3}},
		},
		{
			name: "README.md",
			file: "README.md",
			content: `# My Project

Version: 2.0.0

## Installation

Current version is v2.0.0`,
			expected: []found{{"2.0.0", 3}, {"2.0.0", 7}},
		},
		{
			name: "config.yaml",
			file: "config.yaml",
			content: `app:
  name: MyApp
  version: "3.1.4"
  port: 8080`,
			expected: []found{{"3.1.4", 3}},
		},
		{
			name: "setup.py",
			file: "setup.py",
			content: `from setuptools import setup

setup(
    name="mypackage",
    version="0.1.0",
)`,
			expected: []found{{"0.1.0", 5}},
		},
		{
			name:     "pom.xml",
			file:     "pom.xml",
			content:  "<project>\n  <version>1.0.0</version>\n</project>",
			expected: []found{{"1.0.0", 2}},
		},
		{
			name:     "python module",
			file:     "__init__.py",
			content:  "\"\"\"Demo.\"\"\"\n\n__version__ = \"0.3.1\"\n",
			expected: []found{{"0.3.1", 3}},
		},
		{
			name:     "assignment and doc comment",
			file:     "build.env",
			content:  "VERSION=1.0.0\n# @version 1.0.0\n",
			expected: []found{{"1.0.0", 1}, {"1.0.0", 2}},
		},
		{
			name:     "no versions",
			file:     "notes.txt",
			content:  "nothing to see in 1.2\n",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			matches, err := FindVersionsInFile(path)
			if err != nil {
				t.Fatalf("FindVersionsInFile failed: %v", err)
			}
			if len(matches) != len(tt.expected) {
				t.Fatalf("expected %d matches, got %d: %+v", len(tt.expected), len(matches), matches)
			}
			for i, exp := range tt.expected {
				if matches[i].Version != exp.version || matches[i].Line != exp.line {
					t.Errorf("match %d: expected %s on line %d, got %s on line %d",
						i, exp.version, exp.line, matches[i].Version, matches[i].Line)
				}
			}
		})
	}
}

func TestBumpVersionInFile(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		content    string
		newVersion string
		expected   string
		shouldBump bool
	}{
		{
			name: "package.json",
			file: "package.json",
			content: `{
  "name": "my-app",
  "version": "1.0.0",
  "dependencies": {
    "some-lib": "2.3.4",
    "another-lib": "5.6.7"
  }
}`,
			newVersion: "1.1.0",
			expected: `{
  "name": "my-app",
  "version": "1.1.0",
  "dependencies": {
    "some-lib": "2.3.4",
    "another-lib": "5.6.7"
  }
}`,
			shouldBump: true,
		},
		{
			name:       "README with v prefix",
			file:       "README.md",
			content:    "# Project\n\nCurrent version is v2.0.0\n",
			newVersion: "2.1.0",
			expected:   "# Project\n\nCurrent version is v2.1.0\n",
			shouldBump: true,
		},
		{
			name:       "no version found",
			file:       "README.md",
			content:    "# Nothing here\n",
			newVersion: "1.0.0",
			shouldBump: false,
		},
		{
			name:       "python __version__",
			file:       "__init__.py",
			content:    "\"\"\"Demo.\"\"\"\n\n__version__ = \"0.3.1\"\n",
			newVersion: "0.4.0",
			expected:   "\"\"\"Demo.\"\"\"\n\n__version__ = \"0.4.0\"\n",
			shouldBump: true,
		},
		{
			name: "Cargo.toml dependency table first",
			file: "Cargo.toml",
			content: `[dependencies]
serde = { version = "1.0.0" }

[package]
name = "demo"
version = "0.1.0"
`,
			newVersion: "0.2.0",
			expected: `[dependencies]
serde = { version = "1.0.0" }

[package]
name = "demo"
version = "0.2.0"
`,
			shouldBump: true,
		},
		{
			name:       "pyproject skips tool tables",
			file:       "pyproject.toml",
			content:    "[tool.other]\nversion = \"9.9.9\"\n\n[project]\nversion = \"0.3.1\"\n",
			newVersion: "0.3.2",
			expected:   "[tool.other]\nversion = \"9.9.9\"\n\n[project]\nversion = \"0.3.2\"\n",
			shouldBump: true,
		},
		{
			name:       "TOML with v prefix",
			file:       "Cargo.toml",
			content:    "[package]\nname = \"project\"\nversion = \"v1.2.3\"",
			newVersion: "2.0.0",
			expected:   "[package]\nname = \"project\"\nversion = \"v2.0.0\"",
			shouldBump: true,
		},
		{
			name:       "VERSION assignment",
			file:       "build.env",
			content:    "NAME=demo\nVERSION=1.2.3\n",
			newVersion: "1.2.4",
			expected:   "NAME=demo\nVERSION=1.2.4\n",
			shouldBump: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			bumped, err := BumpVersionInFile(path, tt.newVersion)
			if err != nil {
				t.Fatalf("BumpVersionInFile failed: %v", err)
			}
			if bumped != tt.shouldBump {
				t.Errorf("expected bumped=%v, got %v", tt.shouldBump, bumped)
			}

			result, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			want := tt.expected
			if !tt.shouldBump {
				want = tt.content
			}
			if string(result) != want {
				t.Errorf("unexpected result:\nGot:\n%s\nExpected:\n%s", string(result), want)
			}
		})
	}
}

func TestBumpAllVersionsInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	content := "Version: 2.0.0\n\nCurrent version is v2.0.0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	bumped, err := BumpAllVersionsInFile(path, "2.1.0")
	if err != nil || !bumped {
		t.Fatalf("BumpAllVersionsInFile = %v, %v", bumped, err)
	}

	result, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	expected := "Version: 2.1.0\n\nCurrent version is v2.1.0\n"
	if string(result) != expected {
		t.Errorf("unexpected result:\nGot:\n%s\nExpected:\n%s", string(result), expected)
	}
}

func TestVersionPatternMatching(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		pattern VersionPattern
		version string
	}{
		{"JSON version field", `"version": "3.1.4"`, CommonVersionPatterns[0], "3.1.4"},
		{"python dunder", `__version__ = '0.0.1'`, CommonVersionPatterns[1], "0.0.1"},
		{"version assignment lowercase", `version = "1.2.3"`, CommonVersionPatterns[2], "1.2.3"},
		{"VERSION assignment uppercase", `VERSION: 2.0.0`, CommonVersionPatterns[2], "2.0.0"},
		{"XML version tag", `<version>1.0.0</version>`, CommonVersionPatterns[3], "1.0.0"},
		{"doc comment", `@version 4.0.0`, CommonVersionPatterns[4], "4.0.0"},
		{"version with v prefix", `Current version: v5.0.0`, CommonVersionPatterns[5], "v5.0.0"},
		{"exported VERSION", `export VERSION="6.1.0"`, MainVersionPatterns[3], "6.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.pattern.Pattern.FindStringSubmatch(tt.input)
			if m == nil {
				t.Fatalf("pattern %q did not match %q", tt.pattern.Name, tt.input)
			}
			if m[2] != tt.version {
				t.Errorf("expected version %q, got %q", tt.version, m[2])
			}
		})
	}
}

func TestFindMainVersionInFile(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		expected string
		line     int
	}{
		{
			name:     "package.json with dependencies",
			file:     "package.json",
			content:  "{\n  \"dependencies\": {\n    \"version\": \"9.9.9\"\n  },\n  \"version\": \"1.0.0\"\n}",
			expected: "1.0.0",
			line:     5,
		},
		{
			name:     "TOML with multiple sections",
			file:     "pyproject.toml",
			content:  "[tool.bumpver]\ncurrent_version = \"7.0.0\"\n\n[tool.poetry]\nname = \"demo\"\nversion = \"1.4.0\"\n",
			expected: "1.4.0",
			line:     6,
		},
		{
			name:     "no version",
			file:     "notes.txt",
			content:  "nothing here",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			match, err := FindMainVersionInFile(path)
			if err != nil {
				t.Fatalf("FindMainVersionInFile failed: %v", err)
			}
			if tt.expected == "" {
				if match != nil {
					t.Errorf("expected no match, got %+v", match)
				}
				return
			}
			if match == nil {
				t.Fatalf("expected %s, got no match", tt.expected)
			}
			if match.Version != tt.expected || match.Line != tt.line {
				t.Errorf("expected %s on line %d, got %s on line %d", tt.expected, tt.line, match.Version, match.Line)
			}
		})
	}
}
