package changelogbump

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ExampleBumpVersionInFile updates the project version of files that are not
// the manifest, such as package.json or extension.toml.
func ExampleBumpVersionInFile() {
	tmpDir, err := os.MkdirTemp("", "changelogbump_bumpin_example")
	if err != nil {
		fmt.Println("failed to create temporary directory:", err)
		return
	}
	defer os.RemoveAll(tmpDir)

	packageJSONPath := filepath.Join(tmpDir, "package.json")
	packageContent := `{
  "name": "example-app",
  "version": "1.0.0",
  "description": "Example application"
}`
	if err := os.WriteFile(packageJSONPath, []byte(packageContent), 0644); err != nil {
		fmt.Println("failed to write package.json:", err)
		return
	}

	extensionTOMLPath := filepath.Join(tmpDir, "extension.toml")
	tomlContent := `[package]
name = "my-extension"
version = "1.0.0"
authors = ["Example Author"]`
	if err := os.WriteFile(extensionTOMLPath, []byte(tomlContent), 0644); err != nil {
		fmt.Println("failed to write extension.toml:", err)
		return
	}

	for _, path := range []string{packageJSONPath, extensionTOMLPath} {
		updated, err := BumpVersionInFile(path, "1.1.0")
		if err != nil {
			fmt.Println("failed to bump version:", err)
			return
		}
		if !updated {
			fmt.Println("no version found in", filepath.Base(path))
			return
		}
	}

	packageResult, _ := os.ReadFile(packageJSONPath)
	fmt.Println("Updated package.json:")
	fmt.Println(string(packageResult))

	fmt.Println()

	tomlResult, _ := os.ReadFile(extensionTOMLPath)
	fmt.Println("Updated extension.toml:")
	fmt.Println(string(tomlResult))

	// Output:
	// Updated package.json:
	// {
	//   "name": "example-app",
	//   "version": "1.1.0",
	//   "description": "Example application"
	// }
	//
	// Updated extension.toml:
	// [package]
	// name = "my-extension"
	// version = "1.1.0"
	// authors = ["Example Author"]
}

// ExampleDryRun_withBumpFiles previews a release that also bumps a
// package.json, without touching any file.
func ExampleDryRun_withBumpFiles() {
	tmpDir, err := os.MkdirTemp("", "changelogbump_dryrun_example")
	if err != nil {
		fmt.Println("failed to create temporary directory:", err)
		return
	}
	defer os.RemoveAll(tmpDir)

	manifest := filepath.Join(tmpDir, "pyproject.toml")
	changelog := filepath.Join(tmpDir, "CHANGELOG.md")
	packageJSON := filepath.Join(tmpDir, "package.json")
	files := map[string]string{
		manifest:    "[project]\nversion = \"2.0.0\"\n",
		changelog:   "# Changelog\n",
		packageJSON: "{\n  \"version\": \"2.0.0\"\n}\n",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			fmt.Println("failed to write file:", err)
			return
		}
	}

	meta, err := DryRun(Options{
		Manifest:      Manifest{Path: manifest},
		ChangelogPath: changelog,
		Kind:          Patch,
		Summary:       "Bug fixes.",
		BumpFiles:     []string{packageJSON},
		Now:           func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		fmt.Println("dry run failed:", err)
		return
	}

	fmt.Printf("%s -> %s (%d files)\n", meta.OldVersion, meta.NewVersion, len(meta.UpdatedFiles))
	fmt.Println(meta.Section)
	data, _ := os.ReadFile(packageJSON)
	fmt.Print(string(data))

	// Output:
	// 2.0.0 -> 2.0.1 (3 files)
	// ## [2.0.1] - 2025-03-01
	//
	// Bug fixes.
	// {
	//   "version": "2.0.0"
	// }
}
