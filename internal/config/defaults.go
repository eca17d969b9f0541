package config

import changelogbump "github.com/bcomnes/changelogbump/pkg"

// GetDefaults returns the default value of every configuration key.
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"manifest.path":         changelogbump.DefaultManifestPath,
		"manifest.key":          "",
		"manifest.format":       "",
		"changelog.path":        changelogbump.DefaultChangelogPath,
		"changelog.header":      "",
		"changelog.date_format": changelogbump.DefaultDateLayout,
		"changelog.allow_empty": false,
		"git.commit":            false,
		"git.tag":               false,
		"git.tag_prefix":        changelogbump.DefaultTagPrefix,
		"check.sources":         []string{"git"},
		"check.pypi_package":    "",
		"check.timeout":         changelogbump.DefaultCheckTimeout.String(),
	}
}

// GetDefaultConfigTemplate returns a commented project config file.
func GetDefaultConfigTemplate() string {
	return `# changelogbump configuration

manifest:
  path: pyproject.toml        # File holding the project version
  key: ""                     # Dotted key path (default project.version for TOML, version otherwise)
  format: ""                  # toml | json | yaml (default: from the file extension)

changelog:
  path: CHANGELOG.md
  header: ""                  # File whose content 'init' writes instead of the bundled header
  date_format: "2006-01-02"   # Go time layout for section dates
  allow_empty: false          # Accept sections without summary or items

git:
  commit: false               # Commit the changed files after 'add'
  tag: false                  # Tag the commit
  tag_prefix: v

check:
  sources: [git]              # git | pypi
  pypi_package: ""
  timeout: 10s
`
}
