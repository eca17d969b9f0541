package changelogbump

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultManifestPath is the manifest location used when none is configured.
const DefaultManifestPath = "pyproject.toml"

// DefaultManifestKey is the dotted key path of the version in pyproject.toml.
const DefaultManifestKey = "project.version"

// Format identifies the structured document format of a manifest.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. An empty name is returned as-is and
// means "detect from the file extension".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTOML, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unknown manifest format %q (want toml, json or yaml)", ErrInvalidArgument, s)
	}
}

// DetectFormat picks a format from the extension of path.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: cannot detect manifest format of %s; set the format explicitly", ErrInvalidArgument, path)
	}
}

// Manifest locates the version field inside a structured project document.
type Manifest struct {
	// Path of the manifest file.
	Path string
	// Key is the dotted key path of the version value. When empty,
	// "project.version" is used for TOML and "version" for JSON and YAML.
	Key string
	// Format of the document. When empty it is detected from Path.
	Format Format
}

// ReadVersion reads the version of the manifest at path using the default key.
func ReadVersion(path string) (Version, error) {
	return Manifest{Path: path}.ReadVersion()
}

// WriteVersion stores v in the manifest at path using the default key.
func WriteVersion(path string, v Version) error {
	return Manifest{Path: path}.WriteVersion(v)
}

func (m Manifest) format() (Format, error) {
	if m.Format != "" {
		return ParseFormat(string(m.Format))
	}
	return DetectFormat(m.Path)
}

func (m Manifest) keys(format Format) []string {
	key := strings.TrimSpace(m.Key)
	if key == "" {
		if format == FormatTOML {
			key = DefaultManifestKey
		} else {
			key = "version"
		}
	}
	return strings.Split(key, ".")
}

func (m Manifest) load() ([]byte, Format, []string, error) {
	format, err := m.format()
	if err != nil {
		return nil, "", nil, err
	}
	data, err := os.ReadFile(m.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", nil, fmt.Errorf("manifest %s: %w", m.Path, ErrFileNotFound)
		}
		return nil, "", nil, fmt.Errorf("reading manifest %s: %w", m.Path, err)
	}
	return data, format, m.keys(format), nil
}

// RawVersion returns the version value exactly as stored, without parsing it.
func (m Manifest) RawVersion() (string, error) {
	return m.Lookup("")
}

// Lookup returns the string stored at the dotted key, such as "project.name".
// An empty key reads the version key.
func (m Manifest) Lookup(key string) (string, error) {
	data, format, keys, err := m.load()
	if err != nil {
		return "", err
	}
	if key = strings.TrimSpace(key); key != "" {
		keys = strings.Split(key, ".")
	}
	doc, err := decodeDocument(data, format)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMalformedManifest, m.Path, err)
	}
	raw, err := lookupString(doc, keys)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMalformedManifest, m.Path, err)
	}
	return raw, nil
}

// ReadVersion returns the parsed version stored in the manifest.
func (m Manifest) ReadVersion() (Version, error) {
	raw, err := m.RawVersion()
	if err != nil {
		return Version{}, err
	}
	v, err := Parse(raw)
	if err != nil {
		return Version{}, fmt.Errorf("manifest %s: %w", m.Path, err)
	}
	logDebug("read version %s from %s", v, m.Path)
	return v, nil
}

// WriteVersion replaces the version value in the manifest and writes the
// document back. Unrelated keys, comments and formatting are kept wherever
// the format allows it.
func (m Manifest) WriteVersion(v Version) error {
	out, err := m.render(v)
	if err != nil {
		return err
	}
	return m.write(out)
}

// render returns the manifest document with the version replaced by v.
func (m Manifest) render(v Version) ([]byte, error) {
	data, format, keys, err := m.load()
	if err != nil {
		return nil, err
	}
	doc, err := decodeDocument(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedManifest, m.Path, err)
	}
	if _, err := lookupString(doc, keys); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedManifest, m.Path, err)
	}

	var out []byte
	switch format {
	case FormatTOML:
		out, err = rewriteTOML(data, doc, keys, v.String())
	case FormatJSON:
		out, err = rewriteJSON(data, keys, v.String())
	case FormatYAML:
		out, err = rewriteYAML(data, keys, v.String())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedManifest, m.Path, err)
	}
	return out, nil
}

func (m Manifest) write(out []byte) error {
	if err := writeFileAtomic(m.Path, out); err != nil {
		return fmt.Errorf("writing manifest %s: %w", m.Path, err)
	}
	logDebug("wrote manifest %s", m.Path)
	return nil
}

func decodeDocument(data []byte, format Format) (map[string]any, error) {
	doc := map[string]any{}
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func lookupString(doc map[string]any, keys []string) (string, error) {
	current := doc
	for i, key := range keys {
		value, ok := current[key]
		if !ok {
			return "", fmt.Errorf("missing key %q", strings.Join(keys[:i+1], "."))
		}
		if i == len(keys)-1 {
			s, ok := value.(string)
			if !ok {
				return "", fmt.Errorf("key %q is %T, want string", strings.Join(keys, "."), value)
			}
			return s, nil
		}
		next, ok := value.(map[string]any)
		if !ok {
			return "", fmt.Errorf("key %q is not a table", strings.Join(keys[:i+1], "."))
		}
		current = next
	}
	return "", errors.New("empty key path")
}

// rewriteTOML edits the `key = "value"` line inside the table for keys, the
// same way the [package] section of Cargo.toml is located when scanning for
// versions. Documents where the line cannot be found are re-marshaled.
func rewriteTOML(data []byte, doc map[string]any, keys []string, value string) ([]byte, error) {
	if out, ok := rewriteTOMLLine(data, keys, value); ok {
		check := map[string]any{}
		if err := toml.Unmarshal(out, &check); err == nil {
			if got, err := lookupString(check, keys); err == nil && got == value {
				return out, nil
			}
		}
	}

	logDebug("falling back to re-encoding TOML document for %s", strings.Join(keys, "."))
	if err := setString(doc, keys, value); err != nil {
		return nil, err
	}
	return toml.Marshal(doc)
}

func rewriteTOMLLine(data []byte, keys []string, value string) ([]byte, bool) {
	table := strings.Join(keys[:len(keys)-1], ".")
	leaf := keys[len(keys)-1]
	linePattern := regexp.MustCompile(`^(\s*` + regexp.QuoteMeta(leaf) + `\s*=\s*)(["'])([^"']*)(["'])(.*)$`)

	lines := strings.Split(string(data), "\n")
	inTable := table == ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			inTable = !strings.HasPrefix(trimmed, "[[") && tomlTableName(trimmed) == table
			continue
		}
		if !inTable {
			continue
		}
		m := linePattern.FindStringSubmatch(line)
		if m == nil || m[2] != m[4] {
			continue
		}
		lines[i] = m[1] + m[2] + value + m[4] + m[5]
		return []byte(strings.Join(lines, "\n")), true
	}
	return nil, false
}

// tomlTableName normalizes a header line like `[ tool.poetry ] # comment`.
func tomlTableName(header string) string {
	end := strings.Index(header, "]")
	if end < 0 {
		return ""
	}
	parts := strings.Split(header[1:end], ".")
	for i, p := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(p), `"'`)
	}
	return strings.Join(parts, ".")
}

func setString(doc map[string]any, keys []string, value string) error {
	current := doc
	for i, key := range keys[:len(keys)-1] {
		next, ok := current[key].(map[string]any)
		if !ok {
			return fmt.Errorf("key %q is not a table", strings.Join(keys[:i+1], "."))
		}
		current = next
	}
	current[keys[len(keys)-1]] = value
	return nil
}

// rewriteJSON replaces the string token at keys in place.
func rewriteJSON(data []byte, keys []string, value string) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, errors.New("top-level value is not an object")
	}
	start, end, err := locateJSONString(dec, data, keys)
	if err != nil {
		return nil, err
	}
	quoted, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(data)+len(quoted))
	out = append(out, data[:start]...)
	out = append(out, quoted...)
	out = append(out, data[end:]...)
	return out, nil
}

// locateJSONString walks the object the decoder is positioned in and returns
// the byte range, quotes included, of the string value at keys.
func locateJSONString(dec *json.Decoder, data []byte, keys []string) (int, int, error) {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return 0, 0, err
		}
		key, _ := tok.(string)
		if key != keys[0] {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return 0, 0, err
			}
			continue
		}

		tok, err = dec.Token()
		if err != nil {
			return 0, 0, err
		}
		if len(keys) == 1 {
			if _, ok := tok.(string); !ok {
				return 0, 0, fmt.Errorf("key %q is not a string", key)
			}
			end := int(dec.InputOffset())
			start := bytes.LastIndexByte(data[:end-1], '"')
			if start < 0 {
				return 0, 0, fmt.Errorf("cannot locate value of %q", key)
			}
			return start, end, nil
		}
		if tok != json.Delim('{') {
			return 0, 0, fmt.Errorf("key %q is not an object", key)
		}
		return locateJSONString(dec, data, keys[1:])
	}
	return 0, 0, fmt.Errorf("missing key %q", keys[0])
}

// rewriteYAML replaces the scalar at keys in place, keeping its quote style.
// Scalars that cannot be spliced, such as block or multi-line ones, fall back
// to re-encoding the node tree, which keeps comments and key order.
func rewriteYAML(data []byte, keys []string, value string) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.New("empty YAML document")
	}

	node := root.Content[0]
	for _, key := range keys {
		if node.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("key %q is not inside a mapping", key)
		}
		var next *yaml.Node
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == key {
				next = node.Content[i+1]
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("missing key %q", key)
		}
		node = next
	}
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("key %q is not a scalar", strings.Join(keys, "."))
	}

	if out, ok := spliceYAMLScalar(data, node, value); ok {
		var check map[string]any
		if err := yaml.Unmarshal(out, &check); err == nil {
			if got, err := lookupString(check, keys); err == nil && got == value {
				return out, nil
			}
		}
	}

	logDebug("falling back to re-encoding YAML document for %s", strings.Join(keys, "."))
	node.Value = value
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// spliceYAMLScalar swaps the source text of a single-line scalar node for
// value, using the node's line and column to find it.
func spliceYAMLScalar(data []byte, node *yaml.Node, value string) ([]byte, bool) {
	var quote string
	switch node.Style {
	case 0, yaml.TaggedStyle:
	case yaml.DoubleQuotedStyle:
		quote = `"`
	case yaml.SingleQuotedStyle:
		quote = "'"
	default:
		return nil, false
	}
	if strings.ContainsAny(node.Value, "\n\\\"'") {
		return nil, false
	}

	offset := 0
	for line := 1; line < node.Line; line++ {
		i := bytes.IndexByte(data[offset:], '\n')
		if i < 0 {
			return nil, false
		}
		offset += i + 1
	}
	// Columns count characters, not bytes.
	for col := 1; col < node.Column; col++ {
		if offset >= len(data) || data[offset] == '\n' {
			return nil, false
		}
		_, size := utf8.DecodeRune(data[offset:])
		offset += size
	}

	old := quote + node.Value + quote
	if !bytes.HasPrefix(data[offset:], []byte(old)) {
		return nil, false
	}
	out := make([]byte, 0, len(data)-len(old)+len(value)+2*len(quote))
	out = append(out, data[:offset]...)
	out = append(out, quote+value+quote...)
	out = append(out, data[offset+len(old):]...)
	return out, true
}
