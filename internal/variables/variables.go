// Package variables reads and amends the flat YAML variables file shared with the integration tests.
//
// The file is always loaded and saved wholesale. Keys that are not touched keep their value, position
// and comments because the document is handled as a yaml.Node tree rather than a Go map.
package variables

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// File is an in-memory copy of the variables file.
type File struct {
	doc  *yaml.Node
	root *yaml.Node
}

// Parse decodes the content of a variables file.
// An empty document is treated as an empty mapping. More than one document is an error, a rewrite
// would otherwise drop every document after the first.
func Parse(data []byte) (*File, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	var next yaml.Node
	if err := dec.Decode(&next); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("line %d: expected a single YAML document", next.Line)
	}

	if doc.Kind == 0 {
		doc.Kind = yaml.DocumentNode
	}

	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 0 {
		root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		doc.Content = []*yaml.Node{root}
		return &File{doc: &doc, root: root}, nil
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, errors.New("unexpected YAML document structure")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top-level YAML node must be a mapping, got %s", kindName(root.Kind))
	}

	for i := 0; i < len(root.Content); i += 2 {
		if root.Content[i].Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", root.Content[i].Line)
		}
	}

	return &File{doc: &doc, root: root}, nil
}

// Get returns the scalar value stored under key.
// The second return value is false when the key is absent or does not hold a scalar.
// Keys brought in with a merge key ("<<: *anchor") are resolved, explicit keys take precedence.
func (f *File) Get(key string) (string, bool) {
	value := lookup(f.root, key, 0)
	if value == nil {
		return "", false
	}

	value = resolveAlias(value)
	if value.Kind != yaml.ScalarNode {
		return "", false
	}
	if value.ShortTag() == "!!null" {
		return "", true
	}

	return value.Value, true
}

// Require returns the values of every key, or a MissingFieldError naming all the keys
// that are absent or empty.
func (f *File) Require(keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	var missing []string
	for _, key := range keys {
		v, ok := f.Get(key)
		if !ok || v == "" {
			missing = append(missing, key)
			continue
		}
		values[key] = v
	}

	if len(missing) > 0 {
		return nil, &MissingFieldError{Keys: missing}
	}

	return values, nil
}

// Set stores value under key as a string, adding the key at the end of the mapping if needed.
func (f *File) Set(key, value string) {
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}

	i := f.index(key)
	if i < 0 {
		f.root.Content = append(f.root.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, node)
		return
	}

	// Keep the comments attached to the value.
	old := f.root.Content[i+1]
	node.HeadComment = old.HeadComment
	node.LineComment = old.LineComment
	node.FootComment = old.FootComment
	f.root.Content[i+1] = node
}

// Keys returns the mapping keys in document order.
func (f *File) Keys() []string {
	keys := make([]string, 0, len(f.root.Content)/2)
	for i := 0; i < len(f.root.Content); i += 2 {
		keys = append(keys, f.root.Content[i].Value)
	}
	return keys
}

// Bytes encodes the document back to YAML.
func (f *File) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f.doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *File) index(key string) int {
	for i := 0; i < len(f.root.Content); i += 2 {
		if !isMergeKey(f.root.Content[i]) && f.root.Content[i].Value == key {
			return i
		}
	}
	return -1
}

// maxMergeDepth bounds merge resolution on self-referencing anchors.
const maxMergeDepth = 32

// lookup finds the value node of key in mapping m, following merge keys in document order.
func lookup(m *yaml.Node, key string, depth int) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode || depth > maxMergeDepth {
		return nil
	}

	for i := 0; i+1 < len(m.Content); i += 2 {
		if !isMergeKey(m.Content[i]) && m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}

	for i := 0; i+1 < len(m.Content); i += 2 {
		if !isMergeKey(m.Content[i]) {
			continue
		}
		merged := resolveAlias(m.Content[i+1])
		sources := []*yaml.Node{merged}
		if merged.Kind == yaml.SequenceNode {
			sources = merged.Content
		}
		for _, source := range sources {
			if v := lookup(resolveAlias(source), key, depth+1); v != nil {
				return v
			}
		}
	}

	return nil
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!merge"
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		return n.Alias
	}
	return n
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return fmt.Sprintf("kind %d", k)
	}
}

// Store gives access to the variables file at a fixed path.
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore creates a Store for the file at path on fs.
func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// NewOsStore creates a Store backed by the operating system filesystem.
func NewOsStore(path string) *Store {
	return NewStore(afero.NewOsFs(), path)
}

// Path returns the path of the variables file.
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the whole variables file.
func (s *Store) Load() (*File, error) {
	slog.Debug("loading variables", "path", s.path)

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, &ConfigReadError{Path: s.path, Err: err}
	}

	f, err := Parse(data)
	if err != nil {
		return nil, &ConfigReadError{Path: s.path, Err: err}
	}

	return f, nil
}

// Require loads the file and returns the values of the given keys.
func (s *Store) Require(keys ...string) (map[string]string, error) {
	f, err := s.Load()
	if err != nil {
		return nil, err
	}

	values, err := f.Require(keys...)
	if err != nil {
		var missing *MissingFieldError
		if errors.As(err, &missing) {
			missing.Path = s.path
		}
		return nil, err
	}

	return values, nil
}

// Save rewrites the whole variables file.
// The content is written to a temporary file in the same directory which is then renamed over the
// original, so readers only ever see the old or the new content. The file must already exist.
func (s *Store) Save(f *File) error {
	slog.Debug("saving variables", "path", s.path)

	info, err := s.fs.Stat(s.path)
	if err != nil {
		return &ConfigWriteError{Path: s.path, Err: err}
	}

	data, err := f.Bytes()
	if err != nil {
		return &ConfigWriteError{Path: s.path, Err: fmt.Errorf("failed to encode YAML: %w", err)}
	}

	tmp, err := afero.TempFile(s.fs, filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &ConfigWriteError{Path: s.path, Err: fmt.Errorf("failed to create temporary file: %w", err)}
	}
	tmpName := tmp.Name()

	if err := writeAndClose(tmp, data); err != nil {
		_ = s.fs.Remove(tmpName)
		return &ConfigWriteError{Path: s.path, Err: err}
	}

	if err := s.fs.Chmod(tmpName, info.Mode().Perm()); err != nil {
		_ = s.fs.Remove(tmpName)
		return &ConfigWriteError{Path: s.path, Err: fmt.Errorf("failed to set file mode: %w", err)}
	}

	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return &ConfigWriteError{Path: s.path, Err: fmt.Errorf("failed to replace file: %w", err)}
	}

	return nil
}

// Set loads the file, stores value under key and rewrites the file.
func (s *Store) Set(key, value string) error {
	f, err := s.Load()
	if err != nil {
		return err
	}

	f.Set(key, value)

	return s.Save(f)
}

func writeAndClose(file afero.File, data []byte) error {
	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	return nil
}
