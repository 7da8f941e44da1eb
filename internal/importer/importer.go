// Package importer finds statement files and picks the parser for each.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrato-dev/extrato/internal/model"
	"github.com/extrato-dev/extrato/internal/ofx"
)

// ErrUnknownFormat is returned when no registered parser handles a file.
var ErrUnknownFormat = errors.New("unrecognized statement format")

// Parser converts a statement file into a model.Statement.
type Parser interface {
	Parse(r io.Reader) (*model.Statement, error)
	Format() string
}

// Registry holds named parsers and the file extensions that select them.
type Registry struct {
	parsers    map[string]Parser
	extensions map[string]string
}

// FileInfo describes a statement file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers:    make(map[string]Parser),
		extensions: make(map[string]string),
	}
}

// Register adds a parser selected by the given file extensions
// (with leading dot). Panics on duplicate format.
func (r *Registry) Register(p Parser, extensions ...string) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
	for _, ext := range extensions {
		r.extensions[strings.ToLower(ext)] = key
	}
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Supports reports whether fileName has a registered extension.
func (r *Registry) Supports(fileName string) bool {
	_, ok := r.extensions[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

// Detect picks the parser for a file, by extension first and then by
// sniffing the content for an OFX header or envelope.
func (r *Registry) Detect(fileName string, content []byte) (Parser, error) {
	if format, ok := r.extensions[strings.ToLower(filepath.Ext(fileName))]; ok {
		return r.parsers[format], nil
	}
	if p := r.Get("ofx"); p != nil && looksLikeOFX(content) {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, fileName)
}

// sniffLen bounds how much of a file is inspected for a header.
const sniffLen = 4096

func looksLikeOFX(content []byte) bool {
	head := bytes.ToUpper(content[:min(len(content), sniffLen)])
	return bytes.Contains(head, []byte("OFXHEADER")) || bytes.Contains(head, []byte("<OFX"))
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry(opts ...ofx.Option) *Registry {
	r := NewRegistry()
	r.Register(ofx.NewParser(opts...), ".ofx", ".qfx")
	return r
}

// importDir is the subdirectory for statement files awaiting import.
const importDir = "import"

// processedDir is the subdirectory for imported statement files.
const processedDir = "import/processed"

// Scan returns the files in <repoRoot>/import/ that r can parse.
func (r *Registry) Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !r.Supports(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, importDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
