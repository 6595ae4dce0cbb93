package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/libros-dev/libros/internal/journal"
)

// Parser converts a CSV file into transaction candidates.
type Parser interface {
	Parse(r io.Reader) ([]journal.Candidate, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats returns the registered format names.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	return out
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&NativeParser{})
	r.Register(SalesBookParser())
	r.Register(PurchaseBookParser())
	return r
}

// importDir is the subdirectory for import CSVs.
const importDir = "import"

// processedDir is the subdirectory for processed CSVs.
const processedDir = "import/processed"

// Scan returns CSV files in <root>/import/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
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
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
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
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(root, importDir, fileName)
	dstDir := filepath.Join(root, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

// RowError is a row rejected by validation.
type RowError struct {
	File string
	Row  int // 1-based, counting the header
	Errs journal.Errors
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s row %d: %s", e.File, e.Row, e.Errs.Error())
}

// FileResult is the outcome of importing one file.
type FileResult struct {
	File     string
	Created  int
	Rejected []RowError
}

// ImportFile validates every row of one file through the ledger and creates
// the transactions only when all rows pass. A file with rejected rows is
// left in place with nothing written.
func ImportFile(ctx context.Context, svc *journal.Service, p Parser, f FileInfo) (FileResult, error) {
	res := FileResult{File: f.Name}

	fh, err := os.Open(f.Path)
	if err != nil {
		return res, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer fh.Close()

	cands, err := p.Parse(fh)
	if err != nil {
		return res, fmt.Errorf("parsing %s as %s: %w", f.Name, p.Format(), err)
	}

	for i, errs := range svc.ValidateBatch(cands) {
		if len(errs) > 0 {
			res.Rejected = append(res.Rejected, RowError{File: f.Name, Row: i + 2, Errs: errs})
		}
	}
	if len(res.Rejected) > 0 {
		return res, nil
	}

	created, err := svc.CreateBatch(ctx, cands)
	if err != nil {
		return res, fmt.Errorf("importing %s: %w", f.Name, err)
	}
	res.Created = len(created)
	return res, nil
}

// Run imports every CSV in <root>/import/ and moves fully imported files to
// import/processed/.
func Run(ctx context.Context, root string, svc *journal.Service, p Parser) ([]FileResult, error) {
	files, err := Scan(root)
	if err != nil {
		return nil, err
	}

	var results []FileResult
	for _, f := range files {
		res, err := ImportFile(ctx, svc, p, f)
		results = append(results, res)
		if err != nil {
			return results, err
		}
		if len(res.Rejected) == 0 {
			if err := MarkProcessed(root, f.Name); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}
