package history

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
)

// DefaultSourcePath is where perf_collector writes its records.
const DefaultSourcePath = "/tmp/perf_data.csv"

// Source is a re-readable record log. Open must return an error matching
// fs.ErrNotExist while the log has not been created yet.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// FileSource reads records from a file. Files ending in .gz are decompressed.
type FileSource struct {
	Path string
}

var _ Source = FileSource{}

func NewFileSource(path string) FileSource {
	return FileSource{Path: path}
}

func (f FileSource) Name() string {
	return f.Path
}

func (f FileSource) Open() (io.ReadCloser, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(f.Path, ".gz") {
		return file, nil
	}

	zr, err := pgzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &gzipFile{Reader: zr, file: file}, nil
}

type gzipFile struct {
	*pgzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	zerr := g.Reader.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return zerr
}
