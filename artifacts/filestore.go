package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/klauspost/compress/gzip"
)

const (
	CacheControlFinal = "public, max-age=604800"
	CacheControlLive  = "s-maxage=0, max-age=0, must-revalidate"

	metaSuffix = ".meta.json"
)

var ErrNotFound = errors.New("artifact not found")

// Meta is stored next to each artifact and replayed as response headers.
type Meta struct {
	ContentType     string `json:"contentType"`
	ContentEncoding string `json:"contentEncoding"`
	CacheControl    string `json:"cacheControl"`
}

type Object struct {
	Data []byte
	Meta Meta
}

// FileStore writes gzip-compressed JSON artifacts under a root directory.
// An artifact stored with key k lands at <root>/<prefix><k>.gz.
type FileStore struct {
	root   string
	prefix string
	logger *slog.Logger
}

func NewFileStore(root, prefix string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{root: root, prefix: prefix, logger: logger}, nil
}

// ObjectPath is the slash-separated path of key relative to the root.
func (s *FileStore) ObjectPath(key string) string {
	return s.prefix + key + ".gz"
}

func (s *FileStore) Prefix() string {
	return s.prefix
}

func (s *FileStore) filePath(objectPath string) (string, error) {
	clean := path.Clean("/" + objectPath)
	if clean == "/" || strings.HasSuffix(clean, metaSuffix) {
		return "", ErrNotFound
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// Put compresses data and replaces the artifact atomically. Cacheable
// artifacts are final and may be cached for a week.
func (s *FileStore) Put(ctx context.Context, key string, data []byte, cacheable bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	objectPath := s.ObjectPath(key)
	p, err := s.filePath(objectPath)
	if err != nil {
		return fmt.Errorf("invalid artifact key %q", key)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	if err := writeGzip(p, data); err != nil {
		return err
	}

	meta := Meta{
		ContentType:     "application/json",
		ContentEncoding: "gzip",
		CacheControl:    CacheControlLive,
	}
	if cacheable {
		meta.CacheControl = CacheControlFinal
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal artifact meta: %w", err)
	}
	if err := renameio.WriteFile(p+metaSuffix, metaJSON, 0o644); err != nil {
		return fmt.Errorf("write artifact meta: %w", err)
	}

	s.logger.Debug("Stored artifact", "path", objectPath, "bytes", len(data), "cacheable", cacheable)
	return nil
}

func writeGzip(p string, data []byte) error {
	pending, err := renameio.NewPendingFile(p, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending artifact: %w", err)
	}
	defer pending.Cleanup()

	zw := gzip.NewWriter(pending)
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("compress artifact: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress artifact: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace artifact: %w", err)
	}
	return nil
}

// Open reads a stored artifact by its object path, compressed bytes included.
func (s *FileStore) Open(objectPath string) (*Object, error) {
	p, err := s.filePath(objectPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	obj := &Object{Data: data, Meta: Meta{ContentType: "application/json"}}
	metaJSON, err := os.ReadFile(p + metaSuffix)
	switch {
	case err == nil:
		if err := json.Unmarshal(metaJSON, &obj.Meta); err != nil {
			return nil, fmt.Errorf("decode artifact meta: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read artifact meta: %w", err)
	}
	return obj, nil
}

// Get returns the decompressed content stored under key.
func (s *FileStore) Get(key string) ([]byte, error) {
	obj, err := s.Open(s.ObjectPath(key))
	if err != nil {
		return nil, err
	}
	zr, err := gzip.NewReader(bytes.NewReader(obj.Data))
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress artifact: %w", err)
	}
	return data, nil
}
