package reader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	longdoc "github.com/MegaGrindStone/go-longdoc"
	"github.com/gabriel-vasile/mimetype"
)

// FileSystem reads plain text documents from disk. It implements both longdoc.Reader and
// longdoc.Policy, so the same extension and size rules apply to documents that arrive by other
// means.
type FileSystem struct {
	// Extensions is the accepted extension whitelist, compared case-insensitively.
	// Defaults to the longdoc.DefaultConfig extensions if empty.
	Extensions []string
	// MaxBytes bounds the accepted document size. Non-positive means no limit.
	MaxBytes int64
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FromConfig returns a FileSystem using cfg's extension whitelist and size limit.
func FromConfig(cfg longdoc.Config) FileSystem {
	return FileSystem{Extensions: cfg.Extensions, MaxBytes: cfg.MaxFileBytes}
}

// Read loads the file at path as a document named after the file's base name. Line endings are
// normalized to LF and a leading UTF-8 byte order mark is removed.
func (f FileSystem) Read(path string) (longdoc.Document, error) {
	name := filepath.Base(path)
	if !f.allowedExt(name) {
		return longdoc.Document{}, fmt.Errorf("%w: %s", longdoc.ErrUnsupportedType, filepath.Ext(name))
	}

	info, err := os.Stat(path)
	if err != nil {
		return longdoc.Document{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return longdoc.Document{}, fmt.Errorf("%w: %s is a directory", longdoc.ErrUnsupportedType, name)
	}
	if f.MaxBytes > 0 && info.Size() > f.MaxBytes {
		return longdoc.Document{}, fmt.Errorf("%w: %d bytes, limit %d", longdoc.ErrTooLarge, info.Size(), f.MaxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return longdoc.Document{}, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > 0 && !isText(data) {
		return longdoc.Document{}, fmt.Errorf("%w: %s is %s", longdoc.ErrUnsupportedType, name, mimetype.Detect(data))
	}

	return longdoc.Document{Name: name, Content: normalize(data)}, nil
}

// Accept applies the extension, size and text-type rules to a document. Documents without a name
// skip the extension check.
func (f FileSystem) Accept(doc longdoc.Document) error {
	if doc.Name != "" && !f.allowedExt(doc.Name) {
		return fmt.Errorf("%w: %s", longdoc.ErrUnsupportedType, filepath.Ext(doc.Name))
	}
	if doc.Content == "" {
		return longdoc.ErrEmptyDocument
	}
	if f.MaxBytes > 0 && int64(len(doc.Content)) > f.MaxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", longdoc.ErrTooLarge, len(doc.Content), f.MaxBytes)
	}
	if !isText([]byte(doc.Content)) {
		return fmt.Errorf("%w: content is not text", longdoc.ErrUnsupportedType)
	}
	return nil
}

func (f FileSystem) allowedExt(name string) bool {
	exts := f.Extensions
	if len(exts) == 0 {
		exts = longdoc.DefaultConfig().Extensions
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

func isText(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func normalize(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	s := string(data)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
