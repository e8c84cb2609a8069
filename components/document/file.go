package document

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
)

// LoadFile parses a local file
func LoadFile(ctx context.Context, fname string) (*Document, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	fileInfo, err := fp.Stat()
	if err != nil {
		return nil, err
	}
	doc, err := Load(ctx, fname, fp)
	if err != nil {
		return nil, err
	}
	doc.Meta["filename"] = fileInfo.Name()
	doc.Meta["modtime"] = strconv.FormatInt(fileInfo.ModTime().Unix(), 10)
	return doc, nil
}

// LoadDir walks dir and parses every supported file.
// Files which fail to parse are logged and skipped.
func LoadDir(ctx context.Context, dir string) ([]Document, error) {
	var docs []Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !Supported(path) {
			return nil
		}
		doc, err := LoadFile(ctx, path)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("skip document")
			return nil
		}
		if doc.Content == "" {
			return nil
		}
		if rel, err := filepath.Rel(dir, path); err == nil {
			doc.Name = rel
			doc.Meta["source"] = rel
		}
		docs = append(docs, *doc)
		return nil
	})
	return docs, err
}
