package blob

import (
	"context"
	"os"
	"path/filepath"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

const tempAlphabet = "abcdefghikmonpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ0123456789"

// LocalStore keeps objects as files. Keys are paths.
type LocalStore struct{}

func NewLocalStore() *LocalStore {
	return &LocalStore{}
}

func (s *LocalStore) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lerrors.ReadFile(path, err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(data)).Msg("read local file")
	return data, nil
}

// Put writes to a sibling temp file and renames it over path, so readers
// never observe a partial file.
func (s *LocalStore) Put(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp := filepath.Join(dir, "."+base+".tmp-"+gonanoid.MustGenerate(tempAlphabet, 8))

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return lerrors.WriteFile(path, len(data), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return lerrors.WriteFile(path, len(data), err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(data)).Msg("wrote local file")
	return nil
}
