package objectstore

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	dagaudit "github.com/ipld/go-dagaudit"
)

// FSStore implements Store over a directory, mapping object keys to slash
// separated paths below it. It is useful for auditing a local mirror of a
// bucket.
type FSStore struct {
	fs afero.Fs
}

var _ Store = (*FSStore)(nil)

// NewFSStore creates an FSStore rooted at dir on the OS filesystem.
func NewFSStore(dir string) *FSStore {
	return NewFSStoreFromFs(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// NewFSStoreFromFs creates an FSStore whose keys are paths in fsys.
func NewFSStoreFromFs(fsys afero.Fs) *FSStore {
	return &FSStore{fs: fsys}
}

func (s *FSStore) List(ctx context.Context, prefix string) ([]string, error) {
	// walk from the deepest directory fully named by the prefix
	dir := "/"
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		dir = "/" + prefix[:i]
	}
	var keys []string
	err := afero.Walk(s.fs, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		key := strings.TrimPrefix(filepath.ToSlash(path), "/")
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, &dagaudit.RemoteReadError{Op: "list", Key: prefix, Err: err}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FSStore) Exists(ctx context.Context, key string) (bool, error) {
	info, err := s.fs.Stat("/" + key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, &dagaudit.RemoteReadError{Op: "stat", Key: key, Err: err}
	}
	return !info.IsDir(), nil
}

func (s *FSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := s.fs.Open("/" + key)
	if err != nil {
		return nil, &dagaudit.RemoteReadError{Op: "open", Key: key, Err: err}
	}
	return f, nil
}
