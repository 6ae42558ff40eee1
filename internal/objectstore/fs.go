package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"logsearch-backend/internal/model"
)

// DirStore maps buckets to sub-directories of a root directory. Object names are
// slash-separated paths relative to the bucket directory.
type DirStore struct {
	root string
}

func NewDirStore(root string) (*DirStore, error) {
	if root == "" {
		return nil, errors.New("object store root directory is not configured")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create object store root %s: %w", root, err)
	}
	log.Info().Str("root", root).Msg("Directory object store initialized")
	return &DirStore{root: root}, nil
}

func (s *DirStore) List(ctx context.Context, bucket string) ([]model.LogObject, error) {
	bucketDir, err := s.bucketDir(bucket)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(bucketDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
		}
		return nil, fmt.Errorf("failed to stat bucket directory %s: %w", bucketDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrBucketNotFound, bucketDir)
	}

	var objects []model.LogObject
	err = filepath.WalkDir(bucketDir, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			log.Warn().Err(walkErr).Str("path", p).Msg("Failed to read bucket entry")
			return nil
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), ".tmp") {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			log.Warn().Err(err).Str("path", p).Msg("Failed to stat bucket entry")
			return nil
		}
		rel, err := filepath.Rel(bucketDir, p)
		if err != nil {
			return err
		}
		objects = append(objects, model.LogObject{
			Name:         filepath.ToSlash(rel),
			Size:         fi.Size(),
			LastModified: fi.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk bucket directory %s: %w", bucketDir, err)
	}
	return objects, nil
}

func (s *DirStore) Get(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.objectPath(bucket, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, name)
		}
		return nil, err
	}
	return f, nil
}

// Put writes through a temporary file and renames it so readers never see a partial object.
func (s *DirStore) Put(ctx context.Context, bucket, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.objectPath(bucket, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}

	tempFilePath := p + ".tmp"
	if err := os.WriteFile(tempFilePath, data, 0o644); err != nil {
		log.Error().Err(err).Str("file", tempFilePath).Msg("Failed to write temporary object file")
		return err
	}
	if err := os.Rename(tempFilePath, p); err != nil {
		log.Error().Err(err).Str("from", tempFilePath).Str("to", p).Msg("Failed to rename object file")
		_ = os.Remove(tempFilePath)
		return err
	}
	return nil
}

func (s *DirStore) bucketDir(bucket string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return "", fmt.Errorf("%w: invalid bucket name %q", ErrBucketNotFound, bucket)
	}
	return filepath.Join(s.root, bucket), nil
}

func (s *DirStore) objectPath(bucket, name string) (string, error) {
	dir, err := s.bucketDir(bucket)
	if err != nil {
		return "", err
	}
	clean := path.Clean("/" + name)
	if clean == "/" {
		return "", fmt.Errorf("%w: empty object name", ErrObjectNotFound)
	}
	return filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
