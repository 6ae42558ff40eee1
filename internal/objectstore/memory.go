package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"logsearch-backend/internal/model"
)

type memoryObject struct {
	data     []byte
	modified time.Time
}

// MemoryStore keeps objects in process memory. It backs tests and the "memory" driver.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string]memoryObject

	listErr error
	getErrs map[string]error
	gets    map[string]int
}

func NewMemoryStore(buckets ...string) *MemoryStore {
	s := &MemoryStore{
		buckets: make(map[string]map[string]memoryObject),
		getErrs: make(map[string]error),
		gets:    make(map[string]int),
	}
	for _, b := range buckets {
		s.buckets[b] = make(map[string]memoryObject)
	}
	return s
}

func (s *MemoryStore) CreateBucket(bucket string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[bucket]; !ok {
		s.buckets[bucket] = make(map[string]memoryObject)
	}
}

// FailList makes every List call return err until it is reset with nil.
func (s *MemoryStore) FailList(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

// FailGet makes Get of the named object return err.
func (s *MemoryStore) FailGet(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErrs[name] = err
}

// Gets reports how many times the named object has been fetched.
func (s *MemoryStore) Gets(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gets[name]
}

func (s *MemoryStore) List(ctx context.Context, bucket string) ([]model.LogObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listErr != nil {
		return nil, s.listErr
	}
	objects, ok := s.buckets[bucket]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}
	out := make([]model.LogObject, 0, len(objects))
	for name, obj := range objects {
		out = append(out, model.LogObject{Name: name, Size: int64(len(obj.data)), LastModified: obj.modified})
	}
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gets[name]++
	if err := s.getErrs[name]; err != nil {
		return nil, err
	}
	objects, ok := s.buckets[bucket]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}
	obj, ok := objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, name)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *MemoryStore) Put(ctx context.Context, bucket, name string, data []byte) error {
	return s.PutAt(ctx, bucket, name, data, time.Now().UTC())
}

// PutAt stores an object with an explicit modification time.
func (s *MemoryStore) PutAt(ctx context.Context, bucket, name string, data []byte, modified time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.buckets[bucket]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}
	objects[name] = memoryObject{data: append([]byte(nil), data...), modified: modified}
	return nil
}
