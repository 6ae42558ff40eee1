package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"logsearch-backend/config"
	"logsearch-backend/internal/model"
	"logsearch-backend/internal/objectstore"
)

const (
	OrderingName     = "name"
	OrderingModified = "modified"
)

// Ordering compares two objects; objects that compare lower are searched first.
type Ordering func(a, b model.LogObject) int

// NameDescending orders by object name, greatest first. Names are expected to embed a sortable
// timestamp, so this approximates newest-first without parsing anything.
func NameDescending(a, b model.LogObject) int {
	return strings.Compare(b.Name, a.Name)
}

// LastModifiedDescending orders by store modification time, newest first, ties by name descending.
func LastModifiedDescending(a, b model.LogObject) int {
	if c := b.LastModified.Compare(a.LastModified); c != 0 {
		return c
	}
	return NameDescending(a, b)
}

func OrderingByName(name string) (Ordering, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", OrderingName:
		return NameDescending, nil
	case OrderingModified:
		return LastModifiedDescending, nil
	default:
		return nil, fmt.Errorf("unknown object ordering %q", name)
	}
}

// LogObjectRepository enumerates the log objects of one bucket.
type LogObjectRepository interface {
	// List returns every object of the bucket in search order.
	// It fails with model.ErrStoreUnavailable when the store or bucket cannot be reached.
	List(ctx context.Context) ([]model.LogObject, error)
}

type logObjectRepository struct {
	store    objectstore.Store
	bucket   string
	ordering Ordering
}

func NewLogObjectRepository(store objectstore.Store, bucket string, ordering Ordering) LogObjectRepository {
	if ordering == nil {
		ordering = NameDescending
	}
	return &logObjectRepository{
		store:    store,
		bucket:   bucket,
		ordering: ordering,
	}
}

// NewConfiguredLogObjectRepository reads the bucket and ordering from config.
func NewConfiguredLogObjectRepository(cfg *config.Config, store objectstore.Store) (LogObjectRepository, error) {
	ordering, err := OrderingByName(cfg.Search.Ordering)
	if err != nil {
		return nil, err
	}
	return NewLogObjectRepository(store, cfg.ObjectStore.Bucket, ordering), nil
}

func (r *logObjectRepository) List(ctx context.Context) ([]model.LogObject, error) {
	objects, err := r.store.List(ctx, r.bucket)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Error().Err(err).Str("bucket", r.bucket).Msg("Failed to list log objects")
		return nil, fmt.Errorf("%w: list bucket %s: %v", model.ErrStoreUnavailable, r.bucket, err)
	}

	slices.SortStableFunc(objects, func(a, b model.LogObject) int {
		if c := r.ordering(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	log.Debug().Str("bucket", r.bucket).Int("object_count", len(objects)).Msg("Listed log objects")
	return objects, nil
}
