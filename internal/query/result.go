package query

import (
	"context"
	"time"

	"github.com/evently-app/evently/pkg/analytics"
)

// Result is a typed snapshot of one query.
type Result[T any] struct {
	Data      T
	HasData   bool
	Err       error
	Loading   bool
	FetchedAt time.Time
}

// Kind classifies the error held by the result.
func (r Result[T]) Kind() analytics.ErrorKind {
	return analytics.Classify(r.Err)
}

// Ready reports whether the result holds data and nothing newer is loading.
func (r Result[T]) Ready() bool {
	return r.HasData && !r.Loading
}

// Failure returns the error of a resolved result. An error left over from an
// earlier attempt is not reported while a retry is loading.
func (r Result[T]) Failure() error {
	if r.Loading {
		return nil
	}
	return r.Err
}

// ResultOf converts a snapshot into a typed result. A value of another type
// is treated as absent.
func ResultOf[T any](s State) Result[T] {
	r := Result[T]{
		Err:       s.Err,
		Loading:   s.Loading,
		FetchedAt: s.FetchedAt,
	}
	if s.HasData {
		if v, ok := s.Data.(T); ok {
			r.Data = v
			r.HasData = true
		}
	}
	return r
}

// Await is the typed form of Cache.Await.
func Await[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) Result[T] {
	return ResultOf[T](c.Await(ctx, key, erase(fetch)))
}

// Refetch is the typed form of Cache.Refetch.
func Refetch[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) Result[T] {
	return ResultOf[T](c.Refetch(ctx, key, erase(fetch)))
}

// Fetch is the typed form of Cache.GetOrFetch.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	v, err := c.GetOrFetch(ctx, key, erase(fetch))
	if err != nil {
		var zero T
		return zero, err
	}
	t, _ := v.(T)
	return t, nil
}

func erase[T any](fetch func(context.Context) (T, error)) Fetcher {
	return func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}
}
