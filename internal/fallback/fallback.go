// Package fallback wraps calls to external collaborators whose failure
// must degrade the current operation instead of aborting it.
package fallback

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Call runs fn and returns its result. If fn returns an error or panics,
// the error is logged under name and def is returned instead.
func Call[T any](ctx context.Context, name string, fn func(context.Context) (T, error), def T) T {
	v, err := guard(ctx, fn)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("collaborator", name).Msg("external call failed, using fallback")
		return def
	}
	return v
}

// Do runs fn for its side effect only. Failures are logged under name and
// otherwise ignored.
func Do(ctx context.Context, name string, fn func(context.Context) error) {
	_, err := guard(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("collaborator", name).Msg("external call failed, skipped")
	}
}

func guard[T any](ctx context.Context, fn func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}
