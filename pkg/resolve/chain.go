package resolve

import (
	"context"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/artifact"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
)

// Chain asks each source in turn. The first answer that is not NOT_FOUND
// wins.
type Chain []Source

// Descriptor implements Source.
func (c Chain) Descriptor(ctx context.Context, coord artifact.Coordinate) (*Descriptor, error) {
	var firstErr error
	for _, s := range c {
		d, err := s.Descriptor(ctx, coord)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, errors.ErrCodeNotFound) {
			return nil, err
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = errors.New(errors.ErrCodeNotFound, "no source for %s", coord)
	}
	return nil, firstErr
}

// Prefetch forwards to every source that supports it.
func (c Chain) Prefetch(ctx context.Context, coords []artifact.Coordinate) error {
	for _, s := range c {
		if pf, ok := s.(Prefetcher); ok {
			if err := pf.Prefetch(ctx, coords); err != nil {
				return err
			}
		}
	}
	return nil
}
