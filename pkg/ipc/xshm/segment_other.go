//go:build !unix

package xshm

import "context"

type mapping struct{}

// Update 在非 Unix 平台上返回 [ErrUnsupportedPlatform]。
func (s *Segment) Update(context.Context, func(Counter) (Counter, error)) error {
	return ErrUnsupportedPlatform
}

// Snapshot 在非 Unix 平台上返回 [ErrUnsupportedPlatform]。
func (s *Segment) Snapshot(context.Context) (Counter, error) {
	return Counter{}, ErrUnsupportedPlatform
}

// Destroy 在非 Unix 平台上返回 [ErrUnsupportedPlatform]。
func (s *Segment) Destroy(context.Context) error {
	return ErrUnsupportedPlatform
}

// Close 在非 Unix 平台上无资源可释放。
func (s *Segment) Close() error {
	return nil
}
