// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/fxrender"
	"github.com/gogpu/fxrender/recording"
)

// Errors returned by NewTarget.
var (
	ErrNilAllocator = errors.New("render: nil target allocator")
	ErrInvalidSize  = errors.New("render: invalid target size")
)

// TargetAllocator creates and releases render targets on a device.
type TargetAllocator interface {
	// CreateTarget allocates a width x height RGBA8 render target and its
	// color texture. Both ids are non-zero.
	CreateTarget(width, height int) (framebuffer, texture uint32, err error)

	// DestroyTarget releases a render target and its color texture.
	DestroyTarget(framebuffer uint32)
}

// Target is an offscreen render target with an attached color texture.
// It exclusively owns both until Destroy is called.
type Target struct {
	width       int
	height      int
	framebuffer uint32
	texture     uint32
	alloc       TargetAllocator
}

// NewTarget allocates a width x height target.
func NewTarget(alloc TargetAllocator, width, height int) (*Target, error) {
	if alloc == nil {
		return nil, ErrNilAllocator
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	fb, tex, err := alloc.CreateTarget(width, height)
	if err != nil {
		return nil, fmt.Errorf("render: create %dx%d target: %w", width, height, err)
	}
	fxrender.Logger().Info("render: target created",
		"framebuffer", fb, "texture", tex, "width", width, "height", height)
	return &Target{
		width:       width,
		height:      height,
		framebuffer: fb,
		texture:     tex,
		alloc:       alloc,
	}, nil
}

// Width returns the target width in pixels.
func (t *Target) Width() int { return t.width }

// Height returns the target height in pixels.
func (t *Target) Height() int { return t.height }

// Framebuffer returns the id to pass to recording.Queue.BindTarget.
func (t *Target) Framebuffer() uint32 { return t.framebuffer }

// Texture returns the id of the color texture.
func (t *Target) Texture() uint32 { return t.texture }

// Bind records a bind of the target on q.
func (t *Target) Bind(q *recording.Queue) {
	q.BindTarget(t.framebuffer)
}

// Unbind records a bind of the default framebuffer on q.
func Unbind(q *recording.Queue) {
	q.BindTarget(0)
}

// Destroy releases the target. It is safe to call on a nil or already
// destroyed target.
func (t *Target) Destroy() {
	if t == nil || t.framebuffer == 0 {
		return
	}
	t.alloc.DestroyTarget(t.framebuffer)
	t.framebuffer, t.texture = 0, 0
}

// EnsureTarget returns t if it is width x height. Otherwise t is destroyed
// and a new target is allocated; created reports whether that happened.
func EnsureTarget(t *Target, alloc TargetAllocator, width, height int) (target *Target, created bool, err error) {
	if t != nil && t.framebuffer != 0 && t.width == width && t.height == height {
		return t, false, nil
	}
	t.Destroy()
	nt, err := NewTarget(alloc, width, height)
	if err != nil {
		return nil, false, err
	}
	return nt, true, nil
}
