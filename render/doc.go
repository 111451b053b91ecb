// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render manages offscreen render targets.
//
// A [Target] is a render target with a color texture attached. Rendering
// is redirected into it by recording a target bind on a
// [recording.Queue]; once replayed, its texture can be sampled like any
// other texture, which is how the effect compositor reads its accumulation
// buffers back.
//
// Targets are allocated and released through a [TargetAllocator], which
// every device implements. Allocation is immediate, unlike drawing, which
// goes through the queue.
package render
