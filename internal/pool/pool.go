// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

// Package pool provides strongly-typed object pooling, used by the transport
// layer to reuse request-encoding buffers.
package pool

import (
	"bytes"
	"sync"
)

// Pool is a generics wrapper around [sync.Pool] that provides strongly-typed pooling.
type Pool[T any] struct {
	pool sync.Pool
}

// New returns a new [Pool] for T, using fn to construct new T's when the pool is empty.
func New[T any](fn func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return fn()
			},
		},
	}
}

// Get gets a T from the pool, or creates a new one if the pool is empty.
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put returns x into the pool.
func (p *Pool[T]) Put(x T) {
	p.pool.Put(x)
}

// Buffer pools [*bytes.Buffer] values for the request encode path.
var Buffer = New(func() *bytes.Buffer {
	return &bytes.Buffer{}
})
