package core

import "sync/atomic"

// MemoryAllocator accounts for host memory owned by engine-side caches.
// Every Allocate is matched by exactly one Free with the same size.
type MemoryAllocator interface {
	Allocate(description string, size uintptr)
	Free(description string, size uintptr)
}

/**
 * @brief Allocator that keeps running totals of live memory.
 * Safe for concurrent use.
 */
type TrackingAllocator struct {
	allocated   atomic.Int64
	allocations atomic.Int64
	frees       atomic.Int64
}

var defaultAllocator = &TrackingAllocator{}

// DefaultAllocator returns the process-wide tracking allocator.
func DefaultAllocator() *TrackingAllocator {
	return defaultAllocator
}

func (a *TrackingAllocator) Allocate(description string, size uintptr) {
	a.allocated.Add(int64(size))
	a.allocations.Add(1)
	LogDebug("allocated %s: %s", description, FormatMemorySize(size, 2, 0))
}

func (a *TrackingAllocator) Free(description string, size uintptr) {
	remaining := a.allocated.Add(-int64(size))
	a.frees.Add(1)
	Verify(remaining >= 0, "freed more memory than allocated (%s)", description)
	LogDebug("freed %s: %s", description, FormatMemorySize(size, 2, 0))
}

// Allocated returns the number of live bytes.
func (a *TrackingAllocator) Allocated() int64 {
	return a.allocated.Load()
}

func (a *TrackingAllocator) Allocations() int64 {
	return a.allocations.Load()
}

func (a *TrackingAllocator) Frees() int64 {
	return a.frees.Load()
}
