package core

import (
	"errors"
)

var (
	// ErrInvariantViolation marks programmer errors: broken internal
	// consistency that must be prevented upstream.
	ErrInvariantViolation = errors.New("invariant violation")

	ErrCacheNotInitialized     = errors.New("shader resource cache is not initialized")
	ErrCacheAlreadyInitialized = errors.New("shader resource cache is already initialized")
	ErrUnknownResourceType     = errors.New("unknown shader resource type")

	ErrCountsAlreadyReported = errors.New("resource counts reported more than once")
	ErrCountsNotReported     = errors.New("resource reported before counts")
	ErrSamplerOrder          = errors.New("all samplers must be reported before images")
	ErrSamplerNotFound       = errors.New("combined sampler is not registered")
	ErrCountMismatch         = errors.New("reported resources do not match declared counts")
	ErrSetNotCovered         = errors.New("descriptor set has uninitialized slots")
	ErrNonCanonicalOrder     = errors.New("descriptor set is not in canonical order")
	ErrLayoutConflict        = errors.New("conflicting resource declarations")

	ErrResourceStateMismatch = errors.New("resource state is incorrect")
	ErrUnknownResource       = errors.New("unknown shader resource")
	ErrArrayIndexOutOfRange  = errors.New("array index out of range")
	ErrResourceKindMismatch  = errors.New("object kind does not match resource type")

	ErrCommandBufferNotRecording = errors.New("command buffer is not recording")
	ErrBarriersPending           = errors.New("barriers are pending without a command buffer")
)
