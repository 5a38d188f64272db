//go:build !release

package core

// DebugChecksEnabled gates invariant checks that are compiled out of release builds.
const DebugChecksEnabled = true
