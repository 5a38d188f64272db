//go:build release

package core

const DebugChecksEnabled = false
