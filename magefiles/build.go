//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

const BINARY = "bin/shaderbind"

type Build mg.Namespace

// Builds the shaderbind binary into bin/.
func (Build) Binary() error {
	return goTarget{verb: "build", args: []string{"-o", BINARY, "."}}.run()
}

// Builds the binary with the debug checks compiled out.
func (Build) Release() error {
	return goTarget{verb: "build", tags: []string{"release"}, args: []string{"-trimpath", "-o", BINARY, "."}}.run()
}

type Run mg.Namespace

// Reflects the given WGSL shader and prints its resource layout.
func (Run) Inspect(shader string) error {
	return goTarget{verb: "run", args: []string{".", shader}}.run()
}
