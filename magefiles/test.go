//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs the unit tests with the debug checks enabled.
func (Test) Unit() error {
	return goTarget{verb: "test", args: []string{"./..."}}.run()
}

// Runs the unit tests with the debug checks compiled out.
func (Test) Release() error {
	return goTarget{verb: "test", tags: []string{"release"}, args: []string{"./..."}}.run()
}

// Runs the unit tests under the race detector.
func (Test) Race() error {
	mg.Deps(Test.Unit)
	return goTarget{verb: "test", env: map[string]string{"CGO_ENABLED": "1"}, args: []string{"-race", "./..."}}.run()
}
