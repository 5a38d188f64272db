//go:build mage

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoTargetArguments(t *testing.T) {
	plain := goTarget{verb: "test", args: []string{"./..."}}
	assert.Equal(t, []string{"test", "./..."}, plain.arguments())

	tagged := goTarget{verb: "build", tags: []string{"release", "netgo"}, args: []string{"-o", BINARY, "."}}
	assert.Equal(t, []string{"build", "-tags", "release,netgo", "-o", "bin/shaderbind", "."}, tagged.arguments())
}
