//go:build mage

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// goTarget is one invocation of the go tool for a mage target.
type goTarget struct {
	verb string
	tags []string
	env  map[string]string
	args []string
}

func (g goTarget) arguments() []string {
	args := []string{g.verb}
	if len(g.tags) > 0 {
		args = append(args, "-tags", strings.Join(g.tags, ","))
	}
	return append(args, g.args...)
}

// run streams the output of the go tool; with -v mage also echoes the command.
func (g goTarget) run() error {
	args := g.arguments()
	fmt.Printf("Executing: %s %s\n", mg.GoCmd(), strings.Join(args, " "))
	if err := sh.RunWithV(g.env, mg.GoCmd(), args...); err != nil {
		return fmt.Errorf("go %s: %w", g.verb, err)
	}
	return nil
}
