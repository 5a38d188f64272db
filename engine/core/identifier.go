package core

import (
	"fmt"

	"github.com/google/uuid"
)

// NewObjectName returns a unique debug name for an unnamed GPU object, used
// in diagnostics so that state errors always point at something.
func NewObjectName(kind string) string {
	return fmt.Sprintf("%s-%s", kind, uuid.New().String())
}

// ObjectNameOrDefault keeps name when it is set.
func ObjectNameOrDefault(name, kind string) string {
	if name != "" {
		return name
	}
	return NewObjectName(kind)
}
