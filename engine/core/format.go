package core

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

const (
	kibiByte = 1 << 10
	mebiByte = 1 << 20
	gibiByte = 1 << 30
)

/**
 * @brief Formats a byte count for log output.
 * @param size The number of bytes.
 * @param precision Digits after the decimal point for KB/MB/GB.
 * @param refSize When non-zero, selects the unit instead of size so that
 * several values can be printed with the same unit.
 */
func FormatMemorySize[T constraints.Integer](size T, precision int, refSize T) string {
	ref := uint64(refSize)
	if refSize == 0 {
		ref = uint64(size)
	}
	switch {
	case ref >= gibiByte:
		return fmt.Sprintf("%.*f GB", precision, float64(size)/gibiByte)
	case ref >= mebiByte:
		return fmt.Sprintf("%.*f MB", precision, float64(size)/mebiByte)
	case ref >= kibiByte:
		return fmt.Sprintf("%.*f KB", precision, float64(size)/kibiByte)
	}
	if size == 1 {
		return fmt.Sprintf("%d Byte", uint64(size))
	}
	return fmt.Sprintf("%d Bytes", uint64(size))
}
