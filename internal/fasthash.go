package internal

import (
	"fmt"
	"hash/fnv"
)

// FastHash gives a short stable fingerprint of an input string. It is used
// for log correlation and policy rule identity, never for anything with
// security weight.
func FastHash(s string) string {
	h := fnv.New64a()
	fmt.Fprint(h, s)
	return fmt.Sprintf("%x", h.Sum64())
}
