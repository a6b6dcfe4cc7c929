// Package all registers every built-in puzzle scheme.
package all

import (
	_ "github.com/glyphforge/sphinx/lib/puzzle/hashriddle"
	_ "github.com/glyphforge/sphinx/lib/puzzle/mathfactor"
	_ "github.com/glyphforge/sphinx/lib/puzzle/pattern"
)
