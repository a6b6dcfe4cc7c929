// Package all registers every built-in ledger storage backend.
package all

import (
	_ "github.com/glyphforge/sphinx/lib/ledger/boltstore"
	_ "github.com/glyphforge/sphinx/lib/ledger/memory"
	_ "github.com/glyphforge/sphinx/lib/ledger/s3store"
	_ "github.com/glyphforge/sphinx/lib/ledger/valkeystore"
)
