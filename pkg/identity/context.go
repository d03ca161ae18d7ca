package identity

import (
	"context"

	"github.com/palisadehq/palisade/pkg/contextkeys"
)

// FromContext retrieves the authenticated identity placed in the context by
// the guard composer. ok is false on routes where no authenticating preset
// ran.
func FromContext(ctx context.Context) (*Identity, bool) {
	ident, ok := ctx.Value(contextkeys.IdentityKey).(*Identity)
	return ident, ok
}
