package pipeline

// WriteAuthorization is the capability repair operations demand before
// mutating production rows. The zero value is read-only, so a forgotten
// grant degrades to a dry run instead of a write.
type WriteAuthorization struct {
	granted bool
	actor   string
}

// AuthorizeWrites mints a write-granting capability attributed to actor.
// Only entry points (cmd binaries, token-checked job handlers) call this.
func AuthorizeWrites(actor string) WriteAuthorization {
	return WriteAuthorization{granted: true, actor: actor}
}

// ReadOnly is the explicit dry-run capability.
func ReadOnly() WriteAuthorization {
	return WriteAuthorization{}
}

func (w WriteAuthorization) Granted() bool {
	return w.granted
}

func (w WriteAuthorization) Actor() string {
	return w.actor
}
