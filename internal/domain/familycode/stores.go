package familycode

import "context"

// LocalStore answers code-existence queries against the on-device/co-located
// store. It is assumed always available; any error it returns is fatal for
// the current operation and propagates unchanged.
type LocalStore interface {
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// RemoteLookupResult is the three-way outcome of a remote code lookup.
type RemoteLookupResult int

const (
	RemoteNotFound RemoteLookupResult = iota
	RemoteFound
	RemoteUnreachable
)

func (r RemoteLookupResult) String() string {
	switch r {
	case RemoteFound:
		return "found"
	case RemoteUnreachable:
		return "unreachable"
	default:
		return "not_found"
	}
}

// RemoteStore answers code-existence queries against the sync backend.
// Implementations map network timeouts, DNS failures and transient server
// errors to RemoteUnreachable with a nil error; a non-nil error is reserved
// for context cancellation.
type RemoteStore interface {
	ExistsByCode(ctx context.Context, code string) (RemoteLookupResult, error)
}
