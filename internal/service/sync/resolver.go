package sync

import "time"

// Strategy selects how two versions of the same logical record reconcile.
type Strategy string

const (
	// StrategyLastWriteWins keeps whichever version carries the strictly
	// newer update timestamp. The default for all mutable sync types.
	StrategyLastWriteWins Strategy = "last_write_wins"
	// StrategyPreferLocal forces the stored version (user override).
	StrategyPreferLocal Strategy = "prefer_local"
	// StrategyPreferRemote forces the incoming version (user override).
	StrategyPreferRemote Strategy = "prefer_remote"
)

// Version is one side of a conflict: a value blob plus its update timestamp.
// A nil timestamp means the write carried no trustworthy clock.
type Version struct {
	Value     []byte
	UpdatedAt *time.Time
}

// Resolver reconciles a locally-stored version with an incoming one.
// It is a pure strategy object: the caller persists the winner.
type Resolver struct{}

// NewResolver creates a Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the winning version and whether the remote side won.
// Losing a comparison is a normal outcome, never an error.
//
// Under last-write-wins the remote version wins only when its timestamp is
// strictly newer than the local one; ties and older timestamps keep the
// stored state. A missing timestamp on either side defaults to the remote
// version — an untimestamped incoming write is treated as authoritative,
// matching "insert if nothing trustworthy exists".
func (r *Resolver) Resolve(local, remote Version, strategy Strategy) (Version, bool) {
	switch strategy {
	case StrategyPreferLocal:
		return local, false
	case StrategyPreferRemote:
		return remote, true
	}

	if local.UpdatedAt == nil || remote.UpdatedAt == nil {
		return remote, true
	}

	if remote.UpdatedAt.After(*local.UpdatedAt) {
		return remote, true
	}

	return local, false
}
