package dagaudit

import (
	"fmt"
)

// WalkOrder is the order in which newly discovered children are queued during
// a DAG walk. It only affects which failure is reported first; the verdict is
// the same for both orders.
type WalkOrder string

const (
	// WalkOrderDFS queues children ahead of the rest of the work queue,
	// preserving their link order.
	WalkOrderDFS WalkOrder = "dfs"
	// WalkOrderBFS queues children behind the rest of the work queue.
	WalkOrderBFS WalkOrder = "bfs"
)

// ParseWalkOrder parses a string form of a WalkOrder into a WalkOrder.
func ParseWalkOrder(s string) (WalkOrder, error) {
	switch s {
	case "dfs":
		return WalkOrderDFS, nil
	case "bfs":
		return WalkOrderBFS, nil
	default:
		return WalkOrderDFS, fmt.Errorf("invalid WalkOrder: %q", s)
	}
}

// String returns the string form of the WalkOrder, defaulting to "dfs" for the
// zero value.
func (o WalkOrder) String() string {
	if o == "" {
		return string(WalkOrderDFS)
	}
	return string(o)
}

// Layout describes where the shards for a root live in a bucket.
type Layout struct {
	// ShardedPrefix is the prefix under which each root has a directory of
	// shard objects: <ShardedPrefix><root>/...
	ShardedPrefix string

	// CompletePrefix is the prefix of the consolidated object for a root:
	// <CompletePrefix><root>.car
	CompletePrefix string
}

// DefaultLayout is the layout used by the elastic provider bucket.
var DefaultLayout = Layout{
	ShardedPrefix:  "raw/",
	CompletePrefix: "complete/",
}

// ShardDir returns the listing prefix for the sharded objects of root.
func (l Layout) ShardDir(root fmt.Stringer) string {
	return l.ShardedPrefix + root.String() + "/"
}

// CompleteKey returns the key of the consolidated object for root.
func (l Layout) CompleteKey(root fmt.Stringer) string {
	return l.CompletePrefix + root.String() + ".car"
}
