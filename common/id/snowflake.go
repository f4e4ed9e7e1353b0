// Package id issues request ids for log and trace correlation.
package id

import (
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
)

var node atomic.Pointer[snowflake.Node]

// Init sets the snowflake node. Gateway replicas behind one load balancer
// need distinct node ids (0-1023) for their request ids to stay unique.
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	node.Store(n)
	return nil
}

// NewRequestID returns a time-ordered id in base36, short enough for a
// response header. Without Init it issues from node 0.
func NewRequestID() string {
	return current().Generate().Base36()
}

// RequestTime reports when a request id was issued.
func RequestTime(requestID string) (int64, bool) {
	parsed, err := snowflake.ParseBase36(requestID)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed.Time(), true
}

func current() *snowflake.Node {
	if n := node.Load(); n != nil {
		return n
	}
	n, err := snowflake.NewNode(0)
	if err != nil {
		panic(err)
	}
	node.CompareAndSwap(nil, n)
	return node.Load()
}
