package id

import (
	"hash/fnv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// NodeID maps an instance name onto the snowflake node range, so each replica
// stamps run ids with its own node bits.
func NodeID(instance string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(instance))
	return int64(h.Sum32()) % (1 << snowflake.NodeBits)
}

// Init selects the node used by New. Only the first call counts.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New returns the run id of a deferred answer; the ack log line and the later
// edit share it. Falls back to node 0 when Init was never called.
func New() int64 {
	_ = Init(0)
	return node.Generate().Int64()
}
