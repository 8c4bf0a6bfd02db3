package idgen

import (
	"bot-for-order/internal/pkg/errs"

	"github.com/bwmarrin/snowflake"
)

// Snowflake issues time-ordered order ids unique per node.
type Snowflake struct {
	node *snowflake.Node
}

func NewSnowflake(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, errs.Wrapf(err, "snowflake node %d", nodeID)
	}
	return &Snowflake{node: node}, nil
}

func (s *Snowflake) NextOrderID() string {
	return s.node.Generate().String()
}
