package traversal

import (
	"fmt"

	"github.com/ipfs/go-cid"
	dagpb "github.com/ipld/go-codec-dagpb"
	ipld "github.com/ipld/go-ipld-prime"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	ipldtraversal "github.com/ipld/go-ipld-prime/traversal"

	dagaudit "github.com/ipld/go-dagaudit"
)

// Node is the walker's view of a block: one of Leaf, LinkedNode or
// Unsupported.
type Node interface {
	node()
}

// Leaf is a block with no links.
type Leaf struct{}

// LinkedNode is a block that links to Links, in encoded order.
type LinkedNode struct {
	Links []cid.Cid
}

// Unsupported is a block under a codec the walker does not understand.
type Unsupported struct {
	Codec uint64
}

func (Leaf) node()        {}
func (LinkedNode) node()  {}
func (Unsupported) node() {}

// Classify decides what kind of node the block c with payload data is, using
// the codec embedded in c. A dag-pb payload that fails to decode returns a
// *dagaudit.DecodeError.
func Classify(c cid.Cid, data []byte) (Node, error) {
	switch codec := c.Prefix().Codec; codec {
	case cid.Raw:
		return Leaf{}, nil
	case cid.DagProtobuf:
		links, err := dagpbLinks(data)
		if err != nil {
			return nil, &dagaudit.DecodeError{Cid: c, Err: err}
		}
		return LinkedNode{Links: links}, nil
	default:
		return Unsupported{Codec: codec}, nil
	}
}

func dagpbLinks(data []byte) ([]cid.Cid, error) {
	n, err := ipld.Decode(data, dagpb.Decode)
	if err != nil {
		return nil, err
	}
	lnks, err := ipldtraversal.SelectLinks(n)
	if err != nil {
		return nil, fmt.Errorf("selecting links: %w", err)
	}
	links := make([]cid.Cid, 0, len(lnks))
	for _, l := range lnks {
		cl, ok := l.(cidlink.Link)
		if !ok {
			return nil, fmt.Errorf("unexpected link type %T", l)
		}
		links = append(links, cl.Cid)
	}
	return links, nil
}
