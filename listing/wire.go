package listing

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/swfaction/avm1"
)

// maxActionDepth is the deepest action nesting Unmarshal accepts. Each level
// of actions adds three CBOR levels: the node map, its bodies array and the
// body itself.
const (
	maxActionDepth  = 4 * avm1.DefaultMaxDepth
	maxNestedLevels = 3*maxActionDepth + 2
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("listing: failed to create CBOR enc mode: %v", err))
	}
	encMode = em

	// SWF 6+ strings are stored as read, valid UTF-8 or not.
	dm, err := cbor.DecOptions{
		MaxNestedLevels:  maxNestedLevels,
		MaxArrayElements: 1 << 20,
		UTF8:             cbor.UTF8DecodeInvalid,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("listing: failed to create CBOR dec mode: %v", err))
	}
	decMode = dm
}

// Marshal serializes nodes to canonical CBOR.
func Marshal(nodes []Node) ([]byte, error) {
	data, err := encMode.Marshal(nodes)
	if err != nil {
		return nil, fmt.Errorf("listing: marshal: %w", err)
	}
	return data, nil
}

// Unmarshal deserializes nodes from CBOR.
func Unmarshal(data []byte) ([]Node, error) {
	var nodes []Node
	if err := decMode.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("listing: unmarshal: %w", err)
	}
	return nodes, nil
}

// Hash returns the SHA-256 content hash of the canonical encoding of nodes.
func Hash(nodes []Node) ([32]byte, error) {
	data, err := Marshal(nodes)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}

// MarshalActions is Marshal(FromActions(actions)).
func MarshalActions(actions []avm1.Action) ([]byte, error) {
	return Marshal(FromActions(actions))
}

// UnmarshalActions decodes a CBOR listing straight to actions.
func UnmarshalActions(data []byte) ([]avm1.Action, error) {
	nodes, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return ToActions(nodes)
}
