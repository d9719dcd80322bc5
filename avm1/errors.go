package avm1

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedEOF    = errors.New("unexpected end of action data")
	ErrMalformed        = errors.New("malformed action data")
	ErrUnresolvedBranch = errors.New("branch target is not an action boundary")
	ErrNestingTooDeep   = errors.New("action nesting too deep")
)

// BranchError reports an If or Jump whose offset does not land on the start
// of an action in its own list.
type BranchError struct {
	Index    int   // index of the branch action in its list
	Offset   int16 // raw offset carried by the action
	Position int   // absolute byte position the offset points at
}

func (e *BranchError) Error() string {
	return fmt.Sprintf("%v: action %d offset %d targets byte %d",
		ErrUnresolvedBranch, e.Index, e.Offset, e.Position)
}

func (e *BranchError) Unwrap() error {
	return ErrUnresolvedBranch
}
