package render

import (
	"errors"
	"fmt"
)

// ErrEmbedDepth is returned when nested template instances exceed the
// configured depth.
var ErrEmbedDepth = errors.New("render: embed depth exceeded")

// NodeError reports a renderer failure on a specific node.
type NodeError struct {
	NodeID string
	Kind   string
	Err    error
}

func (e *NodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("render: node %q (%s): %v", e.NodeID, e.Kind, e.Err)
}

func (e *NodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WrapNodeError attaches node identity to err. Errors that already carry a
// NodeError are returned unchanged so the innermost node is reported.
func WrapNodeError(nodeID, kind string, err error) error {
	if err == nil {
		return nil
	}
	var existing *NodeError
	if errors.As(err, &existing) {
		return err
	}
	return &NodeError{NodeID: nodeID, Kind: kind, Err: err}
}

// ErrEmbedMissing is returned by EmbedFunc implementations when the embedded
// template cannot be resolved.
var ErrEmbedMissing = errors.New("render: embedded template not found")

// EmbedNotice maps embed failures that degrade to a placeholder onto the
// message key describing them. Other errors report false and should
// propagate.
func EmbedNotice(err error) (string, bool) {
	switch {
	case err == nil:
		return "", false
	case errors.Is(err, ErrEmbedMissing):
		return MessageTemplateMissing, true
	case errors.Is(err, ErrEmbedDepth):
		return MessageEmbedDepth, true
	default:
		return "", false
	}
}
