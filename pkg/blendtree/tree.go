// Package blendtree combines animation clips into a single pose through a
// small graph of nodes driven by named parameters.
//
// Nodes and parameters live in arenas owned by the Tree and refer to each
// other by index. A tree with dangling references, cycles or weights bound
// to non-float parameters is invalid and evaluates to an empty pose.
package blendtree

import (
	"github.com/Faultbox/midgard-anim/pkg/anim"
)

// InvalidRef marks an unset node or parameter reference.
const InvalidRef = -1

// NodeRef indexes Tree.Nodes.
type NodeRef int

// ParamRef indexes Tree.Params.
type ParamRef int

// Node is one of *ClipNode, *LinearBlendNode or *AdditiveBlendNode.
type Node interface {
	blendNode()
}

// ClipNode samples a clip using its own playback controller.
type ClipNode struct {
	Controller *anim.Controller
}

// LinearBlendNode interpolates between the poses of A and B. Weight 0
// yields A, weight 1 yields B.
type LinearBlendNode struct {
	A, B   NodeRef
	Weight WeightSource
}

// AdditiveBlendNode layers the Additive pose on top of Base, scaled by
// Weight.
type AdditiveBlendNode struct {
	Base, Additive NodeRef
	Weight         WeightSource
}

func (*ClipNode) blendNode()          {}
func (*LinearBlendNode) blendNode()   {}
func (*AdditiveBlendNode) blendNode() {}

// WeightSource is either a literal weight or a binding to a float
// parameter. Param is InvalidRef while the literal is in use.
type WeightSource struct {
	Literal float32
	Param   ParamRef
}

// Bound reports whether the weight comes from a parameter.
func (w WeightSource) Bound() bool {
	return w.Param != InvalidRef
}

// Tree is an arena of blend nodes plus a parameter table. Create trees with
// New so the root starts unset.
type Tree struct {
	Nodes  []Node
	Root   NodeRef
	Params []Parameter
}

// New returns an empty tree without a root.
func New() *Tree {
	return &Tree{Root: InvalidRef}
}

func (t *Tree) addNode(n Node) NodeRef {
	t.Nodes = append(t.Nodes, n)
	return NodeRef(len(t.Nodes) - 1)
}

// AddClipNode adds a leaf that plays clip from time zero.
func (t *Tree) AddClipNode(clip *anim.Clip) NodeRef {
	return t.addNode(&ClipNode{Controller: anim.NewController(clip)})
}

// AddControllerNode adds a leaf driven by an existing controller, keeping
// its speed, loop mode and cursor.
func (t *Tree) AddControllerNode(c *anim.Controller) NodeRef {
	return t.addNode(&ClipNode{Controller: c})
}

// AddLinearBlendNode adds a blend of a and b with a literal weight. The
// children are not checked here; Valid reports dangling references.
func (t *Tree) AddLinearBlendNode(a, b NodeRef, weight float32) NodeRef {
	return t.addNode(&LinearBlendNode{
		A:      a,
		B:      b,
		Weight: WeightSource{Literal: weight, Param: InvalidRef},
	})
}

// AddAdditiveBlendNode adds an additive layer with a literal weight.
func (t *Tree) AddAdditiveBlendNode(base, additive NodeRef, weight float32) NodeRef {
	return t.addNode(&AdditiveBlendNode{
		Base:     base,
		Additive: additive,
		Weight:   WeightSource{Literal: weight, Param: InvalidRef},
	})
}

func (t *Tree) node(ref NodeRef) Node {
	if ref < 0 || int(ref) >= len(t.Nodes) {
		return nil
	}
	return t.Nodes[ref]
}

// BindLinearBlendWeight makes the node read its weight from param at
// evaluation time. It returns false if node is not a linear blend.
func (t *Tree) BindLinearBlendWeight(node NodeRef, param ParamRef) bool {
	n, ok := t.node(node).(*LinearBlendNode)
	if !ok {
		return false
	}
	n.Weight.Param = param
	return true
}

// SetLinearBlendWeight sets the literal weight. It has no visible effect
// while the weight is bound to a parameter.
func (t *Tree) SetLinearBlendWeight(node NodeRef, weight float32) bool {
	n, ok := t.node(node).(*LinearBlendNode)
	if !ok {
		return false
	}
	n.Weight.Literal = weight
	return true
}

// BindAdditiveBlendWeight is BindLinearBlendWeight for additive nodes.
func (t *Tree) BindAdditiveBlendWeight(node NodeRef, param ParamRef) bool {
	n, ok := t.node(node).(*AdditiveBlendNode)
	if !ok {
		return false
	}
	n.Weight.Param = param
	return true
}

// SetAdditiveBlendWeight is SetLinearBlendWeight for additive nodes.
func (t *Tree) SetAdditiveBlendWeight(node NodeRef, weight float32) bool {
	n, ok := t.node(node).(*AdditiveBlendNode)
	if !ok {
		return false
	}
	n.Weight.Literal = weight
	return true
}

// SetRoot selects the node Evaluate starts from.
func (t *Tree) SetRoot(node NodeRef) {
	t.Root = node
}

// Advance moves every clip node's clock forward by dt. It does not evaluate.
func (t *Tree) Advance(dt float64) {
	for _, n := range t.Nodes {
		if c, ok := n.(*ClipNode); ok && c.Controller != nil {
			c.Controller.Advance(dt)
		}
	}
}
