package layout

import (
	"math"

	"github.com/BrennerSpear/clarity/pkg/infra"
)

// SizeContext carries the facts a sizing strategy may use.
type SizeContext struct {
	Type        infra.NodeType
	IsGroup     bool
	Connections int
}

// Sizer computes node box dimensions from layout context.
// Sizing is a strategy so the policy can be swapped without touching
// placement logic.
type Sizer interface {
	Size(ctx SizeContext) (width, height float64)
}

// Base dimensions by node type, in user units.
var baseDims = map[infra.NodeType][2]float64{
	infra.TypeDatabase: {150, 100},
	infra.TypeStorage:  {150, 100},
	infra.TypeCache:    {140, 90},
	infra.TypeQueue:    {170, 80},
	infra.TypeProxy:    {150, 70},
	infra.TypeUI:       {160, 80},
	infra.TypeHelper:   {110, 50},
}

// defaultDims applies to node types without an explicit entry.
var defaultDims = [2]float64{160, 80}

const (
	// groupWidthBonus widens synthetic group boxes so member counts fit.
	groupWidthBonus = 40.0

	// connectionBonusCap bounds the connection-count growth so hub nodes
	// grow but never dominate the diagram.
	connectionBonusCap = 100.0
)

// ConnectionSizer is the default sizing strategy: base dimensions by type,
// a width bonus for groups, and a damped, capped bonus for connection count.
type ConnectionSizer struct{}

// Size returns the box dimensions for the given context.
//
// The connection bonus is min(sqrt(max(1, connections))/2 * 30, 100),
// added in full to width and at half strength to height: labels grow
// horizontally, so width needs the headroom more than height does.
func (ConnectionSizer) Size(ctx SizeContext) (float64, float64) {
	dims, ok := baseDims[ctx.Type]
	if !ok {
		dims = defaultDims
	}
	w, h := dims[0], dims[1]

	if ctx.IsGroup {
		w += groupWidthBonus
	}

	bonus := connectionBonus(ctx.Connections)
	return w + bonus, h + bonus/2
}

// connectionBonus maps a connection count to extra size.
// Square-root damping keeps the growth sublinear; the cap keeps even a
// fully-connected hub within one extra grid cell.
func connectionBonus(connections int) float64 {
	c := float64(connections)
	if c < 1 {
		c = 1
	}
	return math.Min(math.Sqrt(c)/2*30, connectionBonusCap)
}

// FixedSizer ignores context and always returns the same dimensions.
// Useful in tests and for uniform-grid renderings.
type FixedSizer struct {
	Width, Height float64
}

// Size returns the fixed dimensions.
func (s FixedSizer) Size(SizeContext) (float64, float64) { return s.Width, s.Height }
