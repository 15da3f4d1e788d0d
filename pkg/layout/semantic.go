package layout

import (
	"regexp"
	"sort"
	"strings"

	"github.com/BrennerSpear/clarity/pkg/infra"
)

// =============================================================================
// Semantic Column Layout
// =============================================================================

// SemanticPosition is the layout output for the semantic path.
// Coordinates are the top-left corner of the box in user units.
type SemanticPosition struct {
	ID          string  `json:"id" bson:"id"`
	X           float64 `json:"x" bson:"x"`
	Y           float64 `json:"y" bson:"y"`
	Width       float64 `json:"width" bson:"width"`
	Height      float64 `json:"height" bson:"height"`
	Role        Role    `json:"role" bson:"role"`
	Column      int     `json:"column" bson:"column"`
	IsHelper    bool    `json:"is_helper,omitempty" bson:"is_helper,omitempty"`
	ParentID    string  `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	Connections int     `json:"connections" bson:"connections"`
	IsGroup     bool    `json:"is_group,omitempty" bson:"is_group,omitempty"`
}

// roleColumns is the fixed role→column table ordering diagram columns
// left-to-right: traffic enters on the left and settles into data stores
// on the right. Helpers carry the -1 sentinel and are attached to their
// parents after the main columns are placed.
var roleColumns = map[Role]int{
	RoleEntry:    0,
	RoleGateway:  0,
	RoleUI:       1,
	RoleAPI:      1,
	RoleProducer: 1,
	RoleQueue:    2,
	RoleConsumer: 3,
	RoleWorker:   3,
	RoleData:     4,
	RoleHelper:   -1,
}

// SemanticOptions configures the semantic column layout.
type SemanticOptions struct {
	// Sizer computes box dimensions. Defaults to [ConnectionSizer].
	Sizer Sizer

	// Rules overrides the classification table. Defaults to [DefaultRules].
	Rules []Rule

	// RowGap is the vertical gap between boxes within a column.
	RowGap float64

	// ColumnGap is the horizontal gap between columns.
	ColumnGap float64

	// Grouping, when non-nil, runs the grouping preprocessor first and
	// lays out groups as single boxes.
	Grouping *GroupingOptions
}

func (o *SemanticOptions) setDefaults() {
	if o.Sizer == nil {
		o.Sizer = ConnectionSizer{}
	}
	if o.Rules == nil {
		o.Rules = DefaultRules
	}
	if o.RowGap == 0 {
		o.RowGap = 30
	}
	if o.ColumnGap == 0 {
		o.ColumnGap = 80
	}
}

// SemanticResult is the output of [SemanticLayout].
type SemanticResult struct {
	Positions map[string]SemanticPosition
	Edges     []DirectedEdge
	Groups    []Group
	Width     float64
	Height    float64
}

// item is one box to place: an individual node or a group.
type item struct {
	id          string
	role        Role
	width       float64
	height      float64
	connections int
	isGroup     bool
}

// SemanticLayout places nodes (and groups) into role columns.
//
// Columns actually present are compacted to consecutive indices. Boxes
// stack vertically within their column with RowGap between them; shorter
// columns are vertically centered against the tallest; each box is
// horizontally centered within its column's max width; columns are placed
// left-to-right using each column's own width plus ColumnGap (not a
// uniform grid). Helper nodes are attached above their inferred parent
// after the main columns are placed.
func SemanticLayout(g *infra.Graph, opts SemanticOptions) (SemanticResult, error) {
	opts.setDefaults()

	if err := g.Validate(); err != nil {
		return SemanticResult{}, err
	}

	result := SemanticResult{Positions: make(map[string]SemanticPosition, g.NodeCount())}

	nodes := g.Nodes()
	connections := func(id string) int { return g.Degree(id) }

	if opts.Grouping != nil {
		grouping := GroupBySignature(g, *opts.Grouping)
		result.Edges = grouping.Edges
		result.Groups = grouping.Groups
		nodes = grouping.Nodes

		// A group's connection count is its dependency count plus edges
		// arriving at the group from surviving individual nodes.
		groupConns := make(map[string]int, len(grouping.Groups))
		for _, e := range grouping.Edges {
			groupConns[e.From]++
			groupConns[e.To]++
		}
		connections = func(id string) int {
			if c, ok := groupConns[id]; ok && strings.HasPrefix(id, "group-") {
				return c
			}
			return g.Degree(id)
		}
	} else {
		for _, e := range g.Edges() {
			result.Edges = append(result.Edges, DirectedEdge{From: e.From, To: e.To, Type: e.Type, Direction: e.Direction})
		}
	}

	// Classify and size every item, splitting helpers out for later.
	var items []item
	var helpers []infra.Node
	for _, n := range nodes {
		role := ClassifyWith(opts.Rules, n)
		if role == RoleHelper {
			helpers = append(helpers, n)
			continue
		}
		conns := connections(n.ID)
		w, h := opts.Sizer.Size(SizeContext{Type: n.Type, Connections: conns})
		items = append(items, item{id: n.ID, role: role, width: w, height: h, connections: conns})
	}
	for _, grp := range result.Groups {
		conns := connections(grp.ID)
		w, h := opts.Sizer.Size(SizeContext{Type: infra.TypeService, IsGroup: true, Connections: conns})
		items = append(items, item{id: grp.ID, role: RoleAPI, width: w, height: h, connections: conns, isGroup: true})
	}

	placeColumns(items, opts, &result)
	placeHelpers(g, helpers, connections, opts, &result)

	return result, nil
}

// placeColumns assigns compacted column indices and coordinates.
func placeColumns(items []item, opts SemanticOptions, result *SemanticResult) {
	// Bucket items by raw column index.
	byColumn := make(map[int][]item)
	for _, it := range items {
		col := roleColumns[it.role]
		byColumn[col] = append(byColumn[col], it)
	}

	// Compact to consecutive indices, keeping left-to-right order.
	raw := make([]int, 0, len(byColumn))
	for col := range byColumn {
		raw = append(raw, col)
	}
	sort.Ints(raw)

	// Column extents.
	colWidth := make([]float64, len(raw))
	colHeight := make([]float64, len(raw))
	maxColHeight := 0.0
	for i, col := range raw {
		for j, it := range byColumn[col] {
			if it.width > colWidth[i] {
				colWidth[i] = it.width
			}
			if j > 0 {
				colHeight[i] += opts.RowGap
			}
			colHeight[i] += it.height
		}
		if colHeight[i] > maxColHeight {
			maxColHeight = colHeight[i]
		}
	}

	x := 0.0
	totalWidth := 0.0
	for i, col := range raw {
		y := (maxColHeight - colHeight[i]) / 2
		for _, it := range byColumn[col] {
			result.Positions[it.id] = SemanticPosition{
				ID:          it.id,
				X:           x + (colWidth[i]-it.width)/2,
				Y:           y,
				Width:       it.width,
				Height:      it.height,
				Role:        it.role,
				Column:      i,
				Connections: it.connections,
				IsGroup:     it.isGroup,
			}
			y += it.height + opts.RowGap
		}
		totalWidth = x + colWidth[i]
		x += colWidth[i] + opts.ColumnGap
	}

	result.Width = totalWidth
	result.Height = maxColHeight
}

// helperSuffixes are stripped from a helper's name when matching it to a
// parent by name pattern, e.g. "api-exporter" → "api".
var helperSuffixes = regexp.MustCompile(`[-_.](sidecar|exporter|agent|init|proxy)$`)

const (
	helperOffsetX = 20.0 // helpers sit slightly left of their parent
	helperGapY    = 10.0 // gap between parent top and first helper
	helperStackY  = 6.0  // gap between stacked helpers of one parent
)

// placeHelpers resolves each helper's parent and positions the helper
// directly above it, offset left, stacking multiple helpers of the same
// parent without overlap.
//
// Parent resolution order: (1) follow the helper's outgoing edges to a
// placed non-helper node; (2) strip a helper suffix from the name and find
// a placed node whose name is a prefix of the remainder (or vice versa);
// (3) fall back to the first placed node. Helpers with no resolvable
// parent on an empty layout are dropped from the output.
func placeHelpers(g *infra.Graph, helpers []infra.Node, connections func(string) int, opts SemanticOptions, result *SemanticResult) {
	stack := make(map[string]int) // parent ID -> helpers already stacked

	for _, h := range helpers {
		parentID := resolveParent(g, h, result.Positions)
		if parentID == "" {
			continue
		}
		parent := result.Positions[parentID]

		w, hgt := opts.Sizer.Size(SizeContext{Type: h.Type, Connections: connections(h.ID)})
		n := stack[parentID]
		stack[parentID]++

		result.Positions[h.ID] = SemanticPosition{
			ID:          h.ID,
			X:           parent.X - helperOffsetX,
			Y:           parent.Y - helperGapY - hgt - float64(n)*(hgt+helperStackY),
			Width:       w,
			Height:      hgt,
			Role:        RoleHelper,
			Column:      -1,
			IsHelper:    true,
			ParentID:    parentID,
			Connections: connections(h.ID),
		}
	}
}

// resolveParent finds the placed non-helper node a helper belongs to.
func resolveParent(g *infra.Graph, h infra.Node, placed map[string]SemanticPosition) string {
	// Outgoing edges first: a sidecar usually points at its service.
	for _, dep := range g.Dependencies(h.ID) {
		if p, ok := placed[dep]; ok && !p.IsHelper {
			return dep
		}
	}

	// Name pattern: strip the helper suffix and look for the best
	// prefix match among placed nodes.
	base := strings.ToLower(helperSuffixes.ReplaceAllString(h.DisplayName(), ""))
	bestID, bestLen := "", 0
	for id, p := range placed {
		if p.IsHelper {
			continue
		}
		name := strings.ToLower(id)
		if n, ok := g.Node(id); ok {
			name = strings.ToLower(n.DisplayName())
		}
		if strings.HasPrefix(base, name) || strings.HasPrefix(name, base) {
			if len(name) > bestLen {
				bestID, bestLen = id, len(name)
			}
		}
	}
	if bestID != "" {
		return bestID
	}

	// Last resort: the first placed non-helper, by ID for determinism.
	ids := make([]string, 0, len(placed))
	for id, p := range placed {
		if !p.IsHelper {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return ""
	}
	sort.Strings(ids)
	return ids[0]
}
