package solver

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	errs "github.com/panon-btc/txlineage/pkg/errors"
)

// pointsPerInch converts between DOT's inch-based size attributes and the
// engine's pixel unit. Text is measured at 72 DPI, so one point equals
// one pixel.
const pointsPerInch = 72.0

// Options tunes the Graphviz invocation. Distances are in pixels and get
// converted to inches on the way into DOT.
type Options struct {
	// RankSep is the minimum horizontal distance between adjacent ranks.
	RankSep float64
	// NodeSep is the minimum vertical distance between siblings in a rank.
	NodeSep float64
}

// DefaultOptions returns the separations used when none are configured.
func DefaultOptions() Options {
	return Options{RankSep: 48, NodeSep: 24}
}

// Graphviz solves layouts by building a DOT document, running the dot
// layered engine, and reading positions back from its plain-text output.
type Graphviz struct {
	opts Options
}

// NewGraphviz creates a solver with the given options.
func NewGraphviz(opts Options) *Graphviz {
	return &Graphviz{opts: opts}
}

// Solve implements Solver.
func (s *Graphviz) Solve(ctx context.Context, g Graph) (*Result, error) {
	dot := BuildDOT(g, s.opts)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSolverFailed, err, "init graphviz")
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSolverFailed, err, "parse DOT")
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.Format("plain"), &buf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeSolverFailed, err, "render layout")
	}

	res, err := ParsePlain(buf.Bytes())
	if err != nil {
		return nil, err
	}

	for _, n := range g.Nodes {
		if _, ok := res.Positions[n.ID]; !ok {
			return nil, errs.Wrap(errs.ErrCodeSolverIncomplete, &MissingNodeError{NodeID: n.ID}, "incomplete layout")
		}
	}
	return res, nil
}

// =============================================================================
// DOT Generation
// =============================================================================

// BuildDOT renders a layout request as a DOT document for the dot layered
// engine.
//
// Conventions:
//   - rankdir=RL with edges pointing spending -> funding puts the root
//     descendant on the right and its ancestors progressively further
//     left, so ancestry reads right to left.
//   - splines=ortho forces orthogonal edge routing.
//   - Nodes are fixed-size records whose fields are the synthesized ports,
//     incoming ports in the left column and outgoing ports in the right
//     column, each column ordered by ascending port index. Record field
//     order is position-significant, which is what pins the port order.
//   - Nodes are emitted in hint order; dot seeds its crossing reduction
//     from declaration order, so emission order is the ordering hint.
func BuildDOT(g Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph lineage {\n")
	buf.WriteString("  rankdir=RL;\n")
	buf.WriteString("  splines=ortho;\n")
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(opts.RankSep))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(opts.NodeSep))
	buf.WriteString("  node [shape=record, fixedsize=true, fontsize=11];\n")
	buf.WriteString("\n")

	for _, n := range orderNodes(g) {
		fmt.Fprintf(&buf, "  %q [width=%s, height=%s, label=\"%s\"];\n",
			n.ID, inches(n.Width), inches(n.Height), recordLabel(n.Ports))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q:%q:w -> %q:%q:e;\n", e.SourceNode, e.SourcePort, e.TargetNode, e.TargetPort)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// orderNodes returns g.Nodes arranged per the ordering hint, hinted nodes
// first in hint order, then any unhinted nodes in input order.
func orderNodes(g Graph) []Node {
	byID := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}

	out := make([]Node, 0, len(g.Nodes))
	seen := make(map[string]bool, len(g.Order))
	for _, id := range g.Order {
		if n, ok := byID[id]; ok && !seen[id] {
			out = append(out, n)
			seen[id] = true
		}
	}
	for _, n := range g.Nodes {
		if !seen[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

// recordLabel builds the record field structure holding a node's ports.
// An empty string is a valid single-field record for port-less nodes.
func recordLabel(ports []Port) string {
	var in, out []string
	for _, p := range ports {
		field := "<" + p.ID + ">"
		if p.Side == SideIncoming {
			in = append(in, field)
		} else {
			out = append(out, field)
		}
	}
	if len(in) == 0 && len(out) == 0 {
		return ""
	}
	return "{{" + strings.Join(in, "|") + "}|{" + strings.Join(out, "|") + "}}"
}

func inches(px float64) string {
	return strconv.FormatFloat(px/pointsPerInch, 'f', 4, 64)
}

// =============================================================================
// Plain-Output Parsing
// =============================================================================

// ParsePlain reads dot's plain output format into a Result. Plain output
// is line oriented:
//
//	graph scale width height
//	node name x y width height label style shape color fillcolor
//	edge tail head n x1 y1 .. xn yn [label xl yl] style color
//	stop
//
// All distances are in inches with the origin at the bottom-left and node
// coordinates at the node center. Parsing converts to pixels, flips y to
// grow downward, and shifts coordinates to the node's top-left corner.
func ParsePlain(plain []byte) (*Result, error) {
	res := &Result{Positions: make(map[string]Position)}

	var canvasHeight float64
	sc := bufio.NewScanner(bytes.NewReader(plain))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "graph":
			if len(fields) < 4 {
				return nil, errs.New(errs.ErrCodeSolverFailed, "malformed graph line: %q", sc.Text())
			}
			w, err1 := strconv.ParseFloat(fields[2], 64)
			h, err2 := strconv.ParseFloat(fields[3], 64)
			if err1 != nil || err2 != nil {
				return nil, errs.New(errs.ErrCodeSolverFailed, "malformed graph line: %q", sc.Text())
			}
			res.Width = w * pointsPerInch
			res.Height = h * pointsPerInch
			canvasHeight = res.Height

		case "node":
			if len(fields) < 6 {
				return nil, errs.New(errs.ErrCodeSolverFailed, "malformed node line: %q", sc.Text())
			}
			name := strings.Trim(fields[1], `"`)
			x, err1 := strconv.ParseFloat(fields[2], 64)
			y, err2 := strconv.ParseFloat(fields[3], 64)
			w, err3 := strconv.ParseFloat(fields[4], 64)
			h, err4 := strconv.ParseFloat(fields[5], 64)
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
				return nil, errs.New(errs.ErrCodeSolverFailed, "malformed node line: %q", sc.Text())
			}
			res.Positions[name] = Position{
				ID: name,
				X:  x*pointsPerInch - w*pointsPerInch/2,
				Y:  canvasHeight - y*pointsPerInch - h*pointsPerInch/2,
			}

		case "edge", "stop":
			// Edge routes are recomputed by the presentation layer from
			// port positions; only node placement is consumed here.
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeSolverFailed, err, "read plain output")
	}
	return res, nil
}
