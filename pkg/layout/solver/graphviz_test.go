package solver

import (
	"math"
	"strings"
	"testing"

	errs "github.com/panon-btc/txlineage/pkg/errors"
)

func testGraph() Graph {
	return Graph{
		Nodes: []Node{
			{
				ID:     "child",
				Width:  216,
				Height: 72,
				Ports: []Port{
					{ID: "in0", Side: SideIncoming, Index: 0},
					{ID: "in1", Side: SideIncoming, Index: 1},
				},
			},
			{
				ID:     "parent",
				Width:  180,
				Height: 54,
				Ports:  []Port{{ID: "out2", Side: SideOutgoing, Index: 2}},
			},
		},
		Edges: []Edge{
			{ID: "parent:2->child:0", SourceNode: "child", SourcePort: "in0", TargetNode: "parent", TargetPort: "out2"},
		},
		Order: []string{"parent", "child"},
	}
}

func TestBuildDOT(t *testing.T) {
	dot := BuildDOT(testGraph(), DefaultOptions())

	for _, want := range []string{
		"rankdir=RL;",
		"splines=ortho;",
		`"parent" [width=2.5000, height=0.7500`,
		`"child" [width=3.0000, height=1.0000`,
		`"child":"in0":w -> "parent":"out2":e;`,
		`{{<in0>|<in1>}|{}}`,
		`{{}|{<out2>}}`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// Ordering hint: parent declared before child.
	if strings.Index(dot, `"parent" [`) > strings.Index(dot, `"child" [`) {
		t.Error("nodes not emitted in hint order")
	}
}

func TestBuildDOTUnhintedNodes(t *testing.T) {
	g := testGraph()
	g.Order = []string{"child"} // parent missing from the hint

	dot := BuildDOT(g, DefaultOptions())
	if !strings.Contains(dot, `"parent" [`) {
		t.Fatal("unhinted node dropped from DOT")
	}
	if strings.Index(dot, `"child" [`) > strings.Index(dot, `"parent" [`) {
		t.Error("hinted nodes must precede unhinted ones")
	}
}

func TestParsePlain(t *testing.T) {
	// 6x4 inch canvas, node centered at (4.5, 3) measuring 3x1 inches.
	plain := `graph 1 6 4
node child 4.5 3 3 1 "" solid record black lightgrey
node parent 1.5 3 2.5 0.75 "" solid record black lightgrey
edge child parent 2 4 3 2 3 solid black
stop
`
	res, err := ParsePlain([]byte(plain))
	if err != nil {
		t.Fatalf("ParsePlain: %v", err)
	}

	if res.Width != 6*72 || res.Height != 4*72 {
		t.Errorf("canvas = %vx%v, want %vx%v", res.Width, res.Height, 6*72, 4*72)
	}

	child, ok := res.Positions["child"]
	if !ok {
		t.Fatal("child missing from result")
	}
	// x: 4.5*72 - (3*72)/2 = 216; y flipped: 4*72 - 3*72 - (1*72)/2 = 36.
	if !approx(child.X, 216) || !approx(child.Y, 36) {
		t.Errorf("child at (%v, %v), want (216, 36)", child.X, child.Y)
	}

	parent := res.Positions["parent"]
	if parent.X >= child.X {
		t.Error("funding node should sit to the left of the spending node")
	}
}

func TestParsePlainMalformed(t *testing.T) {
	for _, plain := range []string{
		"graph 1 bad 4\nstop\n",
		"graph 1 6 4\nnode child 1.5\nstop\n",
		"graph 1 6 4\nnode child a b c d\nstop\n",
	} {
		if _, err := ParsePlain([]byte(plain)); err == nil {
			t.Errorf("expected error for %q", plain)
		} else if !errs.Is(err, errs.ErrCodeSolverFailed) {
			t.Errorf("error code = %v, want SOLVER_FAILED", errs.GetCode(err))
		}
	}
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}
