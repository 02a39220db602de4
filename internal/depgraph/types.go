// Package depgraph builds the dependency graph stage 2 constructs between
// reactive identifiers (signals, memos, effects) and runs the cycle
// detector stage 2 uses to reject circular derived values (EFICT-CYCLE).
//
// Adapted from the teacher's component/state dependency graph
// (internal/graph): the same ID-generation and Mermaid-export techniques,
// generalized from "component depends on component" to "memo depends on
// signal/memo".
package depgraph

// NodeKind classifies a dependency graph node.
type NodeKind int

const (
	KindSignal NodeKind = iota
	KindMemo
	KindEffect
)

func (k NodeKind) String() string {
	switch k {
	case KindSignal:
		return "signal"
	case KindMemo:
		return "memo"
	case KindEffect:
		return "effect"
	default:
		return "unknown"
	}
}

// Node is one reactive identifier or effect body tracked by the graph.
type Node struct {
	ID       string
	Name     string
	Kind     NodeKind
	FilePath string
	Line     uint32
}

// EdgeKind classifies how one node depends on another.
type EdgeKind int

const (
	// EdgeDependsOn: target reads source's current value during its own
	// (re)computation — a memo reading a signal, or a memo reading
	// another memo.
	EdgeDependsOn EdgeKind = iota
	// EdgeWrites: target (an effect) writes to source (a signal).
	EdgeWrites
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeDependsOn:
		return "depends_on"
	case EdgeWrites:
		return "writes"
	default:
		return "unknown"
	}
}

// Edge connects two nodes by ID. For EdgeDependsOn the target reads the
// source; for EdgeWrites the target writes to the source.
type Edge struct {
	ID       string
	Kind     EdgeKind
	SourceID string
	TargetID string
}

// Graph is the full dependency graph for a single module compile.
type Graph struct {
	Nodes map[string]*Node
	Edges []Edge
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{Nodes: make(map[string]*Node)}
}

// AddNode registers a node, returning its ID. Re-adding the same
// (kind, name, filePath, line) tuple is idempotent.
func (g *Graph) AddNode(name string, kind NodeKind, filePath string, line uint32) string {
	id := GenerateNodeID(kind, name, filePath, line)
	if _, exists := g.Nodes[id]; !exists {
		g.Nodes[id] = &Node{ID: id, Name: name, Kind: kind, FilePath: filePath, Line: line}
	}
	return id
}

// AddEdge records a dependency edge between two already-registered node
// IDs.
func (g *Graph) AddEdge(kind EdgeKind, sourceID, targetID string) {
	g.Edges = append(g.Edges, Edge{
		ID:       GenerateEdgeID(kind, sourceID, targetID),
		Kind:     kind,
		SourceID: sourceID,
		TargetID: targetID,
	})
}

// Dependencies returns the IDs every node that targetID depends on
// (EdgeDependsOn edges where targetID is... the dependent). We store the
// edge as source=dependency, target=dependent reading it, matching the
// teacher's SourceID/TargetID convention of "edge flows from source to
// target".
func (g *Graph) Dependencies(nodeID string) []string {
	var deps []string
	for _, e := range g.Edges {
		if e.Kind == EdgeDependsOn && e.TargetID == nodeID {
			deps = append(deps, e.SourceID)
		}
	}
	return deps
}
