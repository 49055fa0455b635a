package graph

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/teranos/specgraph/spec"
	"github.com/teranos/specgraph/spec/cachestore"
)

// Helper to load a repository from inline item files
func loadTestRepo(t *testing.T, files map[string]string, typeRoot string) *spec.Repository {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := cachestore.NewMemoryStore(16)
	if err != nil {
		t.Fatal(err)
	}
	repo, err := spec.New(spec.Config{Paths: []string{root}, CacheDirectory: t.TempDir(), TypeRootUID: typeRoot}, store)
	if err != nil {
		t.Fatalf("Failed to load repository: %v", err)
	}
	return repo
}

// TestBuildEmpty tests an empty repository
func TestBuildEmpty(t *testing.T) {
	graph := NewBuilder(nil).Build(spec.NewEmpty())

	if len(graph.Nodes) != 0 {
		t.Errorf("Expected 0 nodes, got %d", len(graph.Nodes))
	}
	if len(graph.Links) != 0 {
		t.Errorf("Expected 0 links, got %d", len(graph.Links))
	}
	if graph.Meta.Stats.TotalNodes != 0 || graph.Meta.Stats.TotalEdges != 0 {
		t.Errorf("Meta stats = %+v, want zero", graph.Meta.Stats)
	}
}

// TestBuildNodesAndLinks tests nodes, link direction and weights
func TestBuildNodesAndLinks(t *testing.T) {
	repo := loadTestRepo(t, map[string]string{
		"req/root.yml": "title: Root requirement\n",
		"req/perf/latency.yml": "enabled-by: {and: [A, {not: B}]}\n" +
			"links: [{role: requirement-refinement, uid: ../root}, {role: requirement-refinement, uid: ../root}]\n",
		"glossary/term.yml": "term: Widget\nlinks: [{role: glossary-member, uid: /req/root}]\n",
	}, "")

	graph := NewBuilder(nil).Build(repo)

	if len(graph.Nodes) != 3 {
		t.Fatalf("Expected 3 nodes, got %d", len(graph.Nodes))
	}
	wantIDs := []string{"/glossary/term", "/req/perf/latency", "/req/root"}
	for i, id := range wantIDs {
		if graph.Nodes[i].ID != id {
			t.Errorf("Nodes[%d].ID = %q, want %q", i, graph.Nodes[i].ID, id)
		}
	}

	labels := map[string]string{}
	for _, node := range graph.Nodes {
		labels[node.ID] = node.Label
		if node.Type != "untyped" {
			t.Errorf("Node %s type = %q, want untyped", node.ID, node.Type)
		}
	}
	if labels["/req/root"] != "Root requirement" {
		t.Errorf("title label = %q", labels["/req/root"])
	}
	if labels["/glossary/term"] != "Widget" {
		t.Errorf("term label = %q", labels["/glossary/term"])
	}
	if labels["/req/perf/latency"] != "latency" {
		t.Errorf("fallback label = %q", labels["/req/perf/latency"])
	}

	if got := graph.Nodes[1].Metadata["enabled_by"]; got != "A and not B" {
		t.Errorf("enabled_by metadata = %v, want %q", got, "A and not B")
	}

	if len(graph.Links) != 2 {
		t.Fatalf("Expected 2 links, got %d", len(graph.Links))
	}
	var refinement *Link
	for i := range graph.Links {
		if graph.Links[i].Type == "requirement-refinement" {
			refinement = &graph.Links[i]
		}
	}
	if refinement == nil {
		t.Fatal("missing requirement-refinement link")
	}
	if refinement.Source != "/req/perf/latency" || refinement.Target != "/req/root" {
		t.Errorf("link %s -> %s, want child -> parent", refinement.Source, refinement.Target)
	}
	if refinement.Weight != defaultLinkWeight+linkWeightIncrement {
		t.Errorf("duplicate link weight = %v", refinement.Weight)
	}

	if graph.Meta.Stats.TopLevel != 1 {
		t.Errorf("TopLevel = %d, want 1", graph.Meta.Stats.TopLevel)
	}
	if len(graph.Meta.RelationshipTypes) != 2 {
		t.Errorf("Expected 2 relationship types, got %d", len(graph.Meta.RelationshipTypes))
	}
	if len(graph.Meta.NodeTypes) != 1 || graph.Meta.NodeTypes[0].Label != defaultUntypedLabel {
		t.Errorf("NodeTypes = %+v", graph.Meta.NodeTypes)
	}
}

// TestBuildResolvedTypes tests types, groups and type definitions
func TestBuildResolvedTypes(t *testing.T) {
	repo := loadTestRepo(t, map[string]string{
		"spec/root.yml": "type: spec\n",
		"spec/spec.yml": "type: spec\nlinks: [{role: spec-refinement, uid: root, spec-key: type, spec-value: spec}]\n",
		"spec/req.yml":  "type: spec\nlinks: [{role: spec-refinement, uid: root, spec-key: type, spec-value: requirement}]\n",
		"a.yml":         "type: requirement\n",
	}, "/spec/root")

	builder := NewBuilder(nil)
	builder.DefineType(TypeDefinition{TypeName: "requirement", DisplayColor: "#e74c3c", DisplayLabel: "Requirement", Opacity: 0.9})
	distance := 40.0
	builder.DefineRelationship(RelationshipDefinition{Role: "spec-refinement", DisplayLabel: "Refines", LinkDistance: &distance})
	graph := builder.Build(repo)

	if len(graph.Meta.NodeTypes) != 2 {
		t.Fatalf("Expected 2 node types, got %d", len(graph.Meta.NodeTypes))
	}
	// spec (3 nodes) before requirement (1 node)
	if graph.Meta.NodeTypes[0].Type != "spec" || graph.Meta.NodeTypes[1].Type != "requirement" {
		t.Errorf("NodeTypes order = %+v", graph.Meta.NodeTypes)
	}
	req := graph.Meta.NodeTypes[1]
	if req.Label != "Requirement" || req.Color != "#e74c3c" || req.Opacity == nil || *req.Opacity != 0.9 {
		t.Errorf("requirement type info = %+v", req)
	}

	for _, node := range graph.Nodes {
		wantGroup := 0
		if node.Type == "requirement" {
			wantGroup = 1
		}
		if node.Group != wantGroup {
			t.Errorf("Node %s group = %d, want %d", node.ID, node.Group, wantGroup)
		}
		if node.TypeSource != "resolved" {
			t.Errorf("Node %s TypeSource = %q", node.ID, node.TypeSource)
		}
	}

	rel := graph.Meta.RelationshipTypes[0]
	if rel.Label != "Refines" || rel.LinkDistance == nil || *rel.LinkDistance != 40 || rel.Count != 2 {
		t.Errorf("relationship info = %+v", rel)
	}
}

// TestGraphJSON tests the serialized field names
func TestGraphJSON(t *testing.T) {
	repo := loadTestRepo(t, map[string]string{
		"a.yml": "title: A\n",
		"b.yml": "links: [{role: r, uid: a}]\n",
	}, "")
	data, err := json.Marshal(NewBuilder(nil).Build(repo))
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	links := decoded["links"].([]interface{})
	link := links[0].(map[string]interface{})
	if link["value"] != 1.0 {
		t.Errorf("link weight serialized as %v", link["value"])
	}
	node := decoded["nodes"].([]interface{})[0].(map[string]interface{})
	if _, ok := node["TypeSource"]; ok {
		t.Error("TypeSource must not be serialized")
	}
}
