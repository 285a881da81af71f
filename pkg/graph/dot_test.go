package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderAsDot(t *testing.T) {
	g := NewGraph("scan", "my scan")
	g.AddNode("a", `label="A"`)
	g.AddEdge("a", "b", `label="0"`)
	g.AddNode("a", `label="ignored"`)

	sub := NewGraph("inner", "inner loop")
	sub.AddNode("c")
	g.AddSubgraph(sub)

	expected := `digraph "scan" {
  label="my scan";
  "a" [label="A"];
  subgraph "cluster_inner" {
    label="inner loop";
    "c" [];
  }

  "a" -> "b" [label="0"];
}`
	assert.Equal(t, expected, g.RenderAsDot())
}

func TestQuoteEscapes(t *testing.T) {
	assert.Equal(t, `label="say \"hi\""`, Quote("label", `say "hi"`))
}
