package graph

import (
	"fmt"
	"strings"

	"github.com/mattfenwick/collections/pkg/slice"
	"golang.org/x/exp/maps"
)

type Graph struct {
	Name      string
	Label     string
	Nodes     map[string][]string
	Edges     map[string]map[string][]string
	Subgraphs map[string]*Graph
}

func NewGraph(name string, label string) *Graph {
	return &Graph{
		Name:      name,
		Label:     label,
		Nodes:     map[string][]string{},
		Edges:     map[string]map[string][]string{},
		Subgraphs: map[string]*Graph{},
	}
}

// AddNode adds a node; adding an existing node is a no-op
// example config: `label="Log 'x'"`, `shape=box`
func (g *Graph) AddNode(node string, config ...string) {
	if _, ok := g.Nodes[node]; !ok {
		g.Nodes[node] = config
	}
}

// AddEdge does not declare its endpoints, so they may live in subgraphs
func (g *Graph) AddEdge(from string, to string, config ...string) {
	if _, ok := g.Edges[from]; !ok {
		g.Edges[from] = map[string][]string{}
	}
	g.Edges[from][to] = config
}

func (g *Graph) AddSubgraph(sub *Graph) {
	g.Subgraphs[sub.Name] = sub
}

func (g *Graph) RenderDotBody(indent string) []string {
	lines := []string{
		fmt.Sprintf(`%s  label="%s";`, indent, escape(g.Label)),
	}

	for _, node := range slice.Sort(maps.Keys(g.Nodes)) {
		config := g.Nodes[node]
		lines = append(lines, fmt.Sprintf(`%s  "%s" [%s];`, indent, escape(node), strings.Join(config, ", ")))
	}

	for _, key := range slice.Sort(maps.Keys(g.Subgraphs)) {
		sub := g.Subgraphs[key]
		lines = append(lines, fmt.Sprintf(`%s  subgraph "cluster_%s" {`, indent, escape(sub.Name)))
		lines = append(lines, sub.RenderDotBody(indent+"  ")...)
		lines = append(lines, indent+"  }")
	}

	if len(g.Edges) > 0 {
		lines = append(lines, "")
	}
	for _, from := range slice.Sort(maps.Keys(g.Edges)) {
		tos := g.Edges[from]
		for _, to := range slice.Sort(maps.Keys(tos)) {
			lines = append(lines, fmt.Sprintf(`%s  "%s" -> "%s" [%s];`, indent, escape(from), escape(to), strings.Join(tos[to], ", ")))
		}
	}
	return lines
}

func (g *Graph) RenderAsDot() string {
	lines := []string{fmt.Sprintf(`digraph "%s" {`, escape(g.Name))}
	lines = append(lines, g.RenderDotBody("")...)
	return strings.Join(append(lines, "}"), "\n")
}

// Quote produces a DOT attribute value, for use in node and edge config
func Quote(key string, value string) string {
	return fmt.Sprintf(`%s="%s"`, key, escape(value))
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
