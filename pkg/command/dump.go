package command

import (
	"fmt"
	"strings"

	"github.com/mattfenwick/scan-utils/pkg/graph"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const dumpIndent = "    "

// Dump renders commands one per line, loop bodies indented below their loop
func Dump(commands []*Command) string {
	return strings.Join(dumpLines(commands, ""), "\n")
}

func dumpLines(commands []*Command, indent string) []string {
	var lines []string
	for _, c := range commands {
		lines = append(lines, indent+c.String())
		if c.Type == LoopCommandType && c.Loop != nil {
			lines = append(lines, dumpLines(c.Loop.Body, indent+dumpIndent)...)
		}
	}
	return lines
}

func YAML(commands []*Command) (string, error) {
	bs, err := yaml.Marshal(commands)
	if err != nil {
		return "", errors.Wrapf(err, "unable to marshal commands to yaml")
	}
	return string(bs), nil
}

// Graph builds a DOT graph with one node per command; each loop and its body
// are drawn in their own cluster, with edges from the loop to its body
// commands labelled with their position
func Graph(name string, commands []*Command) *graph.Graph {
	g := graph.NewGraph(name, name)
	addToGraph(g, g, "", commands)
	return g
}

func addToGraph(root *graph.Graph, container *graph.Graph, parent string, commands []*Command) {
	for i, c := range commands {
		node := fmt.Sprintf("%d", i)
		if parent != "" {
			node = fmt.Sprintf("%s.%d", parent, i)
			root.AddEdge(parent, node, graph.Quote("label", fmt.Sprintf("%d", i)))
		}
		if c.Type == LoopCommandType && c.Loop != nil {
			cluster := graph.NewGraph(node, c.Loop.Device)
			container.AddSubgraph(cluster)
			cluster.AddNode(node, graph.Quote("label", c.String()), "shape=ellipse")
			addToGraph(root, cluster, node, c.Loop.Body)
		} else {
			container.AddNode(node, graph.Quote("label", c.String()), "shape=box")
		}
	}
}
