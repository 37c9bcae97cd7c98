// Command boardinfo prints a human-readable summary of a board layout.
// It validates the layout, builds the topology, and reports vertex and
// edge counts, the chain table per base, and whether the graph is fully
// connected. Pass layout JSON files as arguments; with no arguments it
// summarizes the compiled-in standard board.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/NikkyAI/pentagame-server/game/board"
	"github.com/NikkyAI/pentagame-server/game/config"
)

func main() {
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{""}
	}

	exitCode := 0
	for _, path := range paths {
		name := path
		if name == "" {
			name = "built-in standard board"
		}
		fmt.Printf("\n=== %s ===\n", name)

		summary, err := summarize(path)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			exitCode = 1
			continue
		}
		fmt.Print(summary)
	}
	os.Exit(exitCode)
}

// summarize loads, validates, and describes one layout.
func summarize(path string) (string, error) {
	layout, err := config.LoadLayout(path)
	if err != nil {
		return "", err
	}

	topo, err := board.Build(layout)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", layout.Name)
	fmt.Fprintf(&b, "Bases: %d\n", len(layout.BaseVertices))
	fmt.Fprintf(&b, "Vertices: %d\n", topo.VertexCount())
	fmt.Fprintf(&b, "Directed edges: %d\n", topo.EdgeCount())

	fmt.Fprintf(&b, "\nChains:\n")
	for i, chains := range layout.Edges {
		base := layout.BaseVertices[i]
		for _, chain := range chains {
			fmt.Fprintf(&b, "  %d -> %d  (%d stops)\n", base, chain.Peer, chain.Length)
		}
	}

	unreached := unreachableFrom(topo, board.BasePosition(layout.BaseVertices[0]))
	if len(unreached) > 0 {
		fmt.Fprintf(&b, "\nWARNING: %d vertices are unreachable from base %d:\n",
			len(unreached), layout.BaseVertices[0])
		for i, pos := range unreached {
			if i == 5 {
				fmt.Fprintf(&b, "  ... and %d more\n", len(unreached)-5)
				break
			}
			fmt.Fprintf(&b, "  %s\n", pos)
		}
	} else {
		fmt.Fprintf(&b, "\nFully connected: every vertex is reachable from every other\n")
	}

	return b.String(), nil
}

// unreachableFrom returns the vertices a breadth-first search from start
// never touches.
func unreachableFrom(topo *board.Topology, start board.Position) []board.Position {
	visited := map[board.Position]bool{start: true}
	queue := []board.Position{start}

	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]
		for _, next := range topo.Neighbors(pos) {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	var unreached []board.Position
	for _, pos := range topo.Vertices() {
		if !visited[pos] {
			unreached = append(unreached, pos)
		}
	}
	return unreached
}
