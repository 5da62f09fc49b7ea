// SPDX-License-Identifier: MPL-2.0

package pathtrie

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

// IndentStep is the number of spaces added per level when rendering.
const IndentStep = 2

// maxLineSize bounds a single listing line. Device paths are far shorter,
// but bufio's 64 KiB default is easy to hit with odd vendor mounts.
const maxLineSize = 1 << 20

// Node is one path segment. The root node represents the empty prefix and
// carries no label of its own.
type Node struct {
	children map[string]*Node
}

// New returns an empty root node.
func New() *Node {
	return &Node{}
}

// Build reads one path per line from r and inserts each into a new trie.
// Blank lines are skipped. The only error is a read error from r.
func Build(r io.Reader) (*Node, error) {
	root := New()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		root.Insert(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read path listing: %w", err)
	}

	return root, nil
}

// segments splits a path on '/' and drops empty segments, so leading,
// trailing and repeated slashes are ignored.
func segments(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}

// Insert adds path below n, creating any missing nodes.
// Inserting the same path again leaves the trie unchanged.
func (n *Node) Insert(path string) {
	current := n
	for _, seg := range segments(path) {
		if current.children == nil {
			current.children = make(map[string]*Node)
		}
		child, ok := current.children[seg]
		if !ok {
			child = New()
			current.children[seg] = child
		}
		current = child
	}
}

// Lookup walks path from n. It returns false as soon as a segment is missing.
// An empty path resolves to n itself.
func (n *Node) Lookup(path string) (*Node, bool) {
	current := n
	for _, seg := range segments(path) {
		child, ok := current.children[seg]
		if !ok {
			return nil, false
		}
		current = child
	}
	return current, true
}

// Child returns the direct child with the given name.
func (n *Node) Child(name string) (*Node, bool) {
	child, ok := n.children[name]
	return child, ok
}

// Children returns the names of the direct children in lexicographic order.
func (n *Node) Children() []string {
	return slices.Sorted(maps.Keys(n.children))
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// Count returns the number of nodes below n, not counting n itself.
func (n *Node) Count() int {
	total := 0
	for _, child := range n.children {
		total += 1 + child.Count()
	}
	return total
}

// Equal reports whether n and other have the same shape and labels.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if len(n.children) != len(other.children) {
		return false
	}
	for name, child := range n.children {
		otherChild, ok := other.children[name]
		if !ok || !child.Equal(otherChild) {
			return false
		}
	}
	return true
}

// Render writes one line per descendant of n in pre-order, children ordered
// by name. Direct children are indented by indent spaces and every further
// level by IndentStep more. n itself is not written.
func (n *Node) Render(w io.Writer, indent int) error {
	for _, name := range n.Children() {
		if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", indent), name); err != nil {
			return err
		}
		if err := n.children[name].Render(w, indent+IndentStep); err != nil {
			return err
		}
	}
	return nil
}

// MarshalYAML exports the subtree as nested mappings in name order.
// Leaves become empty mappings.
func (n *Node) MarshalYAML() (any, error) {
	return n.mapSlice(), nil
}

func (n *Node) mapSlice() yaml.MapSlice {
	out := make(yaml.MapSlice, 0, len(n.children))
	for _, name := range n.Children() {
		out = append(out, yaml.MapItem{Key: name, Value: n.children[name].mapSlice()})
	}
	return out
}
