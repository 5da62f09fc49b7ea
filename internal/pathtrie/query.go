// SPDX-License-Identifier: MPL-2.0

package pathtrie

import (
	"io"

	"github.com/goccy/go-yaml"
)

// subtreeIndent is the indentation used when rendering a resolved sub-path.
const subtreeIndent = 2

// RenderAll writes the whole trie starting at indent 0.
func RenderAll(w io.Writer, root *Node) error {
	return root.Render(w, 0)
}

// RenderSubtree resolves subPath under root and renders that subtree. When
// subPath does not resolve, the whole trie is rendered instead and found is
// false; a missing sub-path is not an error.
func RenderSubtree(w io.Writer, root *Node, subPath string) (found bool, err error) {
	node, ok := root.Lookup(subPath)
	if !ok {
		return false, RenderAll(w, root)
	}
	return true, node.Render(w, subtreeIndent)
}

// Resolve returns the node for subPath, or root when it does not resolve.
func Resolve(root *Node, subPath string) (*Node, bool) {
	if node, ok := root.Lookup(subPath); ok {
		return node, true
	}
	return root, false
}

// WriteYAML writes node as an ordered YAML mapping.
func WriteYAML(w io.Writer, node *Node) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
