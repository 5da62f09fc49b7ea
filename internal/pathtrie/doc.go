// SPDX-License-Identifier: MPL-2.0

// Package pathtrie indexes a flat list of slash-delimited paths into a tree
// keyed by path segment.
//
// A trie is built once from a listing (typically the output of `find` on the
// device), then only read: looked up by sub-path and rendered as indented
// text or exported as an ordered YAML mapping. Children are always visited in
// lexicographic order so output is stable across runs against the same
// remote state.
package pathtrie
