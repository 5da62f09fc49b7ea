// SPDX-License-Identifier: MPL-2.0

package pathtrie

import (
	"bytes"
	"testing"

	"github.com/goccy/go-yaml"
)

func sampleTree() *Node {
	root := New()
	for _, p := range []string{
		"/system/bin/sh",
		"/system/etc/hosts",
		"/data/adb/modules",
	} {
		root.Insert(p)
	}
	return root
}

func TestRenderSubtree(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		subPath  string
		found    bool
		expected string
	}{
		{
			name:     "resolved sub-path",
			subPath:  "/system",
			found:    true,
			expected: "  bin\n    sh\n  etc\n    hosts\n",
		},
		{
			name:     "leaf renders nothing",
			subPath:  "/system/bin/sh",
			found:    true,
			expected: "",
		},
		{
			name:     "empty sub-path resolves to root",
			subPath:  "",
			found:    true,
			expected: "  data\n    adb\n      modules\n  system\n    bin\n      sh\n    etc\n      hosts\n",
		},
		{
			name:     "missing sub-path falls back to whole tree",
			subPath:  "/vendor",
			found:    false,
			expected: "data\n  adb\n    modules\nsystem\n  bin\n    sh\n  etc\n    hosts\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			found, err := RenderSubtree(&buf, sampleTree(), tt.subPath)
			if err != nil {
				t.Fatalf("RenderSubtree() failed: %v", err)
			}
			if found != tt.found {
				t.Errorf("RenderSubtree() found = %v, want %v", found, tt.found)
			}
			if buf.String() != tt.expected {
				t.Errorf("RenderSubtree() = %q, want %q", buf.String(), tt.expected)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	root := sampleTree()
	node, ok := Resolve(root, "/data/adb")
	if !ok {
		t.Fatal("Resolve(/data/adb) not found")
	}
	if got := node.Children(); len(got) != 1 || got[0] != "modules" {
		t.Errorf("Resolve(/data/adb) children = %v", got)
	}

	node, ok = Resolve(root, "/nope")
	if ok || node != root {
		t.Error("Resolve(/nope) should fall back to root")
	}
}

func TestWriteYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteYAML(&buf, sampleTree()); err != nil {
		t.Fatalf("WriteYAML() failed: %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, buf.String())
	}

	system, ok := decoded["system"].(map[string]any)
	if !ok {
		t.Fatalf("system is %T, want mapping", decoded["system"])
	}
	if _, ok := system["bin"]; !ok {
		t.Error("system.bin missing from YAML export")
	}
	if _, ok := decoded["data"]; !ok {
		t.Error("data missing from YAML export")
	}

	// Name order is preserved in the document.
	out := buf.String()
	if bytes.Index([]byte(out), []byte("data:")) > bytes.Index([]byte(out), []byte("system:")) {
		t.Errorf("expected data before system:\n%s", out)
	}
}
