package tree

import (
	"fmt"
	"sort"
	"strings"
)

// node is a directory or file in the rendered tree.
type node struct {
	name     string
	children map[string]*node
	isDir    bool
}

// Render draws slash-separated relative paths as a tree under root.
// Directories come first, then files, each group sorted case-insensitively.
func Render(root string, relPaths []string) string {
	top := &node{name: root, isDir: true, children: map[string]*node{}}
	for _, rel := range relPaths {
		insert(top, strings.Split(strings.Trim(rel, "/"), "/"))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s/\n", strings.TrimSuffix(root, "/")))
	renderChildren(&b, top, "")
	return b.String()
}

func insert(parent *node, parts []string) {
	if len(parts) == 0 || parts[0] == "" {
		return
	}
	child, ok := parent.children[parts[0]]
	if !ok {
		child = &node{name: parts[0], children: map[string]*node{}}
		parent.children[parts[0]] = child
	}
	if len(parts) > 1 {
		child.isDir = true
		insert(child, parts[1:])
	}
}

func renderChildren(b *strings.Builder, parent *node, prefix string) {
	entries := make([]*node, 0, len(parent.children))
	for _, c := range parent.children {
		entries = append(entries, c)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].isDir != entries[j].isDir {
			return entries[i].isDir
		}
		return strings.ToLower(entries[i].name) < strings.ToLower(entries[j].name)
	})

	for i, entry := range entries {
		connector := "├── "
		extension := "│   "
		if i == len(entries)-1 {
			connector = "└── "
			extension = "    "
		}

		if entry.isDir {
			b.WriteString(fmt.Sprintf("%s%s%s/\n", prefix, connector, entry.name))
			renderChildren(b, entry, prefix+extension)
			continue
		}
		b.WriteString(fmt.Sprintf("%s%s%s\n", prefix, connector, entry.name))
	}
}
