package dirsql

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// NodeKind classifies a namespace entry
type NodeKind int

const (
	// NodeTable marks an entry backed by a CSV file
	NodeTable NodeKind = iota
	// NodeNamespace marks a subdirectory holding further entries
	NodeNamespace
)

// TableNode is the classification of one directory entry, produced
// fresh on every listing.
type TableNode struct {
	// Name is the entry's hierarchical table name
	Name TableName
	// Kind tells tables and sub-namespaces apart
	Kind NodeKind
	// Schema is the full inferred schema for NodeTable entries, nil for
	// namespaces
	Schema *Schema
}

// listNodes enumerates the immediate children of a namespace directory.
// Entries whose bare filename matches any ignore pattern are excluded
// entirely. Each surviving subdirectory becomes a namespace node; each
// surviving .csv file becomes a table node with its schema inferred on
// the spot. Anything else aborts the whole listing. Order follows
// os.ReadDir and is not otherwise specified.
func listNodes(r Resolver, dir TableName, ignores []string) ([]TableNode, error) {
	dirPath := filepath.Join(append([]string{r.Root()}, dir.Parts()...)...)

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("namespace %q: %w", dir, ErrMissingFile)
		}
		return nil, fmt.Errorf("read namespace %q: %w", dir, err)
	}

	var nodes []TableNode
	for _, entry := range entries {
		ignored, err := matchesAny(ignores, entry.Name())
		if err != nil {
			return nil, err
		}
		if ignored {
			continue
		}

		node, err := classifyEntry(r, dir, entry)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// matchesAny tests a bare filename against every ignore glob
func matchesAny(patterns []string, name string) (bool, error) {
	for _, pattern := range patterns {
		ok, err := path.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("ignore pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// classifyEntry turns one directory entry into a TableNode, or fails
// fast on anything that is neither a directory nor a regular CSV file.
func classifyEntry(r Resolver, dir TableName, entry os.DirEntry) (TableNode, error) {
	base := entry.Name()

	switch {
	case entry.IsDir():
		name, err := dir.Child(base)
		if err != nil {
			return TableNode{}, err
		}
		return TableNode{Name: name, Kind: NodeNamespace}, nil

	case entry.Type().IsRegular():
		if filepath.Ext(base) != extCSV {
			return TableNode{}, fmt.Errorf("file %q in namespace %q: %w", base, dir, ErrInvalidExtension)
		}
		name, err := dir.Child(strings.TrimSuffix(base, extCSV))
		if err != nil {
			return TableNode{}, err
		}
		schema, err := readSchema(name, r.Path(name).CSV())
		if err != nil {
			return TableNode{}, err
		}
		return TableNode{Name: name, Kind: NodeTable, Schema: &schema}, nil

	default:
		return TableNode{}, fmt.Errorf("entry %q in namespace %q: %w", base, dir, ErrNotFileOrDirectory)
	}
}
