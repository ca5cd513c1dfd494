package dirsql

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File extension constants
const (
	// extCSV is the extension carried by every table's backing file
	extCSV = ".csv"

	// identifierSeparator joins table name components in SQL identifiers
	identifierSeparator = "/"
)

// TableName is the hierarchical form of a table's identity: an ordered
// sequence of non-empty path components with no traversal segments. The
// zero TableName denotes the root namespace in listing calls.
type TableName struct {
	parts []string
}

// TableIdentifier is the string form of a table's identity as it appears
// in SQL statements, components joined by "/".
type TableIdentifier string

// TablePath is the filesystem form of a table's identity: an absolute
// path below the root with the .csv extension stripped. CSV projects it
// onto the backing file, Dir onto the namespace directory of the same
// base name.
type TablePath struct {
	base string
}

// NewTableName creates a TableName from ordered components. Every
// component must be non-empty and must not be a traversal segment or
// contain a path separator.
func NewTableName(parts ...string) (TableName, error) {
	if len(parts) == 0 {
		return TableName{}, fmt.Errorf("table name needs at least one component: %w", ErrEmptyName)
	}
	for _, p := range parts {
		if err := validateComponent(p); err != nil {
			return TableName{}, err
		}
	}
	return TableName{parts: append([]string(nil), parts...)}, nil
}

// ParseIdentifier converts a SQL identifier string into a TableName by
// splitting on "/". Identifier-based resolution is pure: it works for
// tables that do not exist yet.
func ParseIdentifier(id TableIdentifier) (TableName, error) {
	return NewTableName(strings.Split(string(id), identifierSeparator)...)
}

// validateComponent rejects empty, traversal, and separator-bearing
// table name components.
func validateComponent(part string) error {
	if part == "" {
		return fmt.Errorf("empty component: %w", ErrEmptyName)
	}
	if part == "." || part == ".." {
		return fmt.Errorf("traversal component %q: %w", part, ErrEmptyName)
	}
	if strings.ContainsAny(part, `/\`) {
		return fmt.Errorf("component %q contains a path separator: %w", part, ErrEmptyName)
	}
	return nil
}

// Parts returns a copy of the name's components
func (n TableName) Parts() []string {
	return append([]string(nil), n.parts...)
}

// Last returns the final component of the name, or "" for the zero name
func (n TableName) Last() string {
	if len(n.parts) == 0 {
		return ""
	}
	return n.parts[len(n.parts)-1]
}

// Child returns the name extended by one component
func (n TableName) Child(part string) (TableName, error) {
	return NewTableName(append(n.Parts(), part)...)
}

// Identifier returns the SQL identifier form of the name
func (n TableName) Identifier() TableIdentifier {
	return TableIdentifier(strings.Join(n.parts, identifierSeparator))
}

// String implements fmt.Stringer
func (n TableName) String() string {
	return string(n.Identifier())
}

// CSV returns the path of the table's backing file
func (p TablePath) CSV() string {
	return p.base + extCSV
}

// Dir returns the path of the namespace directory sharing the table's base name
func (p TablePath) Dir() string {
	return p.base
}

// Resolver converts among the three table identity forms relative to one
// canonicalized root directory. The root is always passed in explicitly
// at construction, never read from ambient state.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver for rootDir. The directory must exist
// so that it can be canonicalized; a leading tilde is expanded first.
func NewResolver(rootDir string) (Resolver, error) {
	expanded, err := ExpandTilde(rootDir)
	if err != nil {
		return Resolver{}, fmt.Errorf("expand root %q: %w", rootDir, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return Resolver{}, fmt.Errorf("absolutize root %q: %w", expanded, err)
	}
	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return Resolver{}, fmt.Errorf("root %q: %w", abs, ErrMissingFile)
		}
		return Resolver{}, fmt.Errorf("canonicalize root %q: %w", abs, err)
	}
	return Resolver{root: canon}, nil
}

// Root returns the canonicalized root directory
func (r Resolver) Root() string {
	return r.root
}

// Path converts a TableName into its filesystem form. Name-based
// resolution is pure and is the required route for addressing tables
// that have not been created yet.
func (r Resolver) Path(name TableName) TablePath {
	return TablePath{base: filepath.Join(append([]string{r.root}, name.parts...)...)}
}

// NameFromPath converts an on-disk path back into a TableName. The path
// is canonicalized, so the target must exist; a canonicalized path
// outside the root fails with ErrPathEscapesRoot, and a non-csv
// extension fails with ErrInvalidExtension.
func (r Resolver) NameFromPath(path string) (TableName, error) {
	if ext := filepath.Ext(path); ext != "" && ext != extCSV {
		return TableName{}, fmt.Errorf("extension %q on %q: %w", ext, path, ErrInvalidExtension)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return TableName{}, fmt.Errorf("absolutize %q: %w", path, err)
	}
	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return TableName{}, fmt.Errorf("%q: %w", abs, ErrMissingFile)
		}
		return TableName{}, fmt.Errorf("canonicalize %q: %w", abs, err)
	}

	rel, err := filepath.Rel(r.root, canon)
	if err != nil {
		return TableName{}, fmt.Errorf("relativize %q against root %q: %w", canon, r.root, ErrPathEscapesRoot)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return TableName{}, fmt.Errorf("%q is outside root %q: %w", canon, r.root, ErrPathEscapesRoot)
	}

	relNoExt := strings.TrimSuffix(rel, extCSV)
	parts := strings.Split(relNoExt, string(filepath.Separator))
	return NewTableName(parts...)
}

// PathFromIdentifier composes identifier→name→path resolution
func (r Resolver) PathFromIdentifier(id TableIdentifier) (TablePath, error) {
	name, err := ParseIdentifier(id)
	if err != nil {
		return TablePath{}, err
	}
	return r.Path(name), nil
}

// IdentifierFromPath composes path→name→identifier resolution
func (r Resolver) IdentifierFromPath(path string) (TableIdentifier, error) {
	name, err := r.NameFromPath(path)
	if err != nil {
		return "", err
	}
	return name.Identifier(), nil
}
