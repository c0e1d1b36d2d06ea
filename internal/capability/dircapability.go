package capability

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DirCapability is an unforgeable token restricting access to a directory
// tree. It can only be constructed from an existing, canonical directory.
// Once created, it resolves relative paths within its tree and rejects any
// path that would escape the root, whether via ".." components or a
// symlink whose target lies outside.
//
// A DirCapability is immutable after construction and safe to share freely
// across goroutines and across transactions; it holds no OS resource of its
// own. Permissions are enforced here, not at the filesystem layer.
type DirCapability struct {
	root        string
	permissions Permissions
}

// New creates a capability rooted at the given directory. The root is
// canonicalized (symlinks resolved, "."/".." eliminated) and must already
// exist as a directory.
func New(root string, perms Permissions) (*DirCapability, error) {
	canonical, err := canonicalize(root)
	if err != nil {
		return nil, &InvalidRootError{Path: root}
	}

	info, err := os.Stat(canonical)
	if err != nil || !info.IsDir() {
		return nil, &InvalidRootError{Path: root}
	}

	return &DirCapability{root: canonical, permissions: perms}, nil
}

// Root returns the capability's canonical root path.
func (c *DirCapability) Root() string { return c.root }

// Permissions returns the permission triple granted by this capability.
func (c *DirCapability) Permissions() Permissions { return c.permissions }

// CanRead reports whether this capability permits reads.
func (c *DirCapability) CanRead() bool { return c.permissions.Read }

// CanWrite reports whether this capability permits writes.
func (c *DirCapability) CanWrite() bool { return c.permissions.Write }

// CanDelete reports whether this capability permits deletes.
func (c *DirCapability) CanDelete() bool { return c.permissions.Delete }

// RequireRead returns PermissionDeniedError unless the read bit is set.
func (c *DirCapability) RequireRead() error {
	if !c.permissions.Read {
		return &PermissionDeniedError{Operation: "read", Have: c.permissions}
	}
	return nil
}

// RequireWrite returns PermissionDeniedError unless the write bit is set.
func (c *DirCapability) RequireWrite() error {
	if !c.permissions.Write {
		return &PermissionDeniedError{Operation: "write", Have: c.permissions}
	}
	return nil
}

// RequireDelete returns PermissionDeniedError unless the delete bit is set.
func (c *DirCapability) RequireDelete() error {
	if !c.permissions.Delete {
		return &PermissionDeniedError{Operation: "delete", Have: c.permissions}
	}
	return nil
}

// Resolve resolves a relative path against the capability's root, returning
// the canonical absolute path if it lies within the root.
//
// relative must not be absolute. The join of root and relative is
// canonicalized (following any symlinks), and the result is rejected with
// PathTraversalError unless root is a component-prefix of it — this is the
// only way relative paths enter the system, and it is what catches a
// symlink inside root that points outside.
func (c *DirCapability) Resolve(relative string) (string, error) {
	if filepath.IsAbs(relative) {
		return "", &PathTraversalError{Root: c.root, Attempted: relative}
	}

	joined := filepath.Join(c.root, relative)

	canonical, err := canonicalize(joined)
	if err != nil {
		return "", &PathNotFoundError{Path: joined}
	}

	if !hasPathPrefix(canonical, c.root) {
		return "", &PathTraversalError{Root: c.root, Attempted: relative}
	}

	return canonical, nil
}

// ResolveForCreation resolves a relative path that may not exist yet. Only
// the parent directory is canonicalized and checked for containment; the
// leaf component is appended verbatim so the result can be used as a
// creation target.
func (c *DirCapability) ResolveForCreation(relative string) (string, error) {
	if filepath.IsAbs(relative) {
		return "", &PathTraversalError{Root: c.root, Attempted: relative}
	}

	joined := filepath.Join(c.root, relative)
	parent := filepath.Dir(joined)
	leaf := filepath.Base(joined)

	canonicalParent, err := canonicalize(parent)
	if err != nil {
		return "", &PathNotFoundError{Path: parent}
	}

	if !hasPathPrefix(canonicalParent, c.root) {
		return "", &PathTraversalError{Root: c.root, Attempted: relative}
	}

	return filepath.Join(canonicalParent, leaf), nil
}

// Subcapability derives a new capability rooted at subdir (resolved through
// this capability) whose permissions are the meet of requested and this
// capability's own permissions — a child can only narrow authority, never
// widen it.
func (c *DirCapability) Subcapability(subdir string, requested Permissions) (*DirCapability, error) {
	resolved, err := c.Resolve(subdir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil || !info.IsDir() {
		return nil, &InvalidRootError{Path: resolved}
	}

	return &DirCapability{
		root:        resolved,
		permissions: requested.Meet(c.permissions),
	}, nil
}

// canonicalize resolves symlinks and normalizes a path the way Rust's
// Path::canonicalize does: the target must exist.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// hasPathPrefix reports whether root is a component-wise prefix of path.
// String-prefix is insufficient: "/foo" must not match "/foobar".
func hasPathPrefix(path, root string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// errNotExist is a sentinel used by callers that want to distinguish
// "does not exist" from other I/O failures when probing resolve results.
var errNotExist = os.ErrNotExist

// IsNotFound reports whether err is (or wraps) a path-not-found condition,
// mirroring errors.Is(err, os.ErrNotExist) for callers working purely in
// terms of capability errors.
func IsNotFound(err error) bool {
	var notFound *PathNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	return errors.Is(err, errNotExist)
}
