// Package safety documents the threat model that the capability,
// audit and fsops packages are collectively built to resist.
//
// polysafe gives automated callers — scripts, CI jobs, an eventual
// orchestrator driving bulk git repository repairs — bounded, reversible,
// and auditable access to a filesystem tree. The safety package centralizes
// the threat model rather than scattering rationale across call sites.
//
// # Threat Model
//
// T1 - Path Traversal via Relative Segments: a caller-supplied relative
// path containing ".." or an absolute path could otherwise escape a
// capability's root. Mitigations: DirCapability.Resolve rejects absolute
// paths outright and canonicalizes the joined path before checking it
// against the root with a component-prefix comparison, not a raw string
// prefix (so "/cap-root-evil" is never mistaken for a child of
// "/cap-root").
//
// T2 - Symlink Escape: a symlink placed inside a capability's root, or
// swapped in between resolution and use (TOCTOU), could point outside the
// root and be silently followed by filesystem calls that operate on the
// canonical target rather than the symlink itself. Mitigation:
// canonicalize() resolves symlinks via filepath.EvalSymlinks before the
// containment check runs, so a symlink whose target escapes the root is
// rejected the same way a literal ".." would be. This does not close a
// race where the symlink is swapped after resolution and before the
// filesystem call that follows it; see Non-goals in the capability spec.
//
// T3 - Audit Log Tampering: an operator or compromised process with
// filesystem access to the audit log file could edit, delete, or reorder
// past entries to hide what was done. Mitigation: each entry's hash
// commits to the previous entry's hash, forming a chain; AuditLog.Open
// walks the whole file and recomputes the chain before accepting it as
// writable, so an edit to any entry that a later entry cites breaks
// verification at the tampered entry rather than passing silently. An edit
// to the newest entry, or one that leaves every decoded field unchanged
// (whitespace, JSON escaping), is not detected.
//
// T4 - Capability Over-Broadening via Subcapability: a component that
// receives a narrowed capability (say, read-only) must not be able to
// mint a wider one for a subdirectory. Mitigation: Subcapability computes
// the child's permission set as the logical AND of the requested
// permissions and the parent's, so a read-only parent can never produce a
// writable child regardless of what the caller asks for.
//
// T5 - Transaction Rollback Failures Masking Partial State: if a
// filesystem operation inside a transaction fails partway through a
// multi-step journal and rollback itself fails on one step, a caller that
// only checks the top-level error may believe the filesystem was restored
// when it was not. Mitigation: Transaction.Rollback returns every error
// encountered while undoing journal entries (not just the first), and
// Transaction.Close, used from defer, logs each rollback failure instead
// of discarding it silently.
//
// T6 - Orphaned Temp Files: every write or copy goes through a
// ".<name>.<txn-id>.tmp" staging file before the final rename. A process
// crash between the write and the rename leaves that file behind with no
// automatic cleanup, since nothing is alive to roll it back. This is a
// known limitation, not a mitigated threat: operators that care about
// accumulating temp files should sweep for the ".*.tmp" pattern
// out-of-band.
//
// T7 - Shelling Out to git: the git façade builds argv slices and invokes
// git directly via os/exec, never through a shell, so filenames or branch
// names containing shell metacharacters cannot inject additional
// commands. A context timeout bounds how long a single git invocation can
// run, so a hung git process (for example waiting on an interactive
// credential prompt) cannot block a caller indefinitely.
//
// # Design Principles
//
// Deny by default: the configured permission set defaults to read_only
// (capability.DefaultPermissions is ReadOnly), so the CLI's root capability
// gets write or delete access only when full or read_write is requested.
//
// Fail loud, not quiet: a resolve, audit append, or transaction step that
// cannot complete returns an error up the call chain rather than
// substituting a default or skipping the step.
//
// Narrow the blast radius of mutation: every mutating filesystem
// operation is journaled as soon as it succeeds, so a transaction that
// fails partway can be unwound without manual cleanup in the common case.
package safety
