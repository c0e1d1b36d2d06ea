package config

import (
	"fmt"

	"github.com/polysafe/polysafe/internal/capability"
)

// ParsePermissions maps a config permissions name to a capability.Permissions
// value. Unrecognized names are rejected rather than silently downgraded to
// read_only, since a typo here should not quietly widen or narrow what a
// capability can do.
func ParsePermissions(name string) (capability.Permissions, error) {
	switch name {
	case "full":
		return capability.Full(), nil
	case "read_only":
		return capability.ReadOnly(), nil
	case "read_write":
		return capability.ReadWrite(), nil
	default:
		return capability.Permissions{}, fmt.Errorf("unknown permissions %q: want full, read_only or read_write", name)
	}
}
