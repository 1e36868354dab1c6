package cache

import "fmt"

// Key identifies one registry lookup. Keys always include the version: the
// same module at two versions has two different dependency lists.
type Key struct {
	Name    string
	Version string
}

// String returns the key in "name@version" form, used for logging and hooks.
func (k Key) String() string {
	return fmt.Sprintf("%s@%s", k.Name, k.Version)
}
