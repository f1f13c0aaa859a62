// Package ident holds small, pure helpers for classifying Python
// identifiers, used throughout the binder so the same rules aren't
// reimplemented at each call site.
package ident

import "strings"

// IsPrivate reports whether name starts with an underscore, the condition
// the binder uses to set the PrivateDeclaration binding flag. Dunders count
// too: the flag records the leading-underscore spelling, nothing more.
func IsPrivate(name string) bool {
	return strings.HasPrefix(name, "_")
}

// IsDunder reports whether name is a `__dunder__`-style magic name.
func IsDunder(name string) bool {
	return len(name) >= 4 &&
		strings.HasPrefix(name, "__") &&
		strings.HasSuffix(name, "__")
}

// IsMangled reports whether name is subject to class-private name mangling
// (`__spam`, but not `__spam__` or `__`-only).
func IsMangled(name string) bool {
	return strings.HasPrefix(name, "__") && !strings.HasSuffix(name, "__") && name != "__"
}

// MagicGlobals are the module-level dunder names seeded as builtins
// alongside Python's actual builtin functions (§6 "Builtins seeding").
var MagicGlobals = []string{
	"__name__", "__file__", "__doc__", "__package__", "__loader__",
	"__spec__", "__builtins__", "__path__", "__dict__", "__annotations__",
}

// IsTypeCheckingName reports whether name is one of the spellings the
// classifier recognizes for `if TYPE_CHECKING:` guards, including the
// aliased-import form (§4 supplement).
func IsTypeCheckingName(name string, aliases map[string]string) bool {
	if name == "TYPE_CHECKING" || name == "typing.TYPE_CHECKING" {
		return true
	}
	if real, ok := aliases[name]; ok {
		return real == "TYPE_CHECKING"
	}
	return false
}
