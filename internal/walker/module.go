package walker

import "github.com/cwbudde/pywalk/pkg/pyast"

// ModuleKind distinguishes a package's `__init__` module from a standalone
// module file (§3 "Module descriptor"); a handful of rules behave
// differently inside a package initializer (re-export conventions, implicit
// namespace exports).
type ModuleKind int

const (
	StandaloneModule ModuleKind = iota
	PackageModule
)

func (k ModuleKind) String() string {
	if k == PackageModule {
		return "Package"
	}
	return "StandaloneModule"
}

// ModuleSource records where the module under analysis came from: a dotted
// import path, a filesystem path, or both when the caller knows the
// mapping. Either field may be empty.
type ModuleSource struct {
	Dotted string
	Path   string
}

// ModuleDescriptor identifies the module under analysis: its kind, its
// source, and the root AST node. The driver builds it once and it is
// immutable for the engine's lifetime (§3).
type ModuleDescriptor struct {
	Kind   ModuleKind
	Source ModuleSource
	Root   *pyast.Module
}
