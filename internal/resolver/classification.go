// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"fmt"

	"github.com/invowk/rootindex/pkg/fspath"
	"github.com/invowk/rootindex/pkg/projectmodel"
	"github.com/invowk/rootindex/pkg/types"
)

type (
	// Classification is the verdict for one path. It is one of InProject,
	// InLibrary, InUnloadedModule, Excluded or NotInProject.
	Classification interface {
		fmt.Stringer
		classification()
	}

	// InProject is a path inside the content of a loaded module.
	InProject struct {
		Module      types.ModuleName
		ContentRoot fspath.Path
		// SourceRoot is the zero Path when the path is plain content.
		SourceRoot    fspath.Path
		InSource      bool
		IsTestSource  bool
		SourceKind    projectmodel.SourceKind
		PackagePrefix types.PackageName
		// InLibrarySource and InLibraryClasses report that some library also
		// sees the path through a sources or classes root.
		InLibrarySource  bool
		InLibraryClasses bool
		// InLibrarySourceOnly is set when the path is library source and
		// neither module source nor library classes.
		InLibrarySourceOnly bool
	}

	// InLibrary is a path visible only through library or SDK roots.
	InLibrary struct {
		// Library is the winning library under the configured precedence.
		Library   projectmodel.EntityRef
		InSource  bool
		InClasses bool
	}

	// InUnloadedModule is a path under the content of an unloaded module.
	InUnloadedModule struct {
		Name types.ModuleName
	}

	// Excluded is a path hidden from the project. Module is set when the
	// exclusion applies inside a module's content.
	Excluded struct {
		Module  types.ModuleName
		Ignored bool
	}

	// NotInProject is a path no root claims.
	NotInProject struct{}
)

func (InProject) classification()        {}
func (InLibrary) classification()        {}
func (InUnloadedModule) classification() {}
func (Excluded) classification()         {}
func (NotInProject) classification()     {}

func (c InProject) String() string {
	if c.InSource {
		kind := c.SourceKind.String()
		if c.IsTestSource {
			kind = "test " + kind
		}
		return fmt.Sprintf("in project: module %s, %s root %s", c.Module, kind, c.SourceRoot)
	}
	return fmt.Sprintf("in project: module %s, content root %s", c.Module, c.ContentRoot)
}

func (c InLibrary) String() string {
	switch {
	case c.InClasses && c.InSource:
		return fmt.Sprintf("in library: %s (classes, sources)", c.Library)
	case c.InSource:
		return fmt.Sprintf("in library: %s (sources)", c.Library)
	default:
		return fmt.Sprintf("in library: %s (classes)", c.Library)
	}
}

func (c InUnloadedModule) String() string {
	return fmt.Sprintf("in unloaded module: %s", c.Name)
}

func (c Excluded) String() string {
	reason := "excluded"
	if c.Ignored {
		reason = "ignored"
	}
	if c.Module != "" {
		return fmt.Sprintf("%s: module %s", reason, c.Module)
	}
	return reason
}

func (NotInProject) String() string { return "not in project" }
