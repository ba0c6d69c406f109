// SPDX-License-Identifier: MPL-2.0

package descriptor

type (
	document struct {
		Output     string       `json:"output,omitempty"`
		ProjectSdk string       `json:"project_sdk,omitempty"`
		Modules    []moduleDoc  `json:"modules"`
		Libraries  []libraryDoc `json:"libraries,omitempty"`
		Sdks       []sdkDoc     `json:"sdks,omitempty"`
	}

	moduleDoc struct {
		Name         string           `json:"name"`
		Unloaded     bool             `json:"unloaded,omitempty"`
		ContentRoots []contentRootDoc `json:"content_roots,omitempty"`
		Dependencies []dependencyDoc  `json:"dependencies,omitempty"`
		Output       *outputDoc       `json:"output,omitempty"`
	}

	contentRootDoc struct {
		Path        string          `json:"path"`
		SourceRoots []sourceRootDoc `json:"source_roots,omitempty"`
		Excluded    []string        `json:"excluded,omitempty"`
	}

	sourceRootDoc struct {
		Path          string `json:"path"`
		Test          bool   `json:"test,omitempty"`
		Kind          string `json:"kind,omitempty"`
		PackagePrefix string `json:"package_prefix,omitempty"`
	}

	outputDoc struct {
		Inherit    *bool  `json:"inherit,omitempty"`
		Production string `json:"production,omitempty"`
		Test       string `json:"test,omitempty"`
		Exclude    *bool  `json:"exclude,omitempty"`
	}

	// dependencyDoc is the union of the dependency shapes; exactly one of
	// Module, Library, ModuleLibrary, Sdk and InheritSdk is set.
	dependencyDoc struct {
		Module        string      `json:"module,omitempty"`
		Library       string      `json:"library,omitempty"`
		Level         string      `json:"level,omitempty"`
		ModuleLibrary *libraryDoc `json:"module_library,omitempty"`
		Sdk           string      `json:"sdk,omitempty"`
		InheritSdk    bool        `json:"inherit_sdk,omitempty"`
		Scope         string      `json:"scope,omitempty"`
		Exported      bool        `json:"exported,omitempty"`
	}

	libraryDoc struct {
		Name         string   `json:"name"`
		Level        string   `json:"level,omitempty"`
		Classes      []string `json:"classes,omitempty"`
		Sources      []string `json:"sources,omitempty"`
		Excluded     []string `json:"excluded,omitempty"`
		ExcludeGlobs []string `json:"exclude_globs,omitempty"`
	}

	sdkDoc struct {
		Name    string   `json:"name"`
		Classes []string `json:"classes,omitempty"`
		Sources []string `json:"sources,omitempty"`
	}
)
