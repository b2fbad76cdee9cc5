package transformer

import (
	"fmt"

	"github.com/arborjs/arbor/internal/compat"
)

type Module uint8

const (
	ModulePreserve Module = iota
	ModuleCommonJS
	ModuleESModule
)

type HelperLoaderMode uint8

const (
	// Emit each used helper inline at the top of the program
	HelpersInline HelperLoaderMode = iota

	// Import used helpers from the configured helper module
	HelpersImport
)

type HelperLoaderOptions struct {
	Mode HelperLoaderMode

	// The module to import helpers from in import mode
	ModuleName string
}

const defaultHelperModuleName = "@arborjs/helpers"

type RewriteExtensionsMode uint8

const (
	RewriteExtensionsNone RewriteExtensionsMode = iota

	// Rewrite ".ts" to ".js", ".mts" to ".mjs", and so on in relative import
	// specifiers
	RewriteExtensionsRewrite

	// Remove the extension from relative import specifiers entirely
	RewriteExtensionsRemove
)

type TypeScriptOptions struct {
	// When enabled, only "import type" imports are elided; value imports whose
	// bindings end up unused are kept. This matches the "verbatimModuleSyntax"
	// behavior of the TypeScript compiler.
	OnlyRemoveTypeImports bool

	RewriteImportExtensions RewriteExtensionsMode
}

type JsxRuntime uint8

const (
	// Lower JSX to calls of a configurable factory ("React.createElement")
	JsxRuntimeClassic JsxRuntime = iota

	// Lower JSX to "jsx"/"jsxs" calls imported from "<source>/jsx-runtime"
	JsxRuntimeAutomatic
)

type JsxOptions struct {
	Runtime JsxRuntime

	// Only used by the automatic runtime
	ImportSource string

	// Only used by the classic runtime
	Pragma     string // default "React.createElement"
	PragmaFrag string // default "React.Fragment"

	// Use "jsxDEV" with extra debug arguments instead of "jsx"/"jsxs"
	Development bool

	// Register top-level components for hot reloading
	Refresh        bool
	RefreshOptions ReactRefreshOptions
}

type ReactRefreshOptions struct {
	RefreshReg string // default "$RefreshReg$"
}

const (
	defaultJsxImportSource = "react"
	defaultJsxPragma       = "React.createElement"
	defaultJsxPragmaFrag   = "React.Fragment"
)

// CompilerAssumptions are semantic concessions the user grants to reduce the
// amount of emitted code. Each one is individually opt-in.
type CompilerAssumptions struct {
	// Use assignment semantics instead of Object.defineProperty when lowering
	// public class fields
	SetPublicClassFields bool

	// Assume "document.all" does not exist, so "x == null" is an exact test
	// for null and undefined
	NoDocumentAll bool
}

// EnvOptions maps engine names to minimum versions. It is compiled into a
// per-feature bitset at pipeline construction, so hot-path checks are single
// boolean tests.
type EnvOptions struct {
	// Engine name ("chrome", "node", ...) to minimum version ("16", "16.3")
	Engines map[string]string

	// Shorthand for an "es" engine constraint: "es2017", "es2020", ...
	ESTarget string
}

func (env *EnvOptions) unsupportedFeatures() (compat.JSFeature, error) {
	constraints := make(map[compat.Engine][]int)

	for name, versionText := range env.Engines {
		engine, ok := compat.EngineFromString(name)
		if !ok {
			return 0, fmt.Errorf("invalid engine name: %q", name)
		}
		version, ok := compat.ParseVersion(versionText)
		if !ok {
			return 0, fmt.Errorf("invalid version %q for engine %q", versionText, name)
		}
		constraints[engine] = version
	}

	if env.ESTarget != "" {
		year, ok := parseESTarget(env.ESTarget)
		if !ok {
			return 0, fmt.Errorf("invalid target: %q", env.ESTarget)
		}
		if year != 0 {
			constraints[compat.ES] = []int{year}
		}
	}

	return compat.UnsupportedJSFeatures(constraints), nil
}

func parseESTarget(text string) (int, bool) {
	switch text {
	case "esnext":
		return 0, true
	case "es5":
		return 5, true
	case "es6", "es2015":
		return 2015, true
	case "es2016", "es2017", "es2018", "es2019", "es2020", "es2021", "es2022", "es2023", "es2024":
		year := 0
		if _, err := fmt.Sscanf(text, "es%d", &year); err != nil {
			return 0, false
		}
		return year, true
	}
	return 0, false
}

type TransformOptions struct {
	TypeScript   TypeScriptOptions
	Jsx          JsxOptions
	Env          EnvOptions
	Assumptions  CompilerAssumptions
	Module       Module
	HelperLoader HelperLoaderOptions
}

// Option conflicts are reported eagerly at pipeline construction, never
// during traversal.
func (options *TransformOptions) validate() error {
	if options.Jsx.Runtime == JsxRuntimeClassic && options.Jsx.ImportSource != "" {
		return fmt.Errorf("the JSX import source is only used by the automatic runtime")
	}
	if options.Jsx.Runtime == JsxRuntimeAutomatic && (options.Jsx.Pragma != "" || options.Jsx.PragmaFrag != "") {
		return fmt.Errorf("JSX pragmas are only used by the classic runtime")
	}
	if options.Jsx.Refresh && !options.Jsx.Development {
		return fmt.Errorf("JSX refresh requires development mode")
	}
	if _, err := options.Env.unsupportedFeatures(); err != nil {
		return err
	}
	return nil
}
