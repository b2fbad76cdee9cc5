package api

// This API is for programmatic usage in Go and for host-runtime bindings.
// The sync entry points are the primitives; the async variants are thin task
// wrappers that run the sync path on their own goroutine and deliver the
// completed result object.
//
// The parser and printer are external collaborators: the pipeline consumes a
// parsed program plus its symbol and scope tables and returns the mutated
// program with updated tables and an ordered diagnostic list.

import (
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/logger"
	"github.com/arborjs/arbor/internal/minifier"
	"github.com/arborjs/arbor/internal/transformer"
)

// The program root node and its tables, produced by the external parser and
// scope analyzer
type Program = js_ast.AST
type SymbolMap = js_ast.SymbolMap
type Scope = js_ast.Scope

type MessageKind uint8

const (
	ErrorMessage MessageKind = iota
	WarningMessage
)

type Location struct {
	File     string
	Line     int // 1-based
	Column   int // 0-based, in bytes
	Length   int // in bytes
	LineText string
}

type Message struct {
	Kind     MessageKind
	Text     string
	Location *Location
}

type JsxRuntime uint8

const (
	JsxRuntimeClassic JsxRuntime = iota
	JsxRuntimeAutomatic
)

type Module uint8

const (
	ModulePreserve Module = iota
	ModuleCommonJS
	ModuleESModule
)

type HelperLoaderMode uint8

const (
	HelpersInline HelperLoaderMode = iota
	HelpersImport
)

type RewriteExtensionsMode uint8

const (
	RewriteExtensionsNone RewriteExtensionsMode = iota
	RewriteExtensionsRewrite
	RewriteExtensionsRemove
)

type TypeScriptOptions struct {
	OnlyRemoveTypeImports   bool
	RewriteImportExtensions RewriteExtensionsMode
}

type JsxOptions struct {
	Runtime      JsxRuntime
	ImportSource string
	Pragma       string
	PragmaFrag   string
	Development  bool
	Refresh      bool
}

type EnvOptions struct {
	// Engine name ("chrome", "firefox", "safari", "edge", "ios", "node",
	// "es") to minimum version ("16", "16.3", "16.3.0")
	Engines map[string]string

	// Shorthand for an "es" constraint: "es2017", "esnext", ...
	ESTarget string
}

type CompilerAssumptions struct {
	SetPublicClassFields bool
	NoDocumentAll        bool
}

type CompressOptions struct {
	Booleans bool
	Typeofs  bool
	Loops    bool
}

type TransformOptions struct {
	TypeScript   TypeScriptOptions
	Jsx          JsxOptions
	Env          EnvOptions
	Assumptions  CompilerAssumptions
	Module       Module
	HelperLoader HelperLoaderMode
	HelperModule string

	// When non-nil, the peephole minifier runs after the lowering pipeline
	Compress *CompressOptions
}

type TransformInput struct {
	Program    *Program
	Symbols    SymbolMap
	Scopes     *Scope
	SourcePath string
	SourceText string
}

type TransformResult struct {
	// The mutated program, nil when the options were rejected or a fatal
	// internal error aborted the run
	Program *Program

	Symbols SymbolMap
	Scopes  *Scope
	Errors  []Message
}

// Transform runs the lowering pipeline (and optionally the minifier) over
// one program. Distinct programs share no state and may be transformed
// concurrently on separate goroutines.
func Transform(input TransformInput, options TransformOptions) (result TransformResult) {
	// Internal invariant violations abort the whole program's transformation;
	// no partial output is returned
	defer func() {
		if r := recover(); r != nil {
			result = TransformResult{Errors: []Message{{
				Kind: ErrorMessage,
				Text: "Fatal: " + panicText(r),
			}}}
		}
	}()

	log := logger.NewDeferLog()
	source := &logger.Source{
		KeyPath:    logger.Path{Text: input.SourcePath},
		PrettyPath: input.SourcePath,
		Contents:   input.SourceText,
	}

	t, err := transformer.NewTransformer(log, source, convertOptions(options))
	if err != nil {
		return TransformResult{Errors: []Message{{Kind: ErrorMessage, Text: err.Error()}}}
	}

	ret := t.BuildWithSymbolsAndScopes(input.Symbols, input.Scopes, input.Program)
	symbols, scopes := ret.Symbols, ret.Scopes

	if options.Compress != nil {
		compressor := minifier.NewCompressor(minifier.CompressOptions{
			Booleans: options.Compress.Booleans,
			Typeofs:  options.Compress.Typeofs,
			Loops:    options.Compress.Loops,
		})
		symbols, scopes = compressor.Build(input.Program, symbols, scopes)
	}

	return TransformResult{
		Program: input.Program,
		Symbols: symbols,
		Scopes:  scopes,
		Errors:  convertMessages(ret.Errors),
	}
}

// TransformTask is the async wrapper around Transform. Dropping the task
// without receiving abandons the result; the in-flight work runs to
// completion on its own goroutine and is discarded.
type TransformTask struct {
	C <-chan TransformResult
}

func TransformAsync(input TransformInput, options TransformOptions) *TransformTask {
	c := make(chan TransformResult, 1)
	go func() {
		c <- Transform(input, options)
	}()
	return &TransformTask{C: c}
}

func convertOptions(options TransformOptions) transformer.TransformOptions {
	return transformer.TransformOptions{
		TypeScript: transformer.TypeScriptOptions{
			OnlyRemoveTypeImports:   options.TypeScript.OnlyRemoveTypeImports,
			RewriteImportExtensions: transformer.RewriteExtensionsMode(options.TypeScript.RewriteImportExtensions),
		},
		Jsx: transformer.JsxOptions{
			Runtime:      transformer.JsxRuntime(options.Jsx.Runtime),
			ImportSource: options.Jsx.ImportSource,
			Pragma:       options.Jsx.Pragma,
			PragmaFrag:   options.Jsx.PragmaFrag,
			Development:  options.Jsx.Development,
			Refresh:      options.Jsx.Refresh,
		},
		Env: transformer.EnvOptions{
			Engines:  options.Env.Engines,
			ESTarget: options.Env.ESTarget,
		},
		Assumptions: transformer.CompilerAssumptions{
			SetPublicClassFields: options.Assumptions.SetPublicClassFields,
			NoDocumentAll:        options.Assumptions.NoDocumentAll,
		},
		Module: transformer.Module(options.Module),
		HelperLoader: transformer.HelperLoaderOptions{
			Mode:       transformer.HelperLoaderMode(options.HelperLoader),
			ModuleName: options.HelperModule,
		},
	}
}

func convertMessages(msgs []logger.Msg) []Message {
	var result []Message
	for _, msg := range msgs {
		kind := ErrorMessage
		if msg.Kind == logger.Warning {
			kind = WarningMessage
		}
		converted := Message{Kind: kind, Text: msg.Data.Text}
		if loc := msg.Data.Location; loc != nil {
			converted.Location = &Location{
				File:     loc.File,
				Line:     loc.Line,
				Column:   loc.Column,
				Length:   loc.Length,
				LineText: loc.LineText,
			}
		}
		result = append(result, converted)
	}
	return result
}

func panicText(r interface{}) string {
	if text, ok := r.(string); ok {
		return text
	}
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return "unknown panic"
}
