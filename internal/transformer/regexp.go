package transformer

import (
	"strings"

	"github.com/arborjs/arbor/internal/compat"
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/traverse"
)

// The regexp pass rewrites regular expression literals that use flags or
// syntax unavailable in the target into "new RegExp(source, flags)"
// constructions. That moves the failure (if the feature is truly missing) to
// construction time in the target runtime, and lets runtimes with partial
// support work, instead of a guaranteed parse error for the whole file.
type regexpPass struct {
	ctx *TransformCtx
}

func (p *regexpPass) enterExpression(expr *js_ast.Expr, tctx *traverse.Ctx) {
	regex, ok := expr.Data.(*js_ast.ERegExp)
	if !ok {
		return
	}

	pattern, flags := splitRegExpLiteral(regex.Value)
	if !p.needsLowering(pattern, flags) {
		return
	}

	args := []js_ast.Expr{stringExpr(expr.Loc, pattern)}
	if flags != "" {
		args = append(args, stringExpr(expr.Loc, flags))
	}
	regExpRef := p.ctx.UnboundRef(tctx, "RegExp")
	expr.Data = &js_ast.ENew{
		Target: refExpr(tctx, expr.Loc, regExpRef),
		Args:   args,
	}
}

// "/ab\/c/gi" => ("ab\/c", "gi")
func splitRegExpLiteral(value string) (pattern string, flags string) {
	if end := strings.LastIndexByte(value, '/'); end > 0 {
		return value[1:end], value[end+1:]
	}
	return value, ""
}

func (p *regexpPass) needsLowering(pattern string, flags string) bool {
	var feature compat.JSFeature
	for _, flag := range flags {
		switch flag {
		case 'd':
			feature |= compat.RegexpMatchIndices
		case 's':
			feature |= compat.RegexpDotAllFlag
		case 'u', 'y':
			feature |= compat.RegexpStickyAndUnicodeFlags
		case 'v':
			feature |= compat.RegexpSetNotation
		}
	}

	// "(?<=" and "(?<!" are lookbehind assertions; any other "(?<" starts a
	// named capture group
	for i := 0; ; {
		j := strings.Index(pattern[i:], "(?<")
		if j == -1 {
			break
		}
		i += j + 3
		if i < len(pattern) && (pattern[i] == '=' || pattern[i] == '!') {
			feature |= compat.RegexpLookbehindAssertions
		} else {
			feature |= compat.RegexpNamedCaptureGroups
		}
	}

	return p.ctx.unsupported&feature != 0
}
