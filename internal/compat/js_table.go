package compat

type Engine uint8

const (
	Chrome Engine = iota
	Edge
	ES
	Firefox
	IOS
	Node
	Safari
)

func (e Engine) String() string {
	switch e {
	case Chrome:
		return "chrome"
	case Edge:
		return "edge"
	case ES:
		return "es"
	case Firefox:
		return "firefox"
	case IOS:
		return "ios"
	case Node:
		return "node"
	case Safari:
		return "safari"
	}
	return ""
}

func EngineFromString(name string) (Engine, bool) {
	switch name {
	case "chrome":
		return Chrome, true
	case "edge":
		return Edge, true
	case "es":
		return ES, true
	case "firefox":
		return Firefox, true
	case "ios":
		return IOS, true
	case "node":
		return Node, true
	case "safari":
		return Safari, true
	}
	return 0, false
}

type JSFeature uint64

const (
	AsyncAwait JSFeature = 1 << iota
	AsyncGenerator
	BigInt
	ClassField
	ClassStaticBlocks
	ClassStaticField
	ExponentOperator
	ForAwait
	ImportMeta
	LogicalAssignment
	NullishCoalescing
	ObjectRestSpread
	OptionalCatchBinding
	OptionalChain
	RegexpDotAllFlag
	RegexpLookbehindAssertions
	RegexpMatchIndices
	RegexpNamedCaptureGroups
	RegexpSetNotation
	RegexpStickyAndUnicodeFlags
)

var jsFeatureNames = map[JSFeature]string{
	AsyncAwait:                  "async-await",
	AsyncGenerator:              "async-generator",
	BigInt:                      "bigint",
	ClassField:                  "class-field",
	ClassStaticBlocks:           "class-static-blocks",
	ClassStaticField:            "class-static-field",
	ExponentOperator:            "exponent-operator",
	ForAwait:                    "for-await",
	ImportMeta:                  "import-meta",
	LogicalAssignment:           "logical-assignment",
	NullishCoalescing:           "nullish-coalescing",
	ObjectRestSpread:            "object-rest-spread",
	OptionalCatchBinding:        "optional-catch-binding",
	OptionalChain:               "optional-chain",
	RegexpDotAllFlag:            "regexp-dot-all-flag",
	RegexpLookbehindAssertions:  "regexp-lookbehind-assertions",
	RegexpMatchIndices:          "regexp-match-indices",
	RegexpNamedCaptureGroups:    "regexp-named-capture-groups",
	RegexpSetNotation:           "regexp-set-notation",
	RegexpStickyAndUnicodeFlags: "regexp-sticky-and-unicode-flags",
}

func (features JSFeature) Has(feature JSFeature) bool {
	return (features & feature) != 0
}

func (feature JSFeature) String() string {
	return jsFeatureNames[feature]
}

// Each entry here says the feature is supported by the engine starting with
// the given version. An engine that is missing from a feature's map never
// supports that feature. This table is hand-maintained from the MDN and
// kangax compatibility data; "ES" maps language editions to years.
var jsTable = map[JSFeature]map[Engine][]versionRange{
	AsyncAwait: {
		Chrome:  {{start: v{55, 0, 0}}},
		Edge:    {{start: v{15, 0, 0}}},
		ES:      {{start: v{2017, 0, 0}}},
		Firefox: {{start: v{52, 0, 0}}},
		IOS:     {{start: v{10, 3, 0}}},
		Node:    {{start: v{7, 6, 0}}},
		Safari:  {{start: v{10, 1, 0}}},
	},
	AsyncGenerator: {
		Chrome:  {{start: v{63, 0, 0}}},
		Edge:    {{start: v{79, 0, 0}}},
		ES:      {{start: v{2018, 0, 0}}},
		Firefox: {{start: v{57, 0, 0}}},
		IOS:     {{start: v{12, 0, 0}}},
		Node:    {{start: v{10, 0, 0}}},
		Safari:  {{start: v{12, 0, 0}}},
	},
	BigInt: {
		Chrome:  {{start: v{67, 0, 0}}},
		Edge:    {{start: v{79, 0, 0}}},
		ES:      {{start: v{2020, 0, 0}}},
		Firefox: {{start: v{68, 0, 0}}},
		IOS:     {{start: v{14, 0, 0}}},
		Node:    {{start: v{10, 4, 0}}},
		Safari:  {{start: v{14, 0, 0}}},
	},
	ClassField: {
		Chrome:  {{start: v{73, 0, 0}}},
		Edge:    {{start: v{79, 0, 0}}},
		ES:      {{start: v{2022, 0, 0}}},
		Firefox: {{start: v{69, 0, 0}}},
		IOS:     {{start: v{14, 0, 0}}},
		Node:    {{start: v{12, 0, 0}}},
		Safari:  {{start: v{14, 0, 0}}},
	},
	ClassStaticBlocks: {
		Chrome:  {{start: v{91, 0, 0}}},
		Edge:    {{start: v{94, 0, 0}}},
		ES:      {{start: v{2022, 0, 0}}},
		Firefox: {{start: v{93, 0, 0}}},
		IOS:     {{start: v{16, 4, 0}}},
		Node:    {{start: v{16, 11, 0}}},
		Safari:  {{start: v{16, 4, 0}}},
	},
	ClassStaticField: {
		Chrome:  {{start: v{75, 0, 0}}},
		Edge:    {{start: v{79, 0, 0}}},
		ES:      {{start: v{2022, 0, 0}}},
		Firefox: {{start: v{75, 0, 0}}},
		IOS:     {{start: v{14, 5, 0}}},
		Node:    {{start: v{12, 0, 0}}},
		Safari:  {{start: v{14, 1, 0}}},
	},
	ExponentOperator: {
		Chrome:  {{start: v{52, 0, 0}}},
		Edge:    {{start: v{14, 0, 0}}},
		ES:      {{start: v{2016, 0, 0}}},
		Firefox: {{start: v{52, 0, 0}}},
		IOS:     {{start: v{10, 3, 0}}},
		Node:    {{start: v{7, 0, 0}}},
		Safari:  {{start: v{10, 1, 0}}},
	},
	ForAwait: {
		Chrome:  {{start: v{63, 0, 0}}},
		Edge:    {{start: v{79, 0, 0}}},
		ES:      {{start: v{2018, 0, 0}}},
		Firefox: {{start: v{57, 0, 0}}},
		IOS:     {{start: v{12, 0, 0}}},
		Node:    {{start: v{10, 0, 0}}},
		Safari:  {{start: v{12, 0, 0}}},
	},
	ImportMeta: {
		Chrome:  {{start: v{64, 0, 0}}},
		Edge:    {{start: v{79, 0, 0}}},
		ES:      {{start: v{2020, 0, 0}}},
		Firefox: {{start: v{62, 0, 0}}},
		IOS:     {{start: v{12, 0, 0}}},
		Node:    {{start: v{10, 4, 0}}},
		Safari:  {{start: v{11, 1, 0}}},
	},
	LogicalAssignment: {
		Chrome:  {{start: v{85, 0, 0}}},
		Edge:    {{start: v{85, 0, 0}}},
		ES:      {{start: v{2021, 0, 0}}},
		Firefox: {{start: v{79, 0, 0}}},
		IOS:     {{start: v{14, 0, 0}}},
		Node:    {{start: v{15, 0, 0}}},
		Safari:  {{start: v{14, 0, 0}}},
	},
	NullishCoalescing: {
		Chrome:  {{start: v{80, 0, 0}}},
		Edge:    {{start: v{80, 0, 0}}},
		ES:      {{start: v{2020, 0, 0}}},
		Firefox: {{start: v{72, 0, 0}}},
		IOS:     {{start: v{13, 4, 0}}},
		Node:    {{start: v{14, 0, 0}}},
		Safari:  {{start: v{13, 1, 0}}},
	},
	ObjectRestSpread: {
		Chrome:  {{start: v{60, 0, 0}}},
		Edge:    {{start: v{79, 0, 0}}},
		ES:      {{start: v{2018, 0, 0}}},
		Firefox: {{start: v{55, 0, 0}}},
		IOS:     {{start: v{11, 3, 0}}},
		Node:    {{start: v{8, 3, 0}}},
		Safari:  {{start: v{11, 1, 0}}},
	},
	OptionalCatchBinding: {
		Chrome:  {{start: v{66, 0, 0}}},
		Edge:    {{start: v{79, 0, 0}}},
		ES:      {{start: v{2019, 0, 0}}},
		Firefox: {{start: v{58, 0, 0}}},
		IOS:     {{start: v{11, 3, 0}}},
		Node:    {{start: v{10, 0, 0}}},
		Safari:  {{start: v{11, 1, 0}}},
	},
	OptionalChain: {
		// A previous version of this feature didn't set the name property of
		// functions produced by "a?.b" correctly, so the cutoff versions are
		// later than the initial releases.
		Chrome:  {{start: v{91, 0, 0}}},
		Edge:    {{start: v{91, 0, 0}}},
		ES:      {{start: v{2020, 0, 0}}},
		Firefox: {{start: v{74, 0, 0}}},
		IOS:     {{start: v{13, 4, 0}}},
		Node:    {{start: v{16, 9, 0}}},
		Safari:  {{start: v{13, 1, 0}}},
	},
	RegexpDotAllFlag: {
		Chrome:  {{start: v{62, 0, 0}}},
		Edge:    {{start: v{79, 0, 0}}},
		ES:      {{start: v{2018, 0, 0}}},
		Firefox: {{start: v{78, 0, 0}}},
		IOS:     {{start: v{11, 3, 0}}},
		Node:    {{start: v{8, 10, 0}}},
		Safari:  {{start: v{11, 1, 0}}},
	},
	RegexpLookbehindAssertions: {
		Chrome:  {{start: v{62, 0, 0}}},
		Edge:    {{start: v{79, 0, 0}}},
		ES:      {{start: v{2018, 0, 0}}},
		Firefox: {{start: v{78, 0, 0}}},
		IOS:     {{start: v{16, 4, 0}}},
		Node:    {{start: v{8, 10, 0}}},
		Safari:  {{start: v{16, 4, 0}}},
	},
	RegexpMatchIndices: {
		Chrome:  {{start: v{90, 0, 0}}},
		Edge:    {{start: v{90, 0, 0}}},
		ES:      {{start: v{2022, 0, 0}}},
		Firefox: {{start: v{88, 0, 0}}},
		IOS:     {{start: v{15, 0, 0}}},
		Node:    {{start: v{16, 0, 0}}},
		Safari:  {{start: v{15, 0, 0}}},
	},
	RegexpNamedCaptureGroups: {
		Chrome:  {{start: v{64, 0, 0}}},
		Edge:    {{start: v{79, 0, 0}}},
		ES:      {{start: v{2018, 0, 0}}},
		Firefox: {{start: v{78, 0, 0}}},
		IOS:     {{start: v{11, 3, 0}}},
		Node:    {{start: v{10, 0, 0}}},
		Safari:  {{start: v{11, 3, 0}}},
	},
	RegexpSetNotation: {
		Chrome:  {{start: v{112, 0, 0}}},
		Edge:    {{start: v{112, 0, 0}}},
		ES:      {{start: v{2024, 0, 0}}},
		Firefox: {{start: v{116, 0, 0}}},
		IOS:     {{start: v{17, 0, 0}}},
		Node:    {{start: v{20, 0, 0}}},
		Safari:  {{start: v{17, 0, 0}}},
	},
	RegexpStickyAndUnicodeFlags: {
		Chrome:  {{start: v{50, 0, 0}}},
		Edge:    {{start: v{13, 0, 0}}},
		ES:      {{start: v{2015, 0, 0}}},
		Firefox: {{start: v{46, 0, 0}}},
		IOS:     {{start: v{12, 0, 0}}},
		Node:    {{start: v{6, 0, 0}}},
		Safari:  {{start: v{12, 0, 0}}},
	},
}

// UnsupportedJSFeatures returns a bitset of all features that are not
// supported by every engine in the given constraint set. This is computed
// once at pipeline construction so hot-path checks are single boolean tests.
func UnsupportedJSFeatures(constraints map[Engine][]int) (unsupported JSFeature) {
	for feature, engines := range jsTable {
		for engine, version := range constraints {
			if ranges, ok := engines[engine]; !ok || !isVersionSupported(ranges, version) {
				unsupported |= feature
			}
		}
	}
	return
}
