package desugar

import "github.com/lyraproj/issue/issue"

const (
	DesugarArguments   = `LEND_DESUGAR_ARGUMENTS`
	ParseError         = `LEND_PARSE_ERROR`
	AmbiguousIndex     = `LEND_AMBIGUOUS_INDEX`
	UnsupportedPattern = `LEND_UNSUPPORTED_PATTERN`
	UnresolvedIterable = `LEND_UNRESOLVED_ITERABLE`
	UnresolvedIndex    = `LEND_UNRESOLVED_INDEX`
	NotAssignable      = `LEND_NOT_ASSIGNABLE`
	ProxyAssignment    = `LEND_PROXY_ASSIGNMENT`
	UnaddressableArray = `LEND_UNADDRESSABLE_ARRAY`
)

func init() {
	issue.Hard(DesugarArguments, `desugar takes no arguments`)

	issue.Hard(ParseError, `%{message}`)

	issue.Hard(AmbiguousIndex, `desugar requires the index %{expr} to be an explicit &%{expr} or %{ref}(%{expr})`)

	issue.Hard(UnsupportedPattern, `unsupported range pattern: %{reason}`)

	issue.Hard(UnresolvedIterable, `cannot range over %{expr} (%{type}): neither a lending iterator nor iterable`)

	issue.Hard(UnresolvedIndex, `cannot index %{expr}: %{reason}`)

	issue.Hard(NotAssignable, `cannot assign through %{expr}: the mutable index of %{type} is neither a pointer nor a proxy with Set`)

	issue.Hard(ProxyAssignment, `%{op} through the proxy index %{expr} is not supported, only a plain assignment is`)

	issue.Hard(UnaddressableArray, `cannot range over the unaddressable array %{expr}`)
}
