package nunit

import (
	"math"
	"strconv"
	"strings"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
	"github.com/heshanpadmasiri/nunitMSTest/mstest"
)

type valueSourceKind int

const (
	valuesKind valueSourceKind = iota
	rangeKind
)

// valueSource is one Values or Range attribute on a parameter
type valueSource struct {
	kind      valueSourceKind
	attribute *csharp.Node
	parameter *csharp.Node
	values    []*csharp.Node
	bounds    numericRange
}

// maxRangeRows bounds the DataRow attributes a single Range may expand to
const maxRangeRows = 1000

// numericRange is Range(from, to, step); integral ranges use the int fields
type numericRange struct {
	integral          bool
	from, to, step    int64
	fromF, toF, stepF float64
	suffix            string
	rows              int
}

func (r numericRange) length() int {
	return r.rows
}

// at returns the i-th element; indexes past the last step yield the upper bound
func (r numericRange) at(i int) string {
	if r.integral {
		value := r.to
		if i < r.rows {
			value = r.from + r.step*int64(i)
		}
		return strconv.FormatInt(value, 10) + r.suffix
	}
	value := r.toF
	if i < r.rows {
		value = r.fromF + r.stepF*float64(i)
	}
	if (r.stepF > 0 && value > r.toF) || (r.stepF < 0 && value < r.toF) {
		value = r.toF
	}
	text := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.ContainsAny(text, ".eE") {
		text += ".0"
	}
	return text + r.suffix
}

// countRangeRows returns the number of steps from..to, or false when the range
// has more than maxRangeRows elements
func countRangeRows(r numericRange) (int, bool) {
	if r.integral {
		// unsigned arithmetic keeps spans across the whole int64 domain exact
		var span, stride uint64
		if r.step > 0 {
			span, stride = uint64(r.to)-uint64(r.from), uint64(r.step)
		} else {
			span, stride = uint64(r.from)-uint64(r.to), -uint64(r.step)
		}
		steps := span / stride
		if steps >= maxRangeRows {
			return 0, false
		}
		return int(steps) + 1, true
	}
	steps := math.Floor((r.toF-r.fromF)/r.stepF + 1e-9)
	if math.IsNaN(steps) || math.IsInf(steps, 0) || steps >= maxRangeRows {
		return 0, false
	}
	return int(steps) + 1, true
}

// collectValueSource records a Values or Range attribute of the current parameter
func collectValueSource(ctx *MigrationContext, attr *csharp.Node, kind attributeKind, args []*csharp.Node) {
	csharp.Assert("value source outside of a parameter", ctx.parameter != nil)
	parameterType := ""
	if typeNode := ctx.parameter.ChildByField("type"); typeNode != nil {
		parameterType = typeNode.CompactText()
	}
	positional := positionalArguments(args)
	if len(positional) != len(args) {
		ctx.Unsupported(attr, attributeNotSupported)
		return
	}

	source := valueSource{attribute: attr, parameter: ctx.parameter}
	switch kind {
	case attributeValues:
		source.kind = valuesKind
		if len(args) == 0 {
			if !isBooleanType(parameterType) {
				ctx.Unsupported(attr, attributeNotSupported)
				return
			}
			source.values = []*csharp.Node{mstest.BooleanLiteral(true), mstest.BooleanLiteral(false)}
			break
		}
		for _, arg := range args {
			// elements that cannot be written as attribute arguments leave a gap
			// so the rest stay in their own rows
			var value *csharp.Node
			if expr := csharp.ArgumentExpression(arg); isConstantExpression(expr) {
				value = expr
			}
			source.values = append(source.values, value)
		}
	case attributeRange:
		source.kind = rangeKind
		bounds, ok := parseRange(args, literalSuffix(parameterType))
		if !ok {
			ctx.Unsupported(attr, attributeNotSupported)
			return
		}
		source.bounds = bounds
	default:
		csharp.Assert("not a value source attribute", false)
	}
	ctx.Method.valuesRange.add(source)
	dropAttribute(ctx, attr, ownerParameter)
}

func isBooleanType(name string) bool {
	switch name {
	case "bool", "Boolean", "System.Boolean":
		return true
	}
	return false
}

// literalSuffix returns the suffix a numeric literal needs to match the parameter type
func literalSuffix(parameterType string) string {
	switch parameterType {
	case "long", "Int64", "System.Int64":
		return "L"
	case "float", "Single", "System.Single":
		return "f"
	case "uint", "UInt32", "System.UInt32":
		return "u"
	case "ulong", "UInt64", "System.UInt64":
		return "UL"
	}
	return ""
}

func isConstantExpression(expr *csharp.Node) bool {
	if expr == nil {
		return false
	}
	switch expr.Kind() {
	case "integer_literal", "real_literal", "string_literal", "verbatim_string_literal", "raw_string_literal",
		"character_literal", "boolean_literal", "null_literal", "typeof_expression", "identifier":
		return true
	case "binary_expression":
		left, right := expr.ChildByField("left"), expr.ChildByField("right")
		return isConstantExpression(left) && isConstantExpression(right)
	case "member_access_expression":
		_, simple := memberChain(expr)
		return simple
	case "prefix_unary_expression", "parenthesized_expression", "cast_expression":
		named := expr.NamedChildren()
		return len(named) > 0 && isConstantExpression(named[len(named)-1])
	case "invocation_expression":
		return csharp.InvocationFunction(expr).CompactText() == "nameof"
	}
	return false
}

func memberChain(expr *csharp.Node) ([]string, bool) {
	switch expr.Kind() {
	case "identifier":
		return []string{expr.CompactText()}, true
	case "member_access_expression":
		name := csharp.MemberAccessName(expr)
		if name.Kind() != "identifier" {
			return nil, false
		}
		segments, ok := memberChain(csharp.MemberAccessExpression(expr))
		if !ok {
			return nil, false
		}
		return append(segments, name.CompactText()), true
	}
	return nil, false
}

// parseRange reads Range(from, to[, step]); all bounds must be numeric literals
func parseRange(args []*csharp.Node, suffix string) (numericRange, bool) {
	if len(args) != 2 && len(args) != 3 {
		return numericRange{}, false
	}
	var values []numericLiteral
	for _, arg := range args {
		literal, ok := parseNumericLiteral(csharp.ArgumentExpression(arg))
		if !ok {
			return numericRange{}, false
		}
		values = append(values, literal)
	}
	if len(values) == 2 {
		values = append(values, numericLiteral{integral: true, integer: 1, real: 1})
	}
	r := numericRange{integral: true, suffix: suffix}
	for _, v := range values {
		r.integral = r.integral && v.integral
	}
	if suffix == "f" {
		r.integral = false
	}
	r.from, r.to, r.step = values[0].integer, values[1].integer, values[2].integer
	r.fromF, r.toF, r.stepF = values[0].real, values[1].real, values[2].real
	if r.stepF == 0 || (r.stepF > 0 && r.fromF > r.toF) || (r.stepF < 0 && r.fromF < r.toF) {
		return numericRange{}, false
	}
	if r.integral && r.step == 0 {
		return numericRange{}, false
	}
	rows, ok := countRangeRows(r)
	if !ok {
		return numericRange{}, false
	}
	r.rows = rows
	return r, true
}

type numericLiteral struct {
	integral bool
	integer  int64
	real     float64
}

func parseNumericLiteral(expr *csharp.Node) (numericLiteral, bool) {
	if expr == nil {
		return numericLiteral{}, false
	}
	switch expr.Kind() {
	case "prefix_unary_expression":
		named := expr.NamedChildren()
		if len(named) != 1 || !expr.HasToken("-") {
			return numericLiteral{}, false
		}
		inner, ok := parseNumericLiteral(named[0])
		return numericLiteral{integral: inner.integral, integer: -inner.integer, real: -inner.real}, ok
	case "integer_literal":
		text := strings.ReplaceAll(expr.CompactText(), "_", "")
		text = strings.TrimRight(text, "uUlL")
		base := 10
		if lower := strings.ToLower(text); strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0b") {
			base = 0
		}
		value, err := strconv.ParseInt(text, base, 64)
		if err != nil {
			return numericLiteral{}, false
		}
		return numericLiteral{integral: true, integer: value, real: float64(value)}, true
	case "real_literal":
		text := strings.ReplaceAll(expr.CompactText(), "_", "")
		text = strings.TrimRight(text, "fFdDmM")
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return numericLiteral{}, false
		}
		return numericLiteral{real: value}, true
	}
	return numericLiteral{}, false
}

// expandParameterization builds one DataRow per index. The row count is the
// longest Values list, or the longest range when no Values list is present.
func expandParameterization(sources []valueSource) []*csharp.Node {
	rows := 0
	hasValues := false
	for _, source := range sources {
		if source.kind == valuesKind {
			hasValues = true
			rows = max(rows, len(source.values))
		}
	}
	if !hasValues {
		for _, source := range sources {
			rows = max(rows, source.bounds.length())
		}
	}

	var attributes []*csharp.Node
	for i := 0; i < rows; i++ {
		var args []*csharp.Node
		for _, source := range sources {
			switch source.kind {
			case valuesKind:
				if len(source.values) == 0 {
					continue
				}
				if value := source.values[min(i, len(source.values)-1)]; value != nil {
					args = append(args, value.TrimLeading())
				}
			case rangeKind:
				text := source.bounds.at(i)
				if source.bounds.integral {
					args = append(args, mstest.IntegerLiteral(text))
				} else {
					args = append(args, mstest.RealLiteral(text))
				}
			}
		}
		attributes = append(attributes, mstest.Attribute("DataRow", args...))
	}
	return attributes
}
