package nunit

import (
	"strings"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
	"github.com/heshanpadmasiri/nunitMSTest/mstest"
	"github.com/heshanpadmasiri/nunitMSTest/semantic"
)

// constraintFamily groups constraint chains by their entry point
type constraintFamily int

const (
	familyTypeIdentity constraintFamily = iota
	familyPredicate
	familyStringContent
	familyMembership
	familyQuantity
)

func (f constraintFamily) String() string {
	switch f {
	case familyTypeIdentity:
		return "type identity"
	case familyPredicate:
		return "predicate"
	case familyStringContent:
		return "string content"
	case familyMembership:
		return "membership"
	case familyQuantity:
		return "quantity"
	}
	return "unknown"
}

// polarity lists which forms of a constraint have an MSTest counterpart
type polarity int

const (
	bothPolarities polarity = iota
	positiveOnly
	negatedOnly
)

// segment is one link of a fluent chain such as Is, Not or EqualTo(5)
type segment struct {
	name     string
	typeArgs []*csharp.Node
	args     []*csharp.Node
	invoked  bool
	node     *csharp.Node
}

// constraint is a parsed Assert.That constraint
type constraint struct {
	key        string
	predicate  segment
	negated    bool
	ignoreCase bool
	tolerance  *csharp.Node
}

// constraintOperands carries what a rule needs to build the assertion
type constraintOperands struct {
	actual     *csharp.Node
	actualType semantic.TypeInfo
	constraint constraint
	rest       []*csharp.Node
}

type constraintRule struct {
	family   constraintFamily
	polarity polarity
	// number of arguments the predicate takes
	arity int
	// EqualTo accepts IgnoreCase and Within
	modifiers bool
	build     func(o constraintOperands, negated bool) (*csharp.Node, bool)
}

var constraintRules map[string]constraintRule

func init() {
	constraintRules = map[string]constraintRule{
		"Is.EqualTo":              {family: familyPredicate, arity: 1, modifiers: true, build: buildEqualTo},
		"Is.SameAs":               {family: familyPredicate, arity: 1, build: pairAssertion(mstest.Assert, "AreSame", "AreNotSame", true)},
		"Is.Null":                 {family: familyPredicate, build: unaryAssertion("IsNull", "IsNotNull")},
		"Is.True":                 {family: familyPredicate, build: unaryAssertion("IsTrue", "IsFalse")},
		"Is.False":                {family: familyPredicate, build: unaryAssertion("IsFalse", "IsTrue")},
		"Is.NaN":                  {family: familyPredicate, build: conditionAssertion(nanCondition)},
		"Is.Empty":                {family: familyPredicate, build: conditionAssertion(emptyCondition)},
		"Is.Positive":             {family: familyPredicate, build: comparison(">", false)},
		"Is.Negative":             {family: familyPredicate, build: comparison("<", false)},
		"Is.Zero":                 {family: familyPredicate, build: comparison("==", false)},
		"Is.LessThan":             {family: familyPredicate, arity: 1, build: comparison("<", true)},
		"Is.LessThanOrEqualTo":    {family: familyPredicate, arity: 1, build: comparison("<=", true)},
		"Is.GreaterThan":          {family: familyPredicate, arity: 1, build: comparison(">", true)},
		"Is.GreaterThanOrEqualTo": {family: familyPredicate, arity: 1, build: comparison(">=", true)},
		"Is.AtLeast":              {family: familyPredicate, arity: 1, build: comparison(">=", true)},
		"Is.AtMost":               {family: familyPredicate, arity: 1, build: comparison("<=", true)},
		"Is.EquivalentTo":         {family: familyPredicate, arity: 1, build: pairAssertion(mstest.CollectionAssert, "AreEquivalent", "AreNotEquivalent", true)},
		"Is.SubsetOf":             {family: familyPredicate, arity: 1, build: pairAssertion(mstest.CollectionAssert, "IsSubsetOf", "IsNotSubsetOf", false)},
		"Is.AssignableTo":         {family: familyPredicate, arity: -1, build: assignable(true)},
		"Is.AssignableFrom":       {family: familyPredicate, arity: -1, build: assignable(false)},
		"Is.Unique":               {family: familyPredicate, polarity: positiveOnly, build: collectionCall("AllItemsAreUnique")},

		"Is.All.Null":       {family: familyPredicate, polarity: negatedOnly, build: collectionCall("AllItemsAreNotNull")},
		"Is.All.Unique":     {family: familyPredicate, polarity: positiveOnly, build: collectionCall("AllItemsAreUnique")},
		"Is.All.InstanceOf": {family: familyPredicate, polarity: positiveOnly, arity: -1, build: allInstancesOf},

		"Is.TypeOf":     {family: familyTypeIdentity, arity: -1, build: typeOf},
		"Is.InstanceOf": {family: familyTypeIdentity, arity: -1, build: instanceOf},

		"Does.Contain":       {family: familyStringContent, arity: 1, build: contain},
		"Does.StartWith":     {family: familyStringContent, arity: 1, build: stringMethod("StartsWith")},
		"Does.EndWith":       {family: familyStringContent, arity: 1, build: stringMethod("EndsWith")},
		"Does.Match":         {family: familyStringContent, arity: 1, build: matches},
		"Does.ContainKey":    {family: familyMembership, arity: 1, build: dictionaryMethod("ContainsKey")},
		"Does.ContainValue":  {family: familyMembership, arity: 1, build: dictionaryMethod("ContainsValue")},
		"Does.Exist":         {family: familyMembership, build: exists},
		"Contains.Item":      {family: familyMembership, arity: 1, build: collectionContains},
		"Contains.Key":       {family: familyMembership, arity: 1, build: dictionaryMethod("ContainsKey")},
		"Contains.Value":     {family: familyMembership, arity: 1, build: dictionaryMethod("ContainsValue")},
		"Contains.Substring": {family: familyStringContent, arity: 1, build: stringMethod("Contains")},
		"Has.Member":         {family: familyMembership, arity: 1, build: collectionContains},
		"Has.Exactly.Items":  {family: familyQuantity, polarity: positiveOnly, arity: 1, build: exactly},
	}
	// historical spellings
	constraintRules["Does.StartsWith"] = constraintRules["Does.StartWith"]
	constraintRules["Does.EndsWith"] = constraintRules["Does.EndWith"]
	constraintRules["Does.Matches"] = constraintRules["Does.Match"]
	constraintRules["Is.StringContaining"] = constraintRules["Contains.Substring"]
}

// migrateThat translates Assert.That(actual, constraint, rest...)
func migrateThat(inv invocation) *csharp.Node {
	if len(inv.args) == 0 {
		return inv.unsupported("Unsupported invocation expression")
	}
	if len(inv.args) == 1 {
		return inv.rename(mstest.Assert, "IsTrue")
	}
	constraintArg := inv.args[1]
	constraintExpr := inv.operand(1)
	if strings.HasPrefix(constraintExpr.CompactText(), "Throws") {
		if c, ok := extractExceptionConstraint(constraintArg); ok {
			if !c.Supported {
				return inv.unsupported("Unsupported exception constraint expression")
			}
			return inv.replace(synthesizeThrows(c, inv.operand(0), inv.rest(2)))
		}
	}

	isChain := constraintExpr.Kind() == "member_access_expression" ||
		(constraintExpr.Kind() == "invocation_expression" && csharp.InvocationFunction(constraintExpr).Kind() == "member_access_expression")
	if isChain {
		return migrateConstraint(inv, constraintExpr)
	}
	if inv.typeOf(0).IsBoolean() {
		return inv.rename(mstest.Assert, "IsTrue")
	}
	return inv.unsupported("Unsupported invocation expression")
}

func migrateConstraint(inv invocation, expr *csharp.Node) *csharp.Node {
	segments, ok := flattenChain(expr)
	if !ok {
		return inv.unsupported("Unsupported constraint expression")
	}
	operands := constraintOperands{
		actual:     inv.operand(0),
		actualType: inv.typeOf(0),
		rest:       inv.rest(2),
	}
	c, rule, ok := parseConstraint(segments, &operands)
	if !ok {
		return inv.unsupported("Unsupported constraint expression")
	}
	operands.constraint = c
	inv.ctx.logger.Debug("constraint", "key", c.key, "family", rule.family.String(), "negated", c.negated)
	switch {
	case rule.polarity == positiveOnly && c.negated, rule.polarity == negatedOnly && !c.negated:
		return inv.unsupported("Unsupported constraint expression")
	case (c.ignoreCase || c.tolerance != nil) && !rule.modifiers:
		return inv.unsupported("Unsupported constraint expression")
	}
	if !validArity(rule.arity, c.predicate) {
		return inv.unsupported("Unsupported constraint expression")
	}
	result, ok := rule.build(operands, c.negated)
	if !ok {
		return inv.unsupported("Unsupported constraint expression")
	}
	return inv.replace(result)
}

// validArity checks the predicate arguments; -1 accepts either <T>() or (typeof(T))
func validArity(arity int, predicate segment) bool {
	switch arity {
	case -1:
		_, ok := typeOperand(predicate)
		return ok
	case 0:
		return len(predicate.args) == 0 && len(predicate.typeArgs) == 0
	}
	return predicate.invoked && len(predicate.args) == arity
}

// flattenChain turns Is.Not.EqualTo(5) into [Is, Not, EqualTo(5)]
func flattenChain(expr *csharp.Node) ([]segment, bool) {
	switch expr.Kind() {
	case "identifier":
		return []segment{{name: expr.CompactText(), node: expr}}, true
	case "member_access_expression":
		segments, ok := flattenChain(csharp.MemberAccessExpression(expr))
		if !ok {
			return nil, false
		}
		name := csharp.MemberAccessName(expr)
		return append(segments, segment{name: csharp.SimpleName(name), typeArgs: csharp.GenericTypeArguments(name), node: expr}), true
	case "invocation_expression":
		segments, ok := flattenChain(csharp.InvocationFunction(expr))
		if !ok {
			return nil, false
		}
		last := &segments[len(segments)-1]
		if last.invoked {
			return nil, false
		}
		last.invoked = true
		last.node = expr
		for _, arg := range csharp.Arguments(expr) {
			if csharp.ArgumentName(arg) != "" {
				return nil, false
			}
			last.args = append(last.args, csharp.ArgumentExpression(arg))
		}
		return segments, true
	}
	return nil, false
}

// parseConstraint strips negations and modifiers and builds the rule key. Has.Count,
// Has.Length and Has.Property project the actual value and continue as an Is chain.
func parseConstraint(segments []segment, operands *constraintOperands) (constraint, constraintRule, bool) {
	root := segments[0]
	if root.invoked || len(segments) < 2 {
		return constraint{}, constraintRule{}, false
	}
	rootName := root.name
	if rootName == "Iz" {
		rootName = "Is"
	}
	rest := segments[1:]

	if rootName == "Has" && len(rest) > 1 {
		switch first := rest[0]; first.name {
		case "Count", "Length":
			if first.invoked {
				return constraint{}, constraintRule{}, false
			}
			operands.actual = mstest.Property(operands.actual, first.name)
			operands.actualType = semantic.TypeFromName("int")
			rootName, rest = "Is", rest[1:]
		case "Property":
			if !first.invoked || len(first.args) != 1 {
				return constraint{}, constraintRule{}, false
			}
			property, ok := sourceMemberName(first.args[0])
			if !ok {
				return constraint{}, constraintRule{}, false
			}
			operands.actual = mstest.Property(operands.actual, property)
			operands.actualType = semantic.TypeInfo{}
			rootName, rest = "Is", rest[1:]
		}
	}

	c := constraint{}
	var names []string
	for i, seg := range rest {
		switch {
		case (seg.name == "Not" || seg.name == "No") && !seg.invoked:
			c.negated = !c.negated
			continue
		case seg.name == "IgnoreCase" && !seg.invoked && i > 0:
			c.ignoreCase = true
			continue
		case seg.name == "Within" && seg.invoked && len(seg.args) == 1 && i > 0:
			c.tolerance = seg.args[0]
			continue
		case seg.name == "All" && c.negated:
			// "not all items" has no item-wise MSTest counterpart
			return constraint{}, constraintRule{}, false
		}
		names = append(names, seg.name)
		// the predicate is the last segment that is not a modifier
		c.predicate = seg
	}
	if len(names) == 0 {
		return constraint{}, constraintRule{}, false
	}
	c.key = rootName + "." + strings.Join(names, ".")
	if c.key == "Has.Exactly.Items" {
		c.predicate = exactlySegment(rest)
	}
	rule, ok := constraintRules[c.key]
	return c, rule, ok
}

func exactlySegment(segments []segment) segment {
	for _, seg := range segments {
		if seg.name == "Exactly" {
			return seg
		}
	}
	return segment{}
}

// typeOperand returns T from Method<T>() or Method(typeof(T))
func typeOperand(seg segment) (*csharp.Node, bool) {
	if len(seg.typeArgs) == 1 && len(seg.args) == 0 {
		return seg.typeArgs[0], true
	}
	if len(seg.typeArgs) == 0 && len(seg.args) == 1 {
		return typeOfOperand(seg.args[0])
	}
	return nil, false
}

func argument(o constraintOperands) *csharp.Node {
	return o.constraint.predicate.args[0].TrimLeading()
}

func withRest(o constraintOperands, args ...*csharp.Node) []*csharp.Node {
	return append(args, o.rest...)
}

func buildEqualTo(o constraintOperands, negated bool) (*csharp.Node, bool) {
	method := "AreEqual"
	if negated {
		method = "AreNotEqual"
	}
	args := []*csharp.Node{argument(o), o.actual}
	switch {
	case o.constraint.ignoreCase && o.constraint.tolerance != nil:
		return nil, false
	case o.constraint.ignoreCase:
		args = append(args, mstest.BooleanLiteral(true))
	case o.constraint.tolerance != nil:
		args = append(args, o.constraint.tolerance.TrimLeading())
	}
	return mstest.StaticCall(mstest.Assert, method, withRest(o, args...)...), true
}

// pairAssertion builds Type.Method(expected, actual) or with the operands
// swapped when expectedFirst is false
func pairAssertion(typeName string, positive string, negative string, expectedFirst bool) func(constraintOperands, bool) (*csharp.Node, bool) {
	return func(o constraintOperands, negated bool) (*csharp.Node, bool) {
		method := positive
		if negated {
			method = negative
		}
		args := []*csharp.Node{argument(o), o.actual}
		if !expectedFirst {
			args[0], args[1] = args[1], args[0]
		}
		return mstest.StaticCall(typeName, method, withRest(o, args...)...), true
	}
}

func unaryAssertion(positive string, negative string) func(constraintOperands, bool) (*csharp.Node, bool) {
	return func(o constraintOperands, negated bool) (*csharp.Node, bool) {
		method := positive
		if negated {
			method = negative
		}
		return mstest.StaticCall(mstest.Assert, method, withRest(o, o.actual)...), true
	}
}

// conditionAssertion wraps a boolean condition on the actual value in IsTrue or IsFalse
func conditionAssertion(condition func(o constraintOperands) *csharp.Node) func(constraintOperands, bool) (*csharp.Node, bool) {
	return func(o constraintOperands, negated bool) (*csharp.Node, bool) {
		return mstest.BooleanAssertion(!negated, condition(o), o.rest...), true
	}
}

func nanCondition(o constraintOperands) *csharp.Node {
	return mstest.StaticCall("double", "IsNaN", o.actual)
}

func emptyCondition(o constraintOperands) *csharp.Node {
	return emptiness(o.actual, o.actualType)
}

// comparison compares the actual value with the argument, or with 0
func comparison(operator string, withArgument bool) func(constraintOperands, bool) (*csharp.Node, bool) {
	return conditionAssertion(func(o constraintOperands) *csharp.Node {
		right := mstest.IntegerLiteral("0")
		if withArgument {
			right = argument(o)
		}
		return mstest.Binary(o.actual, operator, right)
	})
}

func assignable(to bool) func(constraintOperands, bool) (*csharp.Node, bool) {
	return func(o constraintOperands, negated bool) (*csharp.Node, bool) {
		typeNode, ok := typeOperand(o.constraint.predicate)
		if !ok {
			return nil, false
		}
		actualType := mstest.MethodCall(o.actual, "GetType")
		var condition *csharp.Node
		if to {
			condition = mstest.MethodCall(mstest.TypeOf(typeNode), "IsAssignableFrom", actualType)
		} else {
			condition = mstest.MethodCall(actualType, "IsAssignableFrom", mstest.TypeOf(typeNode))
		}
		return mstest.BooleanAssertion(!negated, condition, o.rest...), true
	}
}

func collectionCall(method string) func(constraintOperands, bool) (*csharp.Node, bool) {
	return func(o constraintOperands, negated bool) (*csharp.Node, bool) {
		return mstest.StaticCall(mstest.CollectionAssert, method, withRest(o, o.actual)...), true
	}
}

func allInstancesOf(o constraintOperands, negated bool) (*csharp.Node, bool) {
	typeNode, ok := typeOperand(o.constraint.predicate)
	if !ok {
		return nil, false
	}
	return mstest.StaticCall(mstest.CollectionAssert, "AllItemsAreInstancesOfType", withRest(o, o.actual, mstest.TypeOf(typeNode))...), true
}

func typeOf(o constraintOperands, negated bool) (*csharp.Node, bool) {
	typeNode, ok := typeOperand(o.constraint.predicate)
	if !ok {
		return nil, false
	}
	method := "AreEqual"
	if negated {
		method = "AreNotEqual"
	}
	args := withRest(o, mstest.TypeOf(typeNode), mstest.MethodCall(o.actual, "GetType"))
	return mstest.StaticCall(mstest.Assert, method, args...), true
}

func instanceOf(o constraintOperands, negated bool) (*csharp.Node, bool) {
	typeNode, ok := typeOperand(o.constraint.predicate)
	if !ok {
		return nil, false
	}
	method := "IsInstanceOfType"
	if negated {
		method = "IsNotInstanceOfType"
	}
	return mstest.StaticCall(mstest.Assert, method, withRest(o, o.actual, mstest.TypeOf(typeNode))...), true
}

// contain picks string or collection semantics. Without a known type a string
// literal argument selects string semantics.
func contain(o constraintOperands, negated bool) (*csharp.Node, bool) {
	isString := o.actualType.IsString()
	if !o.actualType.IsKnown() {
		isString = csharp.IsStringLiteral(o.constraint.predicate.args[0])
	}
	if isString {
		return stringMethod("Contains")(o, negated)
	}
	return collectionContains(o, negated)
}

func collectionContains(o constraintOperands, negated bool) (*csharp.Node, bool) {
	method := "Contains"
	if negated {
		method = "DoesNotContain"
	}
	return mstest.StaticCall(mstest.CollectionAssert, method, withRest(o, o.actual, argument(o))...), true
}

// stringMethod uses StringAssert for the positive form and Assert.IsFalse(actual.Method(arg)) when negated
func stringMethod(method string) func(constraintOperands, bool) (*csharp.Node, bool) {
	return func(o constraintOperands, negated bool) (*csharp.Node, bool) {
		if negated {
			condition := mstest.MethodCall(o.actual, method, argument(o))
			return mstest.BooleanAssertion(false, condition, o.rest...), true
		}
		return mstest.StaticCall(mstest.StringAssert, method, withRest(o, o.actual, argument(o))...), true
	}
}

func matches(o constraintOperands, negated bool) (*csharp.Node, bool) {
	method := "Matches"
	if negated {
		method = "DoesNotMatch"
	}
	return mstest.StaticCall(mstest.StringAssert, method, withRest(o, o.actual, mstest.RegexCreation(argument(o)))...), true
}

func dictionaryMethod(method string) func(constraintOperands, bool) (*csharp.Node, bool) {
	return conditionAssertion(func(o constraintOperands) *csharp.Node {
		return mstest.MethodCall(o.actual, method, argument(o))
	})
}

func exists(o constraintOperands, negated bool) (*csharp.Node, bool) {
	var condition *csharp.Node
	switch full := o.actualType.FullName; {
	case full == "System.IO.FileInfo" || full == "System.IO.DirectoryInfo":
		condition = mstest.Property(o.actual, "Exists")
	case o.actualType.IsString():
		condition = mstest.Binary(
			mstest.StaticCall("System.IO.File", "Exists", o.actual),
			"||",
			mstest.StaticCall("System.IO.Directory", "Exists", o.actual),
		)
	default:
		return nil, false
	}
	return mstest.BooleanAssertion(!negated, condition, o.rest...), true
}

// exactly handles Has.Exactly(n).Items
func exactly(o constraintOperands, negated bool) (*csharp.Node, bool) {
	count := mstest.Property(o.actual, "Count")
	if o.actualType.IsArray() {
		count = mstest.Property(o.actual, "Length")
	}
	return mstest.StaticCall(mstest.Assert, "AreEqual", withRest(o, argument(o), count)...), true
}
