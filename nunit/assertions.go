package nunit

import (
	"strings"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
	"github.com/heshanpadmasiri/nunitMSTest/mstest"
	"github.com/heshanpadmasiri/nunitMSTest/semantic"
)

type assertionFamily int

const (
	familyNone assertionFamily = iota
	familyAssert
	familyCollectionAssert
	familyStringAssert
	familyFileAssert
	familyDirectoryAssert
	familyConstraint
	familyOther
)

var assertionFamilies = map[string]assertionFamily{
	"NUnit.Framework.Assert":                  familyAssert,
	"NUnit.Framework.Legacy.ClassicAssert":    familyAssert,
	"NUnit.Framework.CollectionAssert":        familyCollectionAssert,
	"NUnit.Framework.Legacy.CollectionAssert": familyCollectionAssert,
	"NUnit.Framework.StringAssert":            familyStringAssert,
	"NUnit.Framework.Legacy.StringAssert":     familyStringAssert,
	"NUnit.Framework.FileAssert":              familyFileAssert,
	"NUnit.Framework.Legacy.FileAssert":       familyFileAssert,
	"NUnit.Framework.DirectoryAssert":         familyDirectoryAssert,
	"NUnit.Framework.Legacy.DirectoryAssert":  familyDirectoryAssert,
	"NUnit.Framework.Is":                      familyConstraint,
	"NUnit.Framework.Iz":                      familyConstraint,
	"NUnit.Framework.Has":                     familyConstraint,
	"NUnit.Framework.Does":                    familyConstraint,
	"NUnit.Framework.Throws":                  familyConstraint,
	"NUnit.Framework.Contains":                familyConstraint,
	semantic.ConstraintExpression:             familyConstraint,
}

func familyOf(symbol semantic.Symbol) assertionFamily {
	if family, ok := assertionFamilies[symbol.DeclaringType]; ok {
		return family
	}
	if symbol.InNamespace(nunitNamespace) {
		return familyOther
	}
	return familyNone
}

// assertionMember enumerates the members the matcher knows, per family
type assertionMember int

const (
	memberUnknown assertionMember = iota
	memberCompatible
	memberRename
	memberComparison
	memberContains
	memberInstanceOf
	memberEmpty
	memberNaN
	memberAssignableFrom
	memberThrows
	memberThat
	memberSwapOperands
	memberNegatedStringMethod
	memberIgnoringCase
	memberRegex
	memberExists
)

type memberRule struct {
	member assertionMember
	// target name for renames, comparison operator, or string method
	target string
	// expected polarity of the synthesized boolean assertion
	positive bool
	// number of operands consumed before message arguments
	operands int
}

var assertRules = map[string]memberRule{
	"Fail":                {member: memberCompatible},
	"Inconclusive":        {member: memberCompatible},
	"AreEqual":            {member: memberCompatible},
	"AreNotEqual":         {member: memberCompatible},
	"AreSame":             {member: memberCompatible},
	"AreNotSame":          {member: memberCompatible},
	"IsTrue":              {member: memberCompatible},
	"IsFalse":             {member: memberCompatible},
	"IsNull":              {member: memberCompatible},
	"IsNotNull":           {member: memberCompatible},
	"True":                {member: memberRename, target: "IsTrue"},
	"False":               {member: memberRename, target: "IsFalse"},
	"Null":                {member: memberRename, target: "IsNull"},
	"NotNull":             {member: memberRename, target: "IsNotNull"},
	"Ignore":              {member: memberRename, target: "Inconclusive"},
	"Less":                {member: memberComparison, target: "<", positive: true, operands: 2},
	"LessOrEqual":         {member: memberComparison, target: "<=", positive: true, operands: 2},
	"Greater":             {member: memberComparison, target: ">", positive: true, operands: 2},
	"GreaterOrEqual":      {member: memberComparison, target: ">=", positive: true, operands: 2},
	"Zero":                {member: memberComparison, target: "==", positive: true, operands: 1},
	"NotZero":             {member: memberComparison, target: "!=", positive: true, operands: 1},
	"Positive":            {member: memberComparison, target: ">", positive: true, operands: 1},
	"Negative":            {member: memberComparison, target: "<", positive: true, operands: 1},
	"Contains":            {member: memberContains, operands: 2},
	"IsInstanceOf":        {member: memberInstanceOf, target: "IsInstanceOfType"},
	"IsNotInstanceOf":     {member: memberInstanceOf, target: "IsNotInstanceOfType"},
	"IsEmpty":             {member: memberEmpty, positive: true, operands: 1},
	"IsNotEmpty":          {member: memberEmpty, positive: false, operands: 1},
	"IsNaN":               {member: memberNaN, positive: true, operands: 1},
	"IsAssignableFrom":    {member: memberAssignableFrom, positive: true},
	"IsNotAssignableFrom": {member: memberAssignableFrom, positive: false},
	"Throws":              {member: memberThrows, target: "ThrowsException"},
	"ThrowsAsync":         {member: memberThrows, target: "ThrowsExceptionAsync"},
	"That":                {member: memberThat},
}

var collectionAssertRules = map[string]memberRule{
	"AllItemsAreInstancesOfType": {member: memberCompatible},
	"AllItemsAreNotNull":         {member: memberCompatible},
	"AllItemsAreUnique":          {member: memberCompatible},
	"AreEqual":                   {member: memberCompatible},
	"AreEquivalent":              {member: memberCompatible},
	"AreNotEqual":                {member: memberCompatible},
	"AreNotEquivalent":           {member: memberCompatible},
	"Contains":                   {member: memberCompatible},
	"DoesNotContain":             {member: memberCompatible},
	"IsSubsetOf":                 {member: memberCompatible},
	"IsNotSubsetOf":              {member: memberCompatible},
	"IsEmpty":                    {member: memberEmpty, positive: true, operands: 1},
	"IsNotEmpty":                 {member: memberEmpty, positive: false, operands: 1},
}

var stringAssertRules = map[string]memberRule{
	"Contains":                {member: memberSwapOperands, operands: 2},
	"StartsWith":              {member: memberSwapOperands, operands: 2},
	"EndsWith":                {member: memberSwapOperands, operands: 2},
	"DoesNotContain":          {member: memberNegatedStringMethod, target: "Contains", operands: 2},
	"DoesNotStartWith":        {member: memberNegatedStringMethod, target: "StartsWith", operands: 2},
	"DoesNotEndWith":          {member: memberNegatedStringMethod, target: "EndsWith", operands: 2},
	"AreEqualIgnoringCase":    {member: memberIgnoringCase, target: "AreEqual", operands: 2},
	"AreNotEqualIgnoringCase": {member: memberIgnoringCase, target: "AreNotEqual", operands: 2},
	"IsMatch":                 {member: memberRegex, target: "Matches", operands: 2},
	"DoesNotMatch":            {member: memberRegex, target: "DoesNotMatch", operands: 2},
}

var existenceRules = map[string]memberRule{
	"Exists":       {member: memberExists, positive: true, operands: 1},
	"DoesNotExist": {member: memberExists, positive: false, operands: 1},
}

// invocation bundles a call being migrated. call is the call with migrated
// arguments; original is used for type queries and diagnostics.
type invocation struct {
	ctx      *MigrationContext
	original *csharp.Node
	call     *csharp.Node
	args     []*csharp.Node
	member   string
}

func newInvocation(ctx *MigrationContext, original *csharp.Node, call *csharp.Node, member string) invocation {
	return invocation{ctx: ctx, original: original, call: call, args: csharp.Arguments(call), member: member}
}

// operand returns the expression of argument i
func (inv invocation) operand(i int) *csharp.Node {
	return csharp.ArgumentExpression(inv.args[i])
}

// typeOf returns the static type of argument i
func (inv invocation) typeOf(i int) semantic.TypeInfo {
	originalArgs := csharp.Arguments(inv.original)
	if i >= len(originalArgs) {
		return semantic.TypeInfo{}
	}
	return inv.ctx.Resolver.StaticTypeOf(csharp.ArgumentExpression(originalArgs[i]))
}

// rest returns the argument nodes from index i on
func (inv invocation) rest(i int) []*csharp.Node {
	if i >= len(inv.args) {
		return nil
	}
	return inv.args[i:]
}

func (inv invocation) unsupported(info string) *csharp.Node {
	inv.ctx.Unsupported(inv.original, info)
	return inv.call
}

func (inv invocation) replace(replacement *csharp.Node) *csharp.Node {
	return inv.ctx.replaced(inv.call, replacement)
}

// retarget points the call at typeName when it was written against another
// receiver, such as ClassicAssert or a qualified NUnit.Framework.Assert
func (inv invocation) retarget(typeName string) *csharp.Node {
	retargeted, changed := retargetCall(inv.call, typeName)
	if changed {
		inv.ctx.Changes++
	}
	return retargeted
}

func (inv invocation) rename(typeName string, method string) *csharp.Node {
	retargeted, _ := retargetCall(inv.call, typeName)
	inv.ctx.Changes++
	return mstest.RenameInvocation(retargeted, method)
}

func retargetCall(call *csharp.Node, typeName string) (*csharp.Node, bool) {
	callee := csharp.InvocationFunction(call)
	if callee.Kind() != "member_access_expression" || csharp.MemberAccessExpression(callee).CompactText() == typeName {
		return call, false
	}
	return mstest.RetargetInvocation(call, typeName), true
}

// migrateInvocation translates a call whose symbol was resolved on the original node
func migrateInvocation(ctx *MigrationContext, original *csharp.Node, call *csharp.Node, symbol semantic.Symbol) *csharp.Node {
	inv := newInvocation(ctx, original, call, symbol.Name)
	switch familyOf(symbol) {
	case familyAssert:
		return migrateAssert(inv)
	case familyCollectionAssert:
		return migrateCollectionAssert(inv)
	case familyStringAssert:
		return migrateStringAssert(inv)
	case familyFileAssert:
		return migrateExistence(inv, "System.IO.File", "FileInfo", "file")
	case familyDirectoryAssert:
		return migrateExistence(inv, "System.IO.Directory", "DirectoryInfo", "directory")
	case familyConstraint:
		if ctx.assertionDepth > 0 {
			return call
		}
		return inv.unsupported("Unsupported constraint expression")
	case familyOther:
		return inv.unsupported("Unsupported assertion expression")
	}
	return call
}

func migrateAssert(inv invocation) *csharp.Node {
	rule, ok := assertRules[inv.member]
	if !ok {
		return inv.unsupported("Unsupported assertion expression")
	}
	if len(inv.args) < rule.operands {
		return inv.unsupported("Unsupported assertion expression")
	}
	switch rule.member {
	case memberCompatible:
		return inv.retarget(mstest.Assert)
	case memberRename:
		return inv.rename(mstest.Assert, rule.target)
	case memberComparison:
		left := inv.operand(0)
		right := mstest.IntegerLiteral("0")
		if rule.operands == 2 {
			right = inv.operand(1)
		}
		return inv.replace(mstest.ComparisonAssertion(inv.call, rule.positive, rule.target, left, right, rule.operands))
	case memberContains:
		args := append([]*csharp.Node{inv.args[1], inv.args[0]}, inv.rest(2)...)
		return inv.replace(mstest.StaticCall(mstest.CollectionAssert, "Contains", args...))
	case memberInstanceOf:
		typeNode, value, rest, ok := typeAndValue(inv)
		if !ok {
			return inv.unsupported("Unsupported assertion expression")
		}
		args := append([]*csharp.Node{value, mstest.TypeOf(typeNode)}, rest...)
		return inv.replace(mstest.StaticCall(mstest.Assert, rule.target, args...))
	case memberEmpty:
		condition := emptiness(inv.operand(0), inv.typeOf(0))
		return inv.replace(mstest.BooleanAssertion(rule.positive, condition, inv.rest(1)...))
	case memberNaN:
		condition := mstest.StaticCall("double", "IsNaN", inv.operand(0))
		return inv.replace(mstest.BooleanAssertion(rule.positive, condition, inv.rest(1)...))
	case memberAssignableFrom:
		typeNode, value, rest, ok := typeAndValue(inv)
		if !ok {
			return inv.unsupported("Unsupported assertion expression")
		}
		condition := mstest.MethodCall(mstest.MethodCall(value, "GetType"), "IsAssignableFrom", mstest.TypeOf(typeNode))
		return inv.replace(mstest.BooleanAssertion(rule.positive, condition, rest...))
	case memberThrows:
		return migrateAssertThrows(inv, rule.target)
	case memberThat:
		return migrateThat(inv)
	}
	return inv.unsupported("Unsupported assertion expression")
}

// typeAndValue reads Method<T>(value, rest...) or Method(typeof(T), value, rest...)
func typeAndValue(inv invocation) (typeNode *csharp.Node, value *csharp.Node, rest []*csharp.Node, ok bool) {
	callee := csharp.InvocationFunction(inv.call)
	name := callee
	if callee.Kind() == "member_access_expression" {
		name = csharp.MemberAccessName(callee)
	}
	if typeArgs := csharp.GenericTypeArguments(name); len(typeArgs) == 1 {
		if len(inv.args) < 1 {
			return nil, nil, nil, false
		}
		return typeArgs[0], inv.operand(0), inv.rest(1), true
	}
	if len(inv.args) < 2 {
		return nil, nil, nil, false
	}
	typeNode, ok = typeOfOperand(inv.operand(0))
	if !ok {
		return nil, nil, nil, false
	}
	return typeNode, inv.operand(1), inv.rest(2), true
}

// typeOfOperand returns T of a typeof(T) expression
func typeOfOperand(expr *csharp.Node) (*csharp.Node, bool) {
	if expr == nil || expr.Kind() != "typeof_expression" {
		return nil, false
	}
	if typeNode := expr.ChildByField("type"); typeNode != nil {
		return typeNode, true
	}
	named := expr.NamedChildren()
	if len(named) != 1 {
		return nil, false
	}
	return named[0], true
}

func migrateAssertThrows(inv invocation, method string) *csharp.Node {
	callee := csharp.InvocationFunction(inv.call)
	if callee.Kind() != "member_access_expression" || len(inv.args) == 0 {
		return inv.unsupported("Unsupported assertion expression")
	}
	if len(csharp.GenericTypeArguments(csharp.MemberAccessName(callee))) == 1 {
		return inv.rename(mstest.Assert, method)
	}
	typeNode, ok := typeOfOperand(inv.operand(0))
	if !ok || len(inv.args) < 2 {
		return inv.unsupported("Unsupported assertion expression")
	}
	args := inv.rest(1)
	call := mstest.Invocation(mstest.MemberAccess(mstest.DottedExpression(mstest.Assert), mstest.GenericName(method, typeNode)), args...)
	return inv.replace(call)
}

// emptiness builds the condition that value is empty, based on its static type
func emptiness(value *csharp.Node, valueType semantic.TypeInfo) *csharp.Node {
	switch {
	case valueType.IsString():
		return mstest.StaticCall("string", "IsNullOrEmpty", value)
	case valueType.IsArray():
		return mstest.Binary(mstest.Property(value, "Length"), "==", mstest.IntegerLiteral("0"))
	}
	return mstest.Binary(mstest.Property(value, "Count"), "==", mstest.IntegerLiteral("0"))
}

func migrateCollectionAssert(inv invocation) *csharp.Node {
	rule, ok := collectionAssertRules[inv.member]
	if !ok || len(inv.args) < rule.operands {
		return inv.unsupported("Unsupported collection assertion expression")
	}
	switch rule.member {
	case memberCompatible:
		return inv.retarget(mstest.CollectionAssert)
	case memberEmpty:
		condition := emptiness(inv.operand(0), collectionType(inv.typeOf(0)))
		return inv.replace(mstest.BooleanAssertion(rule.positive, condition, inv.rest(1)...))
	}
	return inv.unsupported("Unsupported collection assertion expression")
}

// collectionType keeps arrays and treats everything else, strings included, as a collection
func collectionType(t semantic.TypeInfo) semantic.TypeInfo {
	if t.IsArray() {
		return t
	}
	return semantic.TypeInfo{}
}

func migrateStringAssert(inv invocation) *csharp.Node {
	rule, ok := stringAssertRules[inv.member]
	if !ok || len(inv.args) < rule.operands {
		return inv.unsupported("Unsupported string assertion expression")
	}
	expected, actual := inv.args[0], inv.args[1]
	switch rule.member {
	case memberSwapOperands:
		args := append([]*csharp.Node{actual, expected}, inv.rest(2)...)
		return inv.replace(mstest.StaticCall(mstest.StringAssert, inv.member, args...))
	case memberNegatedStringMethod:
		condition := mstest.MethodCall(inv.operand(1), rule.target, inv.operand(0))
		return inv.replace(mstest.BooleanAssertion(false, condition, inv.rest(2)...))
	case memberIgnoringCase:
		args := append([]*csharp.Node{expected, actual, mstest.BooleanLiteral(true)}, inv.rest(2)...)
		return inv.replace(mstest.StaticCall(mstest.Assert, rule.target, args...))
	case memberRegex:
		args := append([]*csharp.Node{actual, mstest.RegexCreation(inv.operand(0))}, inv.rest(2)...)
		return inv.replace(mstest.StaticCall(mstest.StringAssert, rule.target, args...))
	}
	return inv.unsupported("Unsupported string assertion expression")
}

// migrateExistence handles FileAssert and DirectoryAssert Exists and DoesNotExist
func migrateExistence(inv invocation, pathType string, handleType string, kind string) *csharp.Node {
	rule, ok := existenceRules[inv.member]
	if !ok || len(inv.args) < rule.operands {
		return inv.unsupported("Unsupported " + kind + " assertion expression")
	}
	valueType := inv.typeOf(0)
	var condition *csharp.Node
	switch {
	case valueType.IsString():
		condition = mstest.StaticCall(pathType, "Exists", inv.operand(0))
	case valueType.FullName == "System.IO."+handleType || strings.HasSuffix(valueType.FullName, "."+handleType) || valueType.FullName == handleType:
		condition = mstest.Property(inv.operand(0), "Exists")
	default:
		return inv.unsupported("Unsupported arguments in " + kind + " assertion expression")
	}
	return inv.replace(mstest.BooleanAssertion(rule.positive, condition, inv.rest(1)...))
}
