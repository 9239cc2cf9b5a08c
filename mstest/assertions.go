package mstest

import (
	"github.com/heshanpadmasiri/nunitMSTest/csharp"
)

// RenameIdentifier replaces the text of a name node while keeping its trivia.
// Generic names keep their type arguments.
func RenameIdentifier(name *csharp.Node, newName string) *csharp.Node {
	csharp.Assert("rename requires a name node", name != nil)
	switch {
	case name.Kind() == "generic_name":
		id := name.FirstChildOfKind("identifier")
		csharp.Assert("generic name without identifier", id != nil)
		return name.ReplaceChild(id, RenameIdentifier(id, newName))
	case name.IsToken():
		return name.WithText(newName)
	}
	return Identifier(newName).WithLeading(name.Leading())
}

// RenameInvocation swaps the member name of `Receiver.Member(...)`
func RenameInvocation(call *csharp.Node, newName string) *csharp.Node {
	callee := csharp.InvocationFunction(call)
	csharp.Assert("rename requires a callee", callee != nil)
	if callee.Kind() != "member_access_expression" {
		return call.ReplaceChild(callee, RenameIdentifier(callee, newName))
	}
	name := csharp.MemberAccessName(callee)
	return call.ReplaceChild(callee, callee.ReplaceChild(name, RenameIdentifier(name, newName)))
}

// RetargetInvocation swaps the receiver type of `Receiver.Member(...)`
func RetargetInvocation(call *csharp.Node, typeName string) *csharp.Node {
	callee := csharp.InvocationFunction(call)
	csharp.Assert("retarget requires a member access callee", callee != nil && callee.Kind() == "member_access_expression")
	receiver := csharp.MemberAccessExpression(callee)
	replacement := DottedExpression(typeName).WithLeading(receiver.Leading())
	return call.ReplaceChild(callee, callee.ReplaceChild(receiver, replacement))
}

// WithArguments replaces the argument list of an invocation
func WithArguments(call *csharp.Node, args ...*csharp.Node) *csharp.Node {
	list := csharp.InvocationArgumentList(call)
	csharp.Assert("invocation without argument list", list != nil)
	return call.ReplaceChild(list, ArgumentList(args...))
}

// BooleanAssertion builds `Assert.IsTrue(condition, rest...)` or `Assert.IsFalse(...)`
func BooleanAssertion(expected bool, condition *csharp.Node, rest ...*csharp.Node) *csharp.Node {
	method := "IsFalse"
	if expected {
		method = "IsTrue"
	}
	args := append([]*csharp.Node{condition}, rest...)
	return StaticCall(Assert, method, args...)
}

// ComparisonAssertion builds `Assert.IsTrue(left op right, args[skip:]...)` from
// call, keeping the message arguments that follow the consumed operands.
func ComparisonAssertion(call *csharp.Node, expected bool, operator string, left *csharp.Node, right *csharp.Node, skip int) *csharp.Node {
	args := csharp.Arguments(call)
	csharp.Assert("comparison consumes more arguments than the call has", skip <= len(args))
	return BooleanAssertion(expected, Binary(left, operator, right), args[skip:]...)
}

// ThrowsException builds `Assert.ThrowsException<T>(action, rest...)`
func ThrowsException(exceptionType *csharp.Node, action *csharp.Node, rest ...*csharp.Node) *csharp.Node {
	csharp.Assert("ThrowsException requires an exception type", exceptionType != nil)
	csharp.Assert("ThrowsException requires an action", action != nil)
	args := append([]*csharp.Node{action}, rest...)
	return GenericStaticCall(Assert, "ThrowsException", exceptionType.TrimLeading(), args...)
}

// RegexCreation builds `new System.Text.RegularExpressions.Regex(pattern)`
func RegexCreation(pattern *csharp.Node) *csharp.Node {
	return ObjectCreation(RegexType, pattern)
}

// Not builds `!expr`
func Not(expr *csharp.Node) *csharp.Node {
	return csharp.NewNode("prefix_unary_expression", token("!"), Operand(expr).TrimLeading())
}
