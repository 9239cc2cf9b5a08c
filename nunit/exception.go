package nunit

import (
	"strings"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
	"github.com/heshanpadmasiri/nunitMSTest/mstest"
)

// MatchKind is the comparison applied to a property of the thrown exception
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchMatches
	MatchEqualTo
	MatchContains
	MatchStartsWith
	MatchEndsWith
)

var matchKeywords = map[string]MatchKind{
	"Contains":   MatchContains,
	"EqualTo":    MatchEqualTo,
	"StartsWith": MatchStartsWith,
	"StartWith":  MatchStartsWith,
	"EndsWith":   MatchEndsWith,
	"EndWith":    MatchEndsWith,
	"Matches":    MatchMatches,
	"Match":      MatchMatches,
}

// ExceptionConstraint describes a Throws constraint such as
// Throws.TypeOf<ArgumentException>().With.Message.Contains("x")
type ExceptionConstraint struct {
	Supported bool
	TypeName  string
	Match     MatchKind
	// argument of the match keyword invocation
	MatchArgument *csharp.Node
	// member of the exception the match applies to: Message or a property name
	MatchTarget string
}

func newExceptionConstraint() *ExceptionConstraint {
	return &ExceptionConstraint{Supported: true}
}

// clear resets everything but the type name
func (c *ExceptionConstraint) clear() {
	c.Supported = true
	c.Match = MatchNone
	c.MatchArgument = nil
	c.MatchTarget = ""
}

// expressionOf returns the expression a node applies to: the receiver of a
// member access, the callee of an invocation or the value of an argument
func expressionOf(node *csharp.Node) *csharp.Node {
	switch node.Kind() {
	case "member_access_expression":
		return csharp.MemberAccessExpression(node)
	case "invocation_expression":
		return csharp.InvocationFunction(node)
	case "argument":
		return csharp.ArgumentExpression(node)
	}
	return nil
}

// tryExtractException searches node for a Throws.X anchor where X names an
// exception type. Match clauses found on the way down are collected into c.
func tryExtractException(node *csharp.Node, c *ExceptionConstraint) bool {
	if node == nil {
		return false
	}
	collectExceptionData(node, c, true)
	if exceptionTypeCheck(node, c) {
		return true
	}
	for _, child := range node.NamedChildren() {
		if tryExtractException(child, c) {
			return true
		}
	}
	c.clear()
	return false
}

// tryExtractExceptionByMethod searches node for Throws.Method<T>() or
// Throws.Exception.Method<T>() with Method being TypeOf or InstanceOf.
func tryExtractExceptionByMethod(node *csharp.Node, method string, c *ExceptionConstraint) bool {
	csharp.Assert("exception method name must not be empty", method != "")
	if node == nil {
		return false
	}
	collectExceptionData(node, c, false)
	if genericTypeName(node, method, c) {
		return true
	}
	for _, child := range node.NamedChildren() {
		if tryExtractExceptionByMethod(child, method, c) {
			return true
		}
	}
	c.clear()
	return false
}

func exceptionTypeCheck(node *csharp.Node, c *ExceptionConstraint) bool {
	access := expressionOf(node)
	if access == nil || access.Kind() != "member_access_expression" {
		return false
	}
	if csharp.MemberAccessExpression(access).CompactText() != "Throws" {
		return false
	}
	name := csharp.MemberAccessName(access)
	if name.Kind() == "generic_name" {
		return false
	}
	if node.Kind() == "member_access_expression" {
		outer := csharp.MemberAccessName(node).CompactText()
		if strings.HasPrefix(outer, "TypeOf<") || strings.HasPrefix(outer, "InstanceOf<") {
			return false
		}
	}
	c.TypeName = name.CompactText()
	return true
}

func genericTypeName(node *csharp.Node, method string, c *ExceptionConstraint) bool {
	access := expressionOf(node)
	if access != nil && access.Kind() == "member_access_expression" {
		receiver := csharp.MemberAccessExpression(access).CompactText()
		name := csharp.MemberAccessName(access)
		if receiver == "Throws" || receiver == "Throws.Exception" {
			typeArgs := csharp.GenericTypeArguments(name)
			if csharp.SimpleName(name) == method && len(typeArgs) == 1 {
				c.TypeName = typeArgs[0].CompactText()
				return true
			}
		}
	}
	c.TypeName = ""
	return false
}

// collectExceptionData classifies the member name at this level of the chain.
// owner is the invocation that carries the arguments of that member, if any.
func collectExceptionData(node *csharp.Node, c *ExceptionConstraint, genericException bool) {
	access := expressionOf(node)
	if access == nil || access.Kind() != "member_access_expression" {
		return
	}
	memberName := csharp.MemberAccessName(access).CompactText()
	var owner *csharp.Node
	if node.Kind() == "invocation_expression" {
		owner = node
	}

	if kind, ok := matchKeywords[memberName]; ok {
		c.Match = kind
		c.MatchArgument = singleArgument(owner, c)
		return
	}
	switch memberName {
	case "Message":
		if c.Match == MatchNone {
			c.Supported = false
			return
		}
		c.MatchTarget = memberName
	case "Property":
		if c.Match == MatchNone {
			c.Supported = false
			return
		}
		arg := singleArgument(owner, c)
		if arg == nil {
			return
		}
		property, ok := sourceMemberName(arg)
		if !ok {
			c.Supported = false
			return
		}
		c.MatchTarget = property
	case "With":
		if c.MatchTarget == "" || c.Match == MatchNone {
			c.Supported = false
		}
	default:
		if genericException && !strings.HasSuffix(memberName, "Exception") {
			c.Supported = false
		}
	}
}

// singleArgument returns the only argument expression of the owning invocation
func singleArgument(owner *csharp.Node, c *ExceptionConstraint) *csharp.Node {
	if owner == nil {
		c.Supported = false
		return nil
	}
	args := csharp.Arguments(owner)
	if len(args) != 1 {
		c.Supported = false
		return nil
	}
	return csharp.ArgumentExpression(args[0])
}

// extractExceptionConstraint runs the anchors in order: Throws.X, then
// Throws.TypeOf<T>() and Throws.InstanceOf<T>()
func extractExceptionConstraint(constraint *csharp.Node) (*ExceptionConstraint, bool) {
	for _, method := range []string{"", "TypeOf", "InstanceOf"} {
		c := newExceptionConstraint()
		var found bool
		if method == "" {
			found = tryExtractException(constraint, c)
		} else {
			found = tryExtractExceptionByMethod(constraint, method, c)
		}
		if found {
			if c.Match != MatchNone && (c.MatchTarget == "" || c.MatchArgument == nil) {
				c.Supported = false
			}
			return c, true
		}
	}
	return nil, false
}

// synthesizeThrows builds the MSTest form of Assert.That(action, Throws..., rest...)
func synthesizeThrows(c *ExceptionConstraint, action *csharp.Node, rest []*csharp.Node) *csharp.Node {
	throws := mstest.ThrowsException(mstest.DottedType(c.TypeName), action, rest...)
	if c.Match == MatchNone {
		return throws
	}
	csharp.Assert("exception match without a target", c.MatchTarget != "")
	csharp.Assert("exception match without an argument", c.MatchArgument != nil)
	target := mstest.Property(throws, c.MatchTarget)
	argument := c.MatchArgument.TrimLeading()
	switch c.Match {
	case MatchContains:
		return mstest.StaticCall(mstest.StringAssert, "Contains", target, argument)
	case MatchStartsWith:
		return mstest.StaticCall(mstest.StringAssert, "StartsWith", target, argument)
	case MatchEndsWith:
		return mstest.StaticCall(mstest.StringAssert, "EndsWith", target, argument)
	case MatchMatches:
		return mstest.StaticCall(mstest.StringAssert, "Matches", target, mstest.RegexCreation(argument))
	case MatchEqualTo:
		return mstest.StaticCall(mstest.Assert, "AreEqual", argument, target)
	}
	csharp.Assert("unknown exception match kind", false)
	return nil
}
