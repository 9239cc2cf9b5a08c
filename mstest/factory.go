// Package mstest provide builders for MSTest flavoured C# syntax. The builders
// only assemble nodes; every decision about what to build is made by the caller.
package mstest

import (
	"strings"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
)

const (
	Namespace        = "Microsoft.VisualStudio.TestTools.UnitTesting"
	Assert           = "Assert"
	StringAssert     = "StringAssert"
	CollectionAssert = "CollectionAssert"
	RegexType        = "System.Text.RegularExpressions.Regex"
)

func token(text string) *csharp.Node {
	return csharp.NewToken(text, text)
}

func spaced(text string) *csharp.Node {
	return token(text).WithLeading(" ")
}

// Identifier builds an identifier token
func Identifier(name string) *csharp.Node {
	csharp.Assert("identifier name must not be empty", name != "")
	return csharp.NewToken("identifier", name)
}

// MemberAccess builds `expr.name`
func MemberAccess(expr *csharp.Node, name *csharp.Node) *csharp.Node {
	csharp.Assert("member access requires a receiver", expr != nil)
	csharp.Assert("member access requires a name", name != nil)
	return csharp.NewNode("member_access_expression",
		expr.WithField("expression"),
		token("."),
		name.WithField("name"),
	)
}

// DottedExpression builds a member access chain such as System.IO.File
func DottedExpression(dotted string) *csharp.Node {
	parts := strings.Split(dotted, ".")
	expr := Identifier(parts[0])
	for _, part := range parts[1:] {
		expr = MemberAccess(expr, Identifier(part))
	}
	return expr
}

// QualifiedName builds a qualified name such as used in using directives
func QualifiedName(dotted string) *csharp.Node {
	parts := strings.Split(dotted, ".")
	name := Identifier(parts[0])
	for _, part := range parts[1:] {
		name = csharp.NewNode("qualified_name",
			name.WithField("qualifier"),
			token("."),
			Identifier(part).WithField("name"),
		)
	}
	return name
}

// GenericName builds `name<T1, T2>`
func GenericName(name string, typeArguments ...*csharp.Node) *csharp.Node {
	csharp.Assert("generic name requires type arguments", len(typeArguments) > 0)
	children := []*csharp.Node{token("<")}
	for i, arg := range typeArguments {
		csharp.Assert("type argument must not be nil", arg != nil)
		if i > 0 {
			children = append(children, token(","), arg.WithLeading(" "))
			continue
		}
		children = append(children, arg.TrimLeading())
	}
	children = append(children, token(">"))
	return csharp.NewNode("generic_name", Identifier(name), csharp.NewNode("type_argument_list", children...))
}

// Argument wraps an expression in an argument node; argument nodes pass through
func Argument(expr *csharp.Node) *csharp.Node {
	csharp.Assert("argument expression must not be nil", expr != nil)
	if expr.Kind() == "argument" {
		return expr
	}
	return csharp.NewNode("argument", expr)
}

// ArgumentList builds `(a, b, c)` from expressions or argument nodes. Arguments
// that started on their own line keep their line break.
func ArgumentList(args ...*csharp.Node) *csharp.Node {
	children := []*csharp.Node{token("(")}
	for i, arg := range args {
		arg = Argument(arg)
		if i > 0 {
			children = append(children, token(","))
			if !strings.Contains(arg.Leading(), "\n") {
				arg = arg.WithLeading(" ")
			}
		} else {
			arg = arg.TrimLeading()
		}
		children = append(children, arg)
	}
	children = append(children, token(")"))
	return csharp.NewNode("argument_list", children...)
}

// Invocation builds `function(args...)`
func Invocation(function *csharp.Node, args ...*csharp.Node) *csharp.Node {
	csharp.Assert("invocation requires a callee", function != nil)
	return csharp.NewNode("invocation_expression",
		function.WithField("function"),
		ArgumentList(args...).WithField("arguments"),
	)
}

// StaticCall builds `Type.Method(args...)`
func StaticCall(typeName string, method string, args ...*csharp.Node) *csharp.Node {
	return Invocation(MemberAccess(DottedExpression(typeName), Identifier(method)), args...)
}

// GenericStaticCall builds `Type.Method<T>(args...)`
func GenericStaticCall(typeName string, method string, typeArgument *csharp.Node, args ...*csharp.Node) *csharp.Node {
	return Invocation(MemberAccess(DottedExpression(typeName), GenericName(method, typeArgument)), args...)
}

// MethodCall builds `receiver.Method(args...)`
func MethodCall(receiver *csharp.Node, method string, args ...*csharp.Node) *csharp.Node {
	return Invocation(MemberAccess(Operand(receiver), Identifier(method)), args...)
}

// Property builds `receiver.Name`
func Property(receiver *csharp.Node, name string) *csharp.Node {
	return MemberAccess(Operand(receiver), Identifier(name))
}

// TypeOf builds `typeof(T)`
func TypeOf(typeNode *csharp.Node) *csharp.Node {
	csharp.Assert("typeof requires a type", typeNode != nil)
	return csharp.NewNode("typeof_expression",
		token("typeof"),
		token("("),
		typeNode.TrimLeading().WithField("type"),
		token(")"),
	)
}

// ObjectCreation builds `new T(args...)`
func ObjectCreation(typeName string, args ...*csharp.Node) *csharp.Node {
	return csharp.NewNode("object_creation_expression",
		token("new"),
		DottedType(typeName).WithLeading(" ").WithField("type"),
		ArgumentList(args...).WithField("arguments"),
	)
}

// DottedType builds a type name, qualified when it contains dots
func DottedType(name string) *csharp.Node {
	if strings.Contains(name, ".") {
		return QualifiedName(name)
	}
	return Identifier(name)
}

// Binary builds `left op right`
func Binary(left *csharp.Node, operator string, right *csharp.Node) *csharp.Node {
	csharp.Assert("binary expression requires a left operand", left != nil)
	csharp.Assert("binary expression requires a right operand", right != nil)
	return csharp.NewNode("binary_expression",
		Operand(left).TrimLeading().WithField("left"),
		spaced(operator).WithField("operator"),
		Operand(right).WithLeading(" ").WithField("right"),
	)
}

// Operand parenthesizes expressions that would bind looser than a member access
// or comparison.
func Operand(expr *csharp.Node) *csharp.Node {
	switch expr.Kind() {
	case "binary_expression", "conditional_expression", "lambda_expression", "assignment_expression",
		"as_expression", "is_expression", "is_pattern_expression", "cast_expression", "await_expression",
		"prefix_unary_expression", "switch_expression", "range_expression":
		return Parenthesize(expr)
	}
	return expr
}

// Parenthesize builds `(expr)`
func Parenthesize(expr *csharp.Node) *csharp.Node {
	return csharp.NewNode("parenthesized_expression", token("("), expr.TrimLeading(), token(")"))
}

// StringLiteral builds a regular string literal for value
func StringLiteral(value string) *csharp.Node {
	children := []*csharp.Node{token(`"`)}
	if value != "" {
		children = append(children, csharp.NewToken("string_literal_content", escapeString(value)))
	}
	children = append(children, token(`"`))
	return csharp.NewNode("string_literal", children...)
}

func escapeString(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return replacer.Replace(value)
}

// IntegerLiteral builds an integer literal
func IntegerLiteral(text string) *csharp.Node {
	return csharp.NewToken("integer_literal", text)
}

// RealLiteral builds a real literal
func RealLiteral(text string) *csharp.Node {
	return csharp.NewToken("real_literal", text)
}

// BooleanLiteral builds `true` or `false`
func BooleanLiteral(value bool) *csharp.Node {
	if value {
		return csharp.NewNode("boolean_literal", token("true"))
	}
	return csharp.NewNode("boolean_literal", token("false"))
}

// AttributeArgument wraps an expression for use inside an attribute
func AttributeArgument(expr *csharp.Node) *csharp.Node {
	csharp.Assert("attribute argument must not be nil", expr != nil)
	if expr.Kind() == "attribute_argument" {
		return expr
	}
	return csharp.NewNode("attribute_argument", expr.TrimLeading())
}

// NamedAttributeArgument builds `Name = value`
func NamedAttributeArgument(name string, value *csharp.Node) *csharp.Node {
	csharp.Assert("named attribute argument requires a value", value != nil)
	return csharp.NewNode("attribute_argument", Identifier(name), spaced("="), value.WithLeading(" "))
}

// Attribute builds `Name(args...)`; without arguments no parentheses are emitted
func Attribute(name string, args ...*csharp.Node) *csharp.Node {
	nameNode := DottedType(name).WithField("name")
	if len(args) == 0 {
		return csharp.NewNode("attribute", nameNode)
	}
	return csharp.NewNode("attribute", nameNode, AttributeArgumentList(args...))
}

// AttributeArgumentList builds `(a, b)` for an attribute
func AttributeArgumentList(args ...*csharp.Node) *csharp.Node {
	children := []*csharp.Node{token("(")}
	for i, arg := range args {
		arg = AttributeArgument(arg)
		if i > 0 {
			children = append(children, token(","), arg.WithLeading(" "))
			continue
		}
		children = append(children, arg.TrimLeading())
	}
	children = append(children, token(")"))
	return csharp.NewNode("attribute_argument_list", children...)
}

// AttributeList builds `[A, B]`
func AttributeList(attrs ...*csharp.Node) *csharp.Node {
	csharp.Assert("attribute list requires attributes", len(attrs) > 0)
	children := []*csharp.Node{token("[")}
	for i, attr := range attrs {
		if i > 0 {
			children = append(children, token(","), attr.WithLeading(" "))
			continue
		}
		children = append(children, attr.TrimLeading())
	}
	children = append(children, token("]"))
	return csharp.NewNode("attribute_list", children...)
}

// Modifier builds a modifier such as `static`
func Modifier(keyword string) *csharp.Node {
	return csharp.NewNode("modifier", token(keyword))
}

// Parameter builds `Type name`
func Parameter(typeName string, name string) *csharp.Node {
	return csharp.NewNode("parameter",
		DottedType(typeName).WithField("type"),
		Identifier(name).WithLeading(" ").WithField("name"),
	)
}

// AssignmentStatement builds `left = right;`
func AssignmentStatement(left *csharp.Node, right *csharp.Node) *csharp.Node {
	csharp.Assert("assignment requires a target", left != nil)
	csharp.Assert("assignment requires a value", right != nil)
	assignment := csharp.NewNode("assignment_expression",
		left.TrimLeading().WithField("left"),
		spaced("=").WithField("operator"),
		right.WithLeading(" ").WithField("right"),
	)
	return csharp.NewNode("expression_statement", assignment, token(";"))
}

// UsingName builds the name of the MSTest using directive
func UsingName() *csharp.Node {
	return QualifiedName(Namespace)
}
