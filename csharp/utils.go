package csharp

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// MigrationPanic is raised for programmer errors: a builder handed a nil part,
// an accessor used on the wrong node kind. It aborts the current file only.
type MigrationPanic struct {
	Message string
}

func (p MigrationPanic) Error() string {
	return "internal migration error: " + p.Message
}

// Assert panics with a MigrationPanic if condition is false
func Assert(msg string, condition bool) {
	if condition {
		return
	}
	panic(MigrationPanic{Message: msg})
}

// IterateChildren iterates over all children of a node and calls fn for each
func IterateChildren(node *Node, fn func(child *Node)) {
	for _, child := range node.children {
		fn(child)
	}
}

// TypeDeclarationKinds are the declarations that open a class scope
var TypeDeclarationKinds = []string{"class_declaration", "struct_declaration", "record_declaration", "record_struct_declaration"}

// IsTypeDeclaration reports whether node declares a class-like type
func IsTypeDeclaration(node *Node) bool {
	for _, kind := range TypeDeclarationKinds {
		if node.kind == kind {
			return true
		}
	}
	return false
}

// SimpleName returns the right-most identifier of a name, generic name,
// qualified name or member access
func SimpleName(node *Node) string {
	if node == nil {
		return ""
	}
	switch node.kind {
	case "identifier", "predefined_type":
		return node.CompactText()
	case "generic_name":
		if id := node.FirstChildOfKind("identifier"); id != nil {
			return id.CompactText()
		}
	case "qualified_name", "member_access_expression", "alias_qualified_name":
		if name := node.ChildByField("name"); name != nil {
			return SimpleName(name)
		}
		named := node.NamedChildren()
		if len(named) > 0 {
			return SimpleName(named[len(named)-1])
		}
	}
	return node.CompactText()
}

// GenericTypeArguments returns the type arguments of a generic name
func GenericTypeArguments(node *Node) []*Node {
	if node == nil || node.kind != "generic_name" {
		return nil
	}
	list := node.FirstChildOfKind("type_argument_list")
	if list == nil {
		return nil
	}
	return list.NamedChildren()
}

// InvocationFunction returns the callee of an invocation expression
func InvocationFunction(call *Node) *Node {
	if fn := call.ChildByField("function"); fn != nil {
		return fn
	}
	return call.Child(0)
}

// InvocationArgumentList returns the argument list of an invocation or object creation
func InvocationArgumentList(call *Node) *Node {
	if args := call.ChildByField("arguments"); args != nil {
		return args
	}
	return call.FirstChildOfKind("argument_list")
}

// Arguments returns the argument nodes of an invocation expression
func Arguments(call *Node) []*Node {
	list := InvocationArgumentList(call)
	if list == nil {
		return nil
	}
	return list.ChildrenOfKind("argument")
}

// MemberAccessExpression returns the receiver of a member access
func MemberAccessExpression(node *Node) *Node {
	if expr := node.ChildByField("expression"); expr != nil {
		return expr
	}
	return node.Child(0)
}

// MemberAccessName returns the member name node of a member access
func MemberAccessName(node *Node) *Node {
	if name := node.ChildByField("name"); name != nil {
		return name
	}
	return node.Child(node.ChildCount() - 1)
}

// ArgumentName returns the name of a named argument (`name: value` or
// `Name = value`), or an empty string for positional arguments
func ArgumentName(arg *Node) string {
	if assignment := namedAttributeAssignment(arg); assignment != nil {
		return assignment.ChildByField("left").CompactText()
	}
	for i, child := range arg.children {
		switch child.kind {
		case "name_colon", "name_equals":
			if id := child.FirstChildOfKind("identifier"); id != nil {
				return id.CompactText()
			}
		case "identifier":
			if next := arg.Child(i + 1); next != nil && next.IsToken() && (next.text == ":" || next.text == "=") {
				return child.CompactText()
			}
		}
	}
	return ""
}

// ArgumentExpression returns the value expression of an argument or attribute argument
func ArgumentExpression(arg *Node) *Node {
	if assignment := namedAttributeAssignment(arg); assignment != nil {
		return assignment.ChildByField("right")
	}
	var expr *Node
	for i, child := range arg.children {
		if !child.named || child.kind == "name_colon" || child.kind == "name_equals" {
			continue
		}
		if child.kind == "identifier" {
			if next := arg.Child(i + 1); next != nil && next.IsToken() && (next.text == ":" || next.text == "=") {
				continue
			}
		}
		expr = child
	}
	return expr
}

// namedAttributeAssignment returns the `Name = value` assignment an attribute
// argument is parsed as, or nil when the argument is positional
func namedAttributeAssignment(arg *Node) *Node {
	if arg.kind != "attribute_argument" {
		return nil
	}
	named := arg.NamedChildren()
	if len(named) != 1 || named[0].kind != "assignment_expression" {
		return nil
	}
	left := named[0].ChildByField("left")
	if left == nil || left.kind != "identifier" || named[0].ChildByField("right") == nil {
		return nil
	}
	if op := named[0].ChildByField("operator"); op != nil && op.CompactText() != "=" {
		return nil
	}
	return named[0]
}

// AttributeName returns the name node of an attribute
func AttributeName(attr *Node) *Node {
	if name := attr.ChildByField("name"); name != nil {
		return name
	}
	return attr.Child(0)
}

// AttributeArgumentList returns the argument list of an attribute if present
func AttributeArgumentList(attr *Node) *Node {
	return attr.FirstChildOfKind("attribute_argument_list")
}

// AttributeArguments returns the arguments of an attribute
func AttributeArguments(attr *Node) []*Node {
	list := AttributeArgumentList(attr)
	if list == nil {
		return nil
	}
	return list.ChildrenOfKind("attribute_argument")
}

// Modifiers returns the modifier texts of a declaration
func Modifiers(decl *Node) []string {
	var modifiers []string
	for _, child := range decl.ChildrenOfKind("modifier") {
		modifiers = append(modifiers, child.CompactText())
	}
	return modifiers
}

// HasModifier reports whether decl carries the given modifier
func HasModifier(decl *Node, modifier string) bool {
	for _, each := range Modifiers(decl) {
		if each == modifier {
			return true
		}
	}
	return false
}

// DeclarationName returns the declared identifier of a type or member declaration
func DeclarationName(decl *Node) string {
	if name := decl.ChildByField("name"); name != nil {
		return name.CompactText()
	}
	if id := decl.FirstChildOfKind("identifier"); id != nil {
		return id.CompactText()
	}
	return ""
}

// IsStringLiteral reports whether node is a string literal of any flavour
func IsStringLiteral(node *Node) bool {
	switch node.kind {
	case "string_literal", "verbatim_string_literal", "raw_string_literal":
		return true
	}
	return false
}

// StringLiteralValue returns the value of a regular or verbatim string literal
func StringLiteralValue(node *Node) (string, bool) {
	text := node.CompactText()
	switch node.kind {
	case "string_literal":
		value, err := strconv.Unquote(text)
		if err != nil {
			// C# escapes that Go does not know, fall back to the raw body
			return strings.TrimSuffix(strings.TrimPrefix(text, `"`), `"`), true
		}
		return value, true
	case "verbatim_string_literal":
		body := strings.TrimSuffix(strings.TrimPrefix(text, `@"`), `"`)
		return strings.ReplaceAll(body, `""`, `"`), true
	case "raw_string_literal":
		return strings.Trim(text, `"`), true
	}
	return "", false
}

// IsValidIdentifier reports whether s is a C# identifier
func IsValidIdentifier(s string) bool {
	s = strings.TrimPrefix(s, "@")
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Pc, r)) {
			continue
		}
		return false
	}
	return true
}

// Indentation returns the whitespace after the last line break of trivia
func Indentation(trivia string) string {
	idx := strings.LastIndex(trivia, "\n")
	if idx < 0 {
		return ""
	}
	return trivia[idx+1:]
}

// TriviaBeforeLastLine returns trivia up to (excluding) its last line break
func TriviaBeforeLastLine(trivia string) string {
	idx := strings.LastIndex(trivia, "\n")
	if idx < 0 {
		return ""
	}
	return strings.TrimSuffix(trivia[:idx], "\r")
}

// DescribeNode renders a node for diagnostics
func DescribeNode(node *Node) string {
	span := node.Location()
	return fmt.Sprintf("%s at %d:%d", node.kind, span.StartPoint.Line, span.StartPoint.Column)
}
