package semantic

import (
	"strings"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
)

const maxInferenceDepth = 16

var booleanMethods = map[string]bool{
	"Equals": true, "Contains": true, "StartsWith": true, "EndsWith": true, "Any": true, "All": true,
	"IsNullOrEmpty": true, "IsNullOrWhiteSpace": true, "ContainsKey": true, "ContainsValue": true,
	"IsAssignableFrom": true, "IsInstanceOfType": true, "Exists": true, "SequenceEqual": true,
	"IsMatch": true, "IsNaN": true, "IsInfinity": true, "TryParse": true, "SetEquals": true,
	"IsSubsetOf": true, "IsSupersetOf": true, "ReferenceEquals": true,
}

var stringMethods = map[string]bool{
	"ToString": true, "ToUpper": true, "ToLower": true, "ToUpperInvariant": true, "ToLowerInvariant": true,
	"Trim": true, "TrimStart": true, "TrimEnd": true, "Substring": true, "Replace": true, "Format": true,
	"Join": true, "Concat": true, "PadLeft": true, "PadRight": true, "ReadAllText": true, "GetFileName": true,
	"Combine": true, "GetTempPath": true, "GetFullPath": true,
}

var intMethods = map[string]bool{
	"Count": true, "IndexOf": true, "LastIndexOf": true, "CompareTo": true, "GetHashCode": true,
}

var fileSystemStringProperties = map[string]bool{
	"Name": true, "FullName": true, "Extension": true, "DirectoryName": true,
}

// TypeFromName maps a type as written in source to a TypeInfo
func TypeFromName(name string) TypeInfo {
	name = strings.TrimPrefix(name, "global::")
	name = strings.TrimSuffix(name, "?")
	name = strings.TrimPrefix(name, "System.")
	if name == "" || name == "var" {
		return TypeInfo{}
	}
	if info, ok := specialTypes[name]; ok {
		return info
	}
	if strings.HasPrefix(name, "IO.") {
		name = strings.TrimPrefix(name, "IO.")
	}
	if full, ok := wellKnownTypes[name]; ok {
		return TypeInfo{FullName: full}
	}
	return TypeInfo{FullName: name}
}

func (c *Compilation) StaticTypeOf(expr *csharp.Node) TypeInfo {
	if expr == nil {
		return TypeInfo{}
	}
	return c.typeOf(expr, c.scopeOf(expr), 0)
}

func (c *Compilation) typeOf(expr *csharp.Node, s *scope, depth int) TypeInfo {
	if expr == nil || depth > maxInferenceDepth {
		return TypeInfo{}
	}
	switch expr.Kind() {
	case "string_literal", "verbatim_string_literal", "raw_string_literal", "interpolated_string_expression":
		return specialTypes["string"]
	case "boolean_literal":
		return specialTypes["bool"]
	case "character_literal":
		return specialTypes["char"]
	case "integer_literal":
		return integerLiteralType(expr.CompactText())
	case "real_literal":
		return realLiteralType(expr.CompactText())
	case "typeof_expression":
		return TypeInfo{FullName: "System.Type"}
	case "is_expression", "is_pattern_expression":
		return specialTypes["bool"]
	case "object_creation_expression", "cast_expression", "default_expression":
		return c.namedType(expr.ChildByField("type"), s)
	case "array_creation_expression":
		if t := expr.ChildByField("type"); t != nil {
			return TypeInfo{FullName: t.CompactText()}
		}
	case "parenthesized_expression":
		named := expr.NamedChildren()
		if len(named) == 1 {
			return c.typeOf(named[0], s, depth+1)
		}
	case "prefix_unary_expression":
		operand := expr.ChildByField("operand")
		if operand == nil {
			named := expr.NamedChildren()
			if len(named) > 0 {
				operand = named[len(named)-1]
			}
		}
		if expr.HasToken("!") {
			return specialTypes["bool"]
		}
		return c.typeOf(operand, s, depth+1)
	case "binary_expression":
		return c.binaryType(expr, s, depth)
	case "conditional_expression":
		if consequence := expr.ChildByField("consequence"); consequence != nil {
			return c.typeOf(consequence, s, depth+1)
		}
	case "identifier":
		return c.identifierType(expr, s, depth)
	case "this_expression":
		if s != nil && s.owner != nil {
			return TypeInfo{FullName: s.owner.fullName}
		}
	case "member_access_expression":
		return c.memberAccessType(expr, s, depth)
	case "invocation_expression":
		return c.invocationType(expr, s, depth)
	case "element_access_expression":
		base := c.typeOf(expr.ChildByField("expression"), s, depth+1)
		if base.IsString() {
			return specialTypes["char"]
		}
		if base.IsArray() {
			return TypeFromName(strings.TrimSuffix(base.FullName, "[]"))
		}
	}
	return TypeInfo{}
}

func (c *Compilation) namedType(typeNode *csharp.Node, s *scope) TypeInfo {
	if typeNode == nil {
		return TypeInfo{}
	}
	name := typeNode.CompactText()
	if decl := c.lookupType(name, s); decl != nil {
		return TypeInfo{FullName: decl.fullName}
	}
	return TypeFromName(name)
}

func (c *Compilation) namedTypeText(name string, s *scope) TypeInfo {
	if decl := c.lookupType(name, s); decl != nil {
		return TypeInfo{FullName: decl.fullName}
	}
	return TypeFromName(name)
}

func integerLiteralType(text string) TypeInfo {
	lower := strings.ToLower(text)
	switch {
	case strings.HasSuffix(lower, "ul") || strings.HasSuffix(lower, "lu"):
		return specialTypes["ulong"]
	case strings.HasSuffix(lower, "l"):
		return specialTypes["long"]
	case strings.HasSuffix(lower, "u"):
		return specialTypes["uint"]
	}
	return specialTypes["int"]
}

func realLiteralType(text string) TypeInfo {
	lower := strings.ToLower(text)
	switch {
	case strings.HasSuffix(lower, "f"):
		return specialTypes["float"]
	case strings.HasSuffix(lower, "m"):
		return specialTypes["decimal"]
	}
	return specialTypes["double"]
}

func (c *Compilation) binaryType(expr *csharp.Node, s *scope, depth int) TypeInfo {
	operator := ""
	if op := expr.ChildByField("operator"); op != nil {
		operator = op.CompactText()
	} else {
		for _, child := range expr.Children() {
			if !child.IsNamed() {
				operator = child.CompactText()
				break
			}
		}
	}
	switch operator {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||", "is":
		return specialTypes["bool"]
	}
	left := c.typeOf(expr.ChildByField("left"), s, depth+1)
	right := c.typeOf(expr.ChildByField("right"), s, depth+1)
	if operator == "+" && (left.IsString() || right.IsString()) {
		return specialTypes["string"]
	}
	if (operator == "&" || operator == "|" || operator == "^") && left.IsBoolean() {
		return left
	}
	if left.IsKnown() {
		return left
	}
	return right
}

func (c *Compilation) identifierType(expr *csharp.Node, s *scope, depth int) TypeInfo {
	name := expr.CompactText()
	if v, ok := lookupVariable(s, name); ok {
		if v.typeName != "" && v.typeName != "var" {
			return c.namedTypeText(v.typeName, s)
		}
		if v.initializer != nil {
			return c.typeOf(v.initializer, s, depth+1)
		}
		return TypeInfo{}
	}
	if s != nil && s.owner != nil {
		if members := s.owner.members[name]; len(members) > 0 && members[0].kind != DeclarationMethod {
			return c.namedTypeText(members[0].typeName, s)
		}
	}
	return TypeInfo{}
}

func (c *Compilation) memberAccessType(expr *csharp.Node, s *scope, depth int) TypeInfo {
	receiver := csharp.MemberAccessExpression(expr)
	name := csharp.SimpleName(csharp.MemberAccessName(expr))
	receiverText := receiver.CompactText()
	if (receiverText == "string" || receiverText == "String") && name == "Empty" {
		return specialTypes["string"]
	}
	if receiver.Kind() == "identifier" {
		if _, isVariable := lookupVariable(s, receiverText); !isVariable {
			if decl := c.lookupType(receiverText, s); decl != nil {
				return c.memberType(decl, name, s)
			}
		}
	}
	receiverType := c.typeOf(receiver, s, depth+1)
	if decl := c.lookupType(receiverType.FullName, s); decl != nil && receiverType.IsKnown() {
		return c.memberType(decl, name, s)
	}
	switch {
	case name == "Length" || name == "Count":
		return specialTypes["int"]
	case name == "Exists" && isFileSystemInfo(receiverType):
		return specialTypes["bool"]
	case fileSystemStringProperties[name] && isFileSystemInfo(receiverType):
		return specialTypes["string"]
	case name == "Message" || name == "ParamName" || name == "StackTrace":
		return specialTypes["string"]
	}
	return TypeInfo{}
}

func isFileSystemInfo(t TypeInfo) bool {
	return t.FullName == "System.IO.FileInfo" || t.FullName == "System.IO.DirectoryInfo"
}

func (c *Compilation) memberType(decl *typeDecl, name string, s *scope) TypeInfo {
	members := decl.members[name]
	if len(members) == 0 {
		return TypeInfo{}
	}
	return c.namedTypeText(members[0].typeName, s)
}

func (c *Compilation) invocationType(expr *csharp.Node, s *scope, depth int) TypeInfo {
	callee := csharp.InvocationFunction(expr)
	if callee == nil {
		return TypeInfo{}
	}
	switch callee.Kind() {
	case "identifier", "generic_name":
		name := csharp.SimpleName(callee)
		if name == "nameof" {
			return specialTypes["string"]
		}
		if s != nil && s.owner != nil {
			return c.memberType(s.owner, name, s)
		}
		return TypeInfo{}
	case "member_access_expression":
	default:
		return TypeInfo{}
	}
	name := csharp.SimpleName(csharp.MemberAccessName(callee))
	receiver := csharp.MemberAccessExpression(callee)
	if receiver.Kind() == "identifier" {
		if _, isVariable := lookupVariable(s, receiver.CompactText()); !isVariable {
			if decl := c.lookupType(receiver.CompactText(), s); decl != nil {
				return c.memberType(decl, name, s)
			}
		}
	}
	receiverType := c.typeOf(receiver, s, depth+1)
	if receiverType.IsKnown() {
		if decl := c.lookupType(receiverType.FullName, s); decl != nil {
			if t := c.memberType(decl, name, s); t.IsKnown() {
				return t
			}
		}
	}
	switch {
	case booleanMethods[name]:
		return specialTypes["bool"]
	case stringMethods[name]:
		return specialTypes["string"]
	case intMethods[name]:
		return specialTypes["int"]
	case name == "GetType":
		return TypeInfo{FullName: "System.Type"}
	}
	return TypeInfo{}
}
