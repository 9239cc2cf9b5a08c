package semantic

import (
	"strings"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
)

const nunitNamespace = "NUnit.Framework"

// Compilation is a Resolver over a set of parsed files. It is built once and is
// read-only afterwards, so it can be shared by concurrent rewrites.
type Compilation struct {
	files        []*fileIndex
	types        map[string][]*typeDecl
	declarations []Declaration
	scopes       map[*csharp.Node]*scope
}

type fileIndex struct {
	path         string
	usings       []string
	aliases      map[string]string
	importsNUnit bool
}

type typeDecl struct {
	name     string
	fullName string
	file     *fileIndex
	members  map[string][]member
}

type member struct {
	kind     DeclarationKind
	name     string
	typeName string
	isStatic bool
}

type variable struct {
	typeName    string
	initializer *csharp.Node
}

type scope struct {
	file      *fileIndex
	owner     *typeDecl
	variables map[string]variable
}

// NewCompilation indexes files for symbol and type queries
func NewCompilation(files ...*csharp.File) *Compilation {
	c := &Compilation{
		types:  make(map[string][]*typeDecl),
		scopes: make(map[*csharp.Node]*scope),
	}
	for _, file := range files {
		c.indexFile(file)
	}
	return c
}

func (c *Compilation) indexFile(file *csharp.File) {
	idx := &fileIndex{path: file.Path, aliases: make(map[string]string)}
	c.files = append(c.files, idx)
	fileScope := &scope{file: idx, variables: map[string]variable{}}
	c.indexChildren(file.Root, idx, "", nil, fileScope)
}

func (c *Compilation) indexChildren(node *csharp.Node, file *fileIndex, namespace string, owner *typeDecl, current *scope) {
	for _, child := range node.Children() {
		c.indexNode(child, file, namespace, owner, current)
	}
}

func (c *Compilation) indexNode(node *csharp.Node, file *fileIndex, namespace string, owner *typeDecl, current *scope) {
	switch node.Kind() {
	case "using_directive":
		c.indexUsing(node, file)
		c.assignScope(node, current)
	case "namespace_declaration", "file_scoped_namespace_declaration":
		name := node.ChildByField("name")
		if name == nil {
			name = node.FirstChildOfKind("qualified_name", "identifier")
		}
		nested := namespace
		if name != nil {
			nested = joinName(namespace, name.CompactText())
		}
		for _, child := range node.Children() {
			if child == name {
				c.assignScope(child, current)
				continue
			}
			c.indexNode(child, file, nested, owner, current)
		}
	case "declaration_list":
		c.indexChildren(node, file, namespace, owner, current)
	case "class_declaration", "struct_declaration", "record_declaration", "record_struct_declaration", "interface_declaration":
		decl := c.indexType(node, file, namespace, owner)
		typeScope := &scope{file: file, owner: decl, variables: map[string]variable{}}
		for _, child := range node.Children() {
			if child.Kind() == "declaration_list" {
				c.indexMembers(child, file, decl, typeScope)
				continue
			}
			c.assignScope(child, typeScope)
		}
	default:
		c.assignScope(node, current)
	}
}

func (c *Compilation) indexUsing(node *csharp.Node, file *fileIndex) {
	names := []*csharp.Node{}
	for _, child := range node.Children() {
		if child.Kind() == "identifier" || child.Kind() == "qualified_name" || child.Kind() == "name_equals" {
			names = append(names, child)
		}
	}
	if len(names) == 0 {
		return
	}
	target := names[len(names)-1].CompactText()
	if node.HasToken("=") || node.FirstChildOfKind("name_equals") != nil {
		alias := names[0]
		if alias.Kind() == "name_equals" {
			alias = alias.FirstChildOfKind("identifier")
		}
		if alias != nil {
			file.aliases[alias.CompactText()] = target
		}
		return
	}
	if node.HasToken("static") {
		return
	}
	file.usings = append(file.usings, target)
	if target == nunitNamespace || strings.HasPrefix(target, nunitNamespace+".") {
		file.importsNUnit = true
	}
}

func (c *Compilation) indexType(node *csharp.Node, file *fileIndex, namespace string, owner *typeDecl) *typeDecl {
	name := csharp.DeclarationName(node)
	fullName := joinName(namespace, name)
	if owner != nil {
		fullName = owner.fullName + "." + name
	}
	decl := &typeDecl{name: name, fullName: fullName, file: file, members: make(map[string][]member)}
	c.types[name] = append(c.types[name], decl)
	return decl
}

func (c *Compilation) indexMembers(list *csharp.Node, file *fileIndex, owner *typeDecl, typeScope *scope) {
	for _, child := range list.Children() {
		switch child.Kind() {
		case "class_declaration", "struct_declaration", "record_declaration", "record_struct_declaration", "interface_declaration":
			c.indexNode(child, file, "", owner, typeScope)
		case "method_declaration":
			returns := child.ChildByField("returns")
			if returns == nil {
				returns = child.ChildByField("type")
			}
			c.addMember(child, owner, DeclarationMethod, csharp.DeclarationName(child), typeText(returns))
			c.indexMemberBody(child, file, owner)
		case "property_declaration":
			c.addMember(child, owner, DeclarationProperty, csharp.DeclarationName(child), typeText(child.ChildByField("type")))
			c.indexMemberBody(child, file, owner)
		case "field_declaration":
			declaration := child.FirstChildOfKind("variable_declaration")
			if declaration != nil {
				fieldType := typeText(variableDeclarationType(declaration))
				for _, declarator := range declaration.ChildrenOfKind("variable_declarator") {
					c.addMember(child, owner, DeclarationField, declaratorName(declarator), fieldType)
				}
			}
			c.indexMemberBody(child, file, owner)
		case "constructor_declaration", "destructor_declaration", "operator_declaration", "conversion_operator_declaration", "indexer_declaration", "event_declaration", "event_field_declaration":
			c.indexMemberBody(child, file, owner)
		default:
			c.assignScope(child, typeScope)
		}
	}
}

func (c *Compilation) addMember(node *csharp.Node, owner *typeDecl, kind DeclarationKind, name string, typeName string) {
	isStatic := csharp.HasModifier(node, "static") || csharp.HasModifier(node, "const")
	owner.members[name] = append(owner.members[name], member{kind: kind, name: name, typeName: typeName, isStatic: isStatic})
	c.declarations = append(c.declarations, Declaration{
		Kind:                   kind,
		Name:                   name,
		TypeName:               typeName,
		ContainingType:         owner.name,
		ContainingTypeFullName: owner.fullName,
		IsStatic:               isStatic,
		File:                   owner.file.path,
		Node:                   node,
	})
}

// indexMemberBody records parameters and locals of a member; the whole member
// is one scope.
func (c *Compilation) indexMemberBody(node *csharp.Node, file *fileIndex, owner *typeDecl) {
	memberScope := &scope{file: file, owner: owner, variables: map[string]variable{}}
	node.Walk(func(n *csharp.Node) bool {
		switch n.Kind() {
		case "parameter":
			if name := n.ChildByField("name"); name != nil {
				memberScope.variables[name.CompactText()] = variable{typeName: typeText(n.ChildByField("type"))}
			} else if id := n.LastChildOfKind("identifier"); id != nil {
				memberScope.variables[id.CompactText()] = variable{typeName: typeText(n.ChildByField("type"))}
			}
		case "variable_declaration":
			declType := variableDeclarationType(n)
			for _, declarator := range n.ChildrenOfKind("variable_declarator") {
				memberScope.variables[declaratorName(declarator)] = variable{
					typeName:    typeText(declType),
					initializer: declaratorValue(declarator),
				}
			}
		case "foreach_statement":
			if left := n.ChildByField("left"); left != nil && left.Kind() == "identifier" {
				memberScope.variables[left.CompactText()] = variable{typeName: typeText(n.ChildByField("type"))}
			}
		case "declaration_expression":
			if name := n.ChildByField("name"); name != nil {
				memberScope.variables[name.CompactText()] = variable{typeName: typeText(n.ChildByField("type"))}
			}
		}
		return true
	})
	c.assignScope(node, memberScope)
}

func (c *Compilation) assignScope(node *csharp.Node, s *scope) {
	for _, token := range node.Tokens() {
		c.scopes[token] = s
	}
}

// scopeOf finds the scope of the first original token of node
func (c *Compilation) scopeOf(node *csharp.Node) *scope {
	for _, token := range node.Tokens() {
		if s, ok := c.scopes[token]; ok {
			return s
		}
	}
	return nil
}

func variableDeclarationType(declaration *csharp.Node) *csharp.Node {
	if t := declaration.ChildByField("type"); t != nil {
		return t
	}
	return declaration.Child(0)
}

func declaratorName(declarator *csharp.Node) string {
	if name := declarator.ChildByField("name"); name != nil {
		return name.CompactText()
	}
	if id := declarator.FirstChildOfKind("identifier"); id != nil {
		return id.CompactText()
	}
	return ""
}

func declaratorValue(declarator *csharp.Node) *csharp.Node {
	if clause := declarator.FirstChildOfKind("equals_value_clause"); clause != nil {
		named := clause.NamedChildren()
		if len(named) > 0 {
			return named[len(named)-1]
		}
	}
	for i, child := range declarator.Children() {
		if child.IsToken() && child.TokenText() == "=" {
			return declarator.Child(i + 1)
		}
	}
	return nil
}

func typeText(node *csharp.Node) string {
	if node == nil {
		return ""
	}
	return node.CompactText()
}

func joinName(prefix string, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// ImportsNUnit reports whether path has a using directive for NUnit.Framework
func (c *Compilation) ImportsNUnit(path string) bool {
	for _, file := range c.files {
		if file.path == path {
			return file.importsNUnit
		}
	}
	return false
}

func (c *Compilation) FindDeclaration(match func(Declaration) bool) (Declaration, bool) {
	for _, decl := range c.declarations {
		if match(decl) {
			return decl, true
		}
	}
	return Declaration{}, false
}

// lookupType resolves a type name as written in source to a user declaration
func (c *Compilation) lookupType(name string, s *scope) *typeDecl {
	name = strings.TrimPrefix(name, "global::")
	simple := name
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		simple = name[idx+1:]
	}
	if idx := strings.Index(simple, "<"); idx >= 0 {
		simple = simple[:idx]
	}
	candidates := c.types[simple]
	if len(candidates) == 0 {
		return nil
	}
	for _, candidate := range candidates {
		if candidate.fullName == name {
			return candidate
		}
	}
	if s != nil {
		for _, candidate := range candidates {
			if candidate.file == s.file {
				return candidate
			}
		}
	}
	return candidates[0]
}

func (c *Compilation) SymbolOf(node *csharp.Node) (Symbol, bool) {
	if node == nil {
		return Symbol{}, false
	}
	s := c.scopeOf(node)
	switch node.Kind() {
	case "invocation_expression":
		callee := csharp.InvocationFunction(node)
		if callee == nil {
			return Symbol{}, false
		}
		sym, ok := c.memberSymbol(callee, s)
		if ok {
			sym.Kind = SymbolMethod
		}
		return sym, ok
	case "member_access_expression":
		return c.memberSymbol(node, s)
	case "attribute":
		return c.attributeSymbol(node, s)
	case "using_directive":
		names := []*csharp.Node{}
		for _, child := range node.Children() {
			if child.Kind() == "identifier" || child.Kind() == "qualified_name" {
				names = append(names, child)
			}
		}
		if len(names) == 0 {
			return Symbol{}, false
		}
		ns := names[len(names)-1].CompactText()
		return Symbol{Name: ns, DeclaringType: ns, Kind: SymbolNamespace}, true
	case "qualified_name":
		ns := node.CompactText()
		return Symbol{Name: ns, DeclaringType: ns, Kind: SymbolNamespace}, true
	case "identifier":
		return c.identifierSymbol(node, s)
	}
	return Symbol{}, false
}

func (c *Compilation) identifierSymbol(node *csharp.Node, s *scope) (Symbol, bool) {
	name := node.CompactText()
	if s == nil {
		return Symbol{}, false
	}
	if _, ok := s.variables[name]; ok {
		return Symbol{Name: name, Kind: SymbolLocal}, true
	}
	if s.owner != nil {
		if members := s.owner.members[name]; len(members) > 0 {
			return Symbol{Name: name, DeclaringType: s.owner.fullName, IsStatic: members[0].isStatic, Kind: memberKind(members[0].kind)}, true
		}
	}
	if decl := c.lookupType(name, s); decl != nil {
		return Symbol{Name: name, DeclaringType: decl.fullName, IsStatic: true, Kind: SymbolType}, true
	}
	if full, ok := c.nunitType(name, s); ok {
		return Symbol{Name: name, DeclaringType: full, IsStatic: true, Kind: SymbolType}, true
	}
	return Symbol{}, false
}

func memberKind(kind DeclarationKind) SymbolKind {
	switch kind {
	case DeclarationMethod:
		return SymbolMethod
	case DeclarationProperty:
		return SymbolProperty
	}
	return SymbolField
}

// memberSymbol resolves the member referenced by a callee or member access
func (c *Compilation) memberSymbol(callee *csharp.Node, s *scope) (Symbol, bool) {
	switch callee.Kind() {
	case "identifier", "generic_name":
		name := csharp.SimpleName(callee)
		if s != nil && s.owner != nil {
			if members := s.owner.members[name]; len(members) > 0 {
				return Symbol{Name: name, DeclaringType: s.owner.fullName, IsStatic: members[0].isStatic, Kind: memberKind(members[0].kind)}, true
			}
		}
		return Symbol{}, false
	case "member_access_expression":
	default:
		return Symbol{}, false
	}

	receiver := csharp.MemberAccessExpression(callee)
	name := csharp.SimpleName(csharp.MemberAccessName(callee))

	// variables shadow type names
	if receiver.Kind() == "identifier" && s != nil {
		if v, ok := s.variables[receiver.CompactText()]; ok {
			return c.instanceMember(v.typeName, name, s)
		}
	}

	segments, simple := chainSegments(receiver)
	if simple {
		dotted := strings.Join(segments, ".")
		if decl := c.lookupType(dotted, s); decl != nil && !isNUnitQualified(dotted) {
			return c.typeMember(decl, name)
		}
		if len(segments) == 1 {
			if full, ok := c.nunitType(segments[0], s); ok {
				return Symbol{Name: name, DeclaringType: full, IsStatic: true, Kind: SymbolProperty}, true
			}
		}
		if isNUnitQualified(dotted) {
			rest := strings.TrimPrefix(dotted, nunitNamespace+".")
			if full, ok := nunitTypes[rest]; ok {
				return Symbol{Name: name, DeclaringType: full, IsStatic: true, Kind: SymbolProperty}, true
			}
			return Symbol{Name: name, DeclaringType: dotted, IsStatic: true, Kind: SymbolProperty}, true
		}
	}

	root := leftmostIdentifier(receiver)
	if root != nil && constraintEntryPoints[root.CompactText()] && c.lookupType(root.CompactText(), s) == nil {
		if _, isVariable := lookupVariable(s, root.CompactText()); !isVariable {
			if _, ok := c.nunitType(root.CompactText(), s); ok {
				return Symbol{Name: name, DeclaringType: ConstraintExpression, Kind: SymbolProperty}, true
			}
		}
	}

	receiverType := c.StaticTypeOf(receiver)
	if receiverType.IsKnown() {
		return c.instanceMember(receiverType.FullName, name, s)
	}
	return Symbol{}, false
}

func lookupVariable(s *scope, name string) (variable, bool) {
	if s == nil {
		return variable{}, false
	}
	v, ok := s.variables[name]
	return v, ok
}

func (c *Compilation) instanceMember(typeName string, name string, s *scope) (Symbol, bool) {
	if decl := c.lookupType(typeName, s); decl != nil {
		return c.typeMember(decl, name)
	}
	if typeName == "" || typeName == "var" {
		return Symbol{}, false
	}
	full := typeName
	if info, ok := specialTypes[typeName]; ok {
		full = info.FullName
	} else if known, ok := wellKnownTypes[typeName]; ok {
		full = known
	}
	return Symbol{Name: name, DeclaringType: full, Kind: SymbolMethod}, true
}

func (c *Compilation) typeMember(decl *typeDecl, name string) (Symbol, bool) {
	sym := Symbol{Name: name, DeclaringType: decl.fullName, Kind: SymbolMethod}
	if members := decl.members[name]; len(members) > 0 {
		sym.IsStatic = members[0].isStatic
		sym.Kind = memberKind(members[0].kind)
	}
	return sym, true
}

func (c *Compilation) nunitType(name string, s *scope) (string, bool) {
	full, ok := nunitTypes[name]
	if !ok {
		return "", false
	}
	if c.lookupType(name, s) != nil {
		return "", false
	}
	if s == nil || !s.file.importsNUnit {
		return "", false
	}
	return full, true
}

func (c *Compilation) attributeSymbol(attr *csharp.Node, s *scope) (Symbol, bool) {
	nameNode := csharp.AttributeName(attr)
	if nameNode == nil {
		return Symbol{}, false
	}
	written := nameNode.CompactText()
	name, qualified := NormalizeAttributeName(written)
	if !qualified {
		if decl := c.lookupType(written, s); decl != nil {
			return Symbol{Name: decl.name, DeclaringType: decl.fullName, Kind: SymbolAttribute}, true
		}
		if decl := c.lookupType(name+"Attribute", s); decl != nil {
			return Symbol{Name: decl.name, DeclaringType: decl.fullName, Kind: SymbolAttribute}, true
		}
	}
	if !nunitAttributes[name] {
		if qualified {
			return Symbol{Name: name + "Attribute", DeclaringType: nunitNamespace + "." + name + "Attribute", Kind: SymbolAttribute}, true
		}
		return Symbol{}, false
	}
	if !qualified && (s == nil || !s.file.importsNUnit) {
		return Symbol{}, false
	}
	return Symbol{Name: name + "Attribute", DeclaringType: nunitNamespace + "." + name + "Attribute", Kind: SymbolAttribute}, true
}

func isNUnitQualified(name string) bool {
	return strings.HasPrefix(name, nunitNamespace+".")
}

// chainSegments flattens a dotted name made only of identifiers
func chainSegments(node *csharp.Node) ([]string, bool) {
	switch node.Kind() {
	case "identifier":
		return []string{node.CompactText()}, true
	case "qualified_name", "member_access_expression":
		var left *csharp.Node
		if node.Kind() == "member_access_expression" {
			left = csharp.MemberAccessExpression(node)
		} else {
			left = node.ChildByField("qualifier")
			if left == nil {
				left = node.Child(0)
			}
		}
		var right *csharp.Node
		if node.Kind() == "member_access_expression" {
			right = csharp.MemberAccessName(node)
		} else {
			right = node.ChildByField("name")
			if right == nil {
				right = node.Child(node.ChildCount() - 1)
			}
		}
		if right.Kind() != "identifier" {
			return nil, false
		}
		segments, ok := chainSegments(left)
		if !ok {
			return nil, false
		}
		return append(segments, right.CompactText()), true
	}
	return nil, false
}

func leftmostIdentifier(node *csharp.Node) *csharp.Node {
	current := node
	for current != nil {
		switch current.Kind() {
		case "identifier":
			return current
		case "generic_name":
			return current.FirstChildOfKind("identifier")
		case "member_access_expression":
			current = csharp.MemberAccessExpression(current)
		case "invocation_expression":
			current = csharp.InvocationFunction(current)
		case "qualified_name":
			current = current.Child(0)
		default:
			return nil
		}
	}
	return nil
}
