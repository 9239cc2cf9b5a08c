package nunit

import (
	"strings"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
	"github.com/heshanpadmasiri/nunitMSTest/mstest"
)

const (
	unsupportedUsing        = "Unsupported using directive"
	unsupportedCultureScope = "Culture attributes need a method with a block body"
)

// usings that have no counterpart and are dropped
var droppedUsings = map[string]bool{
	"NUnit.Framework.Legacy":      true,
	"NUnit.Framework.Constraints": true,
}

// migrateNode rewrites node and its subtree. Declarations open scopes whose
// effects are applied once their children are done; everything else is rebuilt
// from its migrated children.
func migrateNode(ctx *MigrationContext, node *csharp.Node) *csharp.Node {
	if node.IsToken() {
		return node
	}
	switch node.Kind() {
	case "class_declaration", "struct_declaration", "record_declaration", "record_struct_declaration":
		return migrateClass(ctx, node)
	case "method_declaration":
		return migrateMethod(ctx, node)
	case "invocation_expression":
		return migrateInvocationExpression(ctx, node)
	case "global_attribute":
		return migrateAttributeList(ctx, node, ownerAssembly)
	case "ERROR":
		// text the parser could not make sense of is copied through
		return node
	case "compilation_unit":
		root := migrateChildren(ctx, node)
		return stripAttributes(root, ctx.assemblyRemoved)
	}
	return migrateChildren(ctx, node)
}

// migrateChildren rebuilds node from its migrated children. Using directives
// that must go are removed together with their line.
func migrateChildren(ctx *MigrationContext, node *csharp.Node) *csharp.Node {
	children := make([]*csharp.Node, 0, node.ChildCount())
	removed := map[*csharp.Node]bool{}
	changed := false
	for _, child := range node.Children() {
		var migrated *csharp.Node
		switch child.Kind() {
		case "using_directive":
			var keep bool
			migrated, keep = migrateUsing(ctx, child)
			if !keep {
				removed[migrated] = true
			}
		case "attribute_list":
			migrated = migrateAttributeList(ctx, child, ownerOf(node, child))
		default:
			migrated = migrateNode(ctx, child)
		}
		changed = changed || migrated != child
		children = append(children, migrated)
	}
	if !changed {
		return node
	}
	result := node.WithChildren(children)
	if len(removed) == 0 {
		return result
	}
	for i := len(children) - 1; i >= 0; i-- {
		if removed[children[i]] {
			result = csharp.RemoveLine(result, children[i])
		}
	}
	return result
}

// ownerOf classifies an attribute list by the declaration it is attached to
func ownerOf(parent *csharp.Node, list *csharp.Node) attributeOwner {
	if target := list.FirstChildOfKind("attribute_target_specifier"); target != nil {
		switch strings.TrimSuffix(target.CompactText(), ":") {
		case "assembly", "module":
			return ownerAssembly
		}
		return ownerOther
	}
	switch parent.Kind() {
	case "class_declaration", "struct_declaration", "record_declaration", "record_struct_declaration":
		return ownerClass
	case "method_declaration":
		return ownerMethod
	}
	return ownerOther
}

func migrateAttributeList(ctx *MigrationContext, list *csharp.Node, owner attributeOwner) *csharp.Node {
	children := make([]*csharp.Node, 0, list.ChildCount())
	changed := false
	for _, child := range list.Children() {
		migrated := child
		if child.Kind() == "attribute" {
			migrated = migrateAttribute(ctx, child, owner)
		}
		changed = changed || migrated != child
		children = append(children, migrated)
	}
	if !changed {
		return list
	}
	return list.WithChildren(children)
}

// migrateUsing renames the NUnit import and reports the ones it cannot handle.
// The returned flag is false when the directive must be removed.
func migrateUsing(ctx *MigrationContext, using *csharp.Node) (*csharp.Node, bool) {
	target := usingTarget(using)
	if target == nil {
		return using, true
	}
	name := strings.TrimPrefix(target.CompactText(), "global::")
	if name != nunitNamespace && !strings.HasPrefix(name, nunitNamespace+".") {
		return using, true
	}
	if using.HasToken("static") || using.HasToken("=") || using.FirstChildOfKind("name_equals") != nil {
		ctx.Unsupported(using, unsupportedUsing)
		return using, true
	}
	switch {
	case name == nunitNamespace && !ctx.hasMSTestUsing:
		ctx.hasMSTestUsing = true
		ctx.Changes++
		return using.ReplaceChild(target, mstest.UsingName().WithLeading(target.Leading())), true
	case name == nunitNamespace, droppedUsings[name]:
		ctx.Changes++
		return using, false
	}
	ctx.Unsupported(using, unsupportedUsing)
	return using, true
}

// usingTarget returns the imported name of a using directive
func usingTarget(using *csharp.Node) *csharp.Node {
	var target *csharp.Node
	for _, child := range using.Children() {
		switch child.Kind() {
		case "identifier", "qualified_name", "alias_qualified_name":
			target = child
		}
	}
	return target
}

// importsNamespace reports whether root has a using directive for namespace
func importsNamespace(root *csharp.Node, namespace string) bool {
	found := false
	root.Walk(func(node *csharp.Node) bool {
		if found {
			return false
		}
		switch node.Kind() {
		case "using_directive":
			if target := usingTarget(node); target != nil && !node.HasToken("static") && target.CompactText() == namespace {
				found = true
			}
			return false
		case "compilation_unit", "namespace_declaration", "file_scoped_namespace_declaration", "declaration_list":
			return true
		}
		return false
	})
	return found
}

func migrateClass(ctx *MigrationContext, decl *csharp.Node) *csharp.Node {
	saved := ctx.Class
	ctx.Class = NewClassScopeState(decl)
	defer func() { ctx.Class = saved }()

	children := make([]*csharp.Node, 0, decl.ChildCount())
	for _, child := range decl.Children() {
		if child.Kind() == "attribute_list" {
			children = append(children, migrateAttributeList(ctx, child, ownerClass))
			continue
		}
		children = append(children, migrateNode(ctx, child))
	}
	result := decl.WithChildren(children)

	if ctx.Class.needsTestClassMarker() {
		result = csharp.InsertLineBefore(result, 0, mstest.AttributeList(mstest.Attribute("TestClass")), ctx.Newline)
		ctx.Changes++
	}
	return stripAttributes(result, ctx.Class.removedAttributes)
}

func migrateMethod(ctx *MigrationContext, method *csharp.Node) *csharp.Node {
	saved := ctx.Method
	ctx.Method = NewMethodScopeState(method)
	defer func() { ctx.Method = saved }()
	unsupportedBefore := ctx.Diagnostics.Len()

	children := make([]*csharp.Node, 0, method.ChildCount())
	for _, child := range method.Children() {
		switch child.Kind() {
		case "attribute_list":
			children = append(children, migrateAttributeList(ctx, child, ownerMethod))
		case "parameter_list":
			children = append(children, migrateParameterList(ctx, child))
		default:
			children = append(children, migrateNode(ctx, child))
		}
	}
	result := method.WithChildren(children)
	return flushMethod(ctx, result, ctx.Diagnostics.Len() > unsupportedBefore)
}

func migrateParameterList(ctx *MigrationContext, list *csharp.Node) *csharp.Node {
	children := make([]*csharp.Node, 0, list.ChildCount())
	for _, child := range list.Children() {
		if child.Kind() != "parameter" {
			children = append(children, migrateNode(ctx, child))
			continue
		}
		children = append(children, migrateParameter(ctx, child))
	}
	return list.WithChildren(children)
}

func migrateParameter(ctx *MigrationContext, parameter *csharp.Node) *csharp.Node {
	saved := ctx.parameter
	ctx.parameter = parameter
	defer func() { ctx.parameter = saved }()

	children := make([]*csharp.Node, 0, parameter.ChildCount())
	for _, child := range parameter.Children() {
		if child.Kind() == "attribute_list" {
			children = append(children, migrateAttributeList(ctx, child, ownerParameter))
			continue
		}
		children = append(children, migrateNode(ctx, child))
	}
	return parameter.WithChildren(children)
}

// flushMethod applies what the attributes and the body of a method asked for
func flushMethod(ctx *MigrationContext, method *csharp.Node, hadUnsupported bool) *csharp.Node {
	state := ctx.Method
	for _, attr := range state.addedAttributes {
		method = appendAttributeLine(method, mstest.AttributeList(attr), ctx.Newline)
	}
	method = stripAttributes(method, state.removedAttributes)
	if params := method.FirstChildOfKind("parameter_list"); params != nil {
		method = method.ReplaceChild(params, stripParameterAttributes(params, state.removedAttributes))
	}
	if state.author.isEmailNeeded {
		comment := "//" + state.author.email.CompactText()
		method = method.WithLeading(csharp.PrependCommentLine(method.Leading(), comment, ctx.Newline))
	}
	if state.culture.anyNeeded() {
		method = injectCulture(ctx, method)
	}
	if state.needsStaticModifier && !csharp.HasModifier(method, "static") {
		method = addStaticModifier(method)
		ctx.Changes++
	}
	if state.valuesRange.isPropertyNeeded {
		for _, row := range expandParameterization(state.valuesRange.attributes) {
			method = appendAttributeLine(method, mstest.AttributeList(row), ctx.Newline)
		}
	}
	if state.needsTestContext {
		method = addTestContextParameter(method)
	}
	if state.needsTestMethod && !state.hasTestMethod {
		method = csharp.InsertLineBefore(method, 0, mstest.AttributeList(mstest.Attribute("TestMethod")), ctx.Newline)
		ctx.Changes++
	}
	if ctx.Options.CommentUnsupported && hadUnsupported {
		method = commentOutAttributes(method)
	}
	return method
}

// appendAttributeLine adds list on its own line after the last attribute list,
// or in front of the declaration when it has none
func appendAttributeLine(decl *csharp.Node, list *csharp.Node, newline string) *csharp.Node {
	last := decl.LastChildOfKind("attribute_list")
	if last == nil {
		return csharp.InsertLineBefore(decl, 0, list, newline)
	}
	return csharp.InsertLineAfter(decl, decl.IndexOf(last), list, newline)
}

// stripAttributes removes the queued attributes from the attribute lists of
// decl. Lists left empty are removed with their line.
func stripAttributes(decl *csharp.Node, removed map[*csharp.Node]bool) *csharp.Node {
	if len(removed) == 0 {
		return decl
	}
	children := decl.Children()
	for i := len(children) - 1; i >= 0; i-- {
		list := children[i]
		if list.Kind() != "attribute_list" && list.Kind() != "global_attribute" {
			continue
		}
		stripped := removeAttributes(list, removed)
		switch {
		case stripped == list:
		case len(stripped.ChildrenOfKind("attribute")) == 0:
			decl = csharp.RemoveLine(decl, list)
		default:
			decl = decl.ReplaceChild(list, stripped)
		}
	}
	return decl
}

func stripParameterAttributes(params *csharp.Node, removed map[*csharp.Node]bool) *csharp.Node {
	for _, parameter := range params.ChildrenOfKind("parameter") {
		if stripped := stripAttributes(parameter, removed); stripped != parameter {
			params = params.ReplaceChild(parameter, stripped)
		}
	}
	return params
}

// removeAttributes drops queued attributes from one list, last first, so the
// separators shifted by one removal never belong to an attribute still queued
func removeAttributes(list *csharp.Node, removed map[*csharp.Node]bool) *csharp.Node {
	children := list.Children()
	for i := len(children) - 1; i >= 0; i-- {
		if removed[children[i]] {
			list = csharp.RemoveListItem(list, children[i])
		}
	}
	return list
}

// injectCulture assigns the thread culture at the start of the method body
func injectCulture(ctx *MigrationContext, method *csharp.Node) *csharp.Node {
	body := method.FirstChildOfKind("block")
	if body == nil {
		ctx.Unsupported(ctx.Method.currentMethod, unsupportedCultureScope)
		return method
	}
	culture := ctx.Method.culture
	index := 1
	for _, expression := range []struct {
		property string
		cultureExpression
	}{
		{"CurrentCulture", culture.culture},
		{"CurrentUICulture", culture.uiCulture},
	} {
		if !expression.needed {
			continue
		}
		target := mstest.DottedExpression("System.Threading.Thread.CurrentThread." + expression.property)
		value := mstest.StaticCall("System.Globalization.CultureInfo", "CreateSpecificCulture", expression.arguments...)
		body = insertStatement(body, index, mstest.AssignmentStatement(target, value), ctx.Newline)
		index++
		ctx.Changes++
	}
	return method.ReplaceChild(method.FirstChildOfKind("block"), body)
}

// insertStatement puts stmt at index of block. An empty block gets the
// statement indented one level deeper than its closing brace.
func insertStatement(block *csharp.Node, index int, stmt *csharp.Node, newline string) *csharp.Node {
	occupant := block.Child(index)
	if occupant == nil || occupant.Kind() != "}" {
		return csharp.InsertLineBefore(block, index, stmt, newline)
	}
	indent := csharp.Indentation(occupant.Leading())
	unit := "    "
	if strings.Contains(indent, "\t") {
		unit = "\t"
	}
	block = block.ReplaceChild(occupant, occupant.WithLeading(newline+indent))
	return block.InsertChild(index, stmt.WithLeading(newline+indent+unit))
}

// addStaticModifier appends static to the modifiers, or puts it in front of
// the return type when there are none
func addStaticModifier(method *csharp.Node) *csharp.Node {
	static := mstest.Modifier("static")
	if last := method.LastChildOfKind("modifier"); last != nil {
		return method.InsertChild(method.IndexOf(last)+1, static.WithLeading(" "))
	}
	for i, child := range method.Children() {
		if child.Kind() == "attribute_list" {
			continue
		}
		method = method.ReplaceChild(child, child.WithLeading(" "))
		return method.InsertChild(i, static.WithLeading(child.Leading()))
	}
	return method
}

// addTestContextParameter gives a parameterless class initializer the
// TestContext parameter MSTest passes to it
func addTestContextParameter(method *csharp.Node) *csharp.Node {
	params := method.FirstChildOfKind("parameter_list")
	if params == nil || len(params.ChildrenOfKind("parameter")) > 0 {
		return method
	}
	return method.ReplaceChild(params, params.InsertChild(1, mstest.Parameter("TestContext", "context")))
}

// commentOutAttributes wraps the attribute lists in a block comment so the
// test framework no longer discovers the method
func commentOutAttributes(method *csharp.Node) *csharp.Node {
	first := method.FirstChildOfKind("attribute_list")
	last := method.LastChildOfKind("attribute_list")
	if first == nil {
		return method
	}
	after := method.Child(method.IndexOf(last) + 1)
	if after == nil {
		return method
	}
	method = method.ReplaceChild(after, after.WithLeading("*/"+after.Leading()))
	first = method.FirstChildOfKind("attribute_list")
	return method.ReplaceChild(first, first.WithLeading(first.Leading()+"/*"))
}

// migrateInvocationExpression resolves the call on the original tree, migrates
// the arguments and then translates the call itself
func migrateInvocationExpression(ctx *MigrationContext, call *csharp.Node) *csharp.Node {
	symbol, resolved := ctx.Resolver.SymbolOf(call)
	family := familyNone
	if resolved {
		family = familyOf(symbol)
	}
	if family == familyNone {
		return migrateChildren(ctx, call)
	}
	ctx.assertionDepth++
	migrated := migrateChildren(ctx, call)
	ctx.assertionDepth--
	return migrateInvocation(ctx, call, migrated, symbol)
}
