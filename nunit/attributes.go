package nunit

import (
	"strings"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
	"github.com/heshanpadmasiri/nunitMSTest/mstest"
	"github.com/heshanpadmasiri/nunitMSTest/semantic"
)

const nunitNamespace = "NUnit.Framework"

const attributeNotSupported = "Attribute is not supported"

// attributeOwner is the declaration an attribute list is attached to
type attributeOwner int

const (
	ownerAssembly attributeOwner = iota
	ownerClass
	ownerMethod
	ownerParameter
	ownerOther
)

type attributeKind int

const (
	attributeUnknown attributeKind = iota
	attributeTestFixture
	attributeTest
	attributeSetUp
	attributeTearDown
	attributeOneTimeSetUp
	attributeOneTimeTearDown
	attributeCategory
	attributeNonParallelizable
	attributeExplicit
	attributeMaxTime
	attributeTimeout
	attributeProperty
	attributeDescription
	attributeIgnore
	attributeTestOf
	attributeAuthor
	attributeSetCulture
	attributeSetUICulture
	attributeLevelOfParallelism
	attributeValues
	attributeRange
	attributeTestCase
	attributeTestCaseSource
	attributeDropped
	attributeUnsupported
)

var attributeKinds = map[string]attributeKind{
	"TestFixture":         attributeTestFixture,
	"Test":                attributeTest,
	"SetUp":               attributeSetUp,
	"TearDown":            attributeTearDown,
	"OneTimeSetUp":        attributeOneTimeSetUp,
	"TestFixtureSetUp":    attributeOneTimeSetUp,
	"OneTimeTearDown":     attributeOneTimeTearDown,
	"TestFixtureTearDown": attributeOneTimeTearDown,
	"Category":            attributeCategory,
	"NonParallelizable":   attributeNonParallelizable,
	"Explicit":            attributeExplicit,
	"MaxTime":             attributeMaxTime,
	"Timeout":             attributeTimeout,
	"Property":            attributeProperty,
	"Description":         attributeDescription,
	"Ignore":              attributeIgnore,
	"TestOf":              attributeTestOf,
	"Author":              attributeAuthor,
	"SetCulture":          attributeSetCulture,
	"SetUICulture":        attributeSetUICulture,
	"LevelOfParallelism":  attributeLevelOfParallelism,
	"Values":              attributeValues,
	"Range":               attributeRange,
	"TestCase":            attributeTestCase,
	"TestCaseSource":      attributeTestCaseSource,

	"Apartment":       attributeDropped,
	"Repeat":          attributeDropped,
	"Retry":           attributeDropped,
	"NonTestAssembly": attributeDropped,
	"Combinatorial":   attributeDropped,
	"Pairwise":        attributeDropped,
	"Parallelizable":  attributeDropped,
	"Sequential":      attributeDropped,

	"DefaultFloatingPointTolerance": attributeUnsupported,
	"Culture":                       attributeUnsupported,
	"Datapoint":                     attributeUnsupported,
	"DatapointSource":               attributeUnsupported,
	"Order":                         attributeUnsupported,
	"Platform":                      attributeUnsupported,
	"RequiresThread":                attributeUnsupported,
	"SingleThreaded":                attributeUnsupported,
	"Theory":                        attributeUnsupported,
	"Random":                        attributeUnsupported,
	"SetUpFixture":                  attributeUnsupported,
	"TestFixtureSource":             attributeUnsupported,
	"ValueSource":                   attributeUnsupported,
	"FixtureLifeCycle":              attributeUnsupported,
	"CancelAfter":                   attributeUnsupported,
}

// renamedAttributes are translated by swapping the name only
var renamedAttributes = map[attributeKind]string{
	attributeSetUp:             "TestInitialize",
	attributeTearDown:          "TestCleanup",
	attributeCategory:          "TestCategory",
	attributeNonParallelizable: "DoNotParallelize",
	attributeExplicit:          "Ignore",
	attributeMaxTime:           "Timeout",
	attributeTimeout:           "Timeout",
	attributeProperty:          "TestProperty",
	attributeDescription:       "Description",
	attributeIgnore:            "Ignore",
}

// migrateAttribute translates one attribute attached to owner. The returned
// node stays in the attribute list; attributes that must disappear are queued
// on the owning scope and removed when the scope is flushed.
func migrateAttribute(ctx *MigrationContext, attr *csharp.Node, owner attributeOwner) *csharp.Node {
	symbol, ok := ctx.Resolver.SymbolOf(attr)
	if !ok || !symbol.InNamespace(nunitNamespace) {
		noteForeignAttribute(ctx, attr, owner)
		return attr
	}
	name, _ := semantic.NormalizeAttributeName(symbol.Name)
	kind := attributeKinds[name]
	args := csharp.AttributeArguments(attr)

	switch kind {
	case attributeTestFixture:
		if owner != ownerClass || ctx.Class == nil {
			ctx.Unsupported(attr, attributeNotSupported)
			return attr
		}
		ctx.Class.hasTestClass = true
		if len(args) > 0 {
			ctx.Unsupported(attr, attributeNotSupported)
			return attr
		}
		return renameAttribute(ctx, attr, "TestClass")

	case attributeTest:
		if !onMethod(ctx, attr, owner) {
			return attr
		}
		markTest(ctx)
		ctx.Method.hasTestMethod = true
		if len(args) == 0 {
			return renameAttribute(ctx, attr, "TestMethod")
		}
		if len(positionalArguments(args)) > 0 {
			ctx.Unsupported(attr, attributeNotSupported)
			return attr
		}
		addCompanions(ctx, attr, args)
		return renameAttribute(ctx, withoutArguments(attr), "TestMethod")

	case attributeSetUp, attributeTearDown:
		if !onMethod(ctx, attr, owner) {
			return attr
		}
		return renameAttribute(ctx, attr, renamedAttributes[kind])

	case attributeOneTimeSetUp, attributeOneTimeTearDown:
		if !onMethod(ctx, attr, owner) {
			return attr
		}
		ctx.Method.needsStaticModifier = true
		if kind == attributeOneTimeSetUp {
			ctx.Method.needsTestContext = true
			return renameAttribute(ctx, attr, "ClassInitialize")
		}
		return renameAttribute(ctx, attr, "ClassCleanup")

	case attributeCategory, attributeIgnore, attributeExplicit:
		if owner != ownerClass && owner != ownerMethod {
			ctx.Unsupported(attr, attributeNotSupported)
			return attr
		}
		if kind == attributeCategory && len(args) == 0 {
			ctx.Unsupported(attr, attributeNotSupported)
			return attr
		}
		return renameAttribute(ctx, withoutNamedArguments(attr), renamedAttributes[kind])

	case attributeNonParallelizable:
		if owner == ownerParameter || owner == ownerOther {
			ctx.Unsupported(attr, attributeNotSupported)
			return attr
		}
		return renameAttribute(ctx, attr, renamedAttributes[kind])

	case attributeMaxTime, attributeTimeout:
		if !onMethod(ctx, attr, owner) {
			return attr
		}
		return renameAttribute(ctx, attr, renamedAttributes[kind])

	case attributeProperty, attributeDescription, attributeAuthor, attributeTestOf:
		if owner == ownerClass || owner == ownerAssembly {
			dropAttribute(ctx, attr, owner)
			return attr
		}
		if !onMethod(ctx, attr, owner) {
			return attr
		}
		return migrateMetadataAttribute(ctx, attr, kind, args)

	case attributeSetCulture, attributeSetUICulture:
		if !onMethod(ctx, attr, owner) {
			return attr
		}
		if len(args) != 1 {
			ctx.Unsupported(attr, attributeNotSupported)
			return attr
		}
		expression := cultureExpression{arguments: []*csharp.Node{csharp.ArgumentExpression(args[0])}, needed: true}
		if kind == attributeSetCulture {
			ctx.Method.culture.culture = expression
		} else {
			ctx.Method.culture.uiCulture = expression
		}
		dropAttribute(ctx, attr, owner)
		return attr

	case attributeLevelOfParallelism:
		if owner != ownerAssembly || len(args) != 1 {
			ctx.Unsupported(attr, attributeNotSupported)
			return attr
		}
		workers := csharp.ArgumentExpression(args[0])
		ctx.Changes++
		return mstest.Attribute("Parallelize",
			mstest.NamedAttributeArgument("Workers", workers),
			mstest.NamedAttributeArgument("Scope", mstest.DottedExpression("ExecutionScope.MethodLevel")),
		).WithLeading(attr.Leading())

	case attributeValues, attributeRange:
		if owner != ownerParameter || ctx.Method == nil {
			ctx.Unsupported(attr, attributeNotSupported)
			return attr
		}
		markTest(ctx)
		ctx.Method.needsTestMethod = true
		collectValueSource(ctx, attr, kind, args)
		return attr

	case attributeTestCase:
		if !onMethod(ctx, attr, owner) {
			return attr
		}
		markTest(ctx)
		ctx.Method.needsTestMethod = true
		return migrateTestCase(ctx, attr, args)

	case attributeTestCaseSource:
		if !onMethod(ctx, attr, owner) {
			return attr
		}
		markTest(ctx)
		ctx.Method.needsTestMethod = true
		return migrateTestCaseSource(ctx, attr, args)

	case attributeDropped:
		dropAttribute(ctx, attr, owner)
		return attr
	}

	ctx.Unsupported(attr, attributeNotSupported)
	return attr
}

// noteForeignAttribute records MSTest markers that are already present, so
// they are not added twice in partially migrated files.
func noteForeignAttribute(ctx *MigrationContext, attr *csharp.Node, owner attributeOwner) {
	name, _ := semantic.NormalizeAttributeName(csharp.AttributeName(attr).CompactText())
	name = strings.TrimPrefix(name, mstest.Namespace+".")
	switch {
	case owner == ownerClass && ctx.Class != nil && name == "TestClass":
		ctx.Class.hasTestClass = true
	case owner == ownerMethod && ctx.Method != nil && (name == "TestMethod" || name == "DataTestMethod"):
		ctx.Method.hasTestMethod = true
	}
}

func onMethod(ctx *MigrationContext, attr *csharp.Node, owner attributeOwner) bool {
	if owner == ownerMethod && ctx.Method != nil {
		return true
	}
	ctx.Unsupported(attr, attributeNotSupported)
	return false
}

func markTest(ctx *MigrationContext) {
	if ctx.Class != nil {
		ctx.Class.containsTests = true
	}
}

func dropAttribute(ctx *MigrationContext, attr *csharp.Node, owner attributeOwner) {
	switch owner {
	case ownerAssembly:
		ctx.assemblyRemoved[attr] = true
	case ownerClass:
		ctx.Class.removeAttribute(attr)
	case ownerMethod, ownerParameter:
		ctx.Method.removeAttribute(attr)
	default:
		ctx.Unsupported(attr, attributeNotSupported)
		return
	}
	ctx.Changes++
}

// renameAttribute swaps the attribute name, which may have been written qualified
func renameAttribute(ctx *MigrationContext, attr *csharp.Node, newName string) *csharp.Node {
	name := csharp.AttributeName(attr)
	ctx.Changes++
	return attr.ReplaceChild(name, mstest.DottedType(newName).WithLeading(name.Leading()))
}

func withoutArguments(attr *csharp.Node) *csharp.Node {
	if list := csharp.AttributeArgumentList(attr); list != nil {
		return attr.RemoveChild(list)
	}
	return attr
}

// withoutNamedArguments keeps the positional arguments only. NUnit properties
// such as Ignore.Until have no MSTest counterpart.
func withoutNamedArguments(attr *csharp.Node) *csharp.Node {
	args := csharp.AttributeArguments(attr)
	positional := positionalArguments(args)
	if len(positional) == len(args) {
		return attr
	}
	return withAttributeArguments(attr, positional)
}

func withAttributeArguments(attr *csharp.Node, args []*csharp.Node) *csharp.Node {
	attr = withoutArguments(attr)
	if len(args) == 0 {
		return attr
	}
	return attr.InsertChild(attr.ChildCount(), mstest.AttributeArgumentList(args...))
}

func positionalArguments(args []*csharp.Node) []*csharp.Node {
	var positional []*csharp.Node
	for _, arg := range args {
		if csharp.ArgumentName(arg) == "" {
			positional = append(positional, arg)
		}
	}
	return positional
}

// migrateMetadataAttribute handles method level Property, Description, Author and TestOf
func migrateMetadataAttribute(ctx *MigrationContext, attr *csharp.Node, kind attributeKind, args []*csharp.Node) *csharp.Node {
	switch kind {
	case attributeProperty:
		if len(args) != 2 {
			ctx.Unsupported(attr, attributeNotSupported)
			return attr
		}
		value := csharp.ArgumentExpression(args[1])
		if !csharp.IsStringLiteral(value) {
			args = []*csharp.Node{args[0], mstest.AttributeArgument(mstest.StringLiteral(value.CompactText()))}
			attr = withAttributeArguments(attr, args)
		}
		return renameAttribute(ctx, attr, "TestProperty")
	case attributeDescription:
		return renameAttribute(ctx, attr, "Description")
	case attributeTestOf:
		if len(args) != 1 {
			ctx.Unsupported(attr, attributeNotSupported)
			return attr
		}
		value := quotedDescription(csharp.ArgumentExpression(args[0]))
		return renameAttribute(ctx, withAttributeArguments(attr, []*csharp.Node{value}), "Description")
	case attributeAuthor:
		if len(args) == 0 || len(args) > 2 {
			ctx.Unsupported(attr, attributeNotSupported)
			return attr
		}
		if len(args) == 2 {
			ctx.Method.author.set(csharp.ArgumentExpression(args[1]))
			attr = withAttributeArguments(attr, args[:1])
		}
		return renameAttribute(ctx, attr, "Owner")
	}
	csharp.Assert("unexpected metadata attribute kind", false)
	return attr
}

// quotedDescription turns a TestOf argument into a string: typeof(T) becomes
// "T", other expressions are quoted verbatim.
func quotedDescription(expr *csharp.Node) *csharp.Node {
	if csharp.IsStringLiteral(expr) {
		return mstest.AttributeArgument(expr)
	}
	text := expr.CompactText()
	if expr.Kind() == "typeof_expression" {
		if typeNode := expr.ChildByField("type"); typeNode != nil {
			text = typeNode.CompactText()
		} else if named := expr.NamedChildren(); len(named) > 0 {
			text = named[0].CompactText()
		}
	}
	return mstest.AttributeArgument(mstest.StringLiteral(text))
}

// companionAttribute maps a named TestCase or Test argument to an MSTest attribute.
// ok is false for names without a counterpart; drop reports names that are
// silently discarded.
func companionAttribute(name string, value *csharp.Node) (attr *csharp.Node, drop bool, ok bool) {
	switch name {
	case "TestName":
		return mstest.Attribute("TestProperty", mstest.StringLiteral("TestName"), value), false, true
	case "Author":
		return mstest.Attribute("Owner", value), false, true
	case "Category":
		return mstest.Attribute("TestCategory", value), false, true
	case "Description":
		return mstest.Attribute("Description", value), false, true
	case "Explicit":
		if value.Kind() == "boolean_literal" && value.CompactText() == "false" {
			return nil, true, true
		}
		return mstest.Attribute("Ignore"), false, true
	case "Ignore", "IgnoreReason", "Reason":
		if value.Kind() == "boolean_literal" {
			if value.CompactText() == "false" {
				return nil, true, true
			}
			return mstest.Attribute("Ignore"), false, true
		}
		return mstest.Attribute("Ignore", value), false, true
	case "TestOf", "TypeOf":
		return mstest.Attribute("Description", quotedDescription(value)), false, true
	case "ExpectedResult":
		return nil, true, true
	}
	return nil, false, false
}

func addCompanions(ctx *MigrationContext, attr *csharp.Node, args []*csharp.Node) {
	for _, arg := range args {
		name := csharp.ArgumentName(arg)
		if name == "" {
			continue
		}
		companion, drop, ok := companionAttribute(name, csharp.ArgumentExpression(arg))
		switch {
		case !ok:
			ctx.Unsupported(arg, "Unsupported argument "+name+" in attribute")
		case drop:
		default:
			ctx.Method.addAttribute(companion)
		}
	}
}

// migrateTestCase turns TestCase into DataRow; named arguments become companion attributes
func migrateTestCase(ctx *MigrationContext, attr *csharp.Node, args []*csharp.Node) *csharp.Node {
	positional := positionalArguments(args)
	if len(positional) != len(args) {
		addCompanions(ctx, attr, args)
		attr = withAttributeArguments(attr, positional)
	}
	return renameAttribute(ctx, attr, "DataRow")
}

const mustBeMethodOrProperty = "Must be a method or a property"

// migrateTestCaseSource turns TestCaseSource into DynamicData after resolving the source member
func migrateTestCaseSource(ctx *MigrationContext, attr *csharp.Node, args []*csharp.Node) *csharp.Node {
	if len(positionalArguments(args)) != len(args) || len(args) == 0 || len(args) > 2 {
		ctx.Unsupported(attr, "Syntax is not supported")
		return attr
	}
	var explicitType *csharp.Node
	nameArg := csharp.ArgumentExpression(args[0])
	if len(args) == 2 {
		typeOf := csharp.ArgumentExpression(args[0])
		if typeOf.Kind() != "typeof_expression" {
			ctx.Unsupported(attr, "Syntax is not supported")
			return attr
		}
		explicitType = typeOf.ChildByField("type")
		if explicitType == nil {
			explicitType = typeOf.FirstChildOfKind("identifier", "generic_name", "qualified_name", "predefined_type")
		}
		nameArg = csharp.ArgumentExpression(args[1])
	}
	sourceName, ok := sourceMemberName(nameArg)
	if !ok || explicitType == nil && len(args) == 2 {
		ctx.Unsupported(attr, "Syntax is not supported")
		return attr
	}

	containingType := ""
	if explicitType != nil {
		containingType = csharp.SimpleName(explicitType)
	} else if ctx.Class != nil {
		containingType = ctx.Class.name
	}
	if containingType == "" {
		ctx.Unsupported(attr, mustBeMethodOrProperty)
		return attr
	}
	declaration, found := findSource(ctx.Resolver, sourceName, containingType, semantic.DeclarationMethod)
	if !found {
		declaration, found = findSource(ctx.Resolver, sourceName, containingType, semantic.DeclarationProperty)
	}
	if !found {
		ctx.Unsupported(attr, mustBeMethodOrProperty)
		return attr
	}

	dynamicArgs := []*csharp.Node{mstest.StringLiteral(sourceName)}
	if explicitType != nil {
		dynamicArgs = append(dynamicArgs, mstest.TypeOf(explicitType))
	}
	if declaration.Kind == semantic.DeclarationProperty {
		dynamicArgs = append(dynamicArgs, mstest.DottedExpression("DynamicDataSourceType.Property"))
	}
	ctx.Changes++
	return mstest.Attribute("DynamicData", dynamicArgs...).WithLeading(attr.Leading())
}

// sourceMemberName accepts a string literal holding an identifier or nameof(Member)
func sourceMemberName(expr *csharp.Node) (string, bool) {
	if csharp.IsStringLiteral(expr) {
		value, ok := csharp.StringLiteralValue(expr)
		if !ok || !csharp.IsValidIdentifier(value) {
			return "", false
		}
		return value, true
	}
	if expr.Kind() != "invocation_expression" {
		return "", false
	}
	callee := csharp.InvocationFunction(expr)
	args := csharp.Arguments(expr)
	if callee.CompactText() != "nameof" || len(args) != 1 {
		return "", false
	}
	name := csharp.SimpleName(csharp.ArgumentExpression(args[0]))
	return name, csharp.IsValidIdentifier(name)
}

func findSource(resolver semantic.Resolver, name string, containingType string, kind semantic.DeclarationKind) (semantic.Declaration, bool) {
	return resolver.FindDeclaration(func(d semantic.Declaration) bool {
		return d.Kind == kind && d.Name == name && d.ContainingType == containingType
	})
}
