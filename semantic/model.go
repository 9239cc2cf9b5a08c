// Package semantic answers the symbol and type questions the migration engine
// asks about C# syntax: which type declares an invoked member, what static type
// an expression has, and where a named member is declared.
package semantic

import (
	"strings"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
)

// Resolver is the symbol resolution service consumed by the rewriter
type Resolver interface {
	// SymbolOf maps an invocation, member access, attribute, identifier or
	// using directive to the symbol it refers to.
	SymbolOf(node *csharp.Node) (Symbol, bool)
	// StaticTypeOf returns the static type of an expression. Unknown types
	// have an empty FullName.
	StaticTypeOf(expr *csharp.Node) TypeInfo
	// FindDeclaration searches the whole compilation for a member declaration.
	FindDeclaration(match func(Declaration) bool) (Declaration, bool)
}

type SymbolKind int

const (
	SymbolUnknown SymbolKind = iota
	SymbolNamespace
	SymbolType
	SymbolMethod
	SymbolProperty
	SymbolField
	SymbolLocal
	SymbolParameter
	SymbolAttribute
)

// Symbol identifies a declared entity
type Symbol struct {
	Name          string
	DeclaringType string // fully qualified, e.g. NUnit.Framework.Assert
	IsStatic      bool
	Kind          SymbolKind
}

// InNamespace reports whether the declaring type lives in namespace ns or below it
func (s Symbol) InNamespace(ns string) bool {
	return s.DeclaringType == ns || strings.HasPrefix(s.DeclaringType, ns+".")
}

// TypeName returns the unqualified declaring type name
func (s Symbol) TypeName() string {
	idx := strings.LastIndex(s.DeclaringType, ".")
	return s.DeclaringType[idx+1:]
}

type SpecialType int

const (
	SpecialNone SpecialType = iota
	SpecialObject
	SpecialBoolean
	SpecialChar
	SpecialString
	SpecialInt32
	SpecialInt64
	SpecialUInt32
	SpecialUInt64
	SpecialSingle
	SpecialDouble
	SpecialDecimal
)

// TypeInfo is the static type of an expression
type TypeInfo struct {
	Special  SpecialType
	FullName string
}

func (t TypeInfo) IsKnown() bool {
	return t.FullName != ""
}

func (t TypeInfo) IsString() bool {
	return t.Special == SpecialString
}

func (t TypeInfo) IsBoolean() bool {
	return t.Special == SpecialBoolean
}

func (t TypeInfo) IsArray() bool {
	return strings.HasSuffix(t.FullName, "[]")
}

func (t TypeInfo) IsNumeric() bool {
	switch t.Special {
	case SpecialInt32, SpecialInt64, SpecialUInt32, SpecialUInt64, SpecialSingle, SpecialDouble, SpecialDecimal:
		return true
	}
	return false
}

type DeclarationKind int

const (
	DeclarationMethod DeclarationKind = iota
	DeclarationProperty
	DeclarationField
)

func (k DeclarationKind) String() string {
	switch k {
	case DeclarationMethod:
		return "method"
	case DeclarationProperty:
		return "property"
	case DeclarationField:
		return "field"
	}
	return "unknown"
}

// Declaration is a member declared somewhere in the compilation
type Declaration struct {
	Kind                   DeclarationKind
	Name                   string
	TypeName               string
	ContainingType         string
	ContainingTypeFullName string
	IsStatic               bool
	File                   string
	Node                   *csharp.Node
}

var specialTypes = map[string]TypeInfo{
	"object":  {SpecialObject, "System.Object"},
	"Object":  {SpecialObject, "System.Object"},
	"bool":    {SpecialBoolean, "System.Boolean"},
	"Boolean": {SpecialBoolean, "System.Boolean"},
	"char":    {SpecialChar, "System.Char"},
	"Char":    {SpecialChar, "System.Char"},
	"string":  {SpecialString, "System.String"},
	"String":  {SpecialString, "System.String"},
	"int":     {SpecialInt32, "System.Int32"},
	"Int32":   {SpecialInt32, "System.Int32"},
	"long":    {SpecialInt64, "System.Int64"},
	"Int64":   {SpecialInt64, "System.Int64"},
	"uint":    {SpecialUInt32, "System.UInt32"},
	"UInt32":  {SpecialUInt32, "System.UInt32"},
	"ulong":   {SpecialUInt64, "System.UInt64"},
	"UInt64":  {SpecialUInt64, "System.UInt64"},
	"float":   {SpecialSingle, "System.Single"},
	"Single":  {SpecialSingle, "System.Single"},
	"double":  {SpecialDouble, "System.Double"},
	"Double":  {SpecialDouble, "System.Double"},
	"decimal": {SpecialDecimal, "System.Decimal"},
	"Decimal": {SpecialDecimal, "System.Decimal"},
}

var wellKnownTypes = map[string]string{
	"FileInfo":      "System.IO.FileInfo",
	"DirectoryInfo": "System.IO.DirectoryInfo",
	"Type":          "System.Type",
	"Exception":     "System.Exception",
	"Regex":         "System.Text.RegularExpressions.Regex",
	"DateTime":      "System.DateTime",
	"Guid":          "System.Guid",
	"TimeSpan":      "System.TimeSpan",
}

// nunitTypes are the public static entry points of NUnit.Framework
var nunitTypes = map[string]string{
	"Assert":           "NUnit.Framework.Assert",
	"ClassicAssert":    "NUnit.Framework.Legacy.ClassicAssert",
	"CollectionAssert": "NUnit.Framework.CollectionAssert",
	"StringAssert":     "NUnit.Framework.StringAssert",
	"FileAssert":       "NUnit.Framework.FileAssert",
	"DirectoryAssert":  "NUnit.Framework.DirectoryAssert",
	"Assume":           "NUnit.Framework.Assume",
	"Warn":             "NUnit.Framework.Warn",
	"Is":               "NUnit.Framework.Is",
	"Iz":               "NUnit.Framework.Iz",
	"Has":              "NUnit.Framework.Has",
	"Does":             "NUnit.Framework.Does",
	"Throws":           "NUnit.Framework.Throws",
	"Contains":         "NUnit.Framework.Contains",
	"TestContext":      "NUnit.Framework.TestContext",
	"Randomizer":       "NUnit.Framework.Internal.Randomizer",
}

// ConstraintExpression is the declaring type reported for members of fluent
// constraint chains such as Is.Not.EqualTo.
const ConstraintExpression = "NUnit.Framework.Constraints.ConstraintExpression"

var constraintEntryPoints = map[string]bool{
	"Is": true, "Iz": true, "Has": true, "Does": true, "Throws": true, "Contains": true,
}

// nunitAttributes lists the attribute names (without the Attribute suffix)
// declared in NUnit.Framework.
var nunitAttributes = map[string]bool{
	"Apartment": true, "Author": true, "CancelAfter": true, "Category": true, "Combinatorial": true,
	"Culture": true, "Datapoint": true, "DatapointSource": true, "DefaultFloatingPointTolerance": true,
	"Description": true, "Explicit": true, "FixtureLifeCycle": true, "Ignore": true,
	"LevelOfParallelism": true, "MaxTime": true, "NonParallelizable": true, "NonTestAssembly": true,
	"OneTimeSetUp": true, "OneTimeTearDown": true, "Order": true, "Pairwise": true, "Parallelizable": true,
	"Platform": true, "Property": true, "Random": true, "Range": true, "Repeat": true,
	"RequiresThread": true, "Retry": true, "Sequential": true, "SetCulture": true, "SetUICulture": true,
	"SetUp": true, "SetUpFixture": true, "SingleThreaded": true, "TearDown": true, "Test": true,
	"TestCase": true, "TestCaseSource": true, "TestFixture": true, "TestFixtureSetUp": true,
	"TestFixtureTearDown": true, "TestFixtureSource": true, "TestOf": true, "Theory": true,
	"Timeout": true, "Values": true, "ValueSource": true,
}

// NormalizeAttributeName strips a global alias, the NUnit.Framework qualifier
// and the Attribute suffix. qualified reports whether a NUnit qualifier was present.
func NormalizeAttributeName(name string) (normalized string, qualified bool) {
	name = strings.TrimPrefix(name, "global::")
	if strings.HasPrefix(name, "NUnit.Framework.") {
		name = strings.TrimPrefix(name, "NUnit.Framework.")
		qualified = true
	}
	if strings.HasSuffix(name, "Attribute") && len(name) > len("Attribute") {
		name = strings.TrimSuffix(name, "Attribute")
	}
	return name, qualified
}
