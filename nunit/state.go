package nunit

import (
	"github.com/heshanpadmasiri/nunitMSTest/csharp"
)

// ClassScopeState collects the effects of a class body on the class declaration
type ClassScopeState struct {
	declaration       *csharp.Node
	name              string
	isAbstract        bool
	removedAttributes map[*csharp.Node]bool
	hasTestClass      bool
	containsTests     bool
}

func NewClassScopeState(declaration *csharp.Node) *ClassScopeState {
	return &ClassScopeState{
		declaration:       declaration,
		name:              csharp.DeclarationName(declaration),
		isAbstract:        csharp.HasModifier(declaration, "abstract") || csharp.HasModifier(declaration, "static"),
		removedAttributes: make(map[*csharp.Node]bool),
	}
}

func (s *ClassScopeState) removeAttribute(attr *csharp.Node) {
	s.removedAttributes[attr] = true
}

func (s *ClassScopeState) needsTestClassMarker() bool {
	return s.containsTests && !s.hasTestClass && !s.isAbstract && s.declaration.Kind() == "class_declaration"
}

// AuthorState holds the email argument of an author attribute, which becomes a comment
type AuthorState struct {
	email         *csharp.Node
	isEmailNeeded bool
}

func (s *AuthorState) set(email *csharp.Node) {
	s.email = email
	s.isEmailNeeded = true
}

// cultureExpression is one statement to inject at the start of the method body
type cultureExpression struct {
	arguments []*csharp.Node
	needed    bool
}

// CultureExpressionState holds the culture and UI culture assignments
type CultureExpressionState struct {
	culture   cultureExpression
	uiCulture cultureExpression
}

func (s *CultureExpressionState) anyNeeded() bool {
	return s.culture.needed || s.uiCulture.needed
}

// ValuesRangeState collects per-parameter Values and Range attributes
type ValuesRangeState struct {
	attributes       []valueSource
	isPropertyNeeded bool
}

func (s *ValuesRangeState) add(source valueSource) {
	s.attributes = append(s.attributes, source)
	s.isPropertyNeeded = true
}

// MethodScopeState collects the effects of attributes and the body of a method
type MethodScopeState struct {
	currentMethod       *csharp.Node
	addedAttributes     []*csharp.Node
	removedAttributes   map[*csharp.Node]bool
	needsStaticModifier bool
	needsTestContext    bool
	hasTestMethod       bool
	needsTestMethod     bool
	author              AuthorState
	culture             CultureExpressionState
	valuesRange         ValuesRangeState
}

func NewMethodScopeState(method *csharp.Node) *MethodScopeState {
	return &MethodScopeState{
		currentMethod:     method,
		removedAttributes: make(map[*csharp.Node]bool),
	}
}

func (s *MethodScopeState) removeAttribute(attr *csharp.Node) {
	s.removedAttributes[attr] = true
}

// addAttribute queues a companion attribute; identical attributes are added once
func (s *MethodScopeState) addAttribute(attr *csharp.Node) {
	text := attr.CompactText()
	for _, existing := range s.addedAttributes {
		if existing.CompactText() == text {
			return
		}
	}
	s.addedAttributes = append(s.addedAttributes, attr)
}
