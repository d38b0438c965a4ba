// Package tsparse extracts the structural facts rule checks need from
// TypeScript sources: classes, their decorators, constructor
// parameters with accessibility modifiers, member declarations and
// $inject annotations. Parsing is tree-sitter based, so files with
// localized syntax errors still yield a partial analysis.
package tsparse

// Visibility is a TypeScript accessibility modifier. The empty string
// means no modifier was written.
type Visibility string

const (
	VisibilityNone      Visibility = ""
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
)

// MemberKind classifies a class member.
type MemberKind string

const (
	MemberProperty MemberKind = "property"
	MemberMethod   MemberKind = "method"
	MemberGetter   MemberKind = "getter"
	MemberSetter   MemberKind = "setter"
)

// Decorator is a decorator applied to a class, member or parameter.
type Decorator struct {
	// Name is the decorator identifier without the @ sign
	Name string
	// Line is the 1-based line of the @ sign
	Line int
	// Args holds simple literal values from the first object argument,
	// keyed by property name. Only string, boolean and number literals
	// are captured.
	Args map[string]string
}

// Param is one constructor parameter.
type Param struct {
	Name       string
	Type       string
	Visibility Visibility
	Readonly   bool
	Optional   bool
	Decorators []string
	Line       int
	Column     int
}

// Constructor describes a class constructor.
type Constructor struct {
	Line   int
	Column int
	Params []Param
}

// Member is a non-constructor class member.
type Member struct {
	Name       string
	Kind       MemberKind
	Visibility Visibility
	Static     bool
	Readonly   bool
	Decorators []string
	Line       int
}

// Class is one class declaration with everything the rules inspect.
type Class struct {
	Name       string
	Line       int
	Column     int
	Exported   bool
	Abstract   bool
	Decorators []Decorator
	Ctor       *Constructor
	// Inject lists the names in a $inject annotation, either a static
	// class member or a ClassName.$inject assignment
	Inject []string
	// InjectLine is the 1-based line of the $inject annotation, zero
	// when absent
	InjectLine int
	Members    []Member
}

// Decorator returns the class decorator with the given name, or nil.
func (c *Class) Decorator(name string) *Decorator {
	for i := range c.Decorators {
		if c.Decorators[i].Name == name {
			return &c.Decorators[i]
		}
	}
	return nil
}

// HasInject reports whether the class carries a $inject annotation.
func (c *Class) HasInject() bool {
	return c.InjectLine > 0
}

// Analysis is the extraction result for one TypeScript file.
type Analysis struct {
	// Path is the analyzed file path
	Path string
	// Classes lists class declarations in source order
	Classes []Class
	// Exports counts exported top-level declarations
	Exports int
	// Suppressions lists disable comments found in the file
	Suppressions []Suppression
	// HasError indicates the parse tree contains syntax errors. The
	// analysis may be partial.
	HasError bool
}

// ExportedClasses returns the exported classes in source order.
func (a *Analysis) ExportedClasses() []Class {
	var exported []Class
	for _, c := range a.Classes {
		if c.Exported {
			exported = append(exported, c)
		}
	}
	return exported
}
