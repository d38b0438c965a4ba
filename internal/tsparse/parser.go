package tsparse

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Parser turns TypeScript source into an Analysis.
//
// A Parser is not safe for concurrent use; create one per worker.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a TypeScript parser.
func NewParser() *Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())
	return &Parser{parser: parser}
}

// injectAnnotation records a ClassName.$inject = [...] assignment seen
// before its class is matched up.
type injectAnnotation struct {
	names []string
	line  int
}

// Parse extracts classes, constructors, members and annotations from
// one TypeScript file.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*Analysis, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()

	analysis := &Analysis{
		Path:         path,
		Suppressions: ParseSuppressions(content),
		HasError:     root.HasError(),
	}

	pending := make(map[string]injectAnnotation)
	p.walk(root, content, analysis, pending)

	// Attach ClassName.$inject assignments to their classes. A static
	// $inject member wins if both forms are present.
	for i := range analysis.Classes {
		cls := &analysis.Classes[i]
		if cls.HasInject() {
			continue
		}
		if ann, ok := pending[cls.Name]; ok {
			cls.Inject = ann.names
			cls.InjectLine = ann.line
		}
	}

	return analysis, nil
}

// walk recursively visits declarations, collecting classes and
// top-level $inject assignments.
func (p *Parser) walk(node *sitter.Node, content []byte, analysis *Analysis, pending map[string]injectAnnotation) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)

		switch child.Type() {
		case "class_declaration", "abstract_class_declaration":
			if cls := p.parseClass(child, content, false, nil); cls != nil {
				analysis.Classes = append(analysis.Classes, *cls)
			}

		case "export_statement":
			if node.Type() == "program" {
				analysis.Exports++
			}
			decorators := collectDecorators(child, content)
			decl := child.ChildByFieldName("declaration")
			if decl != nil && (decl.Type() == "class_declaration" || decl.Type() == "abstract_class_declaration") {
				if cls := p.parseClass(decl, content, true, decorators); cls != nil {
					analysis.Classes = append(analysis.Classes, *cls)
				}
			} else {
				p.walk(child, content, analysis, pending)
			}

		case "expression_statement":
			p.scanInjectAssignment(child, content, pending)

		default:
			p.walk(child, content, analysis, pending)
		}
	}
}

// scanInjectAssignment records statements like
// HeroController.$inject = ['$http'].
func (p *Parser) scanInjectAssignment(node *sitter.Node, content []byte, pending map[string]injectAnnotation) {
	expr := node.NamedChild(0)
	if expr == nil || expr.Type() != "assignment_expression" {
		return
	}

	left := expr.ChildByFieldName("left")
	right := expr.ChildByFieldName("right")
	if left == nil || right == nil || left.Type() != "member_expression" || right.Type() != "array" {
		return
	}

	object := left.ChildByFieldName("object")
	property := left.ChildByFieldName("property")
	if object == nil || property == nil || nodeText(property, content) != "$inject" {
		return
	}

	pending[nodeText(object, content)] = injectAnnotation{
		names: stringArray(right, content),
		line:  int(expr.StartPoint().Row) + 1,
	}
}

// parseClass extracts one class declaration. Decorators written before
// an export keyword are passed in by the caller.
func (p *Parser) parseClass(node *sitter.Node, content []byte, exported bool, outerDecorators []Decorator) *Class {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	cls := &Class{
		Name:       nodeText(nameNode, content),
		Line:       int(node.StartPoint().Row) + 1,
		Column:     int(node.StartPoint().Column) + 1,
		Exported:   exported,
		Abstract:   node.Type() == "abstract_class_declaration",
		Decorators: append(outerDecorators, collectDecorators(node, content)...),
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return cls
	}

	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)

		switch member.Type() {
		case "method_definition":
			p.parseMethodMember(member, content, cls)
		case "public_field_definition":
			p.parseFieldMember(member, content, cls)
		case "method_signature", "abstract_method_signature":
			vis, static, readonly, accessor := scanModifiers(member, content)
			name := fieldText(member, "name", content)
			if name == "" {
				continue
			}
			cls.Members = append(cls.Members, Member{
				Name:       name,
				Kind:       accessorKind(accessor),
				Visibility: vis,
				Static:     static,
				Readonly:   readonly,
				Line:       int(member.StartPoint().Row) + 1,
			})
		}
	}

	return cls
}

// parseMethodMember handles constructors, methods and accessors.
func (p *Parser) parseMethodMember(node *sitter.Node, content []byte, cls *Class) {
	name := fieldText(node, "name", content)
	if name == "" {
		return
	}

	if name == "constructor" {
		cls.Ctor = &Constructor{
			Line:   int(node.StartPoint().Row) + 1,
			Column: int(node.StartPoint().Column) + 1,
			Params: p.parseParams(node.ChildByFieldName("parameters"), content),
		}
		return
	}

	vis, static, readonly, accessor := scanModifiers(node, content)
	cls.Members = append(cls.Members, Member{
		Name:       name,
		Kind:       accessorKind(accessor),
		Visibility: vis,
		Static:     static,
		Readonly:   readonly,
		Decorators: decoratorNames(node, content),
		Line:       int(node.StartPoint().Row) + 1,
	})
}

// parseFieldMember handles property declarations, including static
// $inject annotations which are recorded on the class instead of the
// member list.
func (p *Parser) parseFieldMember(node *sitter.Node, content []byte, cls *Class) {
	name := fieldText(node, "name", content)
	if name == "" {
		return
	}

	vis, static, readonly, _ := scanModifiers(node, content)

	if static && name == "$inject" {
		if value := node.ChildByFieldName("value"); value != nil && value.Type() == "array" {
			cls.Inject = stringArray(value, content)
			cls.InjectLine = int(node.StartPoint().Row) + 1
			return
		}
	}

	cls.Members = append(cls.Members, Member{
		Name:       name,
		Kind:       MemberProperty,
		Visibility: vis,
		Static:     static,
		Readonly:   readonly,
		Decorators: decoratorNames(node, content),
		Line:       int(node.StartPoint().Row) + 1,
	})
}

// parseParams extracts constructor parameters with their modifiers.
func (p *Parser) parseParams(params *sitter.Node, content []byte) []Param {
	if params == nil {
		return nil
	}

	var result []Param
	for i := 0; i < int(params.NamedChildCount()); i++ {
		node := params.NamedChild(i)
		if node.Type() != "required_parameter" && node.Type() != "optional_parameter" {
			continue
		}

		param := Param{
			Optional: node.Type() == "optional_parameter",
			Line:     int(node.StartPoint().Row) + 1,
			Column:   int(node.StartPoint().Column) + 1,
		}

		for j := 0; j < int(node.ChildCount()); j++ {
			sub := node.Child(j)
			switch sub.Type() {
			case "accessibility_modifier":
				param.Visibility = Visibility(nodeText(sub, content))
			case "readonly":
				param.Readonly = true
			case "decorator":
				if dec := parseDecorator(sub, content); dec != nil {
					param.Decorators = append(param.Decorators, dec.Name)
				}
			}
		}

		if pattern := node.ChildByFieldName("pattern"); pattern != nil {
			param.Name = nodeText(pattern, content)
		}
		if typeNode := node.ChildByFieldName("type"); typeNode != nil {
			param.Type = strings.TrimSpace(strings.TrimPrefix(nodeText(typeNode, content), ":"))
		}

		result = append(result, param)
	}

	return result
}

// scanModifiers inspects a member's leading tokens. Keyword modifiers
// are anonymous nodes whose type is the literal itself.
func scanModifiers(node *sitter.Node, content []byte) (vis Visibility, static, readonly bool, accessor string) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "accessibility_modifier":
			vis = Visibility(nodeText(child, content))
		case "static":
			static = true
		case "readonly":
			readonly = true
		case "get", "set":
			accessor = child.Type()
		}
	}
	return vis, static, readonly, accessor
}

func accessorKind(accessor string) MemberKind {
	switch accessor {
	case "get":
		return MemberGetter
	case "set":
		return MemberSetter
	default:
		return MemberMethod
	}
}

// collectDecorators gathers decorator children of a node.
func collectDecorators(node *sitter.Node, content []byte) []Decorator {
	var decorators []Decorator
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "decorator" {
			continue
		}
		if dec := parseDecorator(child, content); dec != nil {
			decorators = append(decorators, *dec)
		}
	}
	return decorators
}

// decoratorNames gathers only the names, for member and parameter
// decorators where arguments are not inspected.
func decoratorNames(node *sitter.Node, content []byte) []string {
	var names []string
	for _, dec := range collectDecorators(node, content) {
		names = append(names, dec.Name)
	}
	return names
}

// parseDecorator reads @Name, @Name(...) and @ns.Name(...) forms.
func parseDecorator(node *sitter.Node, content []byte) *Decorator {
	inner := node.NamedChild(0)
	if inner == nil {
		return nil
	}

	dec := &Decorator{Line: int(node.StartPoint().Row) + 1}

	switch inner.Type() {
	case "call_expression":
		fn := inner.ChildByFieldName("function")
		if fn == nil {
			return nil
		}
		dec.Name = nodeText(fn, content)
		dec.Args = parseDecoratorArgs(inner.ChildByFieldName("arguments"), content)
	case "identifier", "member_expression":
		dec.Name = nodeText(inner, content)
	default:
		return nil
	}

	return dec
}

// parseDecoratorArgs captures simple literal values from a decorator's
// first object argument, such as selector and templateUrl.
func parseDecoratorArgs(args *sitter.Node, content []byte) map[string]string {
	if args == nil {
		return nil
	}

	var object *sitter.Node
	for i := 0; i < int(args.NamedChildCount()); i++ {
		if child := args.NamedChild(i); child.Type() == "object" {
			object = child
			break
		}
	}
	if object == nil {
		return nil
	}

	values := make(map[string]string)
	for i := 0; i < int(object.NamedChildCount()); i++ {
		pair := object.NamedChild(i)
		if pair.Type() != "pair" {
			continue
		}
		key := pair.ChildByFieldName("key")
		value := pair.ChildByFieldName("value")
		if key == nil || value == nil {
			continue
		}
		switch value.Type() {
		case "string", "true", "false", "number", "template_string":
			values[unquote(nodeText(key, content))] = unquote(nodeText(value, content))
		}
	}

	if len(values) == 0 {
		return nil
	}
	return values
}

// stringArray reads the string literals out of an array node.
func stringArray(array *sitter.Node, content []byte) []string {
	var result []string
	for i := 0; i < int(array.NamedChildCount()); i++ {
		child := array.NamedChild(i)
		if child.Type() == "string" {
			result = append(result, unquote(nodeText(child, content)))
		}
	}
	return result
}

func nodeText(n *sitter.Node, content []byte) string {
	return string(content[n.StartByte():n.EndByte()])
}

func fieldText(n *sitter.Node, field string, content []byte) string {
	child := n.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return nodeText(child, content)
}

func unquote(s string) string {
	return strings.Trim(s, "'\"`")
}
