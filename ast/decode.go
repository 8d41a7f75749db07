package ast

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pattyshack/gt/parseutil"
	"gopkg.in/yaml.v3"
)

// YAML is the wire format tools use to hand a program to the backend.  A
// program is a sequence of statements; every statement and expression is a
// single-key mapping whose key names the node kind:
//
//	- assign: {name: x, value: {int: 40}}
//	- assign: {name: x, value: {inc: {ident: x}}}
//	- if:
//	    cond: {op: "<", left: {ident: x}, right: {int: 42}}
//	    then: [...]
//	    else: [...]
//	- while: {cond: {...}, body: [...]}
//	- do-while: {body: [...], cond: {...}}
//	- expr: {syscall: {number: {int: 1}, args: [{int: 1}, {string: "hi"}]}}
//	- exit: {ident: x}
//
// Binary expressions are written as {binary: {op: "+", left: .., right: ..}}.
type DecodeError struct {
	Line    int
	Column  int
	Message string
}

func (err *DecodeError) Error() string {
	return fmt.Sprintf("%d:%d: %s", err.Line, err.Column, err.Message)
}

func decodeErrorf(node *yaml.Node, format string, args ...interface{}) error {
	return &DecodeError{
		Line:    node.Line,
		Column:  node.Column,
		Message: fmt.Sprintf(format, args...),
	}
}

type decoder struct {
	fileName string
}

// Node positions use the yaml source position.  yaml columns are 1-based while
// parseutil columns are 0-based.
func (decoder *decoder) pos(node *yaml.Node) parseutil.StartEndPos {
	loc := parseutil.Location{
		FileName: decoder.fileName,
		Line:     node.Line,
		Column:   node.Column - 1,
	}
	return parseutil.NewStartEndPos(loc, loc)
}

func DecodeProgram(fileName string, reader io.Reader) (*Program, error) {
	doc := &yaml.Node{}
	err := yaml.NewDecoder(reader).Decode(doc)
	if err == io.EOF {
		return &Program{}, nil
	} else if err != nil {
		return nil, err
	}

	return (&decoder{fileName: fileName}).decodeProgramNode(doc)
}

func DecodeProgramBytes(fileName string, content []byte) (*Program, error) {
	doc := &yaml.Node{}
	err := yaml.Unmarshal(content, doc)
	if err != nil {
		return nil, err
	}

	if doc.Kind == 0 {
		return &Program{}, nil
	}

	return (&decoder{fileName: fileName}).decodeProgramNode(doc)
}

func (decoder *decoder) decodeProgramNode(doc *yaml.Node) (*Program, error) {
	root := doc
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return &Program{}, nil
		}
		root = doc.Content[0]
	}

	if root.Kind == yaml.MappingNode {
		fields, err := mappingFields(root)
		if err != nil {
			return nil, err
		}

		root = fields["statements"]
		if root == nil {
			return nil, decodeErrorf(doc, "program has no statements field")
		}
	}

	statements, err := decoder.decodeStatements(root)
	if err != nil {
		return nil, err
	}

	return &Program{
		StartEndPos: decoder.pos(root),
		Statements:  statements,
	}, nil
}

func mappingFields(node *yaml.Node) (map[string]*yaml.Node, error) {
	if node.Kind != yaml.MappingNode {
		return nil, decodeErrorf(node, "expected mapping")
	}

	fields := map[string]*yaml.Node{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		_, ok := fields[key.Value]
		if ok {
			return nil, decodeErrorf(key, "duplicate field (%s)", key.Value)
		}
		fields[key.Value] = node.Content[i+1]
	}
	return fields, nil
}

func singleEntry(node *yaml.Node) (string, *yaml.Node, error) {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return "", nil, decodeErrorf(node, "expected single-key mapping")
	}
	return node.Content[0].Value, node.Content[1], nil
}

func requiredField(
	parent *yaml.Node,
	fields map[string]*yaml.Node,
	name string,
) (*yaml.Node, error) {
	node, ok := fields[name]
	if !ok {
		return nil, decodeErrorf(parent, "missing %s field", name)
	}
	return node, nil
}

func scalarString(node *yaml.Node) (string, error) {
	if node.Kind != yaml.ScalarNode {
		return "", decodeErrorf(node, "expected scalar")
	}
	return node.Value, nil
}

func (decoder *decoder) decodeStatements(node *yaml.Node) ([]Statement, error) {
	if node == nil {
		return nil, nil
	}

	if node.Kind != yaml.SequenceNode {
		return nil, decodeErrorf(node, "expected statement sequence")
	}

	statements := make([]Statement, 0, len(node.Content))
	for _, item := range node.Content {
		statement, err := decoder.decodeStatement(item)
		if err != nil {
			return nil, err
		}
		statements = append(statements, statement)
	}
	return statements, nil
}

func (decoder *decoder) decodeStatement(node *yaml.Node) (Statement, error) {
	kind, value, err := singleEntry(node)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "assign":
		fields, err := mappingFields(value)
		if err != nil {
			return nil, err
		}

		nameNode, err := requiredField(value, fields, "name")
		if err != nil {
			return nil, err
		}

		name, err := scalarString(nameNode)
		if err != nil {
			return nil, err
		}

		valueNode, err := requiredField(value, fields, "value")
		if err != nil {
			return nil, err
		}

		expr, err := decoder.decodeExpression(valueNode)
		if err != nil {
			return nil, err
		}

		return &Assignment{
			StartEndPos: decoder.pos(node),
			Name:        name,
			Value:       expr,
		}, nil
	case "expr":
		expr, err := decoder.decodeExpression(value)
		if err != nil {
			return nil, err
		}
		return &ExpressionStatement{
			StartEndPos: decoder.pos(node),
			Expression:  expr,
		}, nil
	case "exit":
		expr, err := decoder.decodeExpression(value)
		if err != nil {
			return nil, err
		}
		return &Exit{StartEndPos: decoder.pos(node), Value: expr}, nil
	case "if":
		fields, err := mappingFields(value)
		if err != nil {
			return nil, err
		}

		cond, err := decoder.decodeCondition(value, fields)
		if err != nil {
			return nil, err
		}

		then, err := decoder.decodeStatements(fields["then"])
		if err != nil {
			return nil, err
		}

		els, err := decoder.decodeStatements(fields["else"])
		if err != nil {
			return nil, err
		}

		return &If{
			StartEndPos: decoder.pos(node),
			Condition:   cond,
			Then:        then,
			Else:        els,
		}, nil
	case "while", "do-while":
		fields, err := mappingFields(value)
		if err != nil {
			return nil, err
		}

		cond, err := decoder.decodeCondition(value, fields)
		if err != nil {
			return nil, err
		}

		body, err := decoder.decodeStatements(fields["body"])
		if err != nil {
			return nil, err
		}

		if kind == "while" {
			return &While{
				StartEndPos: decoder.pos(node),
				Condition:   cond,
				Body:        body,
			}, nil
		}
		return &DoWhile{
			StartEndPos: decoder.pos(node),
			Body:        body,
			Condition:   cond,
		}, nil
	}

	return nil, decodeErrorf(node, "unknown statement kind (%s)", kind)
}

func (decoder *decoder) decodeCondition(
	parent *yaml.Node,
	fields map[string]*yaml.Node,
) (*BinaryExpression, error) {
	node, err := requiredField(parent, fields, "cond")
	if err != nil {
		return nil, err
	}
	return decoder.decodeBinary(node)
}

func (decoder *decoder) decodeBinary(node *yaml.Node) (*BinaryExpression, error) {
	fields, err := mappingFields(node)
	if err != nil {
		return nil, err
	}

	opNode, err := requiredField(node, fields, "op")
	if err != nil {
		return nil, err
	}

	op, err := scalarString(opNode)
	if err != nil {
		return nil, err
	}

	leftNode, err := requiredField(node, fields, "left")
	if err != nil {
		return nil, err
	}

	left, err := decoder.decodeExpression(leftNode)
	if err != nil {
		return nil, err
	}

	rightNode, err := requiredField(node, fields, "right")
	if err != nil {
		return nil, err
	}

	right, err := decoder.decodeExpression(rightNode)
	if err != nil {
		return nil, err
	}

	return &BinaryExpression{
		StartEndPos: decoder.pos(node),
		Operator:    BinaryOperator(op),
		Left:        left,
		Right:       right,
	}, nil
}

func (decoder *decoder) decodeExpression(node *yaml.Node) (Expression, error) {
	kind, value, err := singleEntry(node)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "int":
		text, err := scalarString(value)
		if err != nil {
			return nil, err
		}

		intValue, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return nil, decodeErrorf(value, "invalid int literal (%s)", text)
		}

		return &IntLiteral{StartEndPos: decoder.pos(node), Value: intValue}, nil
	case "string":
		text, err := scalarString(value)
		if err != nil {
			return nil, err
		}
		return &StringLiteral{StartEndPos: decoder.pos(node), Value: text}, nil
	case "ident":
		name, err := scalarString(value)
		if err != nil {
			return nil, err
		}
		return &Identifier{StartEndPos: decoder.pos(node), Name: name}, nil
	case "addr":
		name, err := scalarString(value)
		if err != nil {
			return nil, err
		}
		return &AddressOf{StartEndPos: decoder.pos(node), Name: name}, nil
	case "neg", "inc":
		operand, err := decoder.decodeExpression(value)
		if err != nil {
			return nil, err
		}
		return &UnaryExpression{
			StartEndPos: decoder.pos(node),
			Operator:    UnaryOperator(kind),
			Operand:     operand,
		}, nil
	case "binary":
		return decoder.decodeBinary(value)
	case "syscall":
		fields, err := mappingFields(value)
		if err != nil {
			return nil, err
		}

		numberNode, err := requiredField(value, fields, "number")
		if err != nil {
			return nil, err
		}

		number, err := decoder.decodeExpression(numberNode)
		if err != nil {
			return nil, err
		}

		args := []Expression{}
		argsNode := fields["args"]
		if argsNode != nil {
			if argsNode.Kind != yaml.SequenceNode {
				return nil, decodeErrorf(argsNode, "expected argument sequence")
			}

			for _, item := range argsNode.Content {
				arg, err := decoder.decodeExpression(item)
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}
		}

		return &SysCall{
			StartEndPos: decoder.pos(node),
			Number:      number,
			Args:        args,
		}, nil
	}

	return nil, decodeErrorf(node, "unknown expression kind (%s)", kind)
}
