package ast

import (
	"bytes"
	"fmt"
	"io"
)

const (
	indent = "  "
)

func TreeString(node Node, indent string) string {
	buffer := &bytes.Buffer{}
	_ = PrintTree(buffer, node, indent)
	return buffer.String()
}

func PrintTree(output io.Writer, node Node, indent string) error {
	printer := &treePrinter{
		indent:     indent,
		labelStack: []string{},
		writer:     output,
	}
	node.Walk(printer)
	return printer.err
}

type treePrinter struct {
	indent     string
	labelStack []string
	writer     io.Writer
	err        error
}

func (printer *treePrinter) write(format string, args ...interface{}) {
	if printer.err != nil {
		return
	}

	if len(args) == 0 {
		_, printer.err = printer.writer.Write([]byte(format))
	} else {
		_, printer.err = fmt.Fprintf(printer.writer, format, args...)
	}
}

func (printer *treePrinter) writeLabel() {
	label := ""
	if len(printer.labelStack) > 0 {
		label = printer.labelStack[len(printer.labelStack)-1]
		printer.labelStack = printer.labelStack[:len(printer.labelStack)-1]
	}

	if len(label) > 0 {
		printer.write("\n")
		printer.write(printer.indent)
		printer.write(label)
	} else {
		printer.write(printer.indent)
	}
}

func (printer *treePrinter) endNode() {
	printer.indent = printer.indent[:len(printer.indent)-len(indent)]
	printer.write("\n")
	printer.write(printer.indent)
	printer.write("]")
}

func (printer *treePrinter) push(labels ...string) {
	printer.indent += indent

	for len(labels) > 0 {
		last := labels[len(labels)-1]
		labels = labels[:len(labels)-1]

		printer.labelStack = append(printer.labelStack, last)
	}
}

func (printer *treePrinter) list(
	header string,
	elementType string,
	size int,
	argLabels ...string,
) {
	printer.write(header)
	if size == 0 && len(argLabels) == 0 {
		printer.write("]")
	} else {
		for i := size - 1; i >= 0; i-- {
			printer.labelStack = append(
				printer.labelStack,
				fmt.Sprintf("%s%d=", elementType, i))
		}

		// push in reverse order
		printer.push(argLabels...)
	}
}

func (printer *treePrinter) endList(size int) {
	if size > 0 {
		printer.endNode()
	}
}

func statementLabels(prefix string, statements []Statement) []string {
	labels := []string{}
	for idx, _ := range statements {
		labels = append(labels, fmt.Sprintf("%s%d=", prefix, idx))
	}
	return labels
}

func (printer *treePrinter) Enter(n Node) {
	printer.writeLabel()

	switch node := n.(type) {
	case *Program:
		printer.list("[Program:", "Statement", len(node.Statements))

	case *IntLiteral:
		printer.write("[IntLiteral: Value=%d]", node.Value)
	case *StringLiteral:
		printer.write("[StringLiteral: Value=%q]", node.Value)
	case *Identifier:
		printer.write("[Identifier: Name=%s]", node.Name)
	case *AddressOf:
		printer.write("[AddressOf: Name=%s]", node.Name)
	case *UnaryExpression:
		printer.write("[UnaryExpression: Operator=%s", node.Operator)
		printer.push("Operand=")
	case *BinaryExpression:
		printer.write("[BinaryExpression: Operator=%s", node.Operator)
		printer.push("Left=", "Right=")
	case *SysCall:
		printer.list("[SysCall:", "Arg", len(node.Args), "Number=")

	case *Assignment:
		printer.write("[Assignment: Name=%s", node.Name)
		printer.push("Value=")
	case *ExpressionStatement:
		printer.write("[ExpressionStatement:")
		printer.push("Expression=")
	case *Exit:
		printer.write("[Exit:")
		printer.push("Value=")

	case *If:
		labels := []string{"Condition="}
		labels = append(labels, statementLabels("Then", node.Then)...)
		labels = append(labels, statementLabels("Else", node.Else)...)

		printer.write("[If:")
		printer.push(labels...)
	case *While:
		labels := []string{"Condition="}
		labels = append(labels, statementLabels("Body", node.Body)...)

		printer.write("[While:")
		printer.push(labels...)
	case *DoWhile:
		labels := statementLabels("Body", node.Body)
		labels = append(labels, "Condition=")

		printer.write("[DoWhile:")
		printer.push(labels...)

	default:
		printer.write("unhandled node: %v", n)
	}
}

func (printer *treePrinter) Exit(n Node) {
	switch node := n.(type) {
	case *Program:
		printer.endList(len(node.Statements))

	case *UnaryExpression:
		printer.endNode()
	case *BinaryExpression:
		printer.endNode()
	case *SysCall:
		printer.endNode()

	case *Assignment:
		printer.endNode()
	case *ExpressionStatement:
		printer.endNode()
	case *Exit:
		printer.endNode()

	case *If:
		printer.endNode()
	case *While:
		printer.endNode()
	case *DoWhile:
		printer.endNode()
	}
}
