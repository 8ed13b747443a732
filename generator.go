package idlparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const indentation string = "\t"

// Generate function writes the schema file back out as IDL text, with
// declarations in source order.
func (pf *SchemaFile) Generate(w io.Writer) error {
	return pf.generate(w, false)
}

// GenerateSorted is like Generate but emits imports and declarations in
// alphabetical order. The file itself is left untouched.
func (pf *SchemaFile) GenerateSorted(w io.Writer) error {
	return pf.generate(w, true)
}

func (pf *SchemaFile) generate(w io.Writer, sorted bool) error {
	if w == nil {
		return errors.New("Writer is mandatory")
	}

	var sections []string
	if pf.Comment != "" {
		var s string
		for _, line := range strings.Split(pf.Comment, "\n") {
			s += formatComment(line, 0)
		}
		sections = append(sections, s)
	}

	var header string
	if pf.Syntax != "" {
		header += formatSyntax(pf.Syntax)
	}
	if pf.Package != "" {
		header += formatPackage(pf.Package)
	}
	if header != "" {
		sections = append(sections, header)
	}

	imports := pf.Imports
	if sorted {
		imports = sortedImports(imports)
	}
	if len(imports) > 0 {
		var s string
		for _, imp := range imports {
			s += formatImport(imp)
		}
		sections = append(sections, s)
	}

	if len(pf.Options) > 0 {
		sections = append(sections, formatOptions(pf.Options, 0))
	}

	services, enums, msgs := pf.Services, pf.Enums, pf.Messages
	if sorted {
		services, enums, msgs = sortedServices(services), sortedEnums(enums), sortedMessages(msgs)
	}
	for _, svc := range services {
		sections = append(sections, formatService(svc))
	}
	for _, enum := range enums {
		sections = append(sections, formatEnum(enum, 0))
	}
	for _, msg := range msgs {
		sections = append(sections, formatMessage(msg, 0, sorted))
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(sections, "\n")); err != nil {
		return err
	}
	return bw.Flush()
}

func formatSyntax(syntax string) string {
	return fmt.Sprintf("syntax = \"%s\";\n", syntax)
}

func formatPackage(pkg string) string {
	return fmt.Sprintf("package %s;\n", pkg)
}

func formatImport(imp *ImportBinding) string {
	s := fmt.Sprintf("import \"%s\"", imp.Path)
	if imp.Alias != "" {
		s += " as " + imp.Alias
	}
	return s + ";" + trailingComment(imp.Comment) + "\n"
}

func indent(indentLevel int) string {
	return strings.Repeat(indentation, indentLevel)
}

func formatComment(comment string, indentLevel int) string {
	if comment == "" {
		return indent(indentLevel) + "//\n"
	}
	return indent(indentLevel) + "// " + comment + "\n"
}

func trailingComment(comment string) string {
	if comment == "" {
		return ""
	}
	return " // " + comment
}

// formatOptionValue writes the value back the way it was written, so that
// string literals stay strings.
func formatOptionValue(opt OptionElement) string {
	if opt.IsQuoted {
		return `"` + opt.Value + `"`
	}
	return opt.Value
}

func formatOptionName(opt OptionElement) string {
	if opt.IsParenthesized {
		return "(" + opt.Name + ")"
	}
	return opt.Name
}

func formatOptions(options []OptionElement, indentLevel int) string {
	var s string
	for _, opt := range options {
		s += indent(indentLevel) + "option " + formatOptionName(opt) + " = " +
			formatOptionValue(opt) + ";" + trailingComment(opt.Comment) + "\n"
	}
	return s
}

func formatInlineOptions(options []OptionElement) string {
	if len(options) == 0 {
		return ""
	}
	parts := make([]string, 0, len(options))
	for _, opt := range options {
		parts = append(parts, formatOptionName(opt)+" = "+formatOptionValue(opt))
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

func formatEnum(enum *Enumeration, indentLevel int) string {
	s := indent(indentLevel) + fmt.Sprintf("enum %s {", enum.Name) + trailingComment(enum.Comment) + "\n"
	s += formatOptions(enum.Options, indentLevel+1)
	for _, ec := range enum.Elements {
		s += formatEnumElement(ec, indentLevel+1)
	}
	s += indent(indentLevel) + "}\n"
	return s
}

func formatEnumElement(ec *EnumerationElement, indentLevel int) string {
	return indent(indentLevel) + ec.Name + " = " + strconv.Itoa(int(ec.Value)) +
		formatInlineOptions(ec.Options) + ";" + trailingComment(ec.Comment) + "\n"
}

func formatService(svc *Service) string {
	s := fmt.Sprintf("service %s {", svc.Name) + trailingComment(svc.Comment) + "\n"
	s += formatOptions(svc.Options, 1)
	for _, rpc := range svc.Methods {
		s += formatRPC(rpc)
	}
	s += "}\n"
	return s
}

func formatRPC(rpc *Func) string {
	s := indent(1) + "rpc " + rpc.Name + " ("
	if rpc.ClientStreaming {
		s += "stream "
	}
	s += rpc.RequestTypeName + ") returns ("
	if rpc.ServerStreaming {
		s += "stream "
	}
	s += rpc.ResponseTypeName + ")"
	if len(rpc.Options) == 0 {
		return s + ";" + trailingComment(rpc.Comment) + "\n"
	}
	s += " {" + trailingComment(rpc.Comment) + "\n"
	s += formatOptions(rpc.Options, 2)
	s += indent(1) + "}\n"
	return s
}

func formatMessage(msg *Message, indentLevel int, sorted bool) string {
	s := indent(indentLevel) + fmt.Sprintf("message %s {", msg.Name) + trailingComment(msg.Comment) + "\n"
	s += formatOptions(msg.Options, indentLevel+1)
	for _, f := range msg.Fields {
		s += formatField(f, indentLevel+1)
	}
	enums, children := msg.Enums, msg.Messages
	if sorted {
		enums, children = sortedEnums(enums), sortedMessages(children)
	}
	for _, enum := range enums {
		s += "\n"
		s += formatEnum(enum, indentLevel+1)
	}
	for _, child := range children {
		s += "\n"
		s += formatMessage(child, indentLevel+1, sorted)
	}
	s += indent(indentLevel) + "}\n"
	return s
}

func formatField(f *MessageField, indentLevel int) string {
	s := indent(indentLevel)
	if f.Repeated {
		s += "repeated "
	}
	typeName := f.TypeName
	if key, value, ok := splitMapType(typeName); ok {
		typeName = "map<" + key + ", " + value + ">"
	}
	s += typeName + " " + f.Name + " = " + strconv.Itoa(f.Tag)
	s += formatInlineOptions(f.Options)
	return s + ";" + trailingComment(f.Comment) + "\n"
}
