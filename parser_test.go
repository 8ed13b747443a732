package idlparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallstoat/idlparser/internal/testutil"
)

const testPath = "/schemas/test.proto"

func parseSource(t *testing.T, src string) (*SchemaFile, error) {
	t.Helper()
	fs := testutil.MemFs(t, map[string]string{testPath: src})
	return ParseFile(testPath, WithFs(fs))
}

func mustParse(t *testing.T, src string) *SchemaFile {
	t.Helper()
	pf, err := parseSource(t, src)
	require.NoError(t, err)
	return pf
}

func requireKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	return perr
}

func TestParseMessage(t *testing.T) {
	pf := mustParse(t, `
syntax = "proto3";
package shop.v1;

message Order { // an order
  int64 id = 1; // primary key
  repeated string tags = 2;
  map<string, int32> counts = 3;
  bool paid = 536870911;
}
`)
	assert.Equal(t, "test", pf.Name)
	assert.Equal(t, testPath, pf.Path)
	assert.Equal(t, "proto3", pf.Syntax)
	assert.Equal(t, "shop.v1", pf.Package)

	require.Len(t, pf.Messages, 1)
	m := pf.Messages[0]
	assert.Equal(t, "Order", m.Name)
	assert.Equal(t, "Order", m.QualifiedName)
	assert.Equal(t, "an order", m.Comment)
	assert.Equal(t, 5, m.Line)
	assert.Same(t, pf, m.File())
	assert.Nil(t, m.Parent())

	require.Len(t, m.Fields, 4)
	id := m.Field("id")
	assert.Equal(t, 1, id.Tag)
	assert.False(t, id.Repeated)
	assert.Equal(t, ScalarDataType{Scalar: Int64Scalar}, id.Type)
	assert.Equal(t, "primary key", id.Comment)
	assert.Equal(t, 6, id.Line)

	tags := m.Field("tags")
	assert.True(t, tags.Repeated)
	assert.Equal(t, ScalarDataType{Scalar: StringScalar}, tags.Type)

	counts := m.Field("counts")
	assert.Equal(t, "map<string,int32>", counts.TypeName)
	assert.Equal(t, MapDataType{Key: StringScalar, Value: ScalarDataType{Scalar: Int32Scalar}}, counts.Type)

	assert.Equal(t, 536870911, m.Field("paid").Tag)
	assert.Nil(t, m.Field("missing"))
}

func TestParseSingleLineForms(t *testing.T) {
	pf := mustParse(t, `message M { int32 x = 1; string y = 2; } enum E { A = 0; B = 1; }`)
	require.NotNil(t, pf.Message("M"))
	assert.Len(t, pf.Message("M").Fields, 2)
	require.NotNil(t, pf.Enum("E"))
	assert.Len(t, pf.Enum("E").Elements, 2)
}

func TestParseDuplicateTag(t *testing.T) {
	_, err := parseSource(t, `message M { int32 x = 1; int32 y = 1; }`)
	perr := requireKind(t, err, KindDuplicateTag)
	assert.Equal(t, testPath, perr.Path)
	assert.Equal(t, 1, perr.Line)
}

func TestParseForwardReference(t *testing.T) {
	pf := mustParse(t, `message M { Other o = 1; } message Other { int32 v = 1; }`)
	o := pf.Message("M").Field("o")
	require.Equal(t, MessageDataTypeCategory, o.Type.Category())
	assert.Same(t, pf.Message("Other"), o.Type.(MessageDataType).Message)
}

func TestParseDuplicateEnumValue(t *testing.T) {
	_, err := parseSource(t, `enum E { A = 0; B = 0; }`)
	requireKind(t, err, KindDuplicateEnumValue)
}

func TestParseInvalidMapKey(t *testing.T) {
	for _, key := range []string{"double", "float", "bytes", "Other"} {
		_, err := parseSource(t, "message Other {}\nmessage M { map<"+key+",string> bad = 1; }")
		requireKind(t, err, KindInvalidMapKey)
	}
}

func TestParseEnum(t *testing.T) {
	pf := mustParse(t, `
enum Level { // severity
  option allow_alias = false;
  DEBUG = 0;
  ERROR = -1 [(display) = "Error"];
  FATAL = 0x10; // hex
}
`)
	e := pf.Enum("Level")
	require.NotNil(t, e)
	assert.Equal(t, "severity", e.Comment)
	assert.Equal(t, []OptionElement{{Name: "allow_alias", Value: "false"}}, e.Options)
	require.Len(t, e.Elements, 3)
	assert.Equal(t, int32(0), e.Elements[0].Value)
	assert.Equal(t, int32(-1), e.Elements[1].Value)
	assert.Equal(t, []OptionElement{{Name: "display", Value: "Error", IsParenthesized: true, IsQuoted: true}}, e.Elements[1].Options)
	assert.Equal(t, int32(16), e.Elements[2].Value)
	assert.Equal(t, "hex", e.Elements[2].Comment)
}

func TestParseEnumValueLiterals(t *testing.T) {
	pf := mustParse(t, "enum E { A = 010; B = -0x1F; C = 0; }")
	e := pf.Enum("E")
	require.Len(t, e.Elements, 3)
	assert.Equal(t, int32(8), e.Elements[0].Value)
	assert.Equal(t, int32(-31), e.Elements[1].Value)
	assert.Equal(t, int32(0), e.Elements[2].Value)
}

func TestParseService(t *testing.T) {
	pf := mustParse(t, `
service Chat { // chat api
  option (owner) = "team-chat";
  rpc Send (Msg) returns (Ack);
  rpc Stream (stream Msg) returns (stream Msg) {
    option deprecated = true;
  }
  rpc Poll (Msg) returns (stream Ack) {}
}
message Msg { string text = 1; }
message Ack {}
`)
	svc := pf.Service("Chat")
	require.NotNil(t, svc)
	assert.Equal(t, "chat api", svc.Comment)
	assert.Equal(t, []OptionElement{{Name: "owner", Value: "team-chat", IsParenthesized: true, IsQuoted: true}}, svc.Options)
	require.Len(t, svc.Methods, 3)

	send := svc.Methods[0]
	assert.Equal(t, "Send", send.Name)
	assert.Same(t, pf.Message("Msg"), send.RequestType)
	assert.Same(t, pf.Message("Ack"), send.ResponseType)
	assert.False(t, send.ClientStreaming)
	assert.False(t, send.ServerStreaming)

	stream := svc.Methods[1]
	assert.True(t, stream.ClientStreaming)
	assert.True(t, stream.ServerStreaming)
	assert.Equal(t, []OptionElement{{Name: "deprecated", Value: "true"}}, stream.Options)

	poll := svc.Methods[2]
	assert.False(t, poll.ClientStreaming)
	assert.True(t, poll.ServerStreaming)
	assert.Same(t, pf.Message("Ack"), poll.ResponseType)
}

func TestParseOptions(t *testing.T) {
	pf := mustParse(t, `
option go_package = "example.com/shop;shop";
option (custom.file) = 42;
message M {
  option (msg.opt) = "x";
  int32 x = 1 [deprecated = true, (validate.min) = 3];
}
option cc_enable_arenas = true;
`)
	assert.Equal(t, []OptionElement{
		{Name: "go_package", Value: "example.com/shop;shop", IsQuoted: true},
		{Name: "custom.file", Value: "42", IsParenthesized: true},
		{Name: "cc_enable_arenas", Value: "true"},
	}, pf.Options)

	m := pf.Message("M")
	assert.Equal(t, []OptionElement{{Name: "msg.opt", Value: "x", IsParenthesized: true, IsQuoted: true}}, m.Options)
	assert.Equal(t, []OptionElement{
		{Name: "deprecated", Value: "true"},
		{Name: "validate.min", Value: "3", IsParenthesized: true},
	}, m.Field("x").Options)
}

func TestParseFileComment(t *testing.T) {
	pf := mustParse(t, `// Billing schema.
//
// Shared by every service.

syntax = "proto3";
// not part of the header
message Invoice {}
`)
	assert.Equal(t, "Billing schema.\n\nShared by every service.", pf.Comment)
	assert.Equal(t, "", pf.Message("Invoice").Comment)
}

func TestParseCommentOnlyFile(t *testing.T) {
	pf := mustParse(t, "// nothing to see\n")
	assert.Equal(t, "nothing to see", pf.Comment)
	assert.Empty(t, pf.Messages)
}

func TestParseBlockComments(t *testing.T) {
	pf := mustParse(t, `
/*
 * message Hidden { int32 x = 1; }
 */
message M {
  int32 /* inline */ x = 1;
}
`)
	assert.Nil(t, pf.Message("Hidden"))
	require.NotNil(t, pf.Message("M").Field("x"))
}

func TestParseErrors(t *testing.T) {
	var tests = []struct {
		name string
		src  string
		kind ErrorKind
		line int
	}{
		{name: "invalid message name", src: "message 1Bad {}", kind: KindInvalidName, line: 1},
		{name: "empty message name", src: "message {}", kind: KindInvalidName, line: 1},
		{name: "invalid field name", src: "message M { int32 my-field = 1; }", kind: KindInvalidName, line: 1},
		{name: "invalid package", src: "package 9lives;", kind: KindInvalidName, line: 1},
		{name: "unterminated message", src: "message M {\n  int32 x = 1;\n", kind: KindUnterminatedBlock, line: 1},
		{name: "unterminated nested", src: "message M {\n  message N {\n}\n", kind: KindUnterminatedBlock, line: 1},
		{name: "zero tag", src: "message M { int32 x = 0; }", kind: KindInvalidTag},
		{name: "negative tag", src: "message M { int32 x = -3; }", kind: KindInvalidTag},
		{name: "non numeric tag", src: "message M { int32 x = one; }", kind: KindInvalidTag},
		{name: "tag too large", src: "message M { int32 x = 536870912; }", kind: KindInvalidTag},
		{name: "signed tag", src: "message M { int32 x = +1; }", kind: KindInvalidTag},
		{name: "hex tag", src: "message M { int32 x = 0x1; }", kind: KindInvalidTag},
		{name: "duplicate field", src: "message M {\n  int32 x = 1;\n  string x = 2;\n}", kind: KindDuplicateField, line: 3},
		{name: "repeated map", src: "message M { repeated map<string,int32> m = 1; }", kind: KindInvalidMapField},
		{name: "duplicate enum name", src: "enum E { A = 0; A = 1; }", kind: KindDuplicateEnumName},
		{name: "invalid enum value", src: "enum E { A = zero; }", kind: KindInvalidEnumValue},
		{name: "enum value overflow", src: "enum E { A = 2147483648; }", kind: KindInvalidEnumValue},
		{name: "enum value with underscore", src: "enum E { A = 1_0; }", kind: KindInvalidEnumValue},
		{name: "binary enum value", src: "enum E { A = 0b1; }", kind: KindInvalidEnumValue},
		{name: "signed enum value", src: "enum E { A = +1; }", kind: KindInvalidEnumValue},
		{name: "invalid enum name", src: "enum 1E { A = 0; }", kind: KindInvalidName, line: 1},
		{name: "invalid service name", src: "service my-svc {}", kind: KindInvalidName, line: 1},
		{name: "invalid rpc name", src: "message A {}\nservice S {\n  rpc 9X (A) returns (A);\n}", kind: KindInvalidName, line: 3},
		{name: "unterminated enum", src: "enum E {\n  A = 0;\n", kind: KindUnterminatedBlock, line: 1},
		{name: "unterminated service", src: "message A {}\nservice S {\n  rpc X (A) returns (A);\n", kind: KindUnterminatedBlock, line: 2},
		{name: "unterminated rpc", src: "message A {}\nservice S {\n  rpc X (A) returns (A) {\n    option deprecated = true;\n", kind: KindUnterminatedBlock, line: 3},
		{name: "unknown type", src: "message M {\n  Missing m = 1;\n}", kind: KindUnknownType, line: 2},
		{name: "unknown nested type", src: "message M { M.Missing m = 1; }", kind: KindUnknownType},
		{name: "unknown map value", src: "message M { map<string,Missing> m = 1; }", kind: KindUnknownType},
		{name: "rpc at file level", src: "rpc X (A) returns (B);", kind: KindUnexpectedToken},
		{name: "stray brace", src: "message M {}\n}", kind: KindUnexpectedToken, line: 2},
		{name: "field in service", src: "service S { int32 x = 1; }", kind: KindUnexpectedToken},
		{name: "service in message", src: "message M { service S {} }", kind: KindUnexpectedToken},
		{name: "garbage", src: "this is not a statement;", kind: KindUnexpectedToken},
		{name: "field without tag", src: "message M { int32 x; }", kind: KindUnexpectedToken},
		{name: "field without semicolon", src: "message M {\n int32 x = 1\n}", kind: KindUnexpectedToken, line: 2},
		{name: "malformed rpc", src: "message A {}\nservice S { rpc X A returns B; }", kind: KindUnexpectedToken, line: 2},
		{name: "import after body", src: "message M {}\nimport \"a.proto\";", kind: KindUnexpectedToken, line: 2},
		{name: "message enum clash", src: "message A {}\nenum A { X = 0; }", kind: KindDuplicateName, line: 2},
		{name: "nested clash", src: "message M { message N {} enum N { X = 0; } }", kind: KindDuplicateName},
		{name: "service clash", src: "message S {}\nservice S {}", kind: KindDuplicateName, line: 2},
		{name: "duplicate method", src: "message A {}\nservice S {\n  rpc X (A) returns (A);\n  rpc X (A) returns (A);\n}", kind: KindDuplicateMethod, line: 4},
		{name: "scalar request", src: "message A {}\nservice S { rpc X (int32) returns (A); }", kind: KindInvalidMethodType},
		{name: "enum response", src: "message A {}\nenum E { Z = 0; }\nservice S { rpc X (A) returns (E); }", kind: KindInvalidMethodType},
		{name: "unknown rpc type", src: "service S { rpc X (Nope) returns (Nope); }", kind: KindUnknownType},
		{name: "bad syntax statement", src: "syntax proto3;", kind: KindUnexpectedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSource(t, tt.src)
			perr := requireKind(t, err, tt.kind)
			assert.Equal(t, testPath, perr.Path)
			if tt.line > 0 {
				assert.Equal(t, tt.line, perr.Line)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	_, err := parseSource(t, "message M {\n  int32 x = 0;\n}")
	assert.Equal(t,
		`InvalidTag: /schemas/test.proto:2: field tag '0' must be an integer between 1 and 536870911 ("int32 x = 0;")`,
		err.Error())
}

func TestParseEmptyInput(t *testing.T) {
	_, err := parseSource(t, "\n   \n")
	perr := requireKind(t, err, KindEmptyInput)
	assert.Equal(t, testPath, perr.Path)
}

func TestParseMissingFile(t *testing.T) {
	fs := testutil.MemFs(t, nil)
	_, err := ParseFile("/schemas/none.proto", WithFs(fs))
	perr := requireKind(t, err, KindIoError)
	assert.NotNil(t, perr.Unwrap())
}
