package idlparser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tallstoat/idlparser/internal/testutil"
)

const shopSource = `// Shop schema.
//
// Orders and their status.
syntax = "proto3";
package shop;

import "common.proto" as common; // shared types

option go_package = "example.com/shop";

service Orders { // order api
  rpc Place (Order) returns (Order);
  rpc Watch (Order) returns (stream Order) {
    option deprecated = true;
  }
}

enum Status {
  PENDING = 0;
  DONE = 1 [(label) = "done"];
}

message Order {
  int64 id = 1; // primary key
  repeated string tags = 2;
  map<string,common.Money> prices = 3 [(validate.required) = true];
  Status status = 4;
  Line line = 5;
  message Line {
    int32 qty = 1;
  }
  enum Channel { WEB = 0; }
}
`

const shopGenerated = `// Shop schema.
//
// Orders and their status.

syntax = "proto3";
package shop;

import "common.proto" as common; // shared types

option go_package = "example.com/shop";

service Orders { // order api
	rpc Place (Order) returns (Order);
	rpc Watch (Order) returns (stream Order) {
		option deprecated = true;
	}
}

enum Status {
	PENDING = 0;
	DONE = 1 [(label) = "done"];
}

message Order {
	int64 id = 1; // primary key
	repeated string tags = 2;
	map<string, common.Money> prices = 3 [(validate.required) = true];
	Status status = 4;
	Line line = 5;

	enum Channel {
		WEB = 0;
	}

	message Line {
		int32 qty = 1;
	}
}
`

const commonSource = "message Money { int64 units = 1; }\n"

func parseShop(t *testing.T, dir, src string) *SchemaFile {
	t.Helper()
	fs := testutil.MemFs(t, map[string]string{
		dir + "/shop.proto":   src,
		dir + "/common.proto": commonSource,
	})
	pf, err := ParseFile(dir+"/shop.proto", WithFs(fs))
	require.NoError(t, err)
	return pf
}

func TestGenerate(t *testing.T) {
	pf := parseShop(t, "/schemas", shopSource)

	var buf bytes.Buffer
	require.NoError(t, pf.Generate(&buf))
	testutil.ExpectNoDiff(t, shopGenerated, buf.String())
}

func TestGenerateRoundTrip(t *testing.T) {
	pf := parseShop(t, "/schemas", shopSource)
	var first bytes.Buffer
	require.NoError(t, pf.Generate(&first))

	again := parseShop(t, "/out", first.String())
	var second bytes.Buffer
	require.NoError(t, again.Generate(&second))
	testutil.ExpectNoDiff(t, first.String(), second.String())

	assert.Equal(t, pf.Comment, again.Comment)
	assert.Equal(t, pf.Options, again.Options)
	assert.Equal(t, pf.Message("Order").Field("prices").Type.Name(), again.Message("Order").Field("prices").Type.Name())
}

func TestGenerateSorted(t *testing.T) {
	fs := testutil.MemFs(t, map[string]string{
		"/s/z.proto": "message Z {}\n",
		"/s/a.proto": "message A {}\n",
		"/s/root.proto": `import "z.proto";
import "a.proto";
message Beta {
  int32 b = 2;
  int32 a = 1;
  message Y {}
  message X {}
}
enum Zed { Z = 0; }
message Alpha {}
enum Ant { A = 0; }
service Svc2 {}
service Svc1 {}
`,
	})
	pf, err := ParseFile("/s/root.proto", WithFs(fs))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, pf.GenerateSorted(&buf))
	testutil.ExpectNoDiff(t, `import "a.proto";
import "z.proto";

service Svc1 {
}

service Svc2 {
}

enum Ant {
	A = 0;
}

enum Zed {
	Z = 0;
}

message Alpha {
}

message Beta {
	int32 b = 2;
	int32 a = 1;

	message X {
	}

	message Y {
	}
}
`, buf.String())

	// the parsed file keeps source order
	assert.Equal(t, "Beta", pf.Messages[0].Name)
	assert.Equal(t, "z.proto", pf.Imports[0].Path)
	assert.Equal(t, "Y", pf.Messages[0].Messages[0].Name)
	assert.Equal(t, "Svc2", pf.Services[0].Name)
}

func TestGenerateQuotedOptions(t *testing.T) {
	pf := mustParse(t, `option java_package = "com.example";
option optimize_for = SPEED;
message M {
  string s = 1 [default = "abc"];
  int32 n = 2 [default = 7];
}
`)
	const want = `option java_package = "com.example";
option optimize_for = SPEED;

message M {
	string s = 1 [default = "abc"];
	int32 n = 2 [default = 7];
}
`
	var buf bytes.Buffer
	require.NoError(t, pf.Generate(&buf))
	testutil.ExpectNoDiff(t, want, buf.String())

	again := mustParse(t, buf.String())
	assert.Equal(t, []OptionElement{
		{Name: "java_package", Value: "com.example", IsQuoted: true},
		{Name: "optimize_for", Value: "SPEED"},
	}, again.Options)
	assert.Equal(t, []OptionElement{{Name: "default", Value: "abc", IsQuoted: true}}, again.Message("M").Field("s").Options)
	assert.Equal(t, []OptionElement{{Name: "default", Value: "7"}}, again.Message("M").Field("n").Options)
}

func TestGenerateNilWriter(t *testing.T) {
	pf := &SchemaFile{}
	assert.Error(t, pf.Generate(nil))
}

func TestSummary(t *testing.T) {
	pf := parseShop(t, "/schemas", shopSource)
	s := pf.Summary()

	assert.Equal(t, "shop", s.Name)
	assert.Equal(t, "/schemas/shop.proto", s.Path)
	assert.Equal(t, map[string]string{"go_package": "example.com/shop"}, s.Options)
	assert.Equal(t, []ImportSummary{{Path: "common.proto", Alias: "common", Target: "/schemas/common.proto"}}, s.Imports)

	require.Len(t, s.Messages, 1)
	order := s.Messages[0]
	assert.Equal(t, FieldSummary{
		Name: "prices", Tag: 3, Type: "map<string, Money>", Kind: "map", From: "/schemas/common.proto",
	}, order.Fields[2])
	assert.Equal(t, FieldSummary{Name: "status", Tag: 4, Type: "Status", Kind: "enum"}, order.Fields[3])
	assert.Equal(t, "Order.Line", order.Messages[0].Name)
	assert.Equal(t, EnumSummary{Name: "Order.Channel", Values: map[string]int32{"WEB": 0}}, order.Enums[0])

	assert.Equal(t, []MethodSummary{
		{Name: "Place", Request: "Order", Response: "Order"},
		{Name: "Watch", Request: "Order", Response: "Order", ServerStreaming: true},
	}, s.Services[0].Methods)

	out, err := yaml.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), "map<string, Money>")
	assert.Contains(t, string(out), "serverStreaming: true")
}
