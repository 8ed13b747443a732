package idlparser

// OptionElement is a datastructure which models
// the option construct. Option constructs exist at
// the file, message, enum, service and rpc levels.
type OptionElement struct {
	Name            string
	Value           string
	IsParenthesized bool
	// IsQuoted is set when Value was written as a string literal.
	IsQuoted        bool
	Comment         string
}

// ImportBinding is one import statement of a file. Target is shared with
// every other binding of the same canonical path in the parse session.
type ImportBinding struct {
	// Path is the import path as written in the statement.
	Path    string
	Alias   string
	Comment string
	Line    int
	Target  *SchemaFile
}

// EnumerationElement is a datastructure which models
// a single named value of an enum.
type EnumerationElement struct {
	Name    string
	Value   int32
	Options []OptionElement
	Comment string
	Line    int
}

// Enumeration is a datastructure which models
// the enum construct. Enums are defined standalone
// or as nested entities within messages.
type Enumeration struct {
	Name          string
	QualifiedName string
	Comment       string
	Options       []OptionElement
	Elements      []*EnumerationElement
	Line          int

	file   *SchemaFile
	parent *Message
}

// File returns the file the enum is declared in.
func (e *Enumeration) File() *SchemaFile { return e.file }

// Parent returns the enclosing message, or nil for a top-level enum.
func (e *Enumeration) Parent() *Message { return e.parent }

// MessageField is a datastructure which models a field of a message.
type MessageField struct {
	Name     string
	Tag      int
	Repeated bool
	// TypeName is the type as spelled in the source; Type is what it
	// resolved to.
	TypeName string
	Type     DataType
	Options  []OptionElement
	Comment  string
	Line     int
}

// Message is a datastructure which models
// the message construct.
type Message struct {
	Name          string
	QualifiedName string
	Comment       string
	Options       []OptionElement
	Fields        []*MessageField
	Messages      []*Message
	Enums         []*Enumeration
	Line          int

	file   *SchemaFile
	parent *Message
}

// File returns the file the message is declared in.
func (m *Message) File() *SchemaFile { return m.file }

// Parent returns the enclosing message, or nil for a top-level message.
func (m *Message) Parent() *Message { return m.parent }

// Field returns the field with the given name.
func (m *Message) Field(name string) *MessageField {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Func is a datastructure which models the rpc construct.
// RPCs are defined nested within services.
type Func struct {
	Name             string
	Comment          string
	Options          []OptionElement
	RequestTypeName  string
	ResponseTypeName string
	RequestType      *Message
	ResponseType     *Message
	ClientStreaming  bool
	ServerStreaming  bool
	Line             int
}

// Service is a datastructure which models
// the service construct. Service construct defines
// the rpcs (apis) for the service.
type Service struct {
	Name    string
	Comment string
	Options []OptionElement
	Methods []*Func
	Line    int
}

// SchemaFile is a datastructure which represents the parsed model
// of a schema file with every import and type reference resolved.
//
// A SchemaFile is created once per canonical path in a parse session and is
// shared, never copied, by every file importing it. It must be treated as
// read-only once returned.
type SchemaFile struct {
	// Name is the file name without its extension.
	Name string
	// Path is the canonical path the file was read from.
	Path     string
	Comment  string
	Syntax   string
	Package  string
	Options  []OptionElement
	Imports  []*ImportBinding
	Messages []*Message
	Enums    []*Enumeration
	Services []*Service
}

// Message returns the top-level message with the given name.
func (pf *SchemaFile) Message(name string) *Message {
	for _, m := range pf.Messages {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Enum returns the top-level enum with the given name.
func (pf *SchemaFile) Enum(name string) *Enumeration {
	for _, e := range pf.Enums {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Service returns the service with the given name.
func (pf *SchemaFile) Service(name string) *Service {
	for _, s := range pf.Services {
		if s.Name == name {
			return s
		}
	}
	return nil
}
