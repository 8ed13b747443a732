package idlparser

// FileSummary is a plain view of a parsed file, suited to YAML or JSON
// encoding. Resolved types are reported by their qualified names.
type FileSummary struct {
	Name     string            `yaml:"name" json:"name"`
	Path     string            `yaml:"path" json:"path"`
	Syntax   string            `yaml:"syntax,omitempty" json:"syntax,omitempty"`
	Package  string            `yaml:"package,omitempty" json:"package,omitempty"`
	Comment  string            `yaml:"comment,omitempty" json:"comment,omitempty"`
	Imports  []ImportSummary   `yaml:"imports,omitempty" json:"imports,omitempty"`
	Messages []MessageSummary  `yaml:"messages,omitempty" json:"messages,omitempty"`
	Enums    []EnumSummary     `yaml:"enums,omitempty" json:"enums,omitempty"`
	Services []ServiceSummary  `yaml:"services,omitempty" json:"services,omitempty"`
	Options  map[string]string `yaml:"options,omitempty" json:"options,omitempty"`
}

// ImportSummary is one import statement and the canonical path it
// resolved to.
type ImportSummary struct {
	Path   string `yaml:"path" json:"path"`
	Alias  string `yaml:"alias,omitempty" json:"alias,omitempty"`
	Target string `yaml:"target" json:"target"`
}

// MessageSummary describes a message with its nested declarations. Name
// is the qualified name.
type MessageSummary struct {
	Name     string           `yaml:"name" json:"name"`
	Fields   []FieldSummary   `yaml:"fields,omitempty" json:"fields,omitempty"`
	Messages []MessageSummary `yaml:"messages,omitempty" json:"messages,omitempty"`
	Enums    []EnumSummary    `yaml:"enums,omitempty" json:"enums,omitempty"`
}

// FieldSummary describes a message field. Kind is the category of the
// field type: scalar, enum, message or map.
type FieldSummary struct {
	Name     string `yaml:"name" json:"name"`
	Tag      int    `yaml:"tag" json:"tag"`
	Type     string `yaml:"type" json:"type"`
	Kind     string `yaml:"kind" json:"kind"`
	Repeated bool   `yaml:"repeated,omitempty" json:"repeated,omitempty"`
	// File the type is declared in, when it is not the field's own file.
	From string `yaml:"from,omitempty" json:"from,omitempty"`
}

// EnumSummary maps the elements of an enum to their values.
type EnumSummary struct {
	Name   string           `yaml:"name" json:"name"`
	Values map[string]int32 `yaml:"values" json:"values"`
}

// ServiceSummary lists the methods of a service.
type ServiceSummary struct {
	Name    string          `yaml:"name" json:"name"`
	Methods []MethodSummary `yaml:"methods" json:"methods"`
}

// MethodSummary describes an rpc by the qualified names of its request
// and response messages.
type MethodSummary struct {
	Name            string `yaml:"name" json:"name"`
	Request         string `yaml:"request" json:"request"`
	Response        string `yaml:"response" json:"response"`
	ClientStreaming bool   `yaml:"clientStreaming,omitempty" json:"clientStreaming,omitempty"`
	ServerStreaming bool   `yaml:"serverStreaming,omitempty" json:"serverStreaming,omitempty"`
}

// Summary builds the plain view of the file.
func (pf *SchemaFile) Summary() FileSummary {
	fs := FileSummary{
		Name:    pf.Name,
		Path:    pf.Path,
		Syntax:  pf.Syntax,
		Package: pf.Package,
		Comment: pf.Comment,
	}
	if len(pf.Options) > 0 {
		fs.Options = make(map[string]string, len(pf.Options))
		for _, opt := range pf.Options {
			fs.Options[opt.Name] = opt.Value
		}
	}
	for _, imp := range pf.Imports {
		fs.Imports = append(fs.Imports, ImportSummary{Path: imp.Path, Alias: imp.Alias, Target: imp.Target.Path})
	}
	for _, m := range pf.Messages {
		fs.Messages = append(fs.Messages, summarizeMessage(pf, m))
	}
	for _, e := range pf.Enums {
		fs.Enums = append(fs.Enums, summarizeEnum(e))
	}
	for _, s := range pf.Services {
		ss := ServiceSummary{Name: s.Name}
		for _, fn := range s.Methods {
			ss.Methods = append(ss.Methods, MethodSummary{
				Name:            fn.Name,
				Request:         fn.RequestType.QualifiedName,
				Response:        fn.ResponseType.QualifiedName,
				ClientStreaming: fn.ClientStreaming,
				ServerStreaming: fn.ServerStreaming,
			})
		}
		fs.Services = append(fs.Services, ss)
	}
	return fs
}

func summarizeMessage(pf *SchemaFile, m *Message) MessageSummary {
	ms := MessageSummary{Name: m.QualifiedName}
	for _, f := range m.Fields {
		ms.Fields = append(ms.Fields, FieldSummary{
			Name:     f.Name,
			Tag:      f.Tag,
			Type:     f.Type.Name(),
			Kind:     f.Type.Category().String(),
			Repeated: f.Repeated,
			From:     declaringFile(pf, f.Type),
		})
	}
	for _, child := range m.Messages {
		ms.Messages = append(ms.Messages, summarizeMessage(pf, child))
	}
	for _, e := range m.Enums {
		ms.Enums = append(ms.Enums, summarizeEnum(e))
	}
	return ms
}

func summarizeEnum(e *Enumeration) EnumSummary {
	es := EnumSummary{Name: e.QualifiedName, Values: make(map[string]int32, len(e.Elements))}
	for _, el := range e.Elements {
		es.Values[el.Name] = el.Value
	}
	return es
}

func declaringFile(pf *SchemaFile, dt DataType) string {
	var f *SchemaFile
	switch t := dt.(type) {
	case EnumDataType:
		f = t.Enum.File()
	case MessageDataType:
		f = t.Message.File()
	case MapDataType:
		return declaringFile(pf, t.Value)
	}
	if f == nil || f == pf {
		return ""
	}
	return f.Path
}
