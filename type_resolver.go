package idlparser

import (
	"strings"
)

// typeResolver binds type names used in one file to scalars, enums,
// messages or maps.
type typeResolver struct {
	file *SchemaFile
}

// resolve binds name as seen from scope, the innermost enclosing message
// (nil at file level). Resolution order is scalar, enum, message, map.
func (r typeResolver) resolve(name string, scope *Message, at where) (DataType, error) {
	if st, ok := LookupScalar(name); ok {
		return ScalarDataType{Scalar: st}, nil
	}
	switch decl := r.lookup(name, scope).(type) {
	case *Enumeration:
		return EnumDataType{Enum: decl}, nil
	case *Message:
		return MessageDataType{Message: decl}, nil
	}
	if key, value, ok := splitMapType(name); ok {
		return r.resolveMap(key, value, scope, at)
	}
	return nil, errUnknownType(at, name)
}

func (r typeResolver) resolveMap(key, value string, scope *Message, at where) (DataType, error) {
	st, ok := LookupScalar(key)
	if !ok || !st.IsValidMapKey() {
		return nil, errInvalidMapKey(at, key)
	}
	vt, err := r.resolve(value, scope, at)
	if err != nil {
		return nil, err
	}
	return MapDataType{Key: st, Value: vt}, nil
}

// resolveMessage binds an rpc request or response type.
func (r typeResolver) resolveMessage(name string, at where) (*Message, error) {
	if m, ok := r.lookup(name, nil).(*Message); ok {
		return m, nil
	}
	if _, ok := LookupScalar(name); ok || r.lookup(name, nil) != nil {
		return nil, errInvalidMethodType(at, name)
	}
	return nil, errUnknownType(at, name)
}

// lookup finds the enum or message a possibly dotted name refers to. The
// enclosing messages are searched innermost first, then the file's top
// level, then each import in order. The first match wins.
func (r typeResolver) lookup(name string, scope *Message) interface{} {
	parts := strings.Split(name, ".")
	for _, p := range parts {
		if p == "" {
			return nil
		}
	}

	for m := scope; m != nil; m = m.parent {
		if decl := lookupIn(m.Messages, m.Enums, parts); decl != nil {
			return decl
		}
	}
	if decl := lookupIn(r.file.Messages, r.file.Enums, parts); decl != nil {
		return decl
	}
	if r.file.Package != "" {
		if rest, ok := trimPackage(parts, r.file.Package); ok {
			if decl := lookupIn(r.file.Messages, r.file.Enums, rest); decl != nil {
				return decl
			}
		}
	}

	for _, imp := range r.file.Imports {
		target := imp.Target
		if imp.Alias != "" {
			if len(parts) > 1 && parts[0] == imp.Alias {
				if decl := lookupIn(target.Messages, target.Enums, parts[1:]); decl != nil {
					return decl
				}
			}
			continue
		}
		if decl := lookupIn(target.Messages, target.Enums, parts); decl != nil {
			return decl
		}
		if target.Package == "" {
			continue
		}
		if rest, ok := trimPackage(parts, target.Package); ok {
			if decl := lookupIn(target.Messages, target.Enums, rest); decl != nil {
				return decl
			}
		}
	}
	return nil
}

// lookupIn searches one scope. Within a scope enums are checked before
// messages; only messages can be descended into.
func lookupIn(msgs []*Message, enums []*Enumeration, parts []string) interface{} {
	head := parts[0]
	if len(parts) == 1 {
		for _, e := range enums {
			if e.Name == head {
				return e
			}
		}
	}
	for _, m := range msgs {
		if m.Name != head {
			continue
		}
		if len(parts) == 1 {
			return m
		}
		return lookupIn(m.Messages, m.Enums, parts[1:])
	}
	return nil
}

// trimPackage strips a leading package name from a dotted type name.
func trimPackage(parts []string, pkg string) ([]string, bool) {
	pkgParts := strings.Split(pkg, ".")
	if len(parts) <= len(pkgParts) {
		return nil, false
	}
	for i, p := range pkgParts {
		if parts[i] != p {
			return nil, false
		}
	}
	return parts[len(pkgParts):], true
}

// splitMapType splits `map<K,V>` into its key and value type names. V may
// itself be a map.
func splitMapType(name string) (string, string, bool) {
	if !strings.HasPrefix(name, "map<") || !strings.HasSuffix(name, ">") {
		return "", "", false
	}
	inner := name[len("map<") : len(name)-1]
	depth := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				key := strings.TrimSpace(inner[:i])
				value := strings.TrimSpace(inner[i+1:])
				if key == "" || value == "" {
					return "", "", false
				}
				return key, value, true
			}
		}
	}
	return "", "", false
}
