package idlparser

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tallstoat/idlparser/internal/scanner"
)

// Largest field tag the wire format can carry.
const maxTag = 536870911

var (
	messageHeaderRegex = regexp.MustCompile(`^message\s+(.*?)\s*\{$`)
	enumHeaderRegex    = regexp.MustCompile(`^enum\s+(.*?)\s*\{$`)
	serviceHeaderRegex = regexp.MustCompile(`^service\s+(.*?)\s*\{$`)
	rpcRegex           = regexp.MustCompile(
		`^rpc\s+(\S*?)\s*\(\s*(stream\s+)?([A-Za-z0-9_.]+)\s*\)\s*returns\s*\(\s*(stream\s+)?([A-Za-z0-9_.]+)\s*\)\s*(;|\{)$`)
	identifierRegex  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	tagRegex         = regexp.MustCompile(`^[0-9]+$`)
	enumValueRegex   = regexp.MustCompile(`^-?(0|[1-9][0-9]*|0[xX][0-9A-Fa-f]+|0[0-7]+)$`)
	packageNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

// The parser. It reads the statements of one file, resolves the file's
// imports through the session and collects every declaration. Field and
// rpc types are bound only after the whole file has been read, so that
// declarations may be referenced before they appear.
type parser struct {
	sess    *Session
	path    string
	stmts   *scanner.Statements
	file    *SchemaFile
	pending []pendingBind
}

// an import statement that passed the syntax check
type importStmt struct {
	path    string
	alias   string
	comment string
	at      where
}

func (p *parser) parse() error {
	if err := p.readHeader(); err != nil {
		return err
	}
	if err := p.readBlock(parseCtx{ctxType: fileCtx, obj: p.file}, where{}, "", ""); err != nil {
		return err
	}
	return p.bind()
}

func (p *parser) at(st scanner.Statement) where {
	return where{path: p.path, line: st.Line, text: st.Source}
}

func (p *parser) peek() (scanner.Statement, bool, error) {
	st, ok, err := p.stmts.Peek()
	if err != nil {
		return st, false, errIo(p.path, err)
	}
	return st, ok, nil
}

func (p *parser) next() (scanner.Statement, bool, error) {
	st, ok, err := p.stmts.Next()
	if err != nil {
		return st, false, errIo(p.path, err)
	}
	return st, ok, nil
}

// readHeader consumes the leading comment block and the syntax, package,
// option and import statements, then resolves the imports.
func (p *parser) readHeader() error {
	var (
		imports  []importStmt
		comments []string
		seenStmt bool
	)
	for {
		st, ok, err := p.peek()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if st.IsComment() {
			if !seenStmt {
				comments = append(comments, st.Comment)
			}
			if _, _, err := p.next(); err != nil {
				return err
			}
			continue
		}

		switch {
		case hasKeyword(st.Text, "import"):
			is, err := p.readImport(st)
			if err != nil {
				return err
			}
			imports = append(imports, is)
		case hasKeyword(st.Text, "syntax"):
			if err := p.readSyntax(st); err != nil {
				return err
			}
		case hasKeyword(st.Text, "package"):
			if err := p.readPackage(st); err != nil {
				return err
			}
		case hasKeyword(st.Text, "option"):
			if err := p.readOption(st, parseCtx{ctxType: fileCtx, obj: p.file}); err != nil {
				return err
			}
		default:
			p.file.Comment = strings.Join(comments, "\n")
			return p.resolveImports(imports)
		}
		seenStmt = true
		if _, _, err := p.next(); err != nil {
			return err
		}
	}
	p.file.Comment = strings.Join(comments, "\n")
	return p.resolveImports(imports)
}

// readImport checks the syntax of `import "<path>" [as <alias>];`.
func (p *parser) readImport(st scanner.Statement) (importStmt, error) {
	at := p.at(st)
	if !strings.HasSuffix(st.Text, ";") {
		return importStmt{}, errMalformedImport(at, "import should end with ';'")
	}
	fields := strings.Fields(strings.TrimSuffix(st.Text, ";"))
	if fields[0] != "import" {
		return importStmt{}, errMalformedImport(at, "first field should be keyword import")
	}
	if len(fields) < 2 {
		return importStmt{}, errMalformedImport(at, "missing file path")
	}
	quoted := fields[1]
	if len(quoted) < 2 || !strings.HasPrefix(quoted, `"`) || !strings.HasSuffix(quoted, `"`) {
		return importStmt{}, errMalformedImport(at, "file path should start and end with a quote")
	}
	path := quoted[1 : len(quoted)-1]
	if path == "" {
		return importStmt{}, errMalformedImport(at, "empty file path")
	}

	is := importStmt{path: path, comment: st.Comment, at: at}
	switch len(fields) {
	case 2:
	case 3:
		if fields[2] != "as" {
			return importStmt{}, errMalformedImport(at, "third field should be keyword as")
		}
		return importStmt{}, errMalformedImport(at, "missing alias after as")
	case 4:
		if fields[2] != "as" {
			return importStmt{}, errMalformedImport(at, "third field should be keyword as")
		}
		if !identifierRegex.MatchString(fields[3]) {
			return importStmt{}, errMalformedImport(at, "alias should be an identifier")
		}
		// a keyword alias would start its references with a statement label
		if reservedLabels[fields[3]] || fields[3] == "option" {
			return importStmt{}, errMalformedImport(at, "alias should not be a keyword")
		}
		is.alias = fields[3]
	default:
		return importStmt{}, errMalformedImport(at, "unexpected fields after alias")
	}
	return is, nil
}

func (p *parser) resolveImports(imports []importStmt) error {
	if len(imports) == 0 {
		return nil
	}

	canonical := make([]string, len(imports))
	aliases := make(map[string]string)
	for i, is := range imports {
		target, err := p.sess.resolver.Resolve(p.path, is.path)
		if err == nil {
			// resolvers may spell one file several ways
			target, err = canonicalPath(target)
		}
		if err != nil {
			return errResolveImport(is.at, is.path, err)
		}
		canonical[i] = target
		if is.alias == "" {
			continue
		}
		if prev, ok := aliases[is.alias]; ok && prev != target {
			return errAliasConflict(is.at, is.alias, prev, target)
		}
		aliases[is.alias] = target
	}

	targets := make([]*SchemaFile, len(imports))
	if p.sess.parallel > 1 {
		var g errgroup.Group
		g.SetLimit(p.sess.parallel)
		for i := range imports {
			i := i
			g.Go(func() error {
				f, err := p.sess.load(imports[i].at, p.path, canonical[i])
				targets[i] = f
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	} else {
		for i, is := range imports {
			f, err := p.sess.load(is.at, p.path, canonical[i])
			if err != nil {
				return err
			}
			targets[i] = f
		}
	}

	for i, is := range imports {
		p.file.Imports = append(p.file.Imports, &ImportBinding{
			Path:    is.path,
			Alias:   is.alias,
			Comment: is.comment,
			Line:    is.at.line,
			Target:  targets[i],
		})
	}
	return nil
}

func (p *parser) readSyntax(st scanner.Statement) error {
	body, ok := statementBody(st.Text, "syntax")
	if !ok || !strings.HasPrefix(body, "=") {
		return errUnexpectedToken(p.at(st), parseCtx{ctxType: fileCtx})
	}
	value := strings.TrimSpace(body[1:])
	if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
		return errUnexpectedToken(p.at(st), parseCtx{ctxType: fileCtx})
	}
	p.file.Syntax = value[1 : len(value)-1]
	return nil
}

func (p *parser) readPackage(st scanner.Statement) error {
	body, ok := statementBody(st.Text, "package")
	if !ok {
		return errUnexpectedToken(p.at(st), parseCtx{ctxType: fileCtx})
	}
	if !packageNameRegex.MatchString(body) {
		return errInvalidName(p.at(st), "package", body)
	}
	p.file.Package = body
	return nil
}

// readBlock reads declarations until the closing brace of the block, or
// until the end of the file at file level.
func (p *parser) readBlock(ctx parseCtx, open where, what, name string) error {
	for {
		st, ok, err := p.next()
		if err != nil {
			return err
		}
		if !ok {
			if ctx.ctxType == fileCtx {
				return nil
			}
			return errUnterminatedBlock(open, what, name)
		}
		if st.IsComment() {
			continue
		}
		if st.Text == "}" {
			if ctx.ctxType == fileCtx {
				return errUnexpectedToken(p.at(st), ctx)
			}
			return nil
		}
		if err := p.readDeclaration(st, ctx); err != nil {
			return err
		}
	}
}

func (p *parser) readDeclaration(st scanner.Statement, ctx parseCtx) error {
	label := firstWord(st.Text)
	switch {
	case reservedLabels[label] && !ctx.permitsLabel(label):
		return errUnexpectedToken(p.at(st), ctx)
	case label == "message" && ctx.permitsMsg():
		return p.readMessage(st, ctx)
	case label == "enum" && ctx.permitsEnum():
		return p.readEnum(st, ctx)
	case label == "service" && ctx.permitsService():
		return p.readService(st)
	case label == "rpc" && ctx.permitsRPC():
		return p.readRPC(st, ctx.obj.(*Service))
	case label == "option" && ctx.permitsOption():
		return p.readOption(st, ctx)
	case ctx.permitsField():
		return p.readField(st, ctx.message())
	case ctx.permitsEnumElement():
		return p.readEnumElement(st, ctx.obj.(*Enumeration))
	}
	return errUnexpectedToken(p.at(st), ctx)
}

func (p *parser) readMessage(st scanner.Statement, ctx parseCtx) error {
	at := p.at(st)
	m := messageHeaderRegex.FindStringSubmatch(st.Text)
	if m == nil {
		return errUnexpectedToken(at, ctx)
	}
	name := m[1]
	if !identifierRegex.MatchString(name) {
		return errInvalidName(at, "message", name)
	}
	parent := ctx.message()
	if err := p.checkDeclName(at, parent, "message", name); err != nil {
		return err
	}

	me := &Message{
		Name:          name,
		QualifiedName: qualify(parent, name),
		Comment:       st.Comment,
		Line:          st.Line,
		file:          p.file,
		parent:        parent,
	}
	if parent != nil {
		parent.Messages = append(parent.Messages, me)
	} else {
		p.file.Messages = append(p.file.Messages, me)
	}
	return p.readBlock(parseCtx{ctxType: msgCtx, obj: me}, at, "message", name)
}

func (p *parser) readEnum(st scanner.Statement, ctx parseCtx) error {
	at := p.at(st)
	m := enumHeaderRegex.FindStringSubmatch(st.Text)
	if m == nil {
		return errUnexpectedToken(at, ctx)
	}
	name := m[1]
	if !identifierRegex.MatchString(name) {
		return errInvalidName(at, "enum", name)
	}
	parent := ctx.message()
	if err := p.checkDeclName(at, parent, "enum", name); err != nil {
		return err
	}

	ee := &Enumeration{
		Name:          name,
		QualifiedName: qualify(parent, name),
		Comment:       st.Comment,
		Line:          st.Line,
		file:          p.file,
		parent:        parent,
	}
	if parent != nil {
		parent.Enums = append(parent.Enums, ee)
	} else {
		p.file.Enums = append(p.file.Enums, ee)
	}
	return p.readBlock(parseCtx{ctxType: enumCtx, obj: ee}, at, "enum", name)
}

func (p *parser) readService(st scanner.Statement) error {
	at := p.at(st)
	m := serviceHeaderRegex.FindStringSubmatch(st.Text)
	if m == nil {
		return errUnexpectedToken(at, parseCtx{ctxType: fileCtx})
	}
	name := m[1]
	if !identifierRegex.MatchString(name) {
		return errInvalidName(at, "service", name)
	}
	if err := p.checkDeclName(at, nil, "service", name); err != nil {
		return err
	}

	se := &Service{Name: name, Comment: st.Comment, Line: st.Line}
	p.file.Services = append(p.file.Services, se)
	return p.readBlock(parseCtx{ctxType: serviceCtx, obj: se}, at, "service", name)
}

func (p *parser) readRPC(st scanner.Statement, se *Service) error {
	at := p.at(st)
	m := rpcRegex.FindStringSubmatch(st.Text)
	if m == nil {
		return errUnexpectedToken(at, parseCtx{ctxType: serviceCtx, obj: se})
	}
	name := m[1]
	if !identifierRegex.MatchString(name) {
		return errInvalidName(at, "rpc", name)
	}
	for _, fn := range se.Methods {
		if fn.Name == name {
			return errDuplicateMethod(at, se.Name, name)
		}
	}

	fn := &Func{
		Name:             name,
		Comment:          st.Comment,
		ClientStreaming:  m[2] != "",
		RequestTypeName:  m[3],
		ServerStreaming:  m[4] != "",
		ResponseTypeName: m[5],
		Line:             st.Line,
	}
	se.Methods = append(se.Methods, fn)
	p.pending = append(p.pending, pendingBind{fn: fn, at: at})

	if m[6] == "{" {
		return p.readBlock(parseCtx{ctxType: rpcCtx, obj: fn}, at, "rpc", name)
	}
	return nil
}

// readField reads `[repeated] <type> <name> = <tag> [options];`.
func (p *parser) readField(st scanner.Statement, me *Message) error {
	at := p.at(st)
	ctx := parseCtx{ctxType: msgCtx, obj: me}
	body, ok := strings.CutSuffix(st.Text, ";")
	if !ok {
		return errUnexpectedToken(at, ctx)
	}
	body, options, ok := cutOptions(strings.TrimSpace(body))
	if !ok {
		return errUnexpectedToken(at, ctx)
	}
	decl, tagStr, ok := strings.Cut(body, "=")
	if !ok {
		return errUnexpectedToken(at, ctx)
	}
	decl = strings.TrimSpace(decl)
	tagStr = strings.TrimSpace(tagStr)

	repeated := false
	if rest, ok := strings.CutPrefix(decl, "repeated"); ok && rest != "" && isWhitespace(rest[0]) {
		repeated = true
		decl = strings.TrimSpace(rest)
	}

	var typeName, name string
	if isMapType(decl) {
		end := closingAngle(decl)
		if end < 0 {
			return errUnexpectedToken(at, ctx)
		}
		typeName = strings.Join(strings.Fields(decl[:end+1]), "")
		name = strings.TrimSpace(decl[end+1:])
		if strings.ContainsAny(name, " \t") {
			return errUnexpectedToken(at, ctx)
		}
	} else {
		parts := strings.Fields(decl)
		if len(parts) != 2 {
			return errUnexpectedToken(at, ctx)
		}
		typeName, name = parts[0], parts[1]
	}

	if !identifierRegex.MatchString(name) {
		return errInvalidName(at, "field", name)
	}
	if !tagRegex.MatchString(tagStr) {
		return errInvalidTag(at, tagStr)
	}
	tag, err := strconv.Atoi(tagStr)
	if err != nil || tag < 1 || tag > maxTag {
		return errInvalidTag(at, tagStr)
	}
	if repeated && isMapType(typeName) {
		return errInvalidMapField(at, name)
	}
	for _, f := range me.Fields {
		if f.Name == name {
			return errDuplicateField(at, me.QualifiedName, name)
		}
		if f.Tag == tag {
			return errDuplicateTag(at, me.QualifiedName, tag, f.Name)
		}
	}

	fe := &MessageField{
		Name:     name,
		Tag:      tag,
		Repeated: repeated,
		TypeName: typeName,
		Options:  options,
		Comment:  st.Comment,
		Line:     st.Line,
	}
	me.Fields = append(me.Fields, fe)
	p.pending = append(p.pending, pendingBind{field: fe, scope: me, at: at})
	return nil
}

// readEnumElement reads `<name> = <value> [options];`.
func (p *parser) readEnumElement(st scanner.Statement, ee *Enumeration) error {
	at := p.at(st)
	ctx := parseCtx{ctxType: enumCtx, obj: ee}
	body, ok := strings.CutSuffix(st.Text, ";")
	if !ok {
		return errUnexpectedToken(at, ctx)
	}
	body, options, ok := cutOptions(strings.TrimSpace(body))
	if !ok {
		return errUnexpectedToken(at, ctx)
	}
	name, valueStr, ok := strings.Cut(body, "=")
	if !ok {
		return errUnexpectedToken(at, ctx)
	}
	name = strings.TrimSpace(name)
	valueStr = strings.TrimSpace(valueStr)

	if !identifierRegex.MatchString(name) {
		return errInvalidName(at, "enum element", name)
	}
	if !enumValueRegex.MatchString(valueStr) {
		return errInvalidEnumValue(at, valueStr)
	}
	value, err := strconv.ParseInt(valueStr, 0, 32)
	if err != nil {
		return errInvalidEnumValue(at, valueStr)
	}
	for _, el := range ee.Elements {
		if el.Name == name {
			return errDuplicateEnumName(at, ee.QualifiedName, name)
		}
		if el.Value == int32(value) {
			return errDuplicateEnumValue(at, ee.QualifiedName, int32(value), el.Name)
		}
	}

	ee.Elements = append(ee.Elements, &EnumerationElement{
		Name:    name,
		Value:   int32(value),
		Options: options,
		Comment: st.Comment,
		Line:    st.Line,
	})
	return nil
}

// readOption reads `option <name> = <value>;` and hangs it off the
// object of the context.
func (p *parser) readOption(st scanner.Statement, ctx parseCtx) error {
	at := p.at(st)
	body, ok := statementBody(st.Text, "option")
	if !ok {
		return errUnexpectedToken(at, ctx)
	}
	name, value, ok := strings.Cut(body, "=")
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if !ok || name == "" || value == "" {
		return errUnexpectedToken(at, ctx)
	}
	oname, hasParenthesis := stripParenthesis(name)
	ovalue, hasQuotes := stripQuotes(value)
	oe := OptionElement{
		Name:            oname,
		Value:           ovalue,
		IsParenthesized: hasParenthesis,
		IsQuoted:        hasQuotes,
		Comment:         st.Comment,
	}

	switch obj := ctx.obj.(type) {
	case *SchemaFile:
		obj.Options = append(obj.Options, oe)
	case *Message:
		obj.Options = append(obj.Options, oe)
	case *Enumeration:
		obj.Options = append(obj.Options, oe)
	case *Service:
		obj.Options = append(obj.Options, oe)
	case *Func:
		obj.Options = append(obj.Options, oe)
	default:
		return errUnexpectedToken(at, ctx)
	}
	return nil
}

// checkDeclName rejects a message, enum or service whose name is already
// taken in the enclosing scope.
func (p *parser) checkDeclName(at where, parent *Message, kind, name string) error {
	var (
		msgs  = p.file.Messages
		enums = p.file.Enums
		scope = "file " + p.file.Name
	)
	if parent != nil {
		msgs, enums = parent.Messages, parent.Enums
		scope = "message " + parent.QualifiedName
	} else {
		for _, s := range p.file.Services {
			if s.Name == name {
				return errDuplicateName(at, kind, name, scope)
			}
		}
	}
	for _, m := range msgs {
		if m.Name == name {
			return errDuplicateName(at, kind, name, scope)
		}
	}
	for _, e := range enums {
		if e.Name == name {
			return errDuplicateName(at, kind, name, scope)
		}
	}
	return nil
}

func qualify(parent *Message, name string) string {
	if parent == nil {
		return name
	}
	return parent.QualifiedName + "." + name
}

// statement keywords that never start a field or an enum element
var reservedLabels = map[string]bool{
	"import":  true,
	"syntax":  true,
	"package": true,
	"message": true,
	"enum":    true,
	"service": true,
	"rpc":     true,
}

// hasKeyword reports whether text starts with keyword as a whole word.
func hasKeyword(text, keyword string) bool {
	if !strings.HasPrefix(text, keyword) {
		return false
	}
	return len(text) == len(keyword) || !isIdentChar(text[len(keyword)])
}

// statementBody strips the leading keyword and the terminating ';'.
func statementBody(text, keyword string) (string, bool) {
	body, ok := strings.CutSuffix(text, ";")
	if !ok || !hasKeyword(body, keyword) {
		return "", false
	}
	return strings.TrimSpace(body[len(keyword):]), true
}

func firstWord(text string) string {
	if i := strings.IndexFunc(text, func(r rune) bool { return r < 128 && !isIdentChar(byte(r)) }); i >= 0 {
		return text[:i]
	}
	return text
}

func isMapType(s string) bool {
	rest, ok := strings.CutPrefix(s, "map")
	return ok && strings.HasPrefix(strings.TrimSpace(rest), "<")
}

// closingAngle returns the index of the '>' closing the first '<' of s.
func closingAngle(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// cutOptions splits a trailing `[...]` option list off a statement body.
func cutOptions(body string) (string, []OptionElement, bool) {
	if !strings.HasSuffix(body, "]") {
		return body, nil, true
	}
	open := strings.LastIndex(body, "[")
	if open < 0 {
		return body, nil, false
	}
	var options []OptionElement
	for _, pair := range strings.Split(body[open+1:len(body)-1], ",") {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			return body, nil, false
		}
		oname, hasParenthesis := stripParenthesis(name)
		ovalue, hasQuotes := stripQuotes(value)
		options = append(options, OptionElement{
			Name:            oname,
			Value:           ovalue,
			IsParenthesized: hasParenthesis,
			IsQuoted:        hasQuotes,
		})
	}
	return strings.TrimSpace(body[:open]), options, true
}

func stripParenthesis(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		return parenthesisRemovalRegex.ReplaceAllString(s, "${1}"), true
	}
	return s, false
}

func stripQuotes(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1], true
	}
	return s, false
}

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Regex for removing bounding parenthesis
var parenthesisRemovalRegex = regexp.MustCompile(`\(([^"]*)\)`)
