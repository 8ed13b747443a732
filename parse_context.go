package idlparser

// The parsing context. We need to pass this around during parsing
// to know which statements the enclosing block accepts and which
// object nested declarations hang off.
type parseCtx struct {
	obj     interface{}
	ctxType ctxType
}

// Type of context
type ctxType int

// The various context types
const (
	fileCtx ctxType = iota
	msgCtx
	enumCtx
	serviceCtx
	rpcCtx
)

var ctxTypeToStringMap = [...]string{
	fileCtx:    "file",
	msgCtx:     "message",
	enumCtx:    "enum",
	serviceCtx: "service",
	rpcCtx:     "rpc",
}

func (pc parseCtx) String() string {
	return ctxTypeToStringMap[pc.ctxType]
}

// does this ctx permit field support?
func (pc parseCtx) permitsField() bool {
	return pc.ctxType == msgCtx
}

// does this ctx permit enum constants?
func (pc parseCtx) permitsEnumElement() bool {
	return pc.ctxType == enumCtx
}

// does this ctx permit option?
func (pc parseCtx) permitsOption() bool {
	return true
}

// does this ctx permit rpc support?
func (pc parseCtx) permitsRPC() bool {
	return pc.ctxType == serviceCtx
}

// does this ctx permit service support?
func (pc parseCtx) permitsService() bool {
	return pc.ctxType == fileCtx
}

// does this ctx permit enum support?
func (pc parseCtx) permitsEnum() bool {
	return pc.ctxType == fileCtx || pc.ctxType == msgCtx
}

// does this ctx permit msg support?
func (pc parseCtx) permitsMsg() bool {
	return pc.ctxType == fileCtx || pc.ctxType == msgCtx
}

// does this ctx permit a statement starting with label?
func (pc parseCtx) permitsLabel(label string) bool {
	switch label {
	case "message":
		return pc.permitsMsg()
	case "enum":
		return pc.permitsEnum()
	case "service":
		return pc.permitsService()
	case "rpc":
		return pc.permitsRPC()
	}
	return false
}

// the message a field or nested declaration belongs to, nil at file level
func (pc parseCtx) message() *Message {
	if m, ok := pc.obj.(*Message); ok {
		return m
	}
	return nil
}
