package idlparser

// pendingBind is a field or rpc whose type names are bound once every
// declaration of the file is known.
type pendingBind struct {
	field *MessageField
	fn    *Func
	scope *Message
	at    where
}

// bind resolves the type of every field and rpc collected while reading
// the file, in source order.
func (p *parser) bind() error {
	r := typeResolver{file: p.file}
	for _, pb := range p.pending {
		if pb.field != nil {
			dt, err := r.resolve(pb.field.TypeName, pb.scope, pb.at)
			if err != nil {
				return err
			}
			pb.field.Type = dt
			continue
		}

		req, err := r.resolveMessage(pb.fn.RequestTypeName, pb.at)
		if err != nil {
			return err
		}
		resp, err := r.resolveMessage(pb.fn.ResponseTypeName, pb.at)
		if err != nil {
			return err
		}
		pb.fn.RequestType = req
		pb.fn.ResponseType = resp
	}
	p.pending = nil
	return nil
}
