package idlparser

import "sort"

// The sorted* helpers return alphabetically ordered copies of declaration
// lists. Parsed files are shared between importers, so they are never
// sorted in place.

func sortedImports(imports []*ImportBinding) []*ImportBinding {
	out := append([]*ImportBinding(nil), imports...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	return out
}

func sortedServices(services []*Service) []*Service {
	out := append([]*Service(nil), services...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func sortedEnums(enums []*Enumeration) []*Enumeration {
	out := append([]*Enumeration(nil), enums...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func sortedMessages(msgs []*Message) []*Message {
	out := append([]*Message(nil), msgs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
