package idlparser_test

import (
	"fmt"
	"os"

	"github.com/tallstoat/idlparser"
)

// Example code for the ParseFile() API
func Example_parseFile() {
	file := "./testdata/mathservice.proto"

	// invoke ParseFile() API to parse the file; imports are looked up
	// next to it
	pf, err := idlparser.ParseFile(file)
	if err != nil {
		fmt.Printf("Unable to parse schema file: %v \n", err)
		os.Exit(-1)
	}

	// print attributes of the returned datastructure
	fmt.Printf("Package: %v, Syntax: %v\n", pf.Package, pf.Syntax)
	for _, svc := range pf.Services {
		for _, fn := range svc.Methods {
			req := fn.RequestType.Name
			if fn.ClientStreaming {
				req = "stream " + req
			}
			fmt.Printf("%s: %s -> %s (from %s)\n", fn.Name, req, fn.ResponseType.Name, fn.ResponseType.File().Name)
		}
	}
	// Output:
	// Package: math, Syntax: proto3
	// Add: Operands -> Result (from mathtypes)
	// Sum: stream Operands -> Result (from mathtypes)
	// Divide: Operands -> Result (from mathtypes)
}
