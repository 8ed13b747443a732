package idlparser_test

import (
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/tallstoat/idlparser"
)

// Example code for a parse Session reading from a virtual filesystem
func ExampleSession() {
	// the session reads every file through an afero.Fs, so schemas do not
	// have to live on disk
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/schemas/money.proto", []byte(`
message Money {
  string currency = 1;
  int64 units = 2;
}
`), 0o644)
	afero.WriteFile(fs, "/schemas/invoice.proto", []byte(`
import "money.proto" as m;

message Invoice {
  m.Money total = 1;
  repeated Line lines = 2;
  map<string, m.Money> taxes = 3;
}

message Line {
  string sku = 1;
  m.Money price = 2;
}
`), 0o644)

	sess := idlparser.NewSession(idlparser.WithFs(fs))
	pf, err := sess.Parse("/schemas/invoice.proto")
	if err != nil {
		fmt.Printf("Unable to parse schema file: %v \n", err)
		os.Exit(-1)
	}

	for _, f := range pf.Message("Invoice").Fields {
		fmt.Printf("%s: %s (%s)\n", f.Name, f.Type.Name(), f.Type.Category())
	}
	fmt.Printf("files parsed: %d\n", len(sess.Files()))
	// Output:
	// total: Money (message)
	// lines: Line (message)
	// taxes: map<string, Money> (map)
	// files parsed: 2
}
