package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/tallstoat/idlparser"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	faintColor = color.New(color.Faint)
	okColor    = color.New(color.FgGreen)
)

// printError writes err to w. Parse errors get their location and, for
// import cycles, the chain of files on separate lines.
func printError(w io.Writer, err error) {
	var perr *idlparser.Error
	if !errors.As(err, &perr) {
		fmt.Fprintf(w, "%s %v\n", errorColor.Sprint("error:"), err)
		return
	}

	loc := perr.Path
	if perr.Line > 0 {
		loc = fmt.Sprintf("%s:%d", perr.Path, perr.Line)
	}
	if loc != "" {
		loc += ": "
	}
	fmt.Fprintf(w, "%s%s %s\n", loc, errorColor.Sprint(perr.Kind.String()+":"), perr.Message)
	if perr.Text != "" {
		fmt.Fprintf(w, "    %s\n", faintColor.Sprint(perr.Text))
	}
	if len(perr.Chain) > 0 {
		fmt.Fprintf(w, "    %s\n", strings.Join(perr.Chain, "\n    -> "))
	}
}
