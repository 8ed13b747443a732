/*
Package idlparser is a library for parsing line-oriented schema files in a
protocol buffer like language (".proto" files).

It parses a file together with everything it imports and returns a
SchemaFile datastructure, or a non-nil error if there is an issue. Type
references in fields and rpc signatures are bound to the enums and messages
they name, whether those are declared locally or in an imported file.

API

Clients should invoke the following apis :-

	func ParseFile(path string, opts ...Option) (*SchemaFile, error)

ParseFile() parses the file at path in a fresh Session. Imports are resolved
relative to the importing file's directory unless options say otherwise.

	func NewSession(opts ...Option) *Session
	func (s *Session) Parse(path string) (*SchemaFile, error)

A Session caches every file it parses by canonical path. A file imported by
several others (or parsed again later) is parsed once and the same
*SchemaFile is shared. Import cycles are detected and reported with the full
import chain.

Options

	WithFs(fs)                  read files from an afero.Fs instead of the OS
	WithResolver(r)             map import statements to paths
	WithSearchPaths(dirs...)    use a SearchPathResolver over dirs
	WithParallelImports(n)      parse up to n imports of a file concurrently
	WithLogger(l)               log progress to a logrus.FieldLogger

Imports

An import may bind an alias:

	import "money.proto" as m;

Types of an aliased import are only visible as m.Type. Types of an
unaliased import are visible by their own name or qualified by the imported
file's package. Imports are not transitive.

SchemaFile datastructure

The SchemaFile carries the file's leading comment, syntax, package, imports,
options, enums, messages and services. Field types are DataType values: a
ScalarDataType, EnumDataType, MessageDataType or MapDataType. Nested
declarations keep a link to their parent message and to their file.

	func (pf *SchemaFile) Generate(w io.Writer) error
	func (pf *SchemaFile) GenerateSorted(w io.Writer) error
	func (pf *SchemaFile) Summary() FileSummary

Generate writes the file back in canonical form. Summary returns a plain
view of the file suitable for YAML or JSON encoding.

Errors

This library logs nothing unless a logger is supplied. Failures are
returned as *Error values carrying the ErrorKind, the file path, the line
number and text of the offending statement and, for cyclic imports, the
import chain. ErrorKind implements error so that kinds can be matched with
errors.Is.

*/
package idlparser
