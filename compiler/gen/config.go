package gen

// Config holds the code generation configuration.
type Config struct {
	// Package is the import path of the generated package,
	// e.g. "github.com/org/project/store".
	Package string

	// Target is the directory generated files are written to.
	Target string

	// Header overrides the default header comment of generated files.
	Header string

	// Serialization enables serialization support on generated DTO
	// structs: codec struct tags plus binary marshal and unmarshal
	// methods.
	Serialization bool

	// Templates are custom templates rendered after the built-in
	// artifacts, one output file per template and table.
	Templates []*Template

	// Workers bounds the number of files generated concurrently.
	// Zero means one worker per CPU.
	Workers int
}
