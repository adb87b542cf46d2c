// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input   string // source file
	Output  string // generated assembly file or executable
	Config  string // YAML configuration file
	History string // SQLite database for the REPL history
	Batch   string // file mask of source files to process
}

// Flags contains behavior options.
type Flags struct {
	Assembly     bool // output the generated assembly instead of an executable
	Run          bool // interpret the source file
	AssembleTest bool // verify the executable output against the interpreter
	Comments     bool // annotate the generated assembly with the source tokens
	Debug        bool
	Quiet        bool
}

// Program options of the tool.
type Program struct {
	Parameters
	Flags
}

// Mode is the way that a source is processed.
type Mode int

const (
	// REPL reads programs line by line from the terminal.
	REPL Mode = iota
	// Interpret executes the source file.
	Interpret
	// Assembly writes the generated assembly file.
	Assembly
	// Executable assembles the generated assembly file into an executable.
	Executable
)

var modeNames = map[Mode]string{
	REPL:       "repl",
	Interpret:  "interpret",
	Assembly:   "assembly",
	Executable: "executable",
}

func (m Mode) String() string {
	return modeNames[m]
}

// Default output names of the file based modes.
const (
	DefaultAssemblyOutput   = "output.s"
	DefaultExecutableOutput = "output"
)

// Mode returns the processing mode that the options select.
func (p Program) Mode() Mode {
	switch {
	case p.Input == "" && p.Batch == "":
		return REPL
	case p.Run:
		return Interpret
	case p.Assembly:
		return Assembly
	default:
		return Executable
	}
}
