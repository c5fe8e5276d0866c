// Package profile defines language and task profiles used by the sandbox.
package profile

// LanguageSpec defines how to compile and run a language.
type LanguageSpec struct {
	ID               string
	Name             string
	SourceFile       string
	BinaryFile       string
	CompileEnabled   bool
	CompileCmdTpl    string
	RunCmdTpl        string
	Env              []string
	TimeMultiplier   float64
	MemoryMultiplier float64
}

var languages = map[string]LanguageSpec{
	"cpp": {
		ID:             "cpp",
		Name:           "C++17",
		SourceFile:     "main.cpp",
		BinaryFile:     "main",
		CompileEnabled: true,
		CompileCmdTpl:  "g++ -O2 -std=c++17 -o {bin} {src} {extraFlags}",
		RunCmdTpl:      "{bin}",
		Env:            []string{"PATH=/usr/local/bin:/usr/bin:/bin"},
	},
	"c": {
		ID:             "c",
		Name:           "C11",
		SourceFile:     "main.c",
		BinaryFile:     "main",
		CompileEnabled: true,
		CompileCmdTpl:  "gcc -O2 -std=c11 -o {bin} {src} {extraFlags}",
		RunCmdTpl:      "{bin}",
		Env:            []string{"PATH=/usr/local/bin:/usr/bin:/bin"},
	},
	"python": {
		ID:               "python",
		Name:             "Python 3",
		SourceFile:       "main.py",
		CompileEnabled:   false,
		RunCmdTpl:        "python3 {src}",
		Env:              []string{"PATH=/usr/local/bin:/usr/bin:/bin"},
		TimeMultiplier:   3,
		MemoryMultiplier: 2,
	},
}

// DefaultLanguage is assumed when a submission does not name one.
const DefaultLanguage = "cpp"

// Lookup returns the language spec for id.
func Lookup(id string) (LanguageSpec, bool) {
	if id == "" {
		id = DefaultLanguage
	}
	lang, ok := languages[id]
	return lang, ok
}

// Supported lists the registered language IDs.
func Supported() []string {
	out := make([]string, 0, len(languages))
	for id := range languages {
		out = append(out, id)
	}
	return out
}
