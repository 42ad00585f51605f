package errors

import "kasc/internal/ast"

// Builder provides a fluent interface for constructing a CompilerError,
// grounded on the teacher's SemanticErrorBuilder but shared across the
// lexer/parser and the semantic checker rather than scoped to one.
type Builder struct {
	err CompilerError
}

// New starts a new error-level diagnostic.
func New(code, message string, pos ast.Position) *Builder {
	return &Builder{err: CompilerError{Level: Error, Code: code, Message: message, Position: pos, Length: 1}}
}

// NewWarning starts a new warning-level diagnostic.
func NewWarning(code, message string, pos ast.Position) *Builder {
	return &Builder{err: CompilerError{Level: Warning, Code: code, Message: message, Position: pos, Length: 1}}
}

func (b *Builder) WithLength(length int) *Builder {
	b.err.Length = length
	return b
}

func (b *Builder) WithSuggestion(message string) *Builder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

func (b *Builder) WithNote(note string) *Builder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

func (b *Builder) WithHelp(help string) *Builder {
	b.err.HelpText = help
	return b
}

// Build returns the completed diagnostic.
func (b *Builder) Build() *CompilerError {
	return &b.err
}

// Bag accumulates diagnostics across a compilation pass without
// aborting; the semantic checker holds one (the parser returns a
// []ParseError slice instead) and the CLI
// decides whether to abort based on whether any Error-level entries
// were recorded (§7's "warnings never abort" policy).
type Bag struct {
	Diagnostics []*CompilerError
}

func (bag *Bag) Add(err *CompilerError) {
	bag.Diagnostics = append(bag.Diagnostics, err)
}

// HasErrors reports whether any Error-level diagnostic was recorded.
func (bag *Bag) HasErrors() bool {
	for _, d := range bag.Diagnostics {
		if d.Level == Error {
			return true
		}
	}
	return false
}

// Warnings returns only the Warning-level diagnostics.
func (bag *Bag) Warnings() []*CompilerError {
	var out []*CompilerError
	for _, d := range bag.Diagnostics {
		if d.Level == Warning {
			out = append(out, d)
		}
	}
	return out
}
