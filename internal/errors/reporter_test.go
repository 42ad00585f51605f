package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kasc/internal/ast"
)

func TestErrorReporterFormatsBasicError(t *testing.T) {
	source := `func main() -> int {
    let x int = unknownVar;
    return x;
}`

	reporter := NewErrorReporter("test.kc", source)

	err := New(ErrorUndefinedVariable, "undefined variable 'unknownVar'", ast.Position{Line: 2, Column: 17}).
		WithSuggestion("declare 'unknownVar' with a let statement before using it").
		Build()

	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorUndefinedVariable+"]")
	assert.Contains(t, formatted, "unknownVar")
	assert.Contains(t, formatted, "test.kc:2:17")
	assert.Contains(t, formatted, "help")
}

func TestErrorReporterFormatsWarning(t *testing.T) {
	source := "func f() -> int {\n    let x int = 1;\n    return 0;\n}"
	reporter := NewErrorReporter("test.kc", source)

	warn := NewWarning(WarningUnusedVariable, "variable 'x' is never used", ast.Position{Line: 2, Column: 9}).Build()
	formatted := reporter.FormatError(warn)

	assert.Contains(t, formatted, "warning["+WarningUnusedVariable+"]")
	assert.Contains(t, formatted, "never used")
}

func TestBagTracksErrorsAndWarnings(t *testing.T) {
	var bag Bag
	assert.False(t, bag.HasErrors())

	bag.Add(NewWarning(WarningUnusedVariable, "unused", ast.Position{Line: 1, Column: 1}).Build())
	assert.False(t, bag.HasErrors())
	assert.Len(t, bag.Warnings(), 1)

	bag.Add(New(ErrorUndefinedVariable, "undefined", ast.Position{Line: 1, Column: 1}).Build())
	assert.True(t, bag.HasErrors())
	assert.Len(t, bag.Warnings(), 1)
	assert.Len(t, bag.Diagnostics, 2)
}

func TestErrorCodeCategories(t *testing.T) {
	assert.Equal(t, "Lexer/Parser", GetErrorCategory(ErrorUnexpectedToken))
	assert.Equal(t, "Semantic Analysis", GetErrorCategory(ErrorUndefinedVariable))
	assert.Equal(t, "Flow Control", GetErrorCategory(ErrorMissingReturn))
	assert.Equal(t, "Warning", GetErrorCategory(WarningUnusedVariable))
	assert.True(t, IsWarning(WarningUnusedVariable))
	assert.False(t, IsWarning(ErrorUndefinedVariable))
}
