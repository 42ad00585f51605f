package parser

import "testing"

func TestKeywordsAndIdentifiers(t *testing.T) {
	input := "func let if else for break continue return int customIdent"
	expected := []TokenType{
		FUNC, LET, IF, ELSE, FOR, BREAK, CONTINUE, RETURN, INT, IDENTIFIER,
	}

	tokens := NewScanner(input).ScanTokens()
	if len(tokens) < len(expected) {
		t.Fatalf("expected at least %d tokens, got %d", len(expected), len(tokens))
	}
	for i, exp := range expected {
		if tokens[i].Type != exp {
			t.Errorf("token %d: expected %d, got %d", i, exp, tokens[i].Type)
		}
	}
}

func TestNumbers(t *testing.T) {
	input := "42 0 12345"
	tokens := NewScanner(input).ScanTokens()
	for i := 0; i < 3; i++ {
		if tokens[i].Type != NUMBER {
			t.Errorf("token %d: expected NUMBER, got %d", i, tokens[i].Type)
		}
	}
}

func TestOperators(t *testing.T) {
	input := "+ += - -= -> * *= / /= % %= ! != = == < <= > >= && ||"
	expected := []TokenType{
		PLUS, PLUS_EQUAL, MINUS, MINUS_EQUAL, ARROW,
		STAR, STAR_EQUAL, SLASH, SLASH_EQUAL, PERCENT, PERCENT_EQUAL,
		BANG, BANG_EQUAL, EQUAL, EQUAL_EQUAL,
		LESS, LESS_EQUAL, GREATER, GREATER_EQUAL, AND, OR,
	}

	tokens := NewScanner(input).ScanTokens()
	if len(tokens) < len(expected) {
		t.Fatalf("expected at least %d tokens, got %d", len(expected), len(tokens))
	}
	for i, exp := range expected {
		if tokens[i].Type != exp {
			t.Errorf("token %d: expected %d, got %d", i, exp, tokens[i].Type)
		}
	}
}

func TestComments(t *testing.T) {
	input := "1 // line comment\n2 /* block */ 3"
	tokens := NewScanner(input).ScanTokens()
	var nums int
	for _, tok := range tokens {
		if tok.Type == NUMBER {
			nums++
		}
	}
	if nums != 3 {
		t.Errorf("expected 3 numbers outside comments, got %d", nums)
	}
}

func TestSingleAmpersandIsAnError(t *testing.T) {
	s := NewScanner("a & b")
	s.ScanTokens()
	if len(s.Errors()) == 0 {
		t.Error("expected a scan error for bitwise '&'")
	}
}
