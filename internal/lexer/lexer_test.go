package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, src string) []Token {
	t.Helper()
	l := New(src, "t.wave")
	toks, err := l.Tokenize()
	require.Nil(t, err)
	return toks
}

func TestNextTokenCoversDeclarationAndControlFlow(t *testing.T) {
	input := `fun add(a: i32, b: i32) -> i32 {
    var x: i32 = a + b;
    if x > 10 {
        return x;
    } else {
        return 0;
    }
}
`
	toks := tokenize(t, input)

	expect := []struct {
		kind   Kind
		lexeme string
	}{
		{FUN, "fun"}, {IDENT, "add"}, {LPAREN, "("},
		{IDENT, "a"}, {COLON, ":"}, {TY_I32, "i32"}, {COMMA, ","},
		{IDENT, "b"}, {COLON, ":"}, {TY_I32, "i32"}, {RPAREN, ")"},
		{ARROW, "->"}, {TY_I32, "i32"}, {LBRACE, "{"},
		{VAR, "var"}, {IDENT, "x"}, {COLON, ":"}, {TY_I32, "i32"}, {ASSIGN, "="},
		{IDENT, "a"}, {PLUS, "+"}, {IDENT, "b"}, {SEMICOLON, ";"},
		{IF, "if"}, {IDENT, "x"}, {GT, ">"}, {IntLiteral, "10"}, {LBRACE, "{"},
		{RETURN, "return"}, {IDENT, "x"}, {SEMICOLON, ";"}, {RBRACE, "}"},
		{ELSE, "else"}, {LBRACE, "{"},
		{RETURN, "return"}, {IntLiteral, "0"}, {SEMICOLON, ";"}, {RBRACE, "}"},
		{RBRACE, "}"},
		{EOF, ""},
	}

	require.Len(t, toks, len(expect))
	for i, e := range expect {
		require.Equalf(t, e.kind, toks[i].Kind, "token %d", i)
		require.Equalf(t, e.lexeme, toks[i].Lexeme, "token %d lexeme", i)
	}
}

func TestOperatorsGreedyLongestMatch(t *testing.T) {
	cases := []struct {
		src  string
		kind Kind
	}{
		{"+=", PLUSEQ}, {"++", PLUSPLUS}, {"+", PLUS},
		{"->", ARROW}, {"--", MINUSMINUS}, {"-=", MINUSEQ}, {"-", MINUS},
		{"<=", LTE}, {"<<", SHL}, {"<", LT},
		{">=", GTE}, {">>", SHR}, {">", GT},
		{"==", EQ}, {"=", ASSIGN},
		{"!=", NEQ}, {"!&", NAND}, {"!|", NOR}, {"!", BANG},
		{"&&", AMPAMP}, {"&", AMP},
		{"||", PIPEPIPE}, {"|", PIPE},
		{"~^", TILDEXOR}, {"~", TILDE},
		{"??", QQUESTION}, {"?", QUESTION},
	}
	for _, c := range cases {
		toks := tokenize(t, c.src)
		require.Equal(t, c.kind, toks[0].Kind, c.src)
		require.Equal(t, EOF, toks[1].Kind, c.src)
	}
}

func TestIntegerLiteralBasesAndUnderscoresPreserveText(t *testing.T) {
	cases := []string{"0xFF_u8", "0b1010", "0o17", "1_000_000", "42"}
	for _, c := range cases {
		toks := tokenize(t, c)
		require.Equal(t, IntLiteral, toks[0].Kind, c)
		require.Equal(t, c, toks[0].Lexeme, c)
	}
}

func TestFloatLiteral(t *testing.T) {
	toks := tokenize(t, "3.14")
	require.Equal(t, FloatLiteral, toks[0].Kind)
	require.Equal(t, "3.14", toks[0].Lexeme)
}

func TestStringEscapes(t *testing.T) {
	toks := tokenize(t, `"a\nb\t\\\"\x41"`)
	require.Equal(t, StringLiteral, toks[0].Kind)
	require.Equal(t, "a\nb\t\\\"A", toks[0].Lexeme)
}

func TestUnterminatedStringIsE1003(t *testing.T) {
	l := New("\"abc", "t.wave")
	_, err := l.Tokenize()
	require.NotNil(t, err)
	require.Equal(t, "E1003", err.Code)
}

func TestUnterminatedBlockCommentIsE1002(t *testing.T) {
	l := New("/* never closed", "t.wave")
	_, err := l.Tokenize()
	require.NotNil(t, err)
	require.Equal(t, "E1002", err.Code)
}

func TestInvalidEscapeIsE1004(t *testing.T) {
	l := New(`"\q"`, "t.wave")
	_, err := l.Tokenize()
	require.NotNil(t, err)
	require.Equal(t, "E1004", err.Code)
}

func TestCharLiteralMustBeSingleCodepoint(t *testing.T) {
	l := New("'ab'", "t.wave")
	_, err := l.Tokenize()
	require.NotNil(t, err)
	require.Equal(t, "E1005", err.Code)
}

func TestHexLiteralNoDigitsIsE1006(t *testing.T) {
	l := New("0x", "t.wave")
	_, err := l.Tokenize()
	require.NotNil(t, err)
	require.Equal(t, "E1006", err.Code)
}

func TestUnknownCharacterIsE1001(t *testing.T) {
	l := New("`", "t.wave")
	_, err := l.Tokenize()
	require.NotNil(t, err)
	require.Equal(t, "E1001", err.Code)
}

func TestLineCommentsAndBlockCommentsAreSkipped(t *testing.T) {
	toks := tokenize(t, "// hi\n/* block */ let")
	require.Equal(t, LET, toks[0].Kind)
}

func TestLexerRoundTripNonTrivia(t *testing.T) {
	src := "var x = 1 + 2"
	toks := tokenize(t, src)
	var lexemes []string
	for _, tok := range toks {
		if tok.Kind == EOF {
			continue
		}
		lexemes = append(lexemes, tok.Lexeme)
	}
	joined := ""
	for i, lx := range lexemes {
		if i > 0 {
			joined += " "
		}
		joined += lx
	}
	reToks := tokenize(t, joined)
	require.Equal(t, len(toks), len(reToks))
	for i := range toks {
		require.Equal(t, toks[i].Kind, reToks[i].Kind)
	}
}
