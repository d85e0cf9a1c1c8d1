package typesystem

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceToken = iota
	identifierToken
	numberToken
	lParenToken
	rParenToken
	lAngleToken
	rAngleToken
	commaToken
	dotToken
	arrowToken
	anyToken
)

const integerLiteralName = "IntegerLiteral"

var (
	whitespaceMatcher = parsly.NewToken(whitespaceToken, "Whitespace", matcher.NewWhiteSpace())
	identifierMatcher = parsly.NewToken(identifierToken, "Identifier", &identifierMatch{})
	numberMatcher     = parsly.NewToken(numberToken, "Number", matcher.NewNumber())
	lParenMatcher     = parsly.NewToken(lParenToken, "(", matcher.NewByte('('))
	rParenMatcher     = parsly.NewToken(rParenToken, ")", matcher.NewByte(')'))
	lAngleMatcher     = parsly.NewToken(lAngleToken, "<", matcher.NewByte('<'))
	rAngleMatcher     = parsly.NewToken(rAngleToken, ">", matcher.NewByte('>'))
	commaMatcher      = parsly.NewToken(commaToken, ",", matcher.NewByte(','))
	dotMatcher        = parsly.NewToken(dotToken, ".", matcher.NewByte('.'))
	arrowMatcher      = parsly.NewToken(arrowToken, "->", matcher.NewFragment("->"))
	anyMatcher        = parsly.NewToken(anyToken, "Any", &anyMatch{})
)

type anyMatch struct{}

func (a *anyMatch) Match(cursor *parsly.Cursor) int {
	if cursor.Pos < cursor.InputSize {
		return 1
	}
	return 0
}

type identifierMatch struct{}

func (i *identifierMatch) Match(cursor *parsly.Cursor) int {
	if cursor.Pos >= cursor.InputSize {
		return 0
	}
	if !isIdentifierStart(cursor.Input[cursor.Pos]) {
		return 0
	}
	pos := cursor.Pos + 1
	for pos < cursor.InputSize && isIdentifierPart(cursor.Input[pos]) {
		pos++
	}
	return pos - cursor.Pos
}

func isIdentifierStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func isIdentifierPart(b byte) bool {
	return isIdentifierStart(b) || (b >= '0' && b <= '9')
}

// Parse reads a type expression:
//
//	Int
//	List<Int>
//	(Int, String) -> Unit
//	Builder.(Int) -> Unit
//	IntegerLiteral(42)
func Parse(input string) (Type, error) {
	cursor := parsly.NewCursor("", []byte(input), 0)
	t, err := parseType(cursor)
	if err != nil {
		return nil, NewParseError(input, err)
	}
	if matched := cursor.MatchAfterOptional(whitespaceMatcher, anyMatcher); matched.Code != parsly.EOF {
		return nil, NewParseError(input, errors.Errorf("unexpected %q at %d", input[matched.Offset:], matched.Offset))
	}
	return t, nil
}

func parseType(cursor *parsly.Cursor) (Type, error) {
	matched := cursor.MatchAfterOptional(whitespaceMatcher, lParenMatcher, identifierMatcher)
	switch matched.Code {
	case lParenToken:
		params, err := parseTypeList(cursor, rParenMatcher)
		if err != nil {
			return nil, err
		}
		pos := cursor.Pos
		if cursor.MatchAfterOptional(whitespaceMatcher, arrowMatcher).Code == arrowToken {
			ret, err := parseType(cursor)
			if err != nil {
				return nil, err
			}
			return TFunc{Params: params, ReturnType: ret}, nil
		}
		cursor.Pos = pos
		if len(params) != 1 {
			return nil, cursor.NewError(arrowMatcher)
		}
		return params[0], nil
	case identifierToken:
		name := matched.Text(cursor)
		if name == integerLiteralName {
			return parseIntegerLiteral(cursor)
		}
		con := TCon{Name: name}
		pos := cursor.Pos
		if cursor.MatchAfterOptional(whitespaceMatcher, lAngleMatcher).Code == lAngleToken {
			args, err := parseTypeList(cursor, rAngleMatcher)
			if err != nil {
				return nil, err
			}
			if len(args) == 0 {
				return nil, errors.Errorf("empty type argument list for %s", name)
			}
			con.Args = args
			pos = cursor.Pos
		} else {
			cursor.Pos = pos
		}
		if cursor.MatchAfterOptional(whitespaceMatcher, dotMatcher).Code != dotToken {
			cursor.Pos = pos
			return con, nil
		}
		if cursor.MatchAfterOptional(whitespaceMatcher, lParenMatcher).Code != lParenToken {
			return nil, cursor.NewError(lParenMatcher)
		}
		params, err := parseTypeList(cursor, rParenMatcher)
		if err != nil {
			return nil, err
		}
		if cursor.MatchAfterOptional(whitespaceMatcher, arrowMatcher).Code != arrowToken {
			return nil, cursor.NewError(arrowMatcher)
		}
		ret, err := parseType(cursor)
		if err != nil {
			return nil, err
		}
		return TFunc{Receiver: con, Params: params, ReturnType: ret}, nil
	case parsly.EOF:
		return nil, errors.New("unexpected end of type")
	}
	return nil, cursor.NewError(lParenMatcher, identifierMatcher)
}

// parseTypeList reads `T, T, ...` up to and including the closing token.
func parseTypeList(cursor *parsly.Cursor, closing *parsly.Token) ([]Type, error) {
	pos := cursor.Pos
	if cursor.MatchAfterOptional(whitespaceMatcher, closing).Code == closing.Code {
		return nil, nil
	}
	cursor.Pos = pos
	var result []Type
	for {
		t, err := parseType(cursor)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
		matched := cursor.MatchAfterOptional(whitespaceMatcher, commaMatcher, closing)
		switch matched.Code {
		case commaToken:
			continue
		case closing.Code:
			return result, nil
		}
		return nil, cursor.NewError(commaMatcher, closing)
	}
}

func parseIntegerLiteral(cursor *parsly.Cursor) (Type, error) {
	if cursor.MatchAfterOptional(whitespaceMatcher, lParenMatcher).Code != lParenToken {
		return nil, cursor.NewError(lParenMatcher)
	}
	matched := cursor.MatchAfterOptional(whitespaceMatcher, numberMatcher)
	if matched.Code != numberToken {
		return nil, cursor.NewError(numberMatcher)
	}
	value, err := strconv.ParseInt(matched.Text(cursor), 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "integer literal")
	}
	if cursor.MatchAfterOptional(whitespaceMatcher, rParenMatcher).Code != rParenToken {
		return nil, cursor.NewError(rParenMatcher)
	}
	return TIntLiteral{Value: value}, nil
}
