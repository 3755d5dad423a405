package sqlguard

import (
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
)

// stripComments removes -- line comments and /* */ block comments (block
// comments nest, per PostgreSQL). Comments inside string literals are left
// alone. Each removed comment is replaced by a single space so token
// boundaries survive.
func stripComments(sql string) string {
	var out strings.Builder
	out.Grow(len(sql))

	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	blockDepth := 0

	for i := 0; i < len(sql); i++ {
		c := sql[i]

		switch state {
		case stateNormal:
			switch {
			case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
				state = stateLineComment
				i++
			case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
				state = stateBlockComment
				blockDepth = 1
				i++
			case c == '\'':
				state = stateSingleQuote
				out.WriteByte(c)
			case c == '"':
				state = stateDoubleQuote
				out.WriteByte(c)
			default:
				out.WriteByte(c)
			}

		case stateSingleQuote:
			out.WriteByte(c)
			if c == '\'' {
				// A doubled quote re-enters the string on the next
				// character, which keeps the scan correct.
				state = stateNormal
			}

		case stateDoubleQuote:
			out.WriteByte(c)
			if c == '"' {
				state = stateNormal
			}

		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(' ')
			}

		case stateBlockComment:
			switch {
			case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
				blockDepth++
				i++
			case c == '*' && i+1 < len(sql) && sql[i+1] == '/':
				blockDepth--
				i++
				if blockDepth == 0 {
					state = stateNormal
					out.WriteByte(' ')
				}
			}
		}
	}

	return out.String()
}

// stripTrailingSemicolon removes a single trailing semicolon and any
// surrounding whitespace.
func stripTrailingSemicolon(sql string) string {
	sql = strings.TrimRight(sql, " \t\n\r")
	if strings.HasSuffix(sql, ";") {
		sql = strings.TrimRight(strings.TrimSuffix(sql, ";"), " \t\n\r")
	}
	return sql
}

// maskStringLiterals replaces the contents of single-quoted string
// literals with spaces, preserving length and quote characters. Keyword
// and structure checks run on the masked text so quoted content can
// neither trigger nor evade them. Double-quoted identifiers are left
// intact: they name schema objects and must stay visible to the
// system-object and table-whitelist checks.
func maskStringLiterals(sql string) string {
	out := []byte(sql)

	inString := false
	for i := 0; i < len(out); i++ {
		if out[i] == '\'' {
			inString = !inString
			continue
		}
		if inString {
			out[i] = ' '
		}
	}

	return string(out)
}

// extractStringLiterals returns the contents of single-quoted literals.
// Doubled quotes inside a literal split it into pieces, which is fine for
// screening purposes.
func extractStringLiterals(sql string) []string {
	var literals []string
	var current strings.Builder
	inString := false

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		if !inString {
			if c == '\'' {
				inString = true
				current.Reset()
			}
			continue
		}
		if c == '\'' {
			inString = false
			if current.Len() > 0 {
				literals = append(literals, current.String())
			}
			continue
		}
		current.WriteByte(c)
	}

	return literals
}

// screenLiterals runs libinjection over every string literal in the
// statement. A literal carrying an injection fingerprint is treated as a
// violation even though the literal itself is inert in a single prepared
// statement: the model has no reason to produce one.
func screenLiterals(sql string) []string {
	var violations []string
	for _, literal := range extractStringLiterals(sql) {
		if isSQLi, _ := libinjection.IsSQLi(literal); isSQLi {
			violations = append(violations, "string literal contains an injection pattern")
			break
		}
	}
	return violations
}

// referencedTables extracts the table names following FROM and JOIN
// keywords in the masked statement, including comma-separated FROM lists
// and double-quoted names. Subqueries contribute their own FROM clauses;
// derived-table parentheses are skipped.
func referencedTables(masked string) []string {
	tokens := tokenize(masked)
	var tables []string

	for i := 0; i < len(tokens); i++ {
		upper := strings.ToUpper(tokens[i])
		if upper != "FROM" && upper != "JOIN" {
			continue
		}

		j := i + 1
		for j < len(tokens) {
			tok := tokens[j]
			if tok == "(" {
				// Derived table or subquery; its FROM is handled when the
				// outer loop reaches it.
				break
			}
			name, ok := identifierName(tok)
			if !ok {
				break
			}
			tables = append(tables, name)

			// Skip an optional alias, then continue on a comma-separated
			// FROM list; anything else ends the clause.
			k := j + 1
			if k < len(tokens) && strings.EqualFold(tokens[k], "AS") {
				k++
			}
			if k < len(tokens) && !isClauseKeyword(tokens[k]) {
				if _, aliased := identifierName(tokens[k]); aliased {
					k++
				}
			}
			if k < len(tokens) && tokens[k] == "," {
				j = k + 1
				continue
			}
			break
		}
	}

	return tables
}

// identifierName normalizes a token into a relation name. Quoted and
// unquoted forms name the same relation, so double quotes are stripped
// before the allow-list comparison; a token that is not an identifier
// after stripping is not a table reference.
func identifierName(tok string) (string, bool) {
	stripped := strings.ReplaceAll(tok, `"`, "")
	if !isIdentifier(stripped) {
		return "", false
	}
	return stripped, true
}

func isClauseKeyword(tok string) bool {
	switch strings.ToUpper(tok) {
	case "WHERE", "JOIN", "INNER", "LEFT", "RIGHT", "FULL", "CROSS", "ON",
		"GROUP", "ORDER", "HAVING", "LIMIT", "OFFSET", "UNION", "USING":
		return true
	}
	return false
}

// tokenize splits masked SQL into identifiers, punctuation, and everything
// else. Good enough for clause-level scanning; not a SQL parser.
func tokenize(masked string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for i := 0; i < len(masked); i++ {
		c := masked[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			flush()
		case c == '(' || c == ')' || c == ',' || c == ';':
			flush()
			tokens = append(tokens, string(c))
		default:
			current.WriteByte(c)
		}
	}
	flush()

	return tokens
}

func isIdentifier(tok string) bool {
	if tok == "" {
		return false
	}
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9', c == '_', c == '.':
			if i == 0 && c >= '0' && c <= '9' {
				return false
			}
		default:
			return false
		}
	}
	return true
}
