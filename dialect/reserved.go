package dialect

import "strings"

// reservedWords lists SQL keywords that require quoting when used as
// identifiers. The set covers the common core reserved across the supported
// vendors; vendor implementations consult it through isReservedWord.
var reservedWords = map[string]struct{}{
	"ACCESS": {}, "ADD": {}, "ALL": {}, "ALTER": {}, "AND": {}, "ANY": {}, "AS": {}, "ASC": {},
	"BEGIN": {}, "BETWEEN": {}, "BY": {}, "CASE": {}, "CHECK": {}, "COLUMN": {}, "COMMENT": {},
	"CONNECT": {}, "CREATE": {}, "CURRENT": {}, "DELETE": {}, "DESC": {}, "DISTINCT": {},
	"DROP": {}, "ELSE": {}, "EXCLUDE": {}, "EXISTS": {}, "FOR": {}, "FROM": {}, "GRANT": {},
	"GROUP": {}, "HAVING": {}, "IN": {}, "INDEX": {}, "INSERT": {}, "INTERSECT": {}, "INTO": {},
	"IS": {}, "LEVEL": {}, "LIKE": {}, "LOCK": {}, "MINUS": {}, "MODE": {}, "NOCOMPRESS": {},
	"NOT": {}, "NULL": {}, "NUMBER": {}, "OF": {}, "ON": {}, "OPTION": {}, "OR": {}, "ORDER": {},
	"ROW": {}, "ROWNUM": {}, "SELECT": {}, "SET": {}, "SHARE": {}, "SIZE": {}, "START": {},
	"TABLE": {}, "THEN": {}, "TO": {}, "TRIGGER": {}, "UNION": {}, "UNIQUE": {}, "UPDATE": {},
	"VALUES": {}, "VIEW": {}, "WHEN": {}, "WHERE": {}, "WITH": {},
}

// isReservedWord reports whether the identifier is a reserved keyword.
// The check is case-insensitive.
func isReservedWord(ident string) bool {
	if ident == "" {
		return false
	}
	_, ok := reservedWords[strings.ToUpper(ident)]
	return ok
}

// identNeedsQuoting reports whether an identifier contains characters that
// force quoting: a leading digit or anything outside [A-Za-z0-9_$#].
func identNeedsQuoting(ident string) bool {
	if ident == "" {
		return false
	}

	first := ident[0]
	if first >= '0' && first <= '9' {
		return true
	}

	for _, r := range ident {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '$' || r == '#' {
			continue
		}
		return true
	}

	return false
}

// quoteDotted applies a per-segment quoting function across a dotted
// identifier path such as "t.first_name".
func quoteDotted(ident string, quote func(string) string) string {
	trimmed := strings.TrimSpace(ident)
	if trimmed == "" {
		return trimmed
	}

	if !strings.Contains(trimmed, ".") {
		return quote(trimmed)
	}

	parts := strings.Split(trimmed, ".")
	for i, part := range parts {
		parts[i] = quote(part)
	}
	return strings.Join(parts, ".")
}

// isDoubleQuoted reports whether the identifier already carries ANSI quotes.
func isDoubleQuoted(ident string) bool {
	return len(ident) >= 2 && ident[0] == '"' && ident[len(ident)-1] == '"'
}
