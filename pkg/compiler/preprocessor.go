package compiler

import (
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// macro is a #define. Function-like macros have params.
type macro struct {
	params []string
	body   string
}

type preprocessor struct {
	fsys     fs.FS
	defines  map[string]macro
	// included holds every file read so far; a file is included once.
	included map[string]bool
}

func newPreprocessor(fsys fs.FS) *preprocessor {
	return &preprocessor{
		fsys:     fsys,
		defines:  map[string]macro{},
		included: map[string]bool{},
	}
}

// Preprocess handles `#include "file"` and `#define` directives in src.
// Included names are resolved in fsys relative to dir, and each included
// file is resolved relative to its own directory. Directive lines become
// empty lines so that line numbers outside included text are kept.
func Preprocess(fsys fs.FS, dir, src string) (string, error) {
	return newPreprocessor(fsys).run(src, dir, nil)
}

// PreprocessFile reads name from fsys and preprocesses it.
func PreprocessFile(fsys fs.FS, name string) (string, error) {
	name = path.Clean(name)
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", name)
	}
	pp := newPreprocessor(fsys)
	pp.included[name] = true
	return pp.run(string(data), path.Dir(name), []string{name})
}

func (pp *preprocessor) run(src, dir string, stack []string) (string, error) {
	var out strings.Builder
	for n, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#define"):
			if err := pp.define(strings.TrimSpace(strings.TrimPrefix(trimmed, "#define"))); err != nil {
				return "", errors.Wrapf(err, "line %d", n+1)
			}
		case strings.HasPrefix(trimmed, "#include"):
			text, err := pp.include(strings.TrimSpace(strings.TrimPrefix(trimmed, "#include")), dir, stack)
			if err != nil {
				return "", errors.Wrapf(err, "line %d", n+1)
			}
			out.WriteString(text)
		case strings.HasPrefix(trimmed, "#"):
			return "", errors.Errorf("line %d: unknown directive %q", n+1, trimmed)
		default:
			out.WriteString(pp.expand(line, nil))
		}
		out.WriteString("\n")
	}
	return out.String(), nil
}

// define parses NAME BODY or NAME(a, b) BODY. The parameter list must
// follow the name with no space in between.
func (pp *preprocessor) define(rest string) error {
	end := strings.IndexAny(rest, " \t(")
	if end < 0 {
		end = len(rest)
	}
	name := rest[:end]
	if name == "" || !isIdentStart(name[0]) {
		return errors.Errorf("invalid macro name %q", name)
	}
	rest = rest[end:]

	var params []string
	if strings.HasPrefix(rest, "(") {
		closing := strings.IndexByte(rest, ')')
		if closing < 0 {
			return errors.Errorf("unterminated parameter list of %s", name)
		}
		for _, p := range strings.Split(rest[1:closing], ",") {
			if p = strings.TrimSpace(p); p != "" {
				params = append(params, p)
			}
		}
		rest = rest[closing+1:]
	}
	pp.defines[name] = macro{params: params, body: strings.TrimSpace(rest)}
	return nil
}

func (pp *preprocessor) include(arg, dir string, stack []string) (string, error) {
	if len(arg) < 2 || arg[0] != '"' || arg[len(arg)-1] != '"' {
		return "", errors.Errorf("invalid include %s", arg)
	}
	name := path.Join(dir, arg[1:len(arg)-1])
	if slices.Contains(stack, name) {
		return "", errors.Errorf("circular include of %s", name)
	}
	if pp.included[name] {
		return "", nil
	}
	pp.included[name] = true

	data, err := fs.ReadFile(pp.fsys, name)
	if err != nil {
		return "", errors.Wrapf(err, "include %s", name)
	}
	return pp.run(string(data), path.Dir(name), append(slices.Clip(stack), name))
}

// expand replaces macro uses in s. A macro is not expanded again inside its
// own expansion.
func (pp *preprocessor) expand(s string, hide []string) string {
	if len(pp.defines) == 0 {
		return s
	}
	return words(s, func(word string, end int) (string, int) {
		m, ok := pp.defines[word]
		if !ok || slices.Contains(hide, word) {
			return word, end
		}
		hidden := append(slices.Clip(hide), word)
		if len(m.params) == 0 {
			return pp.expand(m.body, hidden), end
		}
		args, next, ok := callArgs(s, end)
		if !ok || len(args) != len(m.params) {
			return word, end
		}
		for k := range args {
			args[k] = pp.expand(args[k], hide)
		}
		// Parameters are substituted in one pass so an argument is never
		// mistaken for another parameter.
		body := words(m.body, func(w string, e int) (string, int) {
			if k := slices.Index(m.params, w); k >= 0 {
				return args[k], e
			}
			return w, e
		})
		return pp.expand(body, hidden), next
	})
}

// words copies s, passing every identifier outside string and character
// literals to fn. fn returns the replacement and where to continue.
func words(s string, fn func(word string, end int) (string, int)) string {
	var sb strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '"' || c == '\'':
			j := skipQuoted(s, i)
			sb.WriteString(s[i:j])
			i = j
		case isIdentStart(c):
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			out, next := fn(s[i:j], j)
			sb.WriteString(out)
			i = next
		case isDigit(c):
			// 0x1F is a number, not 0 followed by x1F
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			sb.WriteString(s[i:j])
			i = j
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String()
}

// skipQuoted returns the index just past the literal starting at s[i].
func skipQuoted(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(s)
}

// callArgs parses a parenthesised argument list starting at s[i], after
// optional blanks. Commas inside nested parentheses do not split.
func callArgs(s string, i int) (args []string, next int, ok bool) {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	if i >= len(s) || s[i] != '(' {
		return nil, 0, false
	}
	depth, start := 0, i+1
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '"', '\'':
			j = skipQuoted(s, j) - 1
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:j]))
				return args, j + 1, true
			}
		case ',':
			if depth == 1 {
				args = append(args, strings.TrimSpace(s[start:j]))
				start = j + 1
			}
		}
	}
	return nil, 0, false
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
