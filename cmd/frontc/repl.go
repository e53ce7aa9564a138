package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"gofront/pkg/ast"
	"gofront/pkg/compiler"
	"gofront/pkg/lexer"
	"gofront/pkg/token"
)

const (
	promptMain  = "frontc> "
	promptCont  = "   ...> "
	historyFile = ".frontc_history"
)

const replHelp = `Enter declarations; each one is compiled together with the ones before it.
  :tokens   tokens of the last accepted input
  :tree     resolved tree of the session
  :symbols  storage of every declaration
  :reset    forget all declarations
  :quit     leave
`

func newReplCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Compile declarations interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &session{
				opts: cfg.options(cmd.ErrOrStderr()),
				out:  cmd.OutOrStdout(),
				log:  cfg.logger(cmd.ErrOrStderr()).With("component", "repl"),
			}
			return runRepl(s, cmd.ErrOrStderr())
		},
	}
}

func runRepl(s *session, errOut io.Writer) error {
	fmt.Fprintln(s.out, "frontc repl. Type :help for commands.")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if err := loadHistory(ln, histPath); err != nil {
		s.logger().Debug("history not loaded", "path", histPath, "error", err)
	}
	defer func() {
		if err := saveHistory(ln, histPath); err != nil {
			s.logger().Debug("history not saved", "path", histPath, "error", err)
		}
	}()

	for {
		code, ok := readInput(ln)
		if !ok {
			fmt.Fprintln(s.out)
			return nil
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if strings.HasPrefix(trimmed, ":") {
			if s.command(trimmed) {
				return nil
			}
			continue
		}
		if err := s.eval(code); err != nil {
			report(errOut, err)
		}
	}
}

// loadHistory reads the history file at path into ln. A missing file is not
// an error.
func loadHistory(ln *liner.State, path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = ln.ReadHistory(f)
	return err
}

// saveHistory writes the history of ln to path.
func saveHistory(ln *liner.State, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := ln.WriteHistory(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// readInput reads one entry, prompting for more lines while braces or
// parentheses are open.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}

// incomplete reports whether code has unclosed braces or parentheses.
// Code that does not lex is complete so that the error gets reported.
func incomplete(code string) bool {
	tokens, err := lexer.Lex(code)
	if err != nil {
		return false
	}
	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case token.LBrace, token.LParen:
			depth++
		case token.RBrace, token.RParen:
			depth--
		}
	}
	return depth > 0
}

// session accumulates the declarations entered so far.
type session struct {
	opts  []compiler.Option
	out   io.Writer
	log   *slog.Logger
	decls []string
	last  []token.Token
	unit  *compiler.Unit
}

func (s *session) logger() *slog.Logger {
	if s.log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.log
}

// eval compiles the session with code appended. code is kept only when the
// whole program still compiles.
func (s *session) eval(code string) error {
	tokens, err := lexer.Lex(code)
	if err != nil {
		return err
	}
	src := strings.Join(append(slices.Clip(s.decls), code), "\n")
	u, err := compiler.Compile(src, s.opts...)
	if err != nil {
		return err
	}
	s.decls = append(s.decls, code)
	s.last = tokens
	s.unit = u
	fmt.Fprintf(s.out, "ok: %d nodes, %d declarations\n", u.Arena.Len(), len(u.Symbols))
	return nil
}

// command runs a :command and reports whether the session should end.
func (s *session) command(line string) bool {
	switch strings.ToLower(strings.Fields(line)[0]) {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprint(s.out, replHelp)
	case ":tokens":
		if s.last == nil {
			fmt.Fprintln(s.out, "nothing compiled yet")
			break
		}
		printTokens(s.out, s.last)
	case ":tree":
		if s.unit == nil {
			fmt.Fprintln(s.out, "nothing compiled yet")
			break
		}
		ast.Fprint(s.out, s.unit.Arena, s.unit.Root)
	case ":symbols":
		if s.unit == nil {
			fmt.Fprintln(s.out, "nothing compiled yet")
			break
		}
		fmt.Fprint(s.out, s.unit.Symbols)
	case ":reset":
		s.decls, s.last, s.unit = nil, nil, nil
		fmt.Fprintln(s.out, "session cleared")
	default:
		fmt.Fprintf(s.out, "unknown command %s. Type :help for commands.\n", line)
	}
	return false
}
