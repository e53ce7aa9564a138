package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"gofront/pkg/ast"
	"gofront/pkg/compiler"
	"gofront/pkg/lexer"
	"gofront/pkg/token"
)

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens FILE",
		Short: "Print the token stream of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := compiler.ReadFile(args[0])
			if err != nil {
				return err
			}
			tokens, err := lexer.Lex(src)
			if err != nil {
				return errors.Wrapf(err, "%s", args[0])
			}
			printTokens(cmd.OutOrStdout(), tokens)
			return nil
		},
	}
}

func newParseCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "parse FILE",
		Short: "Print the syntax tree of a file before resolution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := compiler.ParseFile(args[0], cfg.options(cmd.ErrOrStderr())...)
			if err != nil {
				return err
			}
			return ast.Fprint(cmd.OutOrStdout(), u.Arena, u.Root)
		},
	}
}

func newResolveCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve FILE...",
		Short: "Resolve files and print their trees, storage and layouts",
		Long: `Resolve compiles every file as an independent unit. Units are
resolved concurrently; output is printed in argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			units, err := compiler.CompileFiles(cmd.Context(), args, cfg.options(cmd.ErrOrStderr())...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, u := range units {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printUnit(out, u)
			}
			return nil
		},
	}
}

func printTokens(w io.Writer, tokens []token.Token) {
	fmt.Fprintf(w, "Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Fprintf(w, "  %-7v %v\n", tok.Pos, tok)
	}
}

func printUnit(w io.Writer, u *compiler.Unit) {
	if u.Name != "" {
		fmt.Fprintf(w, "== %s ==\n", u.Name)
	}
	ast.Fprint(w, u.Arena, u.Root)
	fmt.Fprintln(w, "Storage")
	fmt.Fprint(w, u.Symbols)
	if len(u.Structs) == 0 {
		return
	}
	ids := make([]ast.NodeID, 0, len(u.Structs))
	for id := range u.Structs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fmt.Fprintln(w, "Layouts")
	for _, id := range ids {
		l := u.Structs[id]
		fmt.Fprintf(w, "  %-6d  size %d align %d\n", id, l.Size, l.Align)
	}
}
