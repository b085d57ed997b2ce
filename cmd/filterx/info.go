package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/vegasq/filterx/engine"
	"github.com/vegasq/filterx/output"
)

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "list the builtin functions, or describe one",
		ArgsUsage: "[name]",
		Action: func(c *cli.Context) error {
			reg := engine.Builtins()
			if c.NArg() == 0 {
				var rows [][]string
				for _, b := range reg.List() {
					rows = append(rows, []string{b.Name, strings.Join(b.Aliases, ", "), b.Group.String(), b.Doc})
				}
				output.WriteTable(c.App.Writer, []string{"name", "aliases", "group", "doc"}, rows)
				return nil
			}

			name := c.Args().First()
			b, ok := reg.Get(name)
			if !ok {
				return &engine.Error{
					Kind:       engine.ErrUnknownFunction,
					Msg:        fmt.Sprintf("unknown function %q", name),
					Suggestion: reg.Suggest(name),
				}
			}
			output.WriteTable(c.App.Writer, []string{"field", "value"}, [][]string{
				{"name", b.Name},
				{"aliases", strings.Join(b.Aliases, ", ")},
				{"group", b.Group.String()},
				{"arguments", arity(b)},
				{"in format strings", strconv.FormatBool(b.Expression)},
				{"inplace (name_)", strconv.FormatBool(b.Inplace)},
				{"doc", b.Doc},
			})
			return nil
		},
	}
}

func arity(b *engine.Builtin) string {
	switch {
	case b.MaxArgs == engine.Variadic:
		return strconv.Itoa(b.MinArgs) + "+"
	case b.MinArgs == b.MaxArgs:
		return strconv.Itoa(b.MinArgs)
	default:
		return fmt.Sprintf("%d-%d", b.MinArgs, b.MaxArgs)
	}
}
