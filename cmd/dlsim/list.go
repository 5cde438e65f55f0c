// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/db47h/dlsim"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var builtins bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the chips of the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if builtins {
				for _, k := range dlsim.Kinds() {
					printChip(w, k.Desc())
				}
			}
			for _, n := range a.lib.Names() {
				printChip(w, a.lib[n])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&builtins, "builtin", false, "also list builtin chips")
	return cmd
}

func pinList(ps []dlsim.PinDesc) string {
	s := make([]string, len(ps))
	for i, p := range ps {
		s[i] = p.Name
		if p.Width > 1 {
			s[i] += fmt.Sprintf("[%d]", p.Width)
		}
	}
	return strings.Join(s, ", ")
}

func printChip(w io.Writer, d *dlsim.ChipDesc) {
	fmt.Fprintf(w, "%s(%s) -> (%s)\n", d.Name, pinList(d.Inputs), pinList(d.Outputs))
}
