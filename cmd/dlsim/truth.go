// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/db47h/dlsim"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const maxTruthBits = 12

func newTruthCmd(a *app) *cobra.Command {
	var settle int
	cmd := &cobra.Command{
		Use:   "truth CHIP",
		Short: "Print the truth table of a chip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.lookup(args[0]); err != nil {
				return err
			}
			c, err := dlsim.Build(a.lib, args[0], a.cfg)
			if err != nil {
				return err
			}
			ins, outs := c.Inputs(), c.OutputPins()
			bits := 0
			for _, p := range ins {
				bits += p.Width
			}
			if bits > maxTruthBits {
				return errors.Errorf("chip %s has %d input bits, at most %d supported", args[0], bits, maxTruthBits)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s | %s\n", pinNames(ins), pinNames(outs))
			vs := make([]dlsim.Value, len(ins))
			for n := uint64(0); n < 1<<uint(bits); n++ {
				shift := 0
				for i, p := range ins {
					vs[i] = dlsim.MakeValue(p.Width, n>>uint(shift))
					shift += p.Width
				}
				c.Run(settle, dlsim.Input{Values: vs})
				fmt.Fprintf(w, "%s | %s\n", valueList(vs), valueList(c.Outputs()))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&settle, "settle", 16, "ticks to run for each input combination")
	return cmd
}

func pinNames(ps []dlsim.PinDesc) string {
	s := make([]string, len(ps))
	for i, p := range ps {
		s[i] = p.Name
	}
	return strings.Join(s, " ")
}

func valueList(vs []dlsim.Value) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = v.String()
	}
	return strings.Join(s, " ")
}
