// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/db47h/dlsim"
	"github.com/db47h/dlsim/loop"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type runOptions struct {
	chip    string
	ticks   int
	tps     int
	seed    int64
	divisor int
	inputs  map[string]string
}

func newRunCmd(a *app) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a chip and print its outputs",
		Long: "Run a chip for a number of ticks and print its outputs. With --ticks 0, the chip\n" +
			"runs in real time until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.chip, "chip", "", "name of the chip to run")
	f.IntVar(&o.ticks, "ticks", 100, "number of ticks to run, 0 to run until interrupted")
	f.IntVar(&o.tps, "tps", -1, "target ticks per second in real time mode (default from config)")
	f.Int64Var(&o.seed, "seed", 0, "random seed (default from config)")
	f.IntVar(&o.divisor, "divisor", 0, "clock divisor (default from config)")
	f.StringToStringVar(&o.inputs, "inputs", nil, "input values, like a=1,b=0x3f")
	_ = cmd.MarkFlagRequired("chip")
	return cmd
}

func (a *app) run(cmd *cobra.Command, o *runOptions) error {
	cfg := a.cfg
	if cmd.Flags().Changed("seed") {
		cfg.Seed = o.seed
	}
	if o.divisor > 0 {
		cfg.ClockDivisor = o.divisor
	}
	if o.tps >= 0 {
		cfg.TicksPerSecond = o.tps
	}
	if _, err := a.lookup(o.chip); err != nil {
		return err
	}
	c, err := dlsim.Build(a.lib, o.chip, cfg)
	if err != nil {
		return err
	}
	vals := make(map[string]uint64, len(o.inputs))
	for k, s := range o.inputs {
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return errors.Wrapf(err, "input %s", k)
		}
		vals[k] = v
	}
	vs, err := c.InputValues(vals)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if o.ticks > 0 {
		c.Run(o.ticks, dlsim.Input{Values: vs})
		printOutputs(w, c.Ticks(), c.OutputPins(), c.Outputs())
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	l := loop.New(c)
	l.SetInputs(vs)
	if err := l.Start(); err != nil {
		return err
	}
	report := time.NewTicker(time.Second)
	defer report.Stop()
	for done := false; !done; {
		select {
		case <-ctx.Done():
			done = true
		case <-report.C:
			a.log.WithFields(logrus.Fields{
				"tick": l.Frame().Tick,
				"tps":  fmt.Sprintf("%.0f", l.TicksPerSecond()),
			}).Info("running")
		}
	}
	l.Stop()
	f := l.Frame()
	printOutputs(w, f.Tick, c.OutputPins(), f.Outputs())
	return nil
}

func printOutputs(w io.Writer, tick uint64, ps []dlsim.PinDesc, vs []dlsim.Value) {
	fmt.Fprintf(w, "tick %d\n", tick)
	for i, p := range ps {
		if i < len(vs) {
			fmt.Fprintf(w, "%s=%s\n", p.Name, vs[i])
		}
	}
}
