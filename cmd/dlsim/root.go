// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"github.com/db47h/dlsim"
	"github.com/db47h/dlsim/hwlib"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app holds the state shared by all commands, set up before any of them runs.
//
type app struct {
	logLevel   string
	configPath string
	libPaths   []string

	log *logrus.Logger
	cfg dlsim.Config
	lib dlsim.Library
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "dlsim",
		Short:         "Tri-state digital logic simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.logLevel, "log", "", "log level (panic, fatal, error, warn, info, debug, trace)")
	pf.StringVar(&a.configPath, "config", "", "YAML settings file")
	pf.StringSliceVar(&a.libPaths, "lib", nil, "YAML chip library, may be repeated")

	root.AddCommand(newListCmd(a), newTruthCmd(a), newRunCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	var err error
	a.cfg = dlsim.DefaultConfig()
	if a.configPath != "" {
		if a.cfg, err = dlsim.LoadConfig(a.configPath); err != nil {
			return err
		}
	}
	if a.logLevel != "" {
		a.cfg.LogLevel = a.logLevel
	}
	lvl, err := logrus.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	a.log = logrus.New()
	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetLevel(lvl)
	a.cfg.Logger = a.log

	a.lib = hwlib.Standard()
	for _, p := range a.libPaths {
		l, err := dlsim.LoadLibrary(p, a.lib)
		if err != nil {
			return errors.Wrapf(err, "library %s", p)
		}
		a.lib = a.lib.Merge(l)
		a.log.WithFields(logrus.Fields{"file": p, "chips": len(l)}).Debug("library loaded")
	}
	return nil
}

// lookup returns the description of a composite chip of the library.
//
func (a *app) lookup(name string) (*dlsim.ChipDesc, error) {
	d, ok := a.lib.Lookup(name)
	if !ok {
		return nil, errors.Wrapf(dlsim.ErrNotFound, "chip %s", name)
	}
	return d, nil
}
