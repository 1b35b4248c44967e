// Package commands implements the molcut command line.
package commands

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rawbytedev/molecule"
	"github.com/rawbytedev/molecule/pkg/schema"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	cfgFile    string
	cpuProfile string
	memProfile string

	cfg *config
	log *zap.Logger

	cpuOut *os.File
}

func (a *app) engine() *molecule.Engine {
	return molecule.New(molecule.Options{StrictOffsets: a.cfg.Strict})
}

// Execute builds the command tree and runs it against os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}
	root := &cobra.Command{
		Use:   "molcut",
		Short: "Inspect Molecule encoded buffers without decoding them",
		Long: `molcut navigates Molecule buffers with the zero-copy cut engine.

Every command reads its input from FILE, or from stdin when FILE is "-" or
missing. Use --hex for hex text input and --framed for framed buffers.

Settings can also come from MOLCUT_* environment variables or a YAML file
passed with --config.`,
		Version:       Version + " (" + Commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "Path to a YAML config file")
	pf.String("log-level", "warn", "Log level (debug|info|warn|error)")
	pf.String("log-format", "console", "Log format (console|json)")
	pf.Bool("hex", false, "Input is hex text")
	pf.Bool("framed", false, "Input is wrapped in a frame")
	pf.Bool("strict", false, "Enable strict offset checks")
	pf.StringVar(&a.cpuProfile, "cpuprofile", "", "Write a CPU profile to this file")
	pf.StringVar(&a.memProfile, "memprofile", "", "Write a heap profile to this file on exit")

	root.AddCommand(
		newCutCmd(a),
		newBytesCmd(a),
		newGetCmd(a),
		newVerifyCmd(a),
		newFrameCmd(a),
		newBenchCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.log, err = newLogger(cfg); err != nil {
		return err
	}
	schema.SetLogger(a.log.Named("schema"))
	a.log.Debug("config loaded",
		zap.String("file", a.cfgFile),
		zap.Bool("strict", cfg.Strict),
		zap.Bool("hex", cfg.Hex),
		zap.Bool("framed", cfg.Framed))

	if a.cpuProfile != "" {
		f, err := os.Create(a.cpuProfile)
		if err != nil {
			return fmt.Errorf("failed to create cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("failed to start cpu profile: %w", err)
		}
		a.cpuOut = f
	}
	return nil
}

func (a *app) teardown() error {
	defer func() { _ = a.log.Sync() }()

	if a.cpuOut != nil {
		pprof.StopCPUProfile()
		if err := a.cpuOut.Close(); err != nil {
			return err
		}
		a.log.Info("cpu profile written", zap.String("path", a.cpuProfile))
	}
	if a.memProfile != "" {
		f, err := os.Create(a.memProfile)
		if err != nil {
			return fmt.Errorf("failed to create heap profile: %w", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("failed to write heap profile: %w", err)
		}
		a.log.Info("heap profile written", zap.String("path", a.memProfile))
	}
	return nil
}
