package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/katalvlaran/vcs/equil"
	"github.com/katalvlaran/vcs/problemio"
	"github.com/katalvlaran/vcs/telemetry"
)

const (
	keyLogLevel   = "log.level"
	keySolver     = "solver"
	keyCutoff     = "cutoff"
	keyMetricsOut = "metrics.out"
)

// session is what every subcommand needs once flags and config are merged.
type session struct {
	log      *logrus.Logger
	registry *prometheus.Registry
	recorder *telemetry.Recorder
	opts     []equil.Option
	metrics  string
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:          "equilfix",
		Short:        "Repair and order the elemental-abundance constraints of an equilibrium problem",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile == "" {
				return nil
			}
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config %s: %w", cfgFile, err)
			}
			return nil
		},
	}

	v.SetEnvPrefix("EQUIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keySolver, "gonum")
	v.SetDefault(keyCutoff, equil.DefaultMinorSpeciesCutoff)

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file (keys: log.level, solver, cutoff, metrics.out)")
	pf.String("log-level", "info", "logrus level: debug, info, warn, error")
	pf.String("solver", "gonum", "linear solver for the damped correction: gonum or pivot-lu")
	pf.Float64("cutoff", equil.DefaultMinorSpeciesCutoff, "minor-species cutoff mole number")
	pf.String("metrics-out", "", "write Prometheus metrics to this textfile")
	for key, flag := range map[string]string{
		keyLogLevel:   "log-level",
		keySolver:     "solver",
		keyCutoff:     "cutoff",
		keyMetricsOut: "metrics-out",
	} {
		if err := v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	cmd.AddCommand(
		newCheckCmd(v),
		newRearrangeCmd(v),
		newCorrectCmd(v),
	)
	return cmd
}

func newSession(v *viper.Viper, stderr io.Writer) (*session, error) {
	log := logrus.New()
	log.SetOutput(stderr)
	lvl, err := logrus.ParseLevel(v.GetString(keyLogLevel))
	if err != nil {
		return nil, err
	}
	log.SetLevel(lvl)

	solver, err := equil.SolverByName(v.GetString(keySolver), log)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	rec, err := telemetry.NewRecorder(reg)
	if err != nil {
		return nil, err
	}

	return &session{
		log:      log,
		registry: reg,
		recorder: rec,
		metrics:  v.GetString(keyMetricsOut),
		opts: []equil.Option{
			equil.WithLogger(log),
			equil.WithSolver(solver),
			equil.WithMinorSpeciesCutoff(v.GetFloat64(keyCutoff)),
		},
	}, nil
}

func (s *session) load(path string) (*equil.Problem, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := problemio.Decode(fh)
	if err != nil {
		return nil, err
	}
	p, err := f.Build(s.opts...)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"file":        path,
		"constraints": p.NumConstraints(),
		"species":     p.NumSpecies(),
		"components":  p.NumComponents(),
	}).Debug("problem loaded")
	return p, nil
}

func (s *session) flushMetrics() error {
	if s.metrics == "" {
		return nil
	}
	return telemetry.WriteTextfile(s.metrics, s.registry)
}

// writeProblem encodes p to path, or to w when path is "-".
func writeProblem(w io.Writer, path string, p *equil.Problem) error {
	if path == "" {
		return nil
	}
	if path == "-" {
		return problemio.Encode(w, p)
	}
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = problemio.Encode(fh, p); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

func newCheckCmd(v *viper.Viper) *cobra.Command {
	var (
		file  string
		scope string
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether current abundances satisfy their targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := equil.ParseScope(scope)
			if err != nil {
				return err
			}
			s, err := newSession(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			p, err := s.load(file)
			if err != nil {
				return err
			}
			ok, err := p.CheckAbundances(sc)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, c := range p.Constraints() {
				fmt.Fprintf(out, "%-3d %-12s target=%-14g abundance=%-14g %s\n", i, c.Name, c.Target, c.Abundance, c.Type)
			}
			fmt.Fprintf(out, "compliant(%s): %v\n", sc, ok)
			return s.flushMetrics()
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "problem YAML file")
	cmd.Flags().StringVar(&scope, "scope", "all", "constraints to check: components or all")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newRearrangeCmd(v *viper.Viper) *cobra.Command {
	var file, outPath string
	cmd := &cobra.Command{
		Use:   "rearrange",
		Short: "Move a linearly independent set of constraints to the front",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			p, err := s.load(file)
			if err != nil {
				return err
			}
			rep, err := p.RearrangeConstraints()
			if err != nil {
				return err
			}
			s.recorder.ObserveRearrange(rep)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "swaps: %v\nrejected: %v\n", rep.Swaps, rep.Rejected)
			if err = writeProblem(out, outPath, p); err != nil {
				return err
			}
			return s.flushMetrics()
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "problem YAML file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", `write the rearranged problem here ("-" for stdout)`)
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newCorrectCmd(v *viper.Viper) *cobra.Command {
	var file, outPath string
	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Rearrange the constraints, then repair the mole numbers",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			p, err := s.load(file)
			if err != nil {
				return err
			}
			rrep, err := p.RearrangeConstraints()
			if err != nil {
				return err
			}
			s.recorder.ObserveRearrange(rrep)

			rep, err := p.CorrectAbundances()
			s.recorder.ObserveCorrection(rep)
			if err != nil {
				_ = s.flushMetrics()
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "status: %d (%s)\nstage: %s\nnorm: %g -> %g\n",
				int(rep.Status), rep.Status, rep.Stage, rep.NormBefore, rep.NormAfter)
			if err = writeProblem(out, outPath, p); err != nil {
				return err
			}
			return s.flushMetrics()
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "problem YAML file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", `write the corrected problem here ("-" for stdout)`)
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
