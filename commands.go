package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"qtermsim/backend"
	"qtermsim/catalog"
	"qtermsim/circuitio"
	"qtermsim/config"
	"qtermsim/quantum"
	"qtermsim/runner"
)

// env is built once per invocation from the config file and global flags.
type env struct {
	cfg    config.Config
	logger *zap.Logger
	runner *runner.Runner
}

func exampleFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "example",
		Aliases: []string{"e"},
		Usage:   "use a built-in example circuit `ID` (repeatable)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "table",
		Usage:   "output `FORMAT`: table, json or yaml",
	}
}

func newApp() *cli.App {
	e := &env{}
	return &cli.App{
		Name:      "qtermsim",
		Usage:     "build, simulate and measure small quantum circuits",
		ArgsUsage: "[circuit file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config `FILE`"},
			&cli.IntFlag{Name: "qubits", Aliases: []string{"n"}, Usage: "qubits of a new circuit in the editor"},
			&cli.IntFlag{Name: "shots", Aliases: []string{"s"}, Usage: "measurement shots per run"},
			&cli.Float64Flag{Name: "noise", Usage: "override the backend's readout noise `LEVEL` in [0,1]"},
			&cli.Uint64Flag{Name: "seed", Usage: "sampling seed, 0 for time-derived"},
			&cli.StringFlag{Name: "backend", Aliases: []string{"b"}, Usage: "backend `ID` (see the backends command)"},
			&cli.IntFlag{Name: "parallelism", Usage: "concurrent executions in batch runs"},
			&cli.StringFlag{Name: "log-file", Usage: "log `FILE`, empty disables logging"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		Before: e.setup,
		After:  e.teardown,
		Action: e.tui,
		Commands: []*cli.Command{
			{
				Name:      "tui",
				Usage:     "open the interactive circuit editor",
				ArgsUsage: "[circuit file]",
				Flags:     []cli.Flag{exampleFlag()},
				Action:    e.tui,
			},
			{
				Name:      "simulate",
				Usage:     "print the final state vector of a circuit",
				ArgsUsage: "<circuit file>",
				Flags: []cli.Flag{
					exampleFlag(),
					formatFlag(),
					&cli.IntFlag{Name: "upto", Value: -1, Usage: "stop after gates at `POSITION`"},
					&cli.BoolFlag{Name: "all", Usage: "include zero amplitudes"},
				},
				Action: e.simulate,
			},
			{
				Name:      "measure",
				Usage:     "run circuits on a backend and print measurement counts",
				ArgsUsage: "<circuit file>...",
				Flags:     []cli.Flag{exampleFlag(), formatFlag()},
				Action:    e.measure,
			},
			{
				Name:      "bloch",
				Usage:     "print the Bloch vector of every qubit",
				ArgsUsage: "<circuit file>",
				Flags:     []cli.Flag{exampleFlag(), formatFlag()},
				Action:    e.bloch,
			},
			{
				Name:   "examples",
				Usage:  "list the built-in example circuits",
				Flags:  []cli.Flag{formatFlag()},
				Action: e.examples,
			},
			{
				Name:   "backends",
				Usage:  "list the available backends",
				Flags:  []cli.Flag{formatFlag()},
				Action: e.backends,
			},
			{
				Name:      "qasm",
				Usage:     "convert a circuit between QASM, JSON and YAML",
				ArgsUsage: "<circuit file>",
				Flags: []cli.Flag{
					exampleFlag(),
					&cli.StringFlag{Name: "to", Value: "qasm", Usage: "target `FORMAT`: qasm, json or yaml"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write to `FILE` instead of stdout"},
				},
				Action: e.convert,
			},
		},
	}
}

// setup loads the config file and lets explicit flags override it.
func (e *env) setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("qubits") {
		cfg.Qubits = c.Int("qubits")
	}
	if c.IsSet("shots") {
		cfg.Shots = c.Int("shots")
	}
	if c.IsSet("noise") {
		cfg.NoiseLevel = c.Float64("noise")
	}
	if c.IsSet("seed") {
		cfg.Seed = c.Uint64("seed")
	}
	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("parallelism") {
		cfg.Parallelism = c.Int("parallelism")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.logger = logger
	e.runner = runner.New(logger, cfg.Parallelism)
	e.logger.Debug("config loaded", zap.Any("config", cfg))
	return nil
}

func (e *env) teardown(*cli.Context) error {
	if e.logger != nil {
		_ = e.logger.Sync()
	}
	return nil
}

// options maps the config to runner options. The config noise level only
// overrides the backend when --noise was given.
func (e *env) options(c *cli.Context) (runner.Options, error) {
	b, err := backend.Lookup(e.cfg.Backend)
	if err != nil {
		return runner.Options{}, err
	}
	opts := runner.Options{
		Shots:   e.cfg.Shots,
		Backend: b,
		Seed:    e.cfg.Seed,
	}
	if c.IsSet("noise") {
		noise := e.cfg.NoiseLevel
		opts.NoiseLevel = &noise
	}
	return opts, nil
}

// circuits collects the circuits named by --example flags and file arguments.
func circuits(c *cli.Context) ([]quantum.Circuit, error) {
	var out []quantum.Circuit
	for _, id := range c.StringSlice("example") {
		ex, err := catalog.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, ex.Circuit)
	}
	for _, path := range c.Args().Slice() {
		circ, err := circuitio.Load(path)
		if err != nil {
			return nil, err
		}
		out = append(out, circ)
	}
	if len(out) == 0 {
		return nil, errors.New("no circuit given: pass a file or --example")
	}
	return out, nil
}

func single(c *cli.Context) (quantum.Circuit, error) {
	all, err := circuits(c)
	if err != nil {
		return quantum.Circuit{}, err
	}
	if len(all) > 1 {
		return quantum.Circuit{}, errors.Errorf("%s takes one circuit, got %d", c.Command.Name, len(all))
	}
	return all[0], nil
}

func (e *env) tui(c *cli.Context) error {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return errors.New("the editor needs an interactive terminal; use simulate or measure instead")
	}
	circ := quantum.Circuit{NumQubits: e.cfg.Qubits}
	if c.NArg() > 0 || len(c.StringSlice("example")) > 0 {
		var err error
		if circ, err = single(c); err != nil {
			return err
		}
	}
	e.logger.Info("editor started", zap.Int("qubits", circ.NumQubits), zap.Int("gates", circ.GateCount()))
	p := tea.NewProgram(initialModel(e.cfg, e.runner, circ), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// simulation is the encoded form of the simulate command's output.
type simulation struct {
	NumQubits     int                        `json:"numQubits" yaml:"num_qubits"`
	Amplitudes    []quantum.Amplitude        `json:"amplitudes" yaml:"amplitudes"`
	Probabilities map[string]float64         `json:"probabilities" yaml:"probabilities"`
	Qubits        []quantum.QubitProbability `json:"qubitProbabilities" yaml:"qubit_probabilities"`
}

func (e *env) simulate(c *cli.Context) error {
	circ, err := single(c)
	if err != nil {
		return err
	}
	res, err := quantum.SimulateUpTo(circ, c.Int("upto"))
	if err != nil {
		return err
	}
	w := c.App.Writer
	if f := c.String("format"); f != "table" {
		return circuitio.Encode(w, simulation{
			NumQubits:     res.NumQubits(),
			Amplitudes:    res.Amplitudes(),
			Probabilities: res.ProbabilityMap(),
			Qubits:        res.State.QubitProbabilities(),
		}, circuitio.Format(f))
	}
	writeAmplitudes(w, res, c.Bool("all"))
	return nil
}

func (e *env) measure(c *cli.Context) error {
	all, err := circuits(c)
	if err != nil {
		return err
	}
	opts, err := e.options(c)
	if err != nil {
		return err
	}
	execs, err := e.runner.RunBatch(context.Background(), all, opts)
	if err != nil {
		return err
	}
	w := c.App.Writer
	if f := c.String("format"); f != "table" {
		return circuitio.Encode(w, execs, circuitio.Format(f))
	}
	for _, exec := range execs {
		writeExecution(w, exec)
	}
	return nil
}

// blochReport is one row of the bloch command's encoded output.
type blochReport struct {
	Qubit int     `json:"qubit" yaml:"qubit"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Z     float64 `json:"z" yaml:"z"`
	P0    float64 `json:"p0" yaml:"p0"`
	P1    float64 `json:"p1" yaml:"p1"`
}

func (e *env) bloch(c *cli.Context) error {
	circ, err := single(c)
	if err != nil {
		return err
	}
	res, err := quantum.Simulate(circ)
	if err != nil {
		return err
	}
	vectors := res.State.BlochVectors()
	marginals := res.State.QubitProbabilities()
	w := c.App.Writer
	if f := c.String("format"); f != "table" {
		rows := make([]blochReport, len(vectors))
		for q, v := range vectors {
			rows[q] = blochReport{Qubit: q, X: v.X, Y: v.Y, Z: v.Z, P0: marginals[q].Prob0, P1: marginals[q].Prob1}
		}
		return circuitio.Encode(w, rows, circuitio.Format(f))
	}
	writeBloch(w, vectors, marginals)
	return nil
}

func (e *env) examples(c *cli.Context) error {
	all := catalog.All()
	if f := c.String("format"); f != "table" {
		return circuitio.Encode(c.App.Writer, all, circuitio.Format(f))
	}
	writeExamples(c.App.Writer, all)
	return nil
}

func (e *env) backends(c *cli.Context) error {
	all := backend.All()
	if f := c.String("format"); f != "table" {
		return circuitio.Encode(c.App.Writer, all, circuitio.Format(f))
	}
	writeBackends(c.App.Writer, all)
	return nil
}

func (e *env) convert(c *cli.Context) error {
	circ, err := single(c)
	if err != nil {
		return err
	}
	format := circuitio.Format(c.String("to"))
	out := c.String("out")
	if out == "" {
		return circuitio.WriteCircuit(c.App.Writer, circ, format)
	}
	f, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "creating output")
	}
	if err := circuitio.WriteCircuit(f, circ, format); err != nil {
		f.Close()
		return err
	}
	e.logger.Info("circuit written", zap.String("path", out), zap.String("format", string(format)))
	return f.Close()
}
