package main

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"qtermsim/backend"
	"qtermsim/catalog"
)

// run executes the CLI with logging disabled and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"qtermsim", "--log-file", ""}, args...))
	return out.String(), err
}

func TestSimulateCommandJSON(t *testing.T) {
	out, err := run(t, "simulate", "--example", "bell-state", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var got simulation
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if got.NumQubits != 2 || len(got.Amplitudes) != 4 {
		t.Fatalf("got %+v", got)
	}
	if len(got.Probabilities) != 2 || math.Abs(got.Probabilities["00"]-0.5) > 1e-9 || math.Abs(got.Probabilities["11"]-0.5) > 1e-9 {
		t.Errorf("probabilities = %v", got.Probabilities)
	}
}

func TestSimulateCommandTable(t *testing.T) {
	out, err := run(t, "simulate", "--example", "ghz-state", "--upto", "0")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"|000⟩", "|100⟩", "0.500000"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "|111⟩") {
		t.Errorf("--upto 0 ran the CNOTs:\n%s", out)
	}
}

func TestMeasureCommand(t *testing.T) {
	out, err := run(t, "--seed", "3", "--shots", "200", "measure", "--example", "bell-state", "--example", "x-gate")
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out, "exec-"); n != 2 {
		t.Errorf("got %d executions, want 2:\n%s", n, out)
	}
	for _, want := range []string{"|00⟩", "|11⟩", "|1⟩", "shots 200", "most common measurement"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMeasureCommandNoiseOverride(t *testing.T) {
	out, err := run(t, "--seed", "3", "--backend", "superconducting", "--noise", "0", "measure",
		"--example", "x-gate", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var execs []struct {
		Actual struct {
			NoiseLevel float64           `json:"noiseLevel"`
			Noisy      []json.RawMessage `json:"noisyMeasurements"`
		} `json:"actualResults"`
		Backend string `json:"quantumComputer"`
	}
	if err := json.Unmarshal([]byte(out), &execs); err != nil {
		t.Fatal(err)
	}
	if len(execs) != 1 || execs[0].Backend != "superconducting" {
		t.Fatalf("got %+v", execs)
	}
	if execs[0].Actual.NoiseLevel != 0 || len(execs[0].Actual.Noisy) != 0 {
		t.Errorf("noise override ignored: %+v", execs[0].Actual)
	}
}

func TestBlochCommandYAML(t *testing.T) {
	out, err := run(t, "bloch", "--example", "x-gate", "--format", "yaml")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"qubit: 0", "z: -1", "p1: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestQASMCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bell.json")
	doc := `{"numQubits": 2, "gates": [{"type": "H", "qubitIndices": [0], "position": 0}, {"type": "CNOT", "qubitIndices": [0, 1], "position": 1}]}`
	if err := os.WriteFile(src, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "qasm", src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "qreg q[2];") || !strings.Contains(out, "cx q[0], q[1];") {
		t.Errorf("unexpected QASM:\n%s", out)
	}

	dst := filepath.Join(dir, "bell.yaml")
	if _, err := run(t, "qasm", "--to", "yaml", "--out", dst, src); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "type: CNOT") {
		t.Errorf("unexpected YAML:\n%s", data)
	}
}

func TestListCommands(t *testing.T) {
	out, err := run(t, "examples")
	if err != nil {
		t.Fatal(err)
	}
	for _, ex := range catalog.All() {
		if !strings.Contains(out, ex.ID) {
			t.Errorf("examples output missing %s", ex.ID)
		}
	}

	out, err = run(t, "backends", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var got []backend.Backend
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != len(backend.All()) {
		t.Errorf("got %d backends", len(got))
	}
}

func TestCommandErrors(t *testing.T) {
	if _, err := run(t, "measure"); err == nil || !strings.Contains(err.Error(), "no circuit") {
		t.Errorf("measure without circuit: %v", err)
	}
	if _, err := run(t, "--backend", "photonic", "examples"); !errors.Is(err, backend.ErrUnknownBackend) {
		t.Errorf("unknown backend: %v", err)
	}
	if _, err := run(t, "simulate", "--example", "nope"); !errors.Is(err, catalog.ErrUnknownExample) {
		t.Errorf("unknown example: %v", err)
	}
	if _, err := run(t, "bloch", "--example", "x-gate", "--example", "bell-state"); err == nil {
		t.Error("bloch accepted two circuits")
	}
	if _, err := run(t, "simulate", "--example", "x-gate", "--format", "xml"); err == nil {
		t.Error("unknown format accepted")
	}
}
