package main

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"qtermsim/backend"
	"qtermsim/catalog"
	"qtermsim/quantum"
	"qtermsim/runner"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	notice  = color.New(color.FgYellow)
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

func ff(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// writeAmplitudes prints one row per basis state. Zero amplitudes are
// skipped unless all is set.
func writeAmplitudes(w io.Writer, res *quantum.Result, all bool) {
	n := res.NumQubits()
	heading.Fprintf(w, "State vector (%d qubits)\n", n)
	table := newTable(w, "Index", "State", "Real", "Imaginary", "Probability")
	for i, amp := range res.Amplitudes() {
		p := res.Probabilities[i]
		if !all && p <= 1e-12 {
			continue
		}
		table.Append([]string{
			strconv.Itoa(i),
			"|" + quantum.Bitstring(i, n) + "⟩",
			ff(amp.Real, 6),
			ff(amp.Imaginary, 6),
			ff(p, 6),
		})
	}
	table.SetFooter([]string{"", "", "", "Total", ff(res.TotalProbability(), 6)})
	table.Render()
}

// writeExecution prints the counts and summary of one run.
func writeExecution(w io.Writer, exec *runner.Execution) {
	heading.Fprintf(w, "%s on %s\n", exec.ID, exec.Backend)
	fmt.Fprintf(w, "qubits %d  gates %d  depth %d  shots %d  noise %.3f  seed %d  %.2f ms\n",
		exec.Circuit.NumQubits, exec.Metadata.GateCount, exec.Metadata.CircuitDepth,
		exec.Actual.Shots, exec.Actual.NoiseLevel, exec.Metadata.Seed, exec.Metadata.ExecutionTimeMs)

	ideal := make(map[string]int, len(exec.Actual.Measurements))
	for _, m := range exec.Actual.Measurements {
		ideal[m.State] = m.Count
	}
	table := newTable(w, "State", "Count", "Observed", "Expected", "Ideal count")
	for _, m := range exec.Actual.Observed() {
		table.Append([]string{
			"|" + m.State + "⟩",
			strconv.Itoa(m.Count),
			ff(m.Probability, 4),
			ff(exec.Expected.Probabilities[m.State], 4),
			strconv.Itoa(ideal[m.State]),
		})
	}
	table.Render()
	notice.Fprintln(w, exec.Summary)
	fmt.Fprintln(w)
}

// writeBloch prints each qubit's Bloch vector and marginals.
func writeBloch(w io.Writer, vectors []quantum.BlochVector, marginals []quantum.QubitProbability) {
	heading.Fprintln(w, "Bloch vectors")
	table := newTable(w, "Qubit", "X", "Y", "Z", "|r|", "P(0)", "P(1)")
	for q, v := range vectors {
		table.Append([]string{
			fmt.Sprintf("q[%d]", q),
			ff(v.X, 4),
			ff(v.Y, 4),
			ff(v.Z, 4),
			ff(math.Sqrt(v.X*v.X+v.Y*v.Y+v.Z*v.Z), 4),
			ff(marginals[q].Prob0, 4),
			ff(marginals[q].Prob1, 4),
		})
	}
	table.Render()
}

func writeExamples(w io.Writer, examples []catalog.Example) {
	table := newTable(w, "ID", "Name", "Difficulty", "Qubits", "Gates", "Description")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetColWidth(48)
	for _, ex := range examples {
		table.Append([]string{
			ex.ID,
			ex.Name,
			string(ex.Difficulty),
			strconv.Itoa(ex.Circuit.NumQubits),
			strconv.Itoa(ex.Circuit.GateCount()),
			ex.Description,
		})
	}
	table.Render()
}

func writeBackends(w io.Writer, backends []backend.Backend) {
	table := newTable(w, "ID", "Name", "Type", "Provider", "Qubits", "Noise")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, b := range backends {
		table.Append([]string{
			b.ID,
			b.Name,
			string(b.Kind),
			b.Provider,
			strconv.Itoa(b.Qubits),
			ff(b.NoiseLevel, 3),
		})
	}
	table.Render()
}
