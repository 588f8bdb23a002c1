package main

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"qtermsim/qasm"
	"qtermsim/quantum"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return string([]rune(s)[:width])
	}
	total := width - n
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// gateDisplayName returns a short display name for a gate type.
func gateDisplayName(t quantum.GateType) string {
	switch t {
	case quantum.GateSdg:
		return "S†"
	case quantum.GateTdg:
		return "T†"
	default:
		return t.String()
	}
}

// ──────────────────────────── Cell model ────────────────────────────

// cellRole is how one qubit takes part in the gate at a cell.
type cellRole int

const (
	roleNone cellRole = iota
	roleBox
	roleControl
	roleTarget
	roleSwap
)

func roleFor(t quantum.GateType, slot int) cellRole {
	switch {
	case t.Arity() == 1:
		return roleBox
	case t == quantum.GateSWAP:
		return roleSwap
	case t == quantum.GateCZ:
		return roleControl
	case slot == t.Arity()-1:
		return roleTarget
	default:
		return roleControl
	}
}

func (r cellRole) symbol() string {
	switch r {
	case roleControl:
		return "●"
	case roleTarget:
		return "⊕"
	case roleSwap:
		return "×"
	default:
		return ""
	}
}

// cellInfo describes what to draw at one (step, qubit) cell.
type cellInfo struct {
	gate        *quantum.Gate
	role        cellRole
	vertAbove   bool // a multi-qubit connector enters from above
	vertBelow   bool // a multi-qubit connector leaves below
	passThrough bool // a connector crosses a qubit the gate does not touch
}

func cellAt(c *quantum.Circuit, step, qubit int) cellInfo {
	var info cellInfo
	for i := range c.Gates {
		g := &c.Gates[i]
		if g.Position != step {
			continue
		}
		if slot := slices.Index(g.Qubits, qubit); slot >= 0 {
			info.gate = g
			info.role = roleFor(g.Type, slot)
		}
		if len(g.Qubits) < 2 {
			continue
		}
		lo, hi := slices.Min(g.Qubits), slices.Max(g.Qubits)
		if qubit > lo && qubit <= hi {
			info.vertAbove = true
		}
		if qubit >= lo && qubit < hi {
			info.vertBelow = true
		}
		if qubit > lo && qubit < hi && !g.References(qubit) {
			info.passThrough = true
		}
	}
	return info
}

// ──────────────────────────── Cell rendering ────────────────────────────

type cellHighlight int

const (
	hlNone cellHighlight = iota
	hlCursor
	hlTargetSelect
)

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW visual characters wide.
func renderCell(info cellInfo, hl cellHighlight) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)
	vert := func(on bool) string {
		if on {
			return vertRow
		}
		return emptyRow
	}

	// ── Highlighted cell (cursor or target selection) ──
	if hl != hlNone {
		bdr := cursorBoxStyle
		if hl == hlTargetSelect {
			bdr = targetSelectStyle
		}
		innerW := cellW - 2
		dashL := (innerW - 1) / 2
		dashR := innerW - dashL - 1
		edge := bdr.Render("║")

		top = bdr.Render("╔" + strings.Repeat("═", innerW) + "╗")
		bot = bdr.Render("╚" + strings.Repeat("═", innerW) + "╝")

		switch {
		case info.role == roleBox:
			name := padCenter(gateDisplayName(info.gate.Type), gateNameW)
			mid = edge + "─┤" + gateStyle.Render(name) + "├─" + edge
		case info.role != roleNone:
			mid = edge + strings.Repeat("─", dashL) + gateStyle.Render(info.role.symbol()) + strings.Repeat("─", dashR) + edge
		case info.passThrough:
			mid = edge + strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR) + edge
		default:
			mid = edge + strings.Repeat("─", innerW) + edge
		}
		return
	}

	// ── Normal (non-highlighted) cells ──
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	switch {
	case info.role == roleBox:
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		name := padCenter(gateDisplayName(info.gate.Type), gateNameW)

		top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)

	case info.role != roleNone:
		top = vert(info.vertAbove)
		mid = strings.Repeat("─", dashL) + gateStyle.Render(info.role.symbol()) + strings.Repeat("─", dashR)
		bot = vert(info.vertBelow)

	case info.passThrough:
		top = vertRow
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
		bot = vertRow

	default:
		// Empty wire
		top = vert(info.vertAbove)
		mid = strings.Repeat("─", cellW)
		bot = vert(info.vertBelow)
	}
	return
}

// ──────────────────────────── Panel rendering ────────────────────────────

// renderCircuitPanel renders the circuit grid panel.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Quantum Circuit"))
	sb.WriteString("\n\n")

	// How many steps fit
	availWidth := width - labelVisualW - 4
	displaySteps := max(availWidth/cellW, 1)

	startStep := 0
	if m.cursorStep >= displaySteps {
		startStep = m.cursorStep - displaySteps + 1
	}
	if startStep > 0 {
		fmt.Fprintf(&sb, "  ◀ showing steps %d-%d\n", startStep, startStep+displaySteps-1)
	}

	// Step number header
	header := strings.Repeat(" ", labelVisualW)
	for step := startStep; step < startStep+displaySteps; step++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", step), cellW))
	}
	sb.WriteString(header + "\n")

	selecting := m.focus == focusSelectTarget || m.focus == focusSelectControls || m.focus == focusEditQubit

	// Render each qubit as 3 lines
	for qubit := 0; qubit < m.circuit.NumQubits; qubit++ {
		topLine := strings.Repeat(" ", labelVisualW)
		label := fmt.Sprintf("q[%d]", qubit)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", label)) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for step := startStep; step < startStep+displaySteps; step++ {
			info := cellAt(&m.circuit, step, qubit)

			hl := hlNone
			if step == m.cursorStep && qubit == m.targetQubit && selecting {
				hl = hlTargetSelect
			} else if step == m.cursorStep && qubit == m.cursorQubit {
				hl = hlCursor
			}

			top, mid, bot := renderCell(info, hl)
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	// Status line
	sb.WriteString("\n")
	switch m.focus {
	case focusSelectControls:
		fmt.Fprintf(&sb, "  %s", activeGateStyle.Render(m.pendingGate.String()))
		sb.WriteString("  Select second control: ")
		sb.WriteString(targetSelectStyle.Render(fmt.Sprintf("q[%d]", m.targetQubit)))
		sb.WriteString(dimStyle.Render("   ↑↓ Move  Enter Confirm  Esc Cancel"))
	case focusSelectTarget:
		fmt.Fprintf(&sb, "  %s", activeGateStyle.Render(m.pendingGate.String()))
		sb.WriteString("  Select target qubit: ")
		sb.WriteString(targetSelectStyle.Render(fmt.Sprintf("q[%d]", m.targetQubit)))
		sb.WriteString(dimStyle.Render("   ↑↓ Move  Enter Confirm  Esc Cancel"))
	default:
		fmt.Fprintf(&sb, "  Position: Step %d, Qubit %d", m.cursorStep, m.cursorQubit)
		if g := m.circuit.GateAt(m.cursorStep, m.cursorQubit); g != nil {
			fmt.Fprintf(&sb, "  │  %s", gateStyle.Render(strings.TrimSuffix(qasm.FormatGate(*g), ";")))
		}
		if m.statusMsg != "" {
			fmt.Fprintf(&sb, "  │  %s", activeGateStyle.Render(m.statusMsg))
		}
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// renderQASMPanel renders the QASM editor panel.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder

	title := "QASM Editor"
	if m.focus == focusQASM {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.qasmEditor.View())
	if m.qasmErr != "" {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(m.qasmErr))
	}

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// probabilityBar draws p as a bar of barW cells.
func probabilityBar(p float64, noisy bool) string {
	n := min(int(math.Round(p*barW)), barW)
	style := barStyle
	if noisy {
		style = noisyBarStyle
	}
	return style.Render(strings.Repeat("█", n)) + dimStyle.Render(strings.Repeat("░", barW-n))
}

// renderStateColumn lists the most likely basis states of the preview.
func (m Model) renderStateColumn() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("State after step %d", m.cursorStep)))
	sb.WriteString("\n")
	if m.preview == nil {
		sb.WriteString(dimStyle.Render("no state"))
		return sb.String()
	}

	probs := m.preview.Probabilities
	idx := make([]int, 0, len(probs))
	for i, p := range probs {
		if p > 1e-12 {
			idx = append(idx, i)
		}
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(probs[b], probs[a])
	})
	n := m.preview.NumQubits()
	for _, i := range idx[:min(len(idx), maxResultRow)] {
		fmt.Fprintf(&sb, "|%s⟩ %s %5.1f%%\n", quantum.Bitstring(i, n), probabilityBar(probs[i], false), probs[i]*100)
	}
	if len(idx) > maxResultRow {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("... %d more", len(idx)-maxResultRow)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderBlochColumn lists per-qubit Bloch vectors of the preview.
func (m Model) renderBlochColumn() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Bloch vectors"))
	sb.WriteString("\n")
	if m.preview == nil {
		return sb.String()
	}
	vectors := m.preview.State.BlochVectors()
	marginals := m.preview.State.QubitProbabilities()
	for q, v := range vectors[:min(len(vectors), maxResultRow)] {
		fmt.Fprintf(&sb, "%s (%+.2f, %+.2f, %+.2f)  P1 %.2f\n",
			qubitLabelStyle.Render(fmt.Sprintf("q[%d]", q)), v.X, v.Y, v.Z, marginals[q].Prob1)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderRunColumn shows the last execution's counts and summary.
func (m Model) renderRunColumn(width int) string {
	var sb strings.Builder
	b := m.currentBackend()
	noise := b.NoiseLevel
	if m.noiseOn {
		noise = m.noise
	}
	sb.WriteString(titleStyle.Render("Run"))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  %s  noise %.3f  %d shots", b.Name, noise, m.shots)))
	sb.WriteString("\n")

	switch {
	case m.running:
		sb.WriteString(activeGateStyle.Render("Running..."))
	case m.execution == nil:
		sb.WriteString(dimStyle.Render("Press r to run the circuit"))
	default:
		exec := m.execution
		observed := exec.Actual.Observed()
		noisy := len(exec.Actual.Noisy) > 0
		for _, r := range observed[:min(len(observed), maxResultRow-2)] {
			fmt.Fprintf(&sb, "|%s⟩ %s %5d\n", r.State, probabilityBar(r.Probability, noisy), r.Count)
		}
		sb.WriteString(lipgloss.NewStyle().Width(width).Render(exec.Summary))
	}
	return sb.String()
}

// renderResultsPanel renders the state preview, Bloch vectors and the last run.
func (m Model) renderResultsPanel(width, height int) string {
	colW := max((width-4)/3, 20)
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(colW).Render(m.renderStateColumn()),
		lipgloss.NewStyle().Width(colW).Render(m.renderBlochColumn()),
		m.renderRunColumn(colW),
	)
	return resultsStyle.Width(width).Height(height).Render(row)
}

// renderParamInput renders the angle prompt.
func (m Model) renderParamInput() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Enter Angle"))
	sb.WriteString("\n\n")
	sb.WriteString("  θ = ")
	sb.WriteString(activeGateStyle.Render(m.paramInput + "█"))
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("  e.g. 1.5708, pi/2, 3*pi/4, -pi"))
	sb.WriteString("\n")
	if m.statusMsg != "" {
		sb.WriteString(errorStyle.Render("  " + m.statusMsg))
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render("  ⏎ Ok  Esc ✕"))
	return sb.String()
}

// renderEditGateMenu renders the edit options of the selected gate.
func (m Model) renderEditGateMenu() string {
	var sb strings.Builder
	if m.editIdx < 0 || m.editIdx >= len(m.circuit.Gates) {
		return ""
	}
	g := m.circuit.Gates[m.editIdx]
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Edit %s at step %d", gateDisplayName(g.Type), g.Position)))
	sb.WriteString("\n\n")
	for i, opt := range m.getEditOptions() {
		if i == m.editMenuIdx {
			sb.WriteString(menuSelectedStyle.Render(" ▸ " + opt.label))
		} else {
			sb.WriteString(menuNormalStyle.Render("   " + opt.label))
		}
		sb.WriteString("\n")
	}
	if m.focus == focusEditQubit {
		sb.WriteString("\n  Move to: ")
		sb.WriteString(targetSelectStyle.Render(fmt.Sprintf("q[%d]", m.targetQubit)))
		sb.WriteString("\n")
	}
	if m.statusMsg != "" {
		sb.WriteString(errorStyle.Render("  " + m.statusMsg))
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ⏎ Ok  Esc ✕"))
	return sb.String()
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeGateStyle.Render("Navigate: "))
	sb.WriteString("↑↓/jk Move qubit  ←→/hl Move step  +/- Qubits")
	sb.WriteString("    ")
	sb.WriteString(activeGateStyle.Render("a"))
	sb.WriteString(" Add gate  ")
	sb.WriteString(activeGateStyle.Render("e"))
	sb.WriteString(" Edit gate\n")

	sb.WriteString(activeGateStyle.Render("Run:      "))
	sb.WriteString("r Run  b Backend  n Noise on/off  [/] Noise level  g Next example\n")

	sb.WriteString(activeGateStyle.Render("Actions:  "))
	sb.WriteString("Tab Switch focus  Bksp Delete  ^R Reset  ^S Save  q/^C Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}
