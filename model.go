package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"qtermsim/backend"
	"qtermsim/catalog"
	"qtermsim/circuitio"
	"qtermsim/config"
	"qtermsim/qasm"
	"qtermsim/quantum"
	"qtermsim/runner"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusQASM
	focusMenu
	focusSelectTarget
	focusInputParam
	focusSelectControls
	focusEditGate
	focusEditParam
	focusEditQubit
)

// executionMsg carries a finished run back into Update.
type executionMsg struct {
	exec *runner.Execution
	err  error
}

// Model represents the TUI application state.
type Model struct {
	circuit     quantum.Circuit // single source of truth for grid and QASM panel
	cursorQubit int
	cursorStep  int
	width       int
	height      int
	qasmEditor  textarea.Model
	focus       focus
	lastQASM    string
	qasmErr     string
	statusMsg   string // transient status message (e.g. save confirmation)
	savePath    string
	exampleIdx  int

	// Menu state
	menuCat  int
	menuItem int

	// Target-selection state (for multi-qubit gates)
	pendingGate   quantum.GateType
	targetQubit   int
	paramInput    string
	controlQubits []int

	// Edit gate state
	editIdx     int // index into circuit.Gates
	editMenuIdx int
	editSlot    int // qubit slot being moved

	// Results state
	runner     *runner.Runner
	backends   []backend.Backend
	backendIdx int
	shots      int
	seed       uint64
	noise      float64
	noiseOn    bool // override the backend's noise with noise
	preview    *quantum.Result
	execution  *runner.Execution
	running    bool
}

func initialModel(cfg config.Config, r *runner.Runner, c quantum.Circuit) Model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.SetWidth(40)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.KeyMap.InsertNewline.SetEnabled(true)

	m := Model{
		circuit:    c,
		qasmEditor: ta,
		focus:      focusCircuit,
		savePath:   "circuit.qasm",
		editIdx:    -1,
		runner:     r,
		backends:   backend.All(),
		shots:      cfg.Shots,
		seed:       cfg.Seed,
		noise:      cfg.NoiseLevel,
		exampleIdx: -1,
	}
	for i, b := range m.backends {
		if b.ID == cfg.Backend {
			m.backendIdx = i
		}
	}

	m.syncFromCircuit()
	return m
}

func (m *Model) syncFromCircuit() {
	src := qasm.Format(m.circuit)
	m.qasmEditor.SetValue(src)
	m.lastQASM = src
	m.qasmErr = ""
	m.refreshPreview()
}

// refreshPreview recomputes the state after the cursor column.
func (m *Model) refreshPreview() {
	res, err := quantum.SimulateUpTo(m.circuit, m.cursorStep)
	if err != nil {
		m.preview = nil
		m.statusMsg = err.Error()
		return
	}
	m.preview = res
}

func (m *Model) parseQASMInput() {
	src := m.qasmEditor.Value()
	if src == m.lastQASM {
		return
	}
	m.lastQASM = src
	c, err := qasm.Parse(src)
	if err != nil {
		m.qasmErr = err.Error()
		return
	}
	m.qasmErr = ""
	m.circuit = c
	m.cursorQubit = min(m.cursorQubit, c.NumQubits-1)
	m.refreshPreview()
}

func (m *Model) resetPending() {
	m.paramInput = ""
	m.controlQubits = nil
	m.pendingGate = 0
}

// placeGate places the pending gate at the cursor column. The cursor qubit
// comes first, then chosen controls, then targetQ.
// Returns true if placement succeeded, false if blocked by conflict.
func (m *Model) placeGate(targetQ int) bool {
	qubits := []int{m.cursorQubit}
	qubits = append(qubits, m.controlQubits...)
	if m.pendingGate.Arity() > 1 {
		qubits = append(qubits, targetQ)
	}

	if !m.circuit.CanPlaceAt(m.cursorStep, qubits) {
		m.statusMsg = "Cannot place: qubit already used by another gate at this step"
		m.resetPending()
		return false
	}

	g := quantum.Gate{
		ID:       uuid.NewString(),
		Type:     m.pendingGate,
		Qubits:   qubits,
		Position: m.cursorStep,
	}
	if m.pendingGate.Parametrized() {
		angle := 0.0
		if m.paramInput != "" {
			angle, _ = qasm.ParseAngle(m.paramInput)
		}
		g.Params = &quantum.Params{Angle: angle}
	}
	m.circuit.Gates = append(m.circuit.Gates, g)

	m.resetPending()
	m.cursorStep++
	m.syncFromCircuit()
	return true
}

func (m *Model) startTargetSelect(next focus) {
	m.focus = next
	m.targetQubit = m.cursorQubit + 1
	if m.targetQubit >= m.circuit.NumQubits {
		m.targetQubit = m.cursorQubit - 1
	}
}

// unavailable reports qubits that cannot be picked as the next operand.
func (m *Model) unavailable(q int) bool {
	return q == m.cursorQubit || slices.Contains(m.controlQubits, q)
}

func (m *Model) currentBackend() backend.Backend {
	return m.backends[m.backendIdx]
}

func (m *Model) options() runner.Options {
	opts := runner.Options{
		Shots:   m.shots,
		Backend: m.currentBackend(),
		Seed:    m.seed,
	}
	if m.noiseOn {
		noise := m.noise
		opts.NoiseLevel = &noise
	}
	return opts
}

// runCmd executes a snapshot of the circuit off the UI loop.
func (m Model) runCmd() tea.Cmd {
	c := m.circuit.Clone()
	r, opts := m.runner, m.options()
	return func() tea.Msg {
		exec, err := r.Execute(context.Background(), c, opts)
		return executionMsg{exec: exec, err: err}
	}
}

func (m *Model) save() {
	f, err := os.Create(m.savePath)
	if err != nil {
		m.statusMsg = fmt.Sprintf("Save error: %v", err)
		return
	}
	defer f.Close()
	format, err := circuitio.FormatFor(m.savePath)
	if err == nil {
		err = circuitio.WriteCircuit(f, m.circuit, format)
	}
	if err != nil {
		m.statusMsg = fmt.Sprintf("Save error: %v", err)
		return
	}
	m.statusMsg = "Saved " + m.savePath
}

func (m *Model) loadNextExample() {
	examples := catalog.All()
	m.exampleIdx = (m.exampleIdx + 1) % len(examples)
	ex := examples[m.exampleIdx]
	m.circuit = ex.Circuit
	m.cursorQubit, m.cursorStep = 0, 0
	m.execution = nil
	m.syncFromCircuit()
	m.statusMsg = "Loaded " + ex.Name
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		qasmW := max(msg.Width/3-6, 20)
		m.qasmEditor.SetWidth(qasmW)
		editorH := max(m.topHeight()-8, 4)
		m.qasmEditor.SetHeight(editorH)

	case executionMsg:
		m.running = false
		if msg.err != nil {
			m.statusMsg = "Run failed: " + msg.err.Error()
			break
		}
		m.execution = msg.exec
		name := msg.exec.Backend
		if b, err := backend.Lookup(name); err == nil {
			name = b.Name
		}
		m.statusMsg = fmt.Sprintf("Ran %d shots on %s", msg.exec.Actual.Shots, name)

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusQASM
				m.qasmEditor.Focus()
			case "ctrl+r":
				m.circuit.Gates = nil
				m.cursorStep = 0
				m.execution = nil
				m.syncFromCircuit()
			case "ctrl+s":
				m.save()
			case "up", "k":
				if m.cursorQubit > 0 {
					m.cursorQubit--
				}
			case "down", "j":
				if m.cursorQubit < m.circuit.NumQubits-1 {
					m.cursorQubit++
				}
			case "left", "h":
				if m.cursorStep > 0 {
					m.cursorStep--
					m.refreshPreview()
				}
			case "right", "l":
				m.cursorStep++
				m.refreshPreview()
			case "+", "=":
				if m.circuit.NumQubits < quantum.MaxQubits {
					m.circuit.NumQubits++
					m.syncFromCircuit()
				}
			case "-":
				if m.circuit.NumQubits > 1 {
					m.circuit.NumQubits--
					m.cursorQubit = min(m.cursorQubit, m.circuit.NumQubits-1)
					m.circuit.RemoveGatesOnQubit(m.circuit.NumQubits)
					m.syncFromCircuit()
				}
			case "a":
				m.focus = focusMenu
				m.menuCat = 0
				m.menuItem = 0
			case "backspace", "delete":
				m.circuit.RemoveGateAt(m.cursorStep, m.cursorQubit)
				m.syncFromCircuit()
			case "e":
				for i, g := range m.circuit.Gates {
					if g.Position == m.cursorStep && g.References(m.cursorQubit) {
						m.editIdx = i
						m.editMenuIdx = 0
						m.focus = focusEditGate
						break
					}
				}
			case "r":
				if !m.running {
					m.running = true
					m.statusMsg = "Running..."
					cmds = append(cmds, m.runCmd())
				}
			case "b":
				m.backendIdx = (m.backendIdx + 1) % len(m.backends)
			case "n":
				m.noiseOn = !m.noiseOn
			case "[":
				m.noise = max(m.noise-0.005, 0)
			case "]":
				m.noise = min(m.noise+0.005, 1)
			case "g":
				m.loadNextExample()
			}

		case focusMenu:
			switch key {
			case "esc":
				m.focus = focusCircuit
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				cat := gateMenu[m.menuCat]
				if m.menuItem < len(cat.items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(gateMenu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				item := gateMenu[m.menuCat].items[m.menuItem]
				if item.gate.Arity() > m.circuit.NumQubits {
					m.statusMsg = fmt.Sprintf("%s needs %d qubits", item.gate, item.gate.Arity())
					break
				}
				m.pendingGate = item.gate

				switch {
				case item.needsParams():
					m.paramInput = ""
					m.focus = focusInputParam
				case item.gate.Arity() == 3:
					m.controlQubits = nil
					m.startTargetSelect(focusSelectControls)
				case item.needsTarget():
					m.startTargetSelect(focusSelectTarget)
				default:
					if m.placeGate(-1) {
						m.focus = focusCircuit
					}
				}
			}

		case focusSelectTarget, focusSelectControls:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.resetPending()
			case "up", "k":
				for next := m.targetQubit - 1; next >= 0; next-- {
					if !m.unavailable(next) {
						m.targetQubit = next
						break
					}
				}
			case "down", "j":
				for next := m.targetQubit + 1; next < m.circuit.NumQubits; next++ {
					if !m.unavailable(next) {
						m.targetQubit = next
						break
					}
				}
			case "enter":
				if m.focus == focusSelectControls {
					m.controlQubits = append(m.controlQubits, m.targetQubit)
					m.focus = focusSelectTarget
					for q := 0; q < m.circuit.NumQubits; q++ {
						if !m.unavailable(q) {
							m.targetQubit = q
							break
						}
					}
					break
				}
				m.placeGate(m.targetQubit)
				m.focus = focusCircuit
			}

		case focusInputParam, focusEditParam:
			back := focusCircuit
			if m.focus == focusEditParam {
				back = focusEditGate
			}
			switch key {
			case "esc":
				m.paramInput = ""
				if m.focus == focusInputParam {
					m.pendingGate = 0
				}
				m.focus = back
			case "backspace":
				if len(m.paramInput) > 0 {
					m.paramInput = m.paramInput[:len(m.paramInput)-1]
				}
			case "enter":
				if m.paramInput != "" {
					if _, err := qasm.ParseAngle(m.paramInput); err != nil {
						m.statusMsg = "Invalid angle: " + err.Error()
						break
					}
				}
				if m.focus == focusInputParam {
					m.placeGate(-1)
					m.focus = focusCircuit
					break
				}
				angle := 0.0
				if m.paramInput != "" {
					angle, _ = qasm.ParseAngle(m.paramInput)
				}
				m.circuit.Gates[m.editIdx].Params = &quantum.Params{Angle: angle}
				m.paramInput = ""
				m.syncFromCircuit()
				m.focus = back
			default:
				if len(key) == 1 {
					ch := key[0]
					if (ch >= '0' && ch <= '9') || ch == '.' || ch == '-' || ch == 'e' || ch == 'E' || ch == '+' ||
						ch == 'p' || ch == 'i' || ch == '*' || ch == '/' {
						m.paramInput += key
					}
				}
			}

		case focusEditGate:
			editOptions := m.getEditOptions()
			if len(editOptions) == 0 {
				m.focus = focusCircuit
				break
			}
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.editIdx = -1
			case "up", "k":
				if m.editMenuIdx > 0 {
					m.editMenuIdx--
				}
			case "down", "j":
				if m.editMenuIdx < len(editOptions)-1 {
					m.editMenuIdx++
				}
			case "enter":
				opt := editOptions[m.editMenuIdx]
				switch opt.action {
				case editAngle:
					m.paramInput = ""
					m.focus = focusEditParam
				case editQubit:
					m.editSlot = opt.slot
					m.targetQubit = m.circuit.Gates[m.editIdx].Qubits[opt.slot]
					m.focus = focusEditQubit
				case editDelete:
					m.circuit.Gates = slices.Delete(m.circuit.Gates, m.editIdx, m.editIdx+1)
					m.editIdx = -1
					m.focus = focusCircuit
					m.syncFromCircuit()
				}
			}

		case focusEditQubit:
			g := m.circuit.Gates[m.editIdx]
			taken := func(q int) bool {
				return q != g.Qubits[m.editSlot] && g.References(q)
			}
			switch key {
			case "esc":
				m.focus = focusEditGate
			case "up", "k":
				for next := m.targetQubit - 1; next >= 0; next-- {
					if !taken(next) {
						m.targetQubit = next
						break
					}
				}
			case "down", "j":
				for next := m.targetQubit + 1; next < m.circuit.NumQubits; next++ {
					if !taken(next) {
						m.targetQubit = next
						break
					}
				}
			case "enter":
				if other := m.circuit.GateAt(g.Position, m.targetQubit); other != nil && other != &m.circuit.Gates[m.editIdx] {
					m.statusMsg = "Cannot move: qubit already used by another gate at this step"
					break
				}
				m.circuit.Gates[m.editIdx].Qubits[m.editSlot] = m.targetQubit
				m.syncFromCircuit()
				m.focus = focusEditGate
			}

		case focusQASM:
			switch key {
			case "tab":
				m.focus = focusCircuit
				m.qasmEditor.Blur()
			default:
				var cmd tea.Cmd
				m.qasmEditor, cmd = m.qasmEditor.Update(msg)
				cmds = append(cmds, cmd)
				m.parseQASMInput()
			}
		}
	}

	return m, tea.Batch(cmds...)
}

type editAction int

const (
	editAngle editAction = iota
	editQubit
	editDelete
)

// editOption represents an option in the edit gate menu.
type editOption struct {
	label  string
	action editAction
	slot   int
}

// getEditOptions returns available edit options for the gate being edited.
func (m *Model) getEditOptions() []editOption {
	if m.editIdx < 0 || m.editIdx >= len(m.circuit.Gates) {
		return nil
	}
	g := m.circuit.Gates[m.editIdx]
	var opts []editOption

	if g.Type.Parametrized() {
		opts = append(opts, editOption{
			label:  "Angle: " + qasm.FormatAngle(g.Angle()),
			action: editAngle,
		})
	}
	for slot, q := range g.Qubits {
		opts = append(opts, editOption{
			label:  fmt.Sprintf("%s: q[%d]", operandName(g.Type, slot), q),
			action: editQubit,
			slot:   slot,
		})
	}
	opts = append(opts, editOption{
		label:  "Delete gate",
		action: editDelete,
	})
	return opts
}

// operandName labels the slot-th qubit of a gate.
func operandName(t quantum.GateType, slot int) string {
	switch {
	case t.Arity() == 1:
		return "Qubit"
	case t == quantum.GateSWAP:
		return fmt.Sprintf("Qubit %d", slot+1)
	case t == quantum.GateCZ:
		return fmt.Sprintf("Control %d", slot+1)
	case slot == t.Arity()-1:
		return "Target"
	case t.Arity() == 2:
		return "Control"
	default:
		return fmt.Sprintf("Control %d", slot+1)
	}
}

const (
	controlsHeight = 5
	resultsHeight  = 14
)

func (m Model) topHeight() int {
	return max(m.height-controlsHeight-resultsHeight-2, 8)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	qasmWidth := m.width / 3
	circuitWidth := m.width - qasmWidth - 4
	topHeight := m.topHeight()

	circuitPanel := m.renderCircuitPanel(circuitWidth, topHeight)
	qasmPanel := m.renderQASMPanel(qasmWidth, topHeight)
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, qasmPanel)

	// Menus take the place of the results panel while open.
	var middle string
	switch m.focus {
	case focusMenu:
		middle = resultsStyle.Width(m.width - 2).Height(resultsHeight - 2).Render(m.renderMenu())
	case focusInputParam, focusEditParam:
		middle = resultsStyle.Width(m.width - 2).Height(resultsHeight - 2).Render(m.renderParamInput())
	case focusEditGate, focusEditQubit:
		middle = resultsStyle.Width(m.width - 2).Height(resultsHeight - 2).Render(m.renderEditGateMenu())
	default:
		middle = m.renderResultsPanel(m.width-2, resultsHeight-2)
	}

	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)
	return lipgloss.JoinVertical(lipgloss.Left, topRow, middle, controlsPanel)
}
