package main

import (
	"fmt"
	"strings"

	"qtermsim/quantum"
)

// menuItem represents a single gate choice in the menu.
type menuItem struct {
	name   string
	gate   quantum.GateType
	symbol string
	hint   string // example angle for rotations
}

func (it menuItem) needsTarget() bool { return it.gate.Arity() > 1 }
func (it menuItem) needsParams() bool { return it.gate.Parametrized() }

// menuCategory groups related menu items under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

// gateMenu defines the gate picker categories and items.
var gateMenu = []menuCategory{
	{
		name: "Single Qubit",
		items: []menuItem{
			{name: "Hadamard", gate: quantum.GateH, symbol: "H"},
			{name: "Pauli-X (NOT)", gate: quantum.GateX, symbol: "X"},
			{name: "Pauli-Y", gate: quantum.GateY, symbol: "Y"},
			{name: "Pauli-Z", gate: quantum.GateZ, symbol: "Z"},
			{name: "Phase (S)", gate: quantum.GateS, symbol: "S"},
			{name: "Phase Dagger (S†)", gate: quantum.GateSdg, symbol: "S†"},
			{name: "T Gate", gate: quantum.GateT, symbol: "T"},
			{name: "T Dagger (T†)", gate: quantum.GateTdg, symbol: "T†"},
		},
	},
	{
		name: "Rotation",
		items: []menuItem{
			{name: "Rotate X", gate: quantum.GateRX, symbol: "RX", hint: "pi/2"},
			{name: "Rotate Y", gate: quantum.GateRY, symbol: "RY", hint: "pi/2"},
			{name: "Rotate Z", gate: quantum.GateRZ, symbol: "RZ", hint: "pi/4"},
		},
	},
	{
		name: "Multi Qubit",
		items: []menuItem{
			{name: "CNOT", gate: quantum.GateCNOT, symbol: "●─⊕"},
			{name: "Controlled-Z", gate: quantum.GateCZ, symbol: "●─●"},
			{name: "SWAP", gate: quantum.GateSWAP, symbol: "×─×"},
			{name: "Toffoli (CCX)", gate: quantum.GateToffoli, symbol: "●─●─⊕"},
		},
	},
}

// renderMenu renders the gate picker.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Add Gate"))
	sb.WriteString("\n")

	// Category tabs
	for i, cat := range gateMenu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeGateStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(gateMenu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 42)))
	sb.WriteString("\n")

	// Items in the selected category
	cat := gateMenu[m.menuCat]
	for i, item := range cat.items {
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(gateStyle.Render(item.symbol))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(dimStyle.Render(item.symbol))
		}
		if item.needsTarget() {
			sb.WriteString(dimStyle.Render(" →target"))
		}
		if item.needsParams() {
			sb.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", item.hint)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Cat  ⏎ Ok  Esc ✕"))

	return sb.String()
}
