// Package circuitio loads circuit descriptions from disk and encodes
// results for output.
package circuitio

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"qtermsim/qasm"
	"qtermsim/quantum"
)

// ErrInvalidDocument marks a circuit file that decodes but is malformed.
var ErrInvalidDocument = errors.New("invalid circuit document")

// Format names an on-disk or output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatQASM Format = "qasm"
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".qasm":
		return FormatQASM, nil
	}
	return "", errors.Errorf("unrecognised circuit file extension %q", filepath.Ext(path))
}

type paramsDoc struct {
	Angle float64 `json:"angle" yaml:"angle"`
}

type gateDoc struct {
	ID       string     `json:"id,omitempty" yaml:"id,omitempty"`
	Type     string     `json:"type" yaml:"type"`
	Qubits   []int      `json:"qubitIndices" yaml:"qubitIndices"`
	Position int        `json:"position" yaml:"position"`
	Params   *paramsDoc `json:"params,omitempty" yaml:"params,omitempty"`
}

type circuitDoc struct {
	NumQubits int       `json:"numQubits" yaml:"numQubits"`
	Gates     []gateDoc `json:"gates" yaml:"gates"`
}

// Load reads a circuit from a .json, .yaml/.yml or .qasm file.
func Load(path string) (quantum.Circuit, error) {
	format, err := FormatFor(path)
	if err != nil {
		return quantum.Circuit{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return quantum.Circuit{}, errors.Wrapf(err, "reading %s", path)
	}
	c, err := Decode(data, format)
	if err != nil {
		return quantum.Circuit{}, errors.Wrap(err, path)
	}
	return c, nil
}

// Decode parses a circuit in the given format and validates it.
func Decode(data []byte, format Format) (quantum.Circuit, error) {
	var doc circuitDoc
	switch format {
	case FormatQASM:
		return qasm.Parse(string(data))
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return quantum.Circuit{}, errors.Wrap(err, "decoding circuit")
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return quantum.Circuit{}, errors.Wrap(err, "decoding circuit")
		}
	}

	c := quantum.Circuit{NumQubits: doc.NumQubits}
	for i, gd := range doc.Gates {
		t, err := quantum.ParseGateType(gd.Type)
		if err != nil {
			return quantum.Circuit{}, errors.Wrapf(err, "gate %d", i)
		}
		if gd.Position < 0 {
			return quantum.Circuit{}, errors.Wrapf(ErrInvalidDocument, "gate %d: negative position %d", i, gd.Position)
		}
		g := quantum.Gate{
			ID:       gd.ID,
			Type:     t,
			Qubits:   gd.Qubits,
			Position: gd.Position,
		}
		if gd.Params != nil {
			g.Params = &quantum.Params{Angle: gd.Params.Angle}
		}
		c.Gates = append(c.Gates, g)
	}

	if err := c.Validate(); err != nil {
		return quantum.Circuit{}, err
	}
	return c, nil
}

// WriteCircuit encodes c in the given format.
func WriteCircuit(w io.Writer, c quantum.Circuit, format Format) error {
	if format == FormatQASM {
		_, err := io.WriteString(w, qasm.Format(c))
		return err
	}

	doc := circuitDoc{NumQubits: c.NumQubits, Gates: make([]gateDoc, len(c.Gates))}
	for i, g := range c.Gates {
		doc.Gates[i] = gateDoc{
			ID:       g.ID,
			Type:     g.Type.String(),
			Qubits:   g.Qubits,
			Position: g.Position,
		}
		if g.Params != nil {
			doc.Gates[i].Params = &paramsDoc{Angle: g.Params.Angle}
		}
	}
	return Encode(w, doc, format)
}

// Encode writes v as indented JSON or as YAML.
func Encode(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "encoding json")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		return errors.Wrap(enc.Close(), "encoding yaml")
	}
	return errors.Errorf("cannot encode as %q", format)
}
