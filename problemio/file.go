// Package problemio reads and writes equil problems as YAML.
//
// A problem file lists elements (constraints) in position order, phases,
// and species with their phase, mole number and formula:
//
//	components: 2
//	elements:
//	  - {name: A, target: 2}
//	  - {name: q, target: 0, type: charge-neutrality}
//	phases:
//	  - {name: gas}
//	species:
//	  - {name: X, phase: gas, moles: 1, formula: {A: 1}}
//
// Element type defaults to "normal" and active to true; species type
// defaults to "mole-number" and status to "active".
package problemio

import (
	"errors"
	"fmt"
	"io"

	"github.com/katalvlaran/vcs/equil"
	"gopkg.in/yaml.v3"
)

// ErrUnknownName reports a reference to an element or phase not declared
// in the file.
var ErrUnknownName = errors.New("problemio: unknown name")

// ErrDuplicateName reports an element, phase or species declared twice.
var ErrDuplicateName = errors.New("problemio: duplicate name")

// File is the YAML document.
type File struct {
	Components int       `yaml:"components"`
	Elements   []Element `yaml:"elements"`
	Phases     []Phase   `yaml:"phases"`
	Species    []Species `yaml:"species"`
}

// Element is one constraint.
type Element struct {
	Name   string  `yaml:"name"`
	Target float64 `yaml:"target"`
	Type   string  `yaml:"type,omitempty"`
	Active *bool   `yaml:"active,omitempty"`
	// Abundance is written by Encode for inspection and ignored by Build.
	Abundance *float64 `yaml:"abundance,omitempty"`
}

// Phase names a phase.
type Phase struct {
	Name string `yaml:"name"`
	// TotalMoles is written by Encode and ignored by Build.
	TotalMoles *float64 `yaml:"total_moles,omitempty"`
}

// Species is one unknown with its formula keyed by element name.
type Species struct {
	Name    string             `yaml:"name"`
	Phase   string             `yaml:"phase"`
	Moles   float64            `yaml:"moles"`
	Type    string             `yaml:"type,omitempty"`
	Status  string             `yaml:"status,omitempty"`
	Formula map[string]float64 `yaml:"formula,omitempty"`
}

// Decode parses one problem file. Unknown keys are rejected.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("problemio: decode: %w", err)
	}
	return &f, nil
}

// Encode writes the current state of p: constraints and species in their
// current positions, with mole numbers, abundances and phase totals.
func Encode(w io.Writer, p *equil.Problem) error {
	f := FromProblem(p)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("problemio: encode: %w", err)
	}
	return enc.Close()
}

// FromProblem snapshots p as a File.
func FromProblem(p *equil.Problem) *File {
	f := &File{Components: p.NumComponents()}

	cs := p.Constraints()
	for _, c := range cs {
		active, abundance := c.Active, c.Abundance
		f.Elements = append(f.Elements, Element{
			Name:      c.Name,
			Target:    c.Target,
			Type:      c.Type.String(),
			Active:    &active,
			Abundance: &abundance,
		})
	}
	phaseNames := make([]string, p.NumPhases())
	for i := range phaseNames {
		ph, _ := p.Phase(i)
		total := ph.TotalMoles
		phaseNames[i] = ph.Name
		f.Phases = append(f.Phases, Phase{Name: ph.Name, TotalMoles: &total})
	}
	moles := p.Moles()
	for k := 0; k < p.NumSpecies(); k++ {
		sp, _ := p.Species(k)
		formula := make(map[string]float64)
		for i, c := range cs {
			if v, _ := p.Coefficient(i, k); v != 0 {
				formula[c.Name] = v
			}
		}
		f.Species = append(f.Species, Species{
			Name:    sp.Name,
			Phase:   phaseNames[sp.Phase],
			Moles:   moles[k],
			Type:    sp.Type.String(),
			Status:  sp.Status.String(),
			Formula: formula,
		})
	}
	return f
}
