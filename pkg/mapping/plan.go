package mapping

import (
	"encoding/json"
	"io"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/translaterc/pkg/rewrite"
)

// 📝 Plan is the serialized form of a FileMapping
type Plan struct {
	SourceRoot      string   `json:"source_root"`
	DestinationRoot string   `json:"destination_root"`
	Sources         []string `json:"sources"`
	Destinations    []string `json:"destinations"`
	Roles           []string `json:"roles,omitempty"`
}

// ToPlan converts m into its serialized form
func (m *FileMapping) ToPlan() *Plan {
	p := &Plan{
		SourceRoot:      m.SourceRoot,
		DestinationRoot: m.DestinationRoot,
		Sources:         m.Sources(),
		Destinations:    m.Destinations(),
		Roles:           make([]string, len(m.entries)),
	}
	for i, e := range m.entries {
		p.Roles[i] = e.Role.String()
	}
	return p
}

// Mapping rebuilds the FileMapping, validating that the lists line up
func (p *Plan) Mapping() (*FileMapping, error) {
	var roles []rewrite.Role
	if len(p.Roles) > 0 {
		roles = make([]rewrite.Role, len(p.Roles))
		for i, r := range p.Roles {
			role, err := rewrite.ParseRole(r)
			if err != nil {
				return nil, errors.Errorf("parsing role %d: %w", i, err)
			}
			roles[i] = role
		}
	}
	return FromLists(p.SourceRoot, p.DestinationRoot, p.Sources, p.Destinations, roles)
}

// WritePlan writes m as indented JSON
func WritePlan(w io.Writer, m *FileMapping) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m.ToPlan()); err != nil {
		return errors.Errorf("encoding plan: %w", err)
	}
	return nil
}

// ReadPlan decodes a plan written by WritePlan
func ReadPlan(r io.Reader) (*FileMapping, error) {
	var p Plan
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, errors.Errorf("decoding plan: %w", err)
	}
	m, err := p.Mapping()
	if err != nil {
		return nil, errors.Errorf("validating plan: %w", err)
	}
	return m, nil
}
