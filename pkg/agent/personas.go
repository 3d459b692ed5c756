package agent

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/aretw0/dramaflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed personas.yaml
var defaultPersonas []byte

// Persona is the fixed instruction profile of one handler (or of the router).
type Persona struct {
	ID          domain.HandlerID `yaml:"id"`
	Name        string           `yaml:"name"`
	Icon        string           `yaml:"icon"`
	Description string           `yaml:"description"`
	Instruction string           `yaml:"instruction"`
}

// Info returns the public capability card of the persona.
func (p Persona) Info() domain.AgentInfo {
	return domain.AgentInfo{
		ID:          p.ID,
		Name:        p.Name,
		Icon:        p.Icon,
		Description: p.Description,
	}
}

type personaFile struct {
	Personas []Persona `yaml:"personas"`
}

// RequiredIDs lists the personas every table must define.
func RequiredIDs() []domain.HandlerID {
	return domain.HandlerIDs()
}

// DefaultPersonas returns the built-in persona table.
func DefaultPersonas() ([]Persona, error) {
	return ParsePersonas(defaultPersonas)
}

// LoadPersonas reads a persona table from a YAML file.
func LoadPersonas(path string) ([]Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read personas: %w", err)
	}
	return ParsePersonas(data)
}

// ParsePersonas decodes and validates a persona table.
func ParsePersonas(data []byte) ([]Persona, error) {
	var file personaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse personas: %w", err)
	}

	seen := make(map[domain.HandlerID]bool, len(file.Personas))
	for _, p := range file.Personas {
		if p.ID == "" {
			return nil, fmt.Errorf("persona %q has no id", p.Name)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate persona %q", p.ID)
		}
		if p.Instruction == "" {
			return nil, fmt.Errorf("persona %q has no instruction", p.ID)
		}
		seen[p.ID] = true
	}
	for _, id := range RequiredIDs() {
		if !seen[id] {
			return nil, fmt.Errorf("persona %q is missing", id)
		}
	}
	return file.Personas, nil
}
