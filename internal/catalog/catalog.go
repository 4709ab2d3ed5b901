// Package catalog loads the static activity definitions the roster is seeded from.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"example.com/mergington/internal/domain"
)

//go:embed activities.yaml
var defaultCatalog []byte

// Entry is one activity as written in the catalog document.
type Entry struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	Schedule        string   `yaml:"schedule"`
	MaxParticipants int      `yaml:"max_participants"`
	Participants    []string `yaml:"participants"`
}

type document struct {
	Activities []Entry `yaml:"activities"`
}

// Default returns the catalog compiled into the binary.
func Default() ([]domain.Activity, error) {
	return Parse(bytes.NewReader(defaultCatalog))
}

// Load reads a catalog file. An empty path selects the built-in catalog.
func Load(path string) ([]domain.Activity, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	activities, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return activities, nil
}

// Parse decodes and validates a YAML catalog. Unknown fields are rejected.
func Parse(r io.Reader) ([]domain.Activity, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty")
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(doc.Activities) == 0 {
		return nil, errors.New("catalog defines no activities")
	}

	seen := make(map[string]struct{}, len(doc.Activities))
	out := make([]domain.Activity, 0, len(doc.Activities))
	for i, entry := range doc.Activities {
		if err := entry.validate(); err != nil {
			return nil, fmt.Errorf("activity %d: %w", i, err)
		}
		if _, dup := seen[entry.Name]; dup {
			return nil, fmt.Errorf("activity %d: duplicate name %q", i, entry.Name)
		}
		seen[entry.Name] = struct{}{}
		out = append(out, entry.toDomain())
	}
	return out, nil
}

func (e Entry) validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return errors.New("name is required")
	}
	if e.MaxParticipants <= 0 {
		return fmt.Errorf("%q: max_participants must be > 0", e.Name)
	}
	if len(e.Participants) > e.MaxParticipants {
		return fmt.Errorf("%q: %d participants exceed max_participants %d", e.Name, len(e.Participants), e.MaxParticipants)
	}
	seen := make(map[string]struct{}, len(e.Participants))
	for _, p := range e.Participants {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%q: blank participant", e.Name)
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%q: participant %s listed twice", e.Name, p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

func (e Entry) toDomain() domain.Activity {
	participants := make([]string, len(e.Participants))
	copy(participants, e.Participants)
	return domain.Activity{
		Name:            e.Name,
		Description:     e.Description,
		Schedule:        e.Schedule,
		MaxParticipants: e.MaxParticipants,
		Participants:    participants,
	}
}
