// Package fixtures loads seed data from YAML and applies it to the store.
package fixtures

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/applicant-tracker/internal/schemas"
	"github.com/jonathan/applicant-tracker/internal/types"
)

//go:embed default.yaml
var defaultFixture []byte

// Fixture is a set of users, applicant profiles and jobs to create.
type Fixture struct {
	Users      []types.CreateUserRequest      `yaml:"users"`
	Applicants []types.CreateApplicantRequest `yaml:"applicants"`
	Jobs       []types.CreateJobRequest       `yaml:"jobs"`
}

// Default returns the embedded initial data set.
func Default() (*Fixture, error) {
	return Parse(defaultFixture)
}

// Load reads and parses a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	fx, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fx, nil
}

// Parse decodes YAML fixture data. The document is checked against the
// fixture schema first, then each entry is validated as an API input.
func Parse(data []byte) (*Fixture, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if doc == nil {
		return nil, errors.New("fixture is empty")
	}
	if err := schemas.ValidateFixture(doc); err != nil {
		return nil, err
	}

	var fx Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}

	if err := fx.validate(types.NewValidator()); err != nil {
		return nil, err
	}
	return &fx, nil
}

func (fx *Fixture) validate(v *validator.Validate) error {
	usernames := make(map[string]bool, len(fx.Users))
	for i := range fx.Users {
		u := &fx.Users[i]
		if err := v.Struct(u); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
		if usernames[u.Username] {
			return fmt.Errorf("users[%d]: duplicate username %q", i, u.Username)
		}
		usernames[u.Username] = true
	}
	for i := range fx.Applicants {
		if err := v.Struct(&fx.Applicants[i]); err != nil {
			return fmt.Errorf("applicants[%d]: %w", i, err)
		}
	}
	titles := make(map[string]bool, len(fx.Jobs))
	for i := range fx.Jobs {
		j := &fx.Jobs[i]
		if err := v.Struct(j); err != nil {
			return fmt.Errorf("jobs[%d]: %w", i, err)
		}
		if titles[j.Title] {
			return fmt.Errorf("jobs[%d]: duplicate title %q", i, j.Title)
		}
		titles[j.Title] = true
	}
	return nil
}
