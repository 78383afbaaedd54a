package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dennisdiepolder/availability/internal/bindings"
	"github.com/dennisdiepolder/availability/internal/queue"
	"github.com/dennisdiepolder/availability/internal/region"
	"github.com/dennisdiepolder/availability/internal/roster"
	"github.com/dennisdiepolder/availability/internal/types"
	"gopkg.in/yaml.v3"
)

// Static is the domain data that changes with the team rather than the
// deployment: who is on the roster, where the shift windows sit, and how the
// host tables are laid out.
type Static struct {
	People     []types.Person    `yaml:"people"`
	Cities     []types.City      `yaml:"cities"`
	Overrides  []roster.Override `yaml:"overrides"`
	Exclusions []string          `yaml:"exclusions"`
	Layout     bindings.Layout   `yaml:"layout"`
	Capacity   queue.Capacity    `yaml:"capacity"`
}

// DefaultStatic returns the built-in data used when no roster file is given
func DefaultStatic() Static {
	return Static{
		People: []types.Person{
			{Name: "Salman", Timezone: "Europe/London"},
			{Name: "Priya Raman", Timezone: "Europe/London"},
			{Name: "Nathan", Timezone: "America/New_York"},
			{Name: "Maria Gomez", Timezone: "America/New_York"},
			{Name: "Kenji", Timezone: "America/Los_Angeles"},
			{Name: "Ola Nordmann", Timezone: "America/Los_Angeles"},
			{Name: "Chloe", Timezone: "Australia/Sydney"},
			{Name: "Liam Walsh", Timezone: "Australia/Sydney"},
		},
		Cities: []types.City{
			{Name: "London", Code: "LON", Timezone: "Europe/London", StartHourUTC: 8, EndHourUTC: 17},
			{Name: "New York", Code: "NYC", Timezone: "America/New_York", StartHourUTC: 13, EndHourUTC: 22},
			{Name: "San Francisco", Code: "SFO", Timezone: "America/Los_Angeles", StartHourUTC: 16, EndHourUTC: 25},
			{Name: "Sydney", Code: "SYD", Timezone: "Australia/Sydney", StartHourUTC: 22, EndHourUTC: 31},
		},
		Exclusions: []string{"Brett Bedevian"},
		Layout:     bindings.DefaultLayout(),
		Capacity:   queue.DefaultCapacity(),
	}
}

// LoadStatic reads the YAML roster file at path over the defaults. Lists in
// the file replace the default lists; layout and capacity fields merge.
func LoadStatic(path string) (Static, error) {
	s := DefaultStatic()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read roster file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse roster file %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("roster file %s: %w", path, err)
	}
	return s, nil
}

// Validate checks the city windows and roster entries
func (s Static) Validate() error {
	if len(s.Cities) == 0 {
		return types.ErrNoWindows
	}

	var errs []error
	codes := make(map[string]bool, len(s.Cities))
	for _, c := range s.Cities {
		if c.Name == "" {
			errs = append(errs, errors.New("city without a name"))
			continue
		}

		// zones are flagged current and incoming by code
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		switch {
		case code == "":
			errs = append(errs, fmt.Errorf("city %s: missing code", c.Name))
		case code == region.OtherCity.Code:
			errs = append(errs, fmt.Errorf("city %s: code %s is reserved", c.Name, code))
		case codes[code]:
			errs = append(errs, fmt.Errorf("city %s: duplicate code %s", c.Name, code))
		}
		codes[code] = true

		if c.StartHourUTC < 0 || c.StartHourUTC >= 24 {
			errs = append(errs, fmt.Errorf("city %s: start %v outside [0,24)", c.Name, c.StartHourUTC))
		}
		if c.EndHourUTC <= c.StartHourUTC || c.EndHourUTC-c.StartHourUTC > 24 {
			errs = append(errs, fmt.Errorf("city %s: end %v must follow start by at most 24h", c.Name, c.EndHourUTC))
		}
	}
	for i, p := range s.People {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("person %d has no name", i))
		}
	}
	if _, err := s.Layout.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Roster builds the name-matching roster from the static data
func (s Static) Roster() *roster.Roster {
	return roster.New(s.People, s.Overrides, s.Exclusions)
}
