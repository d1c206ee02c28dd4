// Package fixture loads YAML-described history scenarios, shared by
// golden tests and the replay command. A scenario is a stack of file
// texts, an optional edit of the newest text to absorb, and the
// expected per-revision outcome.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Expect holds a scenario's expected results. Revisions, when set, is
// the full text of every revision after the edit is absorbed; Blame,
// when set, is the owning revision per line of the newest revision.
type Expect struct {
	Revisions []string `yaml:"revisions"`
	Blame     []int    `yaml:"blame"`
}

// Scenario is one replayable history case.
type Scenario struct {
	Name   string   `yaml:"name"`
	Stack  []string `yaml:"stack"`
	Edit   *string  `yaml:"edit"`
	Expect Expect   `yaml:"expect"`
}

// Load reads a single scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = filepath.Base(path)
	}
	if len(s.Stack) == 0 {
		return nil, fmt.Errorf("scenario %s: empty stack", path)
	}
	return &s, nil
}

// LoadDir reads every *.yaml scenario under dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := Load(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
