package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is the initial stage catalog and user directory loaded on first start
type Seed struct {
	Stages []StageDefinition `yaml:"stages"`
	Users  []UserDefinition  `yaml:"users"`
}

// StageDefinition describes one pipeline stage
type StageDefinition struct {
	Name         string `yaml:"name"`
	DisplayOrder int    `yaml:"display_order"`
	ApprovalType string `yaml:"approval_type"`
	Description  string `yaml:"description"`
	Requirements string `yaml:"requirements"`
	Color        string `yaml:"color"`
	Inactive     bool   `yaml:"inactive"`
}

// UserDefinition describes one directory entry
type UserDefinition struct {
	Name         string `yaml:"name"`
	Username     string `yaml:"username"`
	Email        string `yaml:"email"`
	Role         string `yaml:"role"`
	IsMainLawyer bool   `yaml:"is_main_lawyer"`
	DepartmentID int64  `yaml:"department_id"`
}

// LoadSeed reads a seed file. Display order defaults to the position in the file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed YAML, rejecting unknown fields
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i := range seed.Stages {
		if seed.Stages[i].DisplayOrder == 0 {
			seed.Stages[i].DisplayOrder = i + 1
		}
		if seed.Stages[i].Name == "" {
			return nil, fmt.Errorf("stage %d has no name", i+1)
		}
	}
	return &seed, nil
}
