package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ChainFile is the optional YAML description of the provider chain.
//
//	providers:
//	  - openai/gpt-4o-mini
//	  - anthropic/claude-3-haiku
//	timeout_ms: 20000
//	max_retries: 2
type ChainFile struct {
	Providers     []string `yaml:"providers"`
	TimeoutMs     *int     `yaml:"timeout_ms,omitempty"`
	MaxTokens     *int     `yaml:"max_tokens,omitempty"`
	Temperature   *float64 `yaml:"temperature,omitempty"`
	MaxRetries    *int     `yaml:"max_retries,omitempty"`
	BackoffBaseMs *int     `yaml:"backoff_base_ms,omitempty"`
}

// LoadChainFile reads and parses a chain file
func LoadChainFile(path string) (*ChainFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseChain(data)
}

// ParseChain parses chain YAML, rejecting unknown keys
func ParseChain(data []byte) (*ChainFile, error) {
	var chain ChainFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&chain); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid chain file: %w", err)
	}

	for i, p := range chain.Providers {
		chain.Providers[i] = strings.TrimSpace(p)
	}
	return &chain, nil
}

// Apply overrides the env-derived AI settings with whatever the file sets
func (c *ChainFile) Apply(ai *AIConfig) {
	if len(c.Providers) > 0 {
		ai.Models = append([]string(nil), c.Providers...)
	}
	if c.TimeoutMs != nil {
		ai.Timeout = millis(*c.TimeoutMs)
	}
	if c.MaxTokens != nil {
		ai.MaxTokens = *c.MaxTokens
	}
	if c.Temperature != nil {
		ai.Temperature = *c.Temperature
	}
	if c.MaxRetries != nil {
		ai.MaxRetries = *c.MaxRetries
	}
	if c.BackoffBaseMs != nil {
		ai.BackoffBase = millis(*c.BackoffBaseMs)
	}
}
