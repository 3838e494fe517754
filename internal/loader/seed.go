package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/graphmap/internal/types"
)

// Error codes
const (
	ErrCodeSeedInvalid types.ErrorCode = "SEED_INVALID"
	ErrCodeLoadFailed  types.ErrorCode = "LOAD_FAILED"
)

// Seed is a graph described in YAML:
//
//	nodes:
//	  - type: Host
//	    uid: web-1
//	    attrs:
//	      os: linux
//	  - type: Host
//	    uid: db-1
//	edges:
//	  - name: talks_to
//	    from: Host/web-1
//	    to: Host/db-1
//	    attrs:
//	      port: 5432
//
// Edge ends name nodes by "<type>/<uid>".
type Seed struct {
	Nodes []SeedNode `yaml:"nodes"`
	Edges []SeedEdge `yaml:"edges"`
}

// SeedNode is one node of a Seed.
type SeedNode struct {
	Type  string         `yaml:"type"`
	UID   any            `yaml:"uid"`
	Attrs map[string]any `yaml:"attrs"`
}

// UUID is the key edges use to refer to the node.
func (n SeedNode) UUID() string {
	return n.Type + "/" + fmt.Sprint(n.UID)
}

// SeedEdge is one edge of a Seed. An empty Name uses the default
// relationship name.
type SeedEdge struct {
	Name  string         `yaml:"name"`
	From  string         `yaml:"from"`
	To    string         `yaml:"to"`
	Attrs map[string]any `yaml:"attrs"`
}

// ParseSeed decodes and validates a seed.
func ParseSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return nil, types.WrapError(ErrCodeSeedInvalid, "failed to parse seed", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// LoadSeedFile reads and parses the seed at path.
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.WrapError(ErrCodeSeedInvalid, "failed to read seed file "+path, err)
	}
	return ParseSeed(bytes.NewReader(data))
}

// Validate checks that every node has a type and uid, that no node is
// listed twice, and that every edge end names a listed node.
func (s *Seed) Validate() error {
	var problems []string
	known := make(map[string]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.Type == "" {
			problems = append(problems, fmt.Sprintf("nodes[%d]: type is required", i))
			continue
		}
		if n.UID == nil {
			problems = append(problems, fmt.Sprintf("nodes[%d]: uid is required", i))
			continue
		}
		if known[n.UUID()] {
			problems = append(problems, fmt.Sprintf("nodes[%d]: duplicate node %s", i, n.UUID()))
		}
		known[n.UUID()] = true
	}
	for i, e := range s.Edges {
		if !known[e.From] {
			problems = append(problems, fmt.Sprintf("edges[%d]: unknown from node %q", i, e.From))
		}
		if !known[e.To] {
			problems = append(problems, fmt.Sprintf("edges[%d]: unknown to node %q", i, e.To))
		}
	}
	if len(problems) > 0 {
		return types.NewError(ErrCodeSeedInvalid, "invalid seed: "+strings.Join(problems, "; "))
	}
	return nil
}
