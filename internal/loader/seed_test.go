package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/graphmap/internal/types"
)

const sampleSeed = `
nodes:
  - type: Host
    uid: web-1
    attrs:
      os: linux
      ports: [80, 443]
  - type: Host
    uid: db-1
  - type: Service
    uid: 5432
    attrs:
      meta:
        engine: postgres
edges:
  - name: talks_to
    from: Host/web-1
    to: Host/db-1
    attrs:
      port: 5432
  - from: Host/db-1
    to: Service/5432
`

func TestParseSeed(t *testing.T) {
	seed, err := ParseSeed(strings.NewReader(sampleSeed))
	require.NoError(t, err)

	require.Len(t, seed.Nodes, 3)
	assert.Equal(t, "Host/web-1", seed.Nodes[0].UUID())
	assert.Equal(t, "linux", seed.Nodes[0].Attrs["os"])
	assert.Equal(t, "Service/5432", seed.Nodes[2].UUID())
	assert.Equal(t, 5432, seed.Nodes[2].UID)

	require.Len(t, seed.Edges, 2)
	assert.Equal(t, "talks_to", seed.Edges[0].Name)
	assert.Empty(t, seed.Edges[1].Name)
}

func TestParseSeed_Empty(t *testing.T) {
	seed, err := ParseSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, seed.Nodes)
}

func TestParseSeed_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"bad yaml", "nodes: [", "failed to parse seed"},
		{"unknown field", "vertices: []", "failed to parse seed"},
		{"missing type", "nodes:\n  - uid: 1", "type is required"},
		{"missing uid", "nodes:\n  - type: Host", "uid is required"},
		{"duplicate", "nodes:\n  - {type: Host, uid: 1}\n  - {type: Host, uid: 1}", "duplicate node Host/1"},
		{"dangling edge", "nodes:\n  - {type: Host, uid: 1}\nedges:\n  - {from: Host/1, to: Host/2}", `unknown to node "Host/2"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Equal(t, ErrCodeSeedInvalid, types.CodeOf(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSeed), 0o600))

	seed, err := LoadSeedFile(path)
	require.NoError(t, err)
	assert.Len(t, seed.Nodes, 3)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, ErrCodeSeedInvalid, types.CodeOf(err))
}
