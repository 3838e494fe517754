package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	s := String()
	assert.Contains(t, s, "graphmap "+Version)
	assert.Contains(t, s, runtime.Version())
}
