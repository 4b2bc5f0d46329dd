package testfixtures

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("bk")
	assert.Empty(t, gen.Last())

	assert.Equal(t, "bk-1", gen.Next())
	assert.Equal(t, "bk-2", gen.NextFunc()())
	assert.Equal(t, "bk-2", gen.Last())
}

func TestIDGeneratorDefaultsPrefix(t *testing.T) {
	assert.Equal(t, "id-1", NewIDGenerator("").Next())
}
