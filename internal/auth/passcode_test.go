package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComparePasscode(t *testing.T) {
	assert.True(t, ComparePasscode("hunter2-admin", "hunter2-admin"))
	assert.False(t, ComparePasscode("hunter2-admin", "hunter2-admiN"))
	assert.False(t, ComparePasscode("", "hunter2-admin"))
	assert.False(t, ComparePasscode("hunter2", "hunter2-admin"))
	assert.True(t, ComparePasscode("", ""))
}
