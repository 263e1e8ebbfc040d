package util

import (
	"github.com/stretchr/testify/assert"
	"os"
	"path/filepath"
	"testing"
)

func TestStringContains(t *testing.T) {
	assert.True(t, StringContains([]string{"#", "@", "C0"}, "C0"))
	assert.False(t, StringContains([]string{"#", "@", "C0"}, "c0"))
	assert.False(t, StringContains(nil, "anything"))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "testfile")
	if err := os.WriteFile(file, []byte("hi there"), 0600); err != nil {
		t.Fatal(err)
	}
	assert.True(t, FileExists(file))
	assert.False(t, FileExists("/tmp/not-a-file"))
}
