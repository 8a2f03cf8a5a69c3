package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringCarriesBuildMetadata(t *testing.T) {
	s := String()
	assert.True(t, strings.HasPrefix(s, "idlgen "))
	assert.Contains(t, s, Version)
	assert.Contains(t, s, CommitHash)
	assert.Contains(t, s, runtime.GOOS+"/"+runtime.GOARCH)
}
