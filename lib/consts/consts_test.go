package consts

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullVersion(t *testing.T) {
	t.Parallel()
	v := FullVersion()
	assert.True(t, strings.HasPrefix(v, Version+" ("))
	assert.Contains(t, v, runtime.GOOS+"/"+runtime.GOARCH)

	details := VersionDetails()
	assert.Equal(t, "v"+Version, details["version"])
	assert.Equal(t, runtime.GOARCH, details["go_arch"])
}
