package site

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/puggle/internal/templates"
	ptesting "git.home.luguber.info/inful/puggle/internal/testing"
)

func newTestEnv(t *testing.T, f *ptesting.SiteFixture) *templates.Environment {
	t.Helper()
	env, err := templates.New(f.TemplatesDir)
	require.NoError(t, err)
	return env
}
