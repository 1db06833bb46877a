package casregistry

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightningrodlabs/where/storage"
)

type nopCAS struct{ storage.CAS }

func TestRegisterAndOpen(t *testing.T) {
	var dir string
	require.NoError(t, Register(Backend{
		Name:  "test-reg",
		Usage: UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&dir, "test-reg-dir", "", "")
		},
		Open: func() (storage.CAS, func() error, error) {
			return nopCAS{}, nil, nil
		},
		OpenConfig: func(cfg map[string]string) (storage.CAS, func() error, error) {
			dir = cfg["test-reg-dir"]
			return nopCAS{}, nil, nil
		},
	}))

	assert.Contains(t, Names(UsageDaemon), "test-reg")
	assert.NotContains(t, Names(UsageCLI), "test-reg")

	_, _, err := Open("test-reg", UsageCLI)
	assert.Error(t, err)

	_, _, err = OpenWithConfig("test-reg", UsageDaemon, map[string]string{"test-reg-dir": "/x"})
	require.NoError(t, err)
	assert.Equal(t, "/x", dir)

	_, _, err = Open("missing", UsageDaemon)
	assert.Error(t, err)
}

func TestRegister_Validation(t *testing.T) {
	assert.Error(t, Register(Backend{}))
	assert.Error(t, Register(Backend{Name: "x"}))

	b := Backend{
		Name:          "test-dup",
		Usage:         UsageCLI,
		RegisterFlags: func(*flag.FlagSet) {},
		Open:          func() (storage.CAS, func() error, error) { return nil, nil, nil },
	}
	require.NoError(t, Register(b))
	assert.Error(t, Register(b))

	_, _, err := OpenWithConfig("test-dup", UsageCLI, nil)
	assert.Error(t, err)
}
