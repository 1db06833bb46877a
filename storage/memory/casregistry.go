package memory

import (
	"flag"

	"github.com/lightningrodlabs/where/storage"
	"github.com/lightningrodlabs/where/storage/casregistry"
)

func init() {
	casregistry.MustRegister(casregistry.Backend{
		Name:          "memory",
		Description:   "In-process content table; contents are lost on exit",
		Usage:         casregistry.UsageDaemon,
		RegisterFlags: func(*flag.FlagSet) {},
		Open: func() (storage.CAS, func() error, error) {
			return NewCAS(), nil, nil
		},
		OpenConfig: func(map[string]string) (storage.CAS, func() error, error) {
			return NewCAS(), nil, nil
		},
	})
}
