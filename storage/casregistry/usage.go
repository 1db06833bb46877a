package casregistry

// Usage restricts which programs accept a given backend.
type Usage uint8

const (
	// UsageCLI marks backends available to the where-playset CLI.
	UsageCLI Usage = 1 << iota
	// UsageDaemon marks backends available to the where-playsetd daemon.
	UsageDaemon
)

func (u Usage) allows(want Usage) bool { return u&want != 0 }
