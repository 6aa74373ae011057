package config

// Sim holds the scheduling options consumed by the scheduler family.
type Sim struct {
	Algorithm   string // scheduler variant name
	Seed        int64  // PRNG seed for randomized schedules, 0 = nondeterministic
	LHStrategy  string // list heuristic priority strategy: min, max, sufferage
	TrivialIdx  int    // trivial scheduler: target host by index
	TrivialName string // trivial scheduler: target host by name (wins over index)
}

// DefaultSim returns the default scheduling options.
func DefaultSim() Sim {
	return Sim{
		Algorithm:  "list_heuristic",
		LHStrategy: "min",
	}
}

// ServeConfig holds configuration for the results server.
type ServeConfig struct {
	Addr      string // listen address (default ":8080")
	LogLevel  string // log level: debug, info, warn, error
	LogFormat string // log format: text, json
	DBPath    string // results database path (":memory:" for testing)
}

// DefaultServeConfig returns sensible defaults.
func DefaultServeConfig() ServeConfig {
	return ServeConfig{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
	}
}
