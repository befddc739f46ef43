package config

// Worker pool bounds. Each worker can hold one external mkvmerge process;
// values above eight only add seek contention on the scanned tree.
const (
	MinWorkers = 1
	MaxWorkers = 8
)

// Default returns the baseline configuration before any file or flag is
// applied.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: "~/.local/state/submerge",
		},
		Mux: Mux{
			ProbeTimeoutSeconds: 60,
			MergeTimeoutSeconds: 900,
		},
		Run: Run{
			Workers: MinWorkers,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
		History: History{
			Enabled: true,
		},
	}
}
