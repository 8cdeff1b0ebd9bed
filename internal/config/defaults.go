package config

const (
	defaultLogDir          = "~/.local/share/hotfolderd/logs"
	defaultLogFormat       = "auto"
	defaultLogLevel        = "info"
	defaultPollInterval    = 5
	defaultDispatchTimeout = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Workflow: Workflow{
			PollInterval:    defaultPollInterval,
			DispatchTimeout: defaultDispatchTimeout,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
			Dir:    defaultLogDir,
		},
		History: History{
			Enabled: false,
		},
	}
}
