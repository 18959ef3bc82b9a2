package config

const (
	defaultStateDir                = "~/.local/share/zipcrack"
	defaultLogDir                  = "~/.local/share/zipcrack/logs"
	defaultAlphabet                = "abcdefghijklmnopqrstuvwxyz0123456789"
	defaultPasswordLength          = 6
	defaultPollIntervalMS          = 1000
	defaultJoinTimeoutMS           = 1000
	defaultOutputFile              = "password.txt"
	defaultProgressIntervalSeconds = 30
	defaultNotifyRequestTimeout    = 10
	defaultNotifyRetryAttempts     = 3
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	defaultLogRetentionDays        = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Search: Search{
			Alphabet:                defaultAlphabet,
			Length:                  defaultPasswordLength,
			PollIntervalMS:          defaultPollIntervalMS,
			JoinTimeoutMS:           defaultJoinTimeoutMS,
			OutputFile:              defaultOutputFile,
			ProgressIntervalSeconds: defaultProgressIntervalSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			RetryAttempts:  defaultNotifyRetryAttempts,
			Started:        false,
			Found:          true,
			Exhausted:      true,
			Errors:         true,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
