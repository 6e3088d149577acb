package config

const (
	defaultLibraryDir          = "~/.local/share/shapes/library"
	defaultLogDir              = "~/.local/share/shapes/logs"
	defaultCategory            = "basic"
	defaultHostApp             = "Microsoft PowerPoint"
	defaultCaptureTimeout      = 45
	defaultRenderTimeout       = 120
	defaultCleanupDelaySeconds = 30
	defaultJournalKeepDays     = 90
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

func defaultCategories() []string {
	return []string{"basic", "arrows", "flowchart", "callouts"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
		},
		Library: Library{
			Categories: defaultCategories(),
		},
		Capture: Capture{
			DefaultCategory: defaultCategory,
		},
		Cache: Cache{
			Enabled: true,
		},
		Cleanup: Cleanup{
			Auto:         true,
			DelaySeconds: defaultCleanupDelaySeconds,
		},
		Bridge: Bridge{
			HostApp:        defaultHostApp,
			CaptureTimeout: defaultCaptureTimeout,
			RenderTimeout:  defaultRenderTimeout,
		},
		Journal: Journal{
			KeepDays: defaultJournalKeepDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
