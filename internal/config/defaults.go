package config

const (
	defaultDataDir           = "~/.local/share/roster"
	defaultLogDir            = "~/.local/share/roster/logs"
	defaultExportDir         = "~/roster-exports"
	defaultServerBind        = "127.0.0.1:7488"
	defaultServerEnvironment = "local"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultTheme             = ThemeLight
	defaultStudentNoPattern  = `^[A-Za-z]?[0-9]{3,10}$`
	defaultCourseCodePattern = `^[A-Za-z]{2,6}[0-9]{2,4}$`
	defaultMinCredits        = 0
	defaultMaxCredits        = 30
	defaultBusyTimeoutMillis = 5000
)

// Theme names understood by the display section.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

func defaultPalettes() map[string]Palette {
	return map[string]Palette{
		ThemeLight: {
			TableStyle:  "rounded",
			HeaderColor: "blue",
			InfoColor:   "blue",
			OKColor:     "green",
			WarnColor:   "yellow",
			ErrorColor:  "red",
		},
		ThemeDark: {
			TableStyle:  "colored_dark",
			HeaderColor: "hi-cyan",
			InfoColor:   "hi-blue",
			OKColor:     "hi-green",
			WarnColor:   "hi-yellow",
			ErrorColor:  "hi-red",
		},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			ExportDir: defaultExportDir,
		},
		Database: Database{
			BusyTimeoutMillis: defaultBusyTimeoutMillis,
		},
		Server: Server{
			Bind:        defaultServerBind,
			Environment: defaultServerEnvironment,
		},
		Validation: Validation{
			StudentNoPattern:  defaultStudentNoPattern,
			CourseCodePattern: defaultCourseCodePattern,
			MinCredits:        defaultMinCredits,
			MaxCredits:        defaultMaxCredits,
		},
		Display: Display{
			Theme:    defaultTheme,
			Palettes: defaultPalettes(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
