package configmgr

import "fmt"

// LogSettings are the logging parameters from the configuration file.
type LogSettings struct {
	// File is the path to the log file or one of the special values:
	// "stdout" or "stderr".
	File string

	// MaxSize is the maximum size of the log file in megabytes before it gets
	// rotated.
	MaxSize int

	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int

	// MaxAge is the maximum number of days to retain old log files.
	MaxAge int

	// Compress determines if the rotated log files should be compressed.
	Compress bool

	// Verbose enables debug logging.
	Verbose bool
}

// Special values of [LogSettings.File].
const (
	LogFileStderr = logFileStderr
	LogFileStdout = logFileStdout
)

// ReadLogSettings reads the logging settings from the configuration file.  It
// is separate from [New] to configure the logger before the configuration is
// applied.  Other sections of the file are not validated.
func ReadLogSettings(fileName string) (ls *LogSettings, err error) {
	conf, err := read(fileName)
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return nil, err
	}

	err = conf.Log.validate()
	if err != nil {
		return nil, fmt.Errorf("validating config: log: %w", err)
	}

	return &LogSettings{
		File:       conf.Log.File,
		MaxSize:    conf.Log.MaxSize,
		MaxBackups: conf.Log.MaxBackups,
		MaxAge:     conf.Log.MaxAge,
		Compress:   conf.Log.Compress,
		Verbose:    conf.Log.Verbose,
	}, nil
}
