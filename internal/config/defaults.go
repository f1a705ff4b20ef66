package config

const (
	defaultOutputDir           = "~/Music/downconv"
	defaultDownloadDir         = "~/Downloads/downconv"
	defaultLogDir              = "~/.local/share/downconv/logs"
	defaultConversionFormat    = "mp3"
	defaultConversionQuality   = "320k"
	defaultWorkers             = 4
	maxWorkers                 = 16
	defaultConvertTimeout      = 600
	defaultDownloadFormat      = "bestvideo+bestaudio/best"
	defaultMergeFormat         = "mp4"
	defaultAudioCodec          = "mp3"
	defaultAudioQuality        = "320"
	defaultRetries             = 3
	defaultFragmentRetries     = 10
	defaultConcurrentFragments = 8
	defaultHTTPChunkSize       = 10 * 1024 * 1024
	defaultSocketTimeout       = 30
	defaultMinFreeMB           = 50
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 30
	defaultNtfyTimeout         = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:   defaultOutputDir,
			DownloadDir: defaultDownloadDir,
			LogDir:      defaultLogDir,
			StateDir:    defaultStateDir(),
		},
		Conversion: Conversion{
			Format:         defaultConversionFormat,
			Quality:        defaultConversionQuality,
			Overwrite:      true,
			Workers:        defaultWorkers,
			TimeoutSeconds: defaultConvertTimeout,
		},
		Download: Download{
			Format:              defaultDownloadFormat,
			MergeFormat:         defaultMergeFormat,
			AudioCodec:          defaultAudioCodec,
			AudioQuality:        defaultAudioQuality,
			Retries:             defaultRetries,
			FragmentRetries:     defaultFragmentRetries,
			ConcurrentFragments: defaultConcurrentFragments,
			HTTPChunkSize:       defaultHTTPChunkSize,
			SocketTimeout:       defaultSocketTimeout,
			UseAria2c:           true,
		},
		Preflight: Preflight{
			MinFreeMB: defaultMinFreeMB,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
	}
}
