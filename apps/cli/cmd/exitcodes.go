package cmd

// Exit codes for the takesnap CLI
const (
	// ExitSuccess indicates every requested capture passed
	ExitSuccess = 0

	// ExitCaptureFailure indicates one or more captures failed
	ExitCaptureFailure = 1

	// ExitHostfileError indicates the hostfile could not be read or failed validation
	ExitHostfileError = 2

	// ExitConfigError indicates a settings error
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
