package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and service errors
	ErrAPIRequest = fmt.Errorf("API request failed")

	// Catalog lookup errors
	ErrInvalidID = fmt.Errorf("unknown catalog identifier")

	// Media resolution errors
	ErrNoMatch        = fmt.Errorf("no media match")
	ErrDownloadFailed = fmt.Errorf("download failed")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
