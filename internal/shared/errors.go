package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Setup errors: the run aborts before any write
	ErrOpenSource = fmt.Errorf("failed to open source")
	ErrOpenStore  = fmt.Errorf("failed to open store")
	ErrReadSource = fmt.Errorf("failed to read source")

	// Store errors: a write was rejected and the run aborts
	ErrStoreWrite  = fmt.Errorf("store write rejected")
	ErrMissingUser = fmt.Errorf("dump has no user marker")

	// Reference feed errors
	ErrMissingColumn = fmt.Errorf("required column missing")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
