// Package validation checks configuration structs against their
// `validate` struct tags using go-playground/validator. Failures are
// reported as a single INVALID_CONFIG AppError listing every offending
// field by its mapstructure key.
package validation
