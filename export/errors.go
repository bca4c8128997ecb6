package export

import "errors"

// Sentinel errors for exporting.
var (
	ErrUnknownType      = errors.New("export: unknown export type")
	ErrMissingPublisher = errors.New("export: env publisher is required")
	ErrMissingMasker    = errors.New("export: masker is required")
	ErrMissingFilePath  = errors.New("export: file output path is required")
	ErrPathEscapes      = errors.New("export: file output path escapes the workspace")
)
