package types

import "fmt"

// DocumentReadError indicates a document could not be loaded from disk.
type DocumentReadError struct {
	Path string
	Err  error
}

func (e *DocumentReadError) Error() string {
	return fmt.Sprintf("failed to read document %s: %v", e.Path, e.Err)
}

func (e *DocumentReadError) Unwrap() error { return e.Err }

// ConfigParseError indicates a block's inline JSON configuration is malformed.
// Raw holds the configuration text exactly as it appeared between the markers.
type ConfigParseError struct {
	Raw string
	Err error
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("failed to parse block config %s: %v", e.Raw, e.Err)
}

func (e *ConfigParseError) Unwrap() error { return e.Err }

// InvalidBlockTypeError indicates a block config carried an unrecognized type value.
type InvalidBlockTypeError struct {
	Type string
}

func (e *InvalidBlockTypeError) Error() string {
	return fmt.Sprintf("invalid block type %q: must be %q or %q", e.Type, BlockTypeCommand, BlockTypeFile)
}

// EmptyContentError indicates the resolved content was empty after trimming.
type EmptyContentError struct {
	Value string
}

func (e *EmptyContentError) Error() string {
	return fmt.Sprintf("no content was returned for %q", e.Value)
}

// ActionExecutionError indicates the command or file read backing a block failed.
type ActionExecutionError struct {
	Type  string
	Value string
	Err   error
}

func (e *ActionExecutionError) Error() string {
	return fmt.Sprintf("failed to run %s action %q: %v", e.Type, e.Value, e.Err)
}

func (e *ActionExecutionError) Unwrap() error { return e.Err }
