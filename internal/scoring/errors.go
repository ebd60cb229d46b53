package scoring

import "fmt"

// MissingAnswerError reports a required question key absent from an answer set.
type MissingAnswerError struct {
	Key string
}

func (e *MissingAnswerError) Error() string {
	return fmt.Sprintf("missing answer for %q", e.Key)
}

// ConfigurationError reports an invalid scoring configuration or an incomplete
// classifier registry.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// ArtifactLoadError reports an artifact that could not be read, parsed, or
// that has a shape incompatible with the other artifacts.
type ArtifactLoadError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *ArtifactLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("artifact %s: %v", e.Artifact, e.Err)
	}
	return fmt.Sprintf("artifact %s (%s): %v", e.Artifact, e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error { return e.Err }
