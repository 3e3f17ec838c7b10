package session

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeNetwork      = "NETWORK_FAILURE"
	TextCodeValidation   = "VALIDATION_FAILED"
	TextCodeUnauthorized = "UNAUTHORIZED"
	TextCodeBackend      = "BACKEND_FAILURE"
	TextCodeProvider     = "PROVIDER_FAILURE"
)

// ErrNetwork is returned when the backend could not be reached at all.
var ErrNetwork = goerrors.New("backend unreachable", goerrors.CategoryExternal).
	WithTextCode(TextCodeNetwork)

// ErrValidation is returned for backend-reported field errors and for
// payloads rejected before dispatch. Field detail lives in Metadata["fields"].
var ErrValidation = goerrors.New("request validation failed", goerrors.CategoryValidation).
	WithTextCode(TextCodeValidation).
	WithCode(goerrors.CodeBadRequest)

// ErrUnauthorized is returned for any 401. Receiving it through the
// dispatcher also forces session invalidation as a side effect.
var ErrUnauthorized = goerrors.New("request not authorized", goerrors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(goerrors.CodeUnauthorized)

// ErrBackend is returned for non-401 backend failures without field detail.
var ErrBackend = goerrors.New("backend request failed", goerrors.CategoryExternal).
	WithTextCode(TextCodeBackend)

// ErrProvider is returned for identity-provider failures. The Coordinator
// treats these opaquely: logged, never specially parsed, and never allowed to
// block a backend-authoritative operation.
var ErrProvider = goerrors.New("identity provider call failed", goerrors.CategoryAuth).
	WithTextCode(TextCodeProvider)

func hasTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}

// IsNetworkError reports a transport or connectivity failure.
func IsNetworkError(err error) bool {
	return hasTextCode(err, TextCodeNetwork)
}

// IsValidationError reports a rejected payload with field-level detail.
func IsValidationError(err error) bool {
	return hasTextCode(err, TextCodeValidation)
}

// IsAuthorizationError reports a 401 from the backend.
func IsAuthorizationError(err error) bool {
	return hasTextCode(err, TextCodeUnauthorized)
}

// IsProviderError reports an identity-provider failure.
func IsProviderError(err error) bool {
	return hasTextCode(err, TextCodeProvider)
}

// ValidationFields extracts the field error map from a validation error, or
// nil when the error carries none.
func ValidationFields(err error) map[string]string {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Metadata == nil {
		return nil
	}

	switch fields := rich.Metadata["fields"].(type) {
	case map[string]string:
		return fields
	case map[string]any:
		out := make(map[string]string, len(fields))
		for k, v := range fields {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
		return out
	}

	return nil
}

// WrapProvider normalizes a provider failure into the ErrProvider shape,
// keeping the original error as the source.
func WrapProvider(err error, operation string) error {
	if err == nil {
		return nil
	}

	clone := ErrProvider.Clone()
	if clone == nil {
		return err
	}

	clone.Source = err
	return clone.WithMetadata(map[string]any{
		"operation": operation,
		"cause":     err.Error(),
	})
}
