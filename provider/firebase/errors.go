package firebase

import (
	session "github.com/assetverse/go-session"
	goerrors "github.com/goliatone/go-errors"
)

// firebaseErrorResponse is the error envelope the identitytoolkit API returns.
type firebaseErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func providerError(operation string, status int, code, message string, cause error) *goerrors.Error {
	if message == "" {
		message = "firebase request failed"
	}

	clone := session.ErrProvider.Clone()
	clone.Message = message
	clone.Source = cause

	meta := map[string]any{
		"provider":  "firebase",
		"operation": operation,
	}
	if status != 0 {
		meta["status"] = status
	}
	if code != "" {
		meta["code"] = code
	}

	return clone.WithMetadata(meta)
}
