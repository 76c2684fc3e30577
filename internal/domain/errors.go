package domain

import "errors"

var (
	// ErrMissingAPIKey signals an absent inference credential.
	ErrMissingAPIKey = errors.New("inference api key is not configured")
	// ErrInferenceProvider signals an inference provider failure.
	ErrInferenceProvider = errors.New("inference provider error")
	// ErrCatalogUnavailable signals a catalog service failure.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrMalformedIntent signals intent JSON that failed to parse.
	ErrMalformedIntent = errors.New("malformed intent payload")
)
