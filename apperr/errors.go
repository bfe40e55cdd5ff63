// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"net/http"
)

// Kind sentinels. Domain errors wrap one of these with %w so callers can
// classify them with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrExpiredOrInactive = errors.New("poll expired or inactive")
	ErrUnauthenticated   = errors.New("unauthenticated")
)

// Kind names as they appear in JSON error bodies.
const (
	KindNotFound          = "not_found"
	KindForbidden         = "forbidden"
	KindValidation        = "validation"
	KindConflict          = "conflict"
	KindExpiredOrInactive = "expired_or_inactive"
	KindUnauthenticated   = "unauthenticated"
	KindInternal          = "internal"
)

// KindOf returns the kind name for err, or KindInternal if err does not wrap
// any known sentinel.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrExpiredOrInactive):
		return KindExpiredOrInactive
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	default:
		return KindInternal
	}
}

// HTTPStatus maps err to the status code the API reports for it.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation, KindExpiredOrInactive:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
