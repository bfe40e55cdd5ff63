// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apperr defines the error kinds shared by every layer of the API.

Stores and the poll engine wrap a kind sentinel with context:

	return fmt.Errorf("option %s not in poll: %w", optionID, apperr.ErrNotFound)

Handlers classify with KindOf and HTTPStatus:

	not_found            → 404
	forbidden            → 403
	validation           → 400
	conflict             → 409
	expired_or_inactive  → 400
	unauthenticated      → 401
	anything else        → 500
*/
package apperr
