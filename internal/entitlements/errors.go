package entitlements

import "errors"

// ErrLimitReached indicates the user exhausted the period's export allowance.
var ErrLimitReached = errors.New("entitlement limit reached")
