// Package apierr defines the typed failures shared by every simulated
// endpoint: type violations, value violations, not-found, and structural
// store corruption. Call sites match on the concrete kind with errors.As;
// nothing in this package is ever downgraded to a plain string error.
package apierr
