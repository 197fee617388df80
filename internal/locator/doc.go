// Package locator keeps the bytes behind displayable resource locators.
//
// A Locator is an opaque path such as "/blob/3f0c…" that the loopback HTTP
// host can serve. Creating a locator registers bytes in a Store; revoking it
// frees them. Revoking an unknown or already revoked locator is a no-op.
package locator
