// Package types defines the Vault interface, entry entity types, patch types,
// and standard errors for the vault storage system.
package types
