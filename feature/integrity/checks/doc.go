// Package checks contains the individual preflight checks used by the integrity service.
package checks
