// Package driving provides interfaces for the application's entry points (primary/inbound ports).
package driving
