// Package repository defines the read and write capability contracts for
// per-entity-type access to a unit of work's session.
package repository
