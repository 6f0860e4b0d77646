// Package domain defines the core types exchanged with the elucidation server.
//
// This package contains pure domain types with ZERO external dependencies outside the
// Go standard library. The recorder, client, and CLI packages depend on these types;
// the dependency direction is always:
//
//	Infrastructure → Domain (CORRECT)
//	Domain → Infrastructure (FORBIDDEN)
//
// Nothing here validates the contents of an event. Building a meaningful
// ConnectionEvent is the job of the caller's converter.
package domain
