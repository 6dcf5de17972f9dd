// Package journal records tile notifications into an in-memory SQLite log.
//
// Every Journal owns a private in-memory database; nothing is ever written to
// disk. A journal holds any number of sessions, each identified by a token
// (UUIDv7 by default). Each recorded event gets a seq from the journal's
// logical clock, so reading a session back yields the exact notification
// order.
//
// # Database Configuration
//
//   - mode=memory with a unique name per journal
//   - one connection: SQLite has a single writer, and the in-memory
//     database lives exactly as long as that connection
//   - busy_timeout=5000
//   - foreign_keys=ON
//
// All reads order by seq ASC.
package journal
