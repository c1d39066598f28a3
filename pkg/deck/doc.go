// Package deck provides access to the memory exposed by expansion decks
// attached to a mainboard.
package deck

// Decks publish a fixed-size info section at address 0 of the deck memory
// element. The info section enumerates up to MaxDecks decks, their
// capabilities and the base address of each deck's memory window.
//
// A Manager owns three request lanes: query, read and write. Each lane
// accepts at most one outstanding request; a second request on a busy lane
// is rejected synchronously with ErrConcurrentOperation and never queued.
// The read and write lanes are shared by all decks of a Manager, modeling a
// single memory access channel to the mainboard.
//
// Requests never block. Results are delivered later, either through the
// callbacks passed to the *With methods or through the result channel of
// the returned request. Disconnect drops every pending request silently:
// neither callbacks nor result channels fire for requests issued before it.
