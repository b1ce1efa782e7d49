// Package nedb implements an embeddable, in-memory, document-oriented data
// store with a MongoDB-flavoured query and update language, ordered
// secondary indexes, and a single-writer task queue that serialises
// mutations so callers observe atomic, ordered effects.
//
// A Store owns a set of Indexes and an Executor. Mutating operations
// (Insert, Update, Remove) are pushed onto the Executor's FIFO queue;
// reading operations build a Cursor that runs, outside the queue, when
// All, One or Count is called.
package nedb
