// Package journal records library operations in a SQLite database: captures,
// inserts, edits, removals, repairs. The history feeds the history command
// and recently-used ordering. Journal writes are best-effort everywhere; a
// broken journal never blocks a library operation.
package journal
