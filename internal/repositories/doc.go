// package repositories contains SQLite-backed data access for the
// resolution cache.
package repositories
