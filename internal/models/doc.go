// package models defines the data model for the chat bridge: catalog
// snapshots, tracks, and inbound chat messages.
package models
