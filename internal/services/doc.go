// package services implements the external collaborators of the bridge: the
// Spotify catalog client, the YouTube media resolver, and the caching
// resolution layer in front of it.
package services
