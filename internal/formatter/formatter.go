// package formatter builds the textual chat replies: numbered track listings
// and single-entity summaries.
package formatter

import (
	"bytes"
	"fmt"

	"github.com/spotfetch/spotfetch/internal/models"
)

// TrackLine renders one listing line: "N. name - primary artist".
func TrackLine(index int, track models.Track) string {
	return fmt.Sprintf("%d. %s - %s", index, track.Name, track.PrimaryArtist())
}

// Listing renders the numbered body for a snapshot's tracks, one per line,
// numbered 1..N in snapshot order.
func Listing(tracks []models.Track) string {
	var buf bytes.Buffer
	for i, track := range tracks {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(TrackLine(i+1, track))
	}
	return buf.String()
}

// PlaylistMessage renders the playlist reply: a title line followed by the
// numbered listing.
func PlaylistMessage(snapshot *models.Snapshot) string {
	return fmt.Sprintf("Playlist: %s\n%s", snapshot.Name, Listing(snapshot.Tracks))
}

// EmptyPlaylistMessage renders the reply for a playlist with no tracks.
func EmptyPlaylistMessage(snapshot *models.Snapshot) string {
	return fmt.Sprintf("Playlist: %s\nSorry, no tracks found in the playlist.", snapshot.Name)
}

// AlbumMessage renders the album reply: a title line followed by the numbered
// listing.
func AlbumMessage(snapshot *models.Snapshot) string {
	return fmt.Sprintf("Album: %s\n%s", snapshot.Name, Listing(snapshot.Tracks))
}

// TrackMessage renders the single-track reply.
func TrackMessage(track *models.Track) string {
	return fmt.Sprintf("Track: %s - %s", track.Name, track.PrimaryArtist())
}

// WelcomeMessage renders the instructional reply addressed to the sender.
func WelcomeMessage(firstName string) string {
	return fmt.Sprintf("Hey, %s 👋\n"+
		"\n1) To get started, copy the URL link to the spotify playlist in the format ( https://open.spotify.com/playlist/ ) and paste it into the chat\n"+
		"\n2) After a while, you will receive a list from the playlist, you can send the /download command to download all tracks in a ZIP-Archive\n"+
		"\n3) Or send the track number to download a specific track from the list", firstName)
}
