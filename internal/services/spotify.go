// Spotify Web API [Catalog] implementation
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spotfetch/spotfetch/internal/models"
	"github.com/spotfetch/spotfetch/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

type spotifyArtist struct {
	Name string `json:"name"`
}

type spotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []spotifyArtist `json:"artists"`
}

type spotifyPlaylistItem struct {
	Track *spotifyTrack `json:"track"` // null for unavailable/local entries
}

type spotifyPlaylist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Tracks struct {
		Items []spotifyPlaylistItem `json:"items"`
	} `json:"tracks"`
}

type spotifyAlbum struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

// SpotifyCatalog implements [Catalog] against the Spotify Web API using the
// OAuth2 client-credentials grant (no user context is needed to read public
// playlists, albums, and tracks).
type SpotifyCatalog struct {
	baseURL    string
	httpClient *http.Client
}

// NewSpotifyCatalog creates a catalog client from API credentials. Token
// acquisition and refresh are handled by the [clientcredentials] transport.
func NewSpotifyCatalog(ctx context.Context, clientID, clientSecret string) (*SpotifyCatalog, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: client id", shared.ErrMissingCredentials)
	}
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: client secret", shared.ErrMissingCredentials)
	}

	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	return &SpotifyCatalog{
		baseURL:    spotifyBaseURL,
		httpClient: cc.Client(ctx),
	}, nil
}

// doRequest performs an authenticated GET against the Spotify API and decodes
// the response into result. Status 400/404 map to [shared.ErrInvalidID];
// every other failure is transient.
func (s *SpotifyCatalog) doRequest(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: spotify returned status %d for %s", shared.ErrInvalidID, resp.StatusCode, endpoint)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: spotify API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}

	return nil
}

// Playlist retrieves a playlist snapshot by ID.
func (s *SpotifyCatalog) Playlist(ctx context.Context, id string) (*models.Snapshot, error) {
	var playlist spotifyPlaylist
	if err := s.doRequest(ctx, fmt.Sprintf("/playlists/%s", id), &playlist); err != nil {
		return nil, err
	}

	snapshot := &models.Snapshot{
		ID:   playlist.ID,
		Name: playlist.Name,
		Kind: models.KindPlaylist,
	}

	for _, item := range playlist.Tracks.Items {
		if item.Track == nil {
			continue
		}
		snapshot.Tracks = append(snapshot.Tracks, convertTrack(*item.Track))
	}

	return snapshot, nil
}

// Album retrieves an album snapshot by ID.
func (s *SpotifyCatalog) Album(ctx context.Context, id string) (*models.Snapshot, error) {
	var album spotifyAlbum
	if err := s.doRequest(ctx, fmt.Sprintf("/albums/%s", id), &album); err != nil {
		return nil, err
	}

	snapshot := &models.Snapshot{
		ID:   album.ID,
		Name: album.Name,
		Kind: models.KindAlbum,
	}

	for _, track := range album.Tracks.Items {
		snapshot.Tracks = append(snapshot.Tracks, convertTrack(track))
	}

	return snapshot, nil
}

// Track retrieves a single track by ID.
func (s *SpotifyCatalog) Track(ctx context.Context, id string) (*models.Track, error) {
	var track spotifyTrack
	if err := s.doRequest(ctx, fmt.Sprintf("/tracks/%s", id), &track); err != nil {
		return nil, err
	}

	converted := convertTrack(track)
	return &converted, nil
}

func convertTrack(st spotifyTrack) models.Track {
	track := models.Track{
		ID:   st.ID,
		Name: st.Name,
	}
	for _, artist := range st.Artists {
		track.Artists = append(track.Artists, artist.Name)
	}
	return track
}
