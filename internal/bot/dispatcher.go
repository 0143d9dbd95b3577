package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/spotfetch/spotfetch/internal/formatter"
	"github.com/spotfetch/spotfetch/internal/models"
	"github.com/spotfetch/spotfetch/internal/services"
	"github.com/spotfetch/spotfetch/internal/shared"
)

const (
	playlistLinkPrefix = "https://open.spotify.com/playlist/"
	trackLinkPrefix    = "https://open.spotify.com/track/"
	albumLinkPrefix    = "https://open.spotify.com/album/"
	downloadCommand    = "/download"
)

const (
	msgInvalidPlaylist = "Sorry, I can't find the playlist on the link, maybe it's invalid, try again and make sure it matches the input format."
	msgInvalidTrack    = "Sorry, I can't find the track on the link, maybe it's invalid, try again and make sure it matches the input format."
	msgInvalidAlbum    = "Sorry, I can't find the album on the link, maybe it's invalid, try again and make sure it matches the input format."
	msgNeedPlaylist    = "Please send me the playlist link first."
	msgTrackWait       = "Please wait until the track is loaded and sent to you"
	msgTrackNotFound   = "The track was not found in free sources."
	msgBulkWait        = "Please wait while the playlist is downloaded and archived, it may take some time depending on the number of tracks in the playlist.\nThe approximate loading time of one track ~ 30 seconds."
	msgBulkFailed      = "An error occurred while downloading the playlist."
	msgGenericFailure  = "Something went wrong, please try again later."
)

// Sender delivers outbound replies to a chat. The Telegram implementation
// lives in telegram.go; tests substitute a fake.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendFile(ctx context.Context, chatID int64, path, displayName string) error
}

// Dispatcher classifies inbound messages and drives the matching workflow.
// It owns no shared state beyond the injected session store and resolver
// cache; every workflow's filesystem footprint is a private workspace.
type Dispatcher struct {
	catalog  services.Catalog
	resolver services.TrackResolver
	sessions *SessionStore
	sender   Sender
	logger   *log.Logger
	workDir  string
}

// Opts contains the dispatcher's collaborators.
type Opts struct {
	Catalog  services.Catalog
	Resolver services.TrackResolver
	Sessions *SessionStore
	Sender   Sender
	Logger   *log.Logger
	WorkDir  string // parent for per-workflow temp dirs; "" uses the OS default
}

// NewDispatcher creates a dispatcher from its collaborators.
func NewDispatcher(opts Opts) *Dispatcher {
	if opts.Sessions == nil {
		opts.Sessions = NewSessionStore()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Dispatcher{
		catalog:  opts.Catalog,
		resolver: opts.Resolver,
		sessions: opts.Sessions,
		sender:   opts.Sender,
		logger:   opts.Logger,
		workDir:  opts.WorkDir,
	}
}

// BindSender attaches the outbound transport. Must be called before Handle
// when the dispatcher was built without one.
func (d *Dispatcher) BindSender(sender Sender) {
	d.sender = sender
}

// Handle processes one inbound message. Classification is evaluated in
// priority order: playlist link, track link, album link, integer, bulk
// command, welcome. Errors never propagate out of a workflow: they are
// logged and converted to a reply, so the receive loop cannot halt.
func (d *Dispatcher) Handle(ctx context.Context, msg models.Inbound) {
	logger := d.logger.With("chat_id", msg.ChatID, "workflow_id", shared.GenerateID())
	text := strings.TrimSpace(msg.Text)

	switch {
	case strings.HasPrefix(text, playlistLinkPrefix):
		d.handlePlaylistLink(ctx, logger, msg.ChatID, text)
	case strings.HasPrefix(text, trackLinkPrefix):
		d.handleTrackLink(ctx, logger, msg.ChatID, text)
	case strings.HasPrefix(text, albumLinkPrefix):
		d.handleAlbumLink(ctx, logger, msg.ChatID, text)
	default:
		if n, err := strconv.Atoi(text); err == nil {
			d.handleTrackNumber(ctx, logger, msg.ChatID, n)
			return
		}
		if text == downloadCommand {
			d.handleBulkDownload(ctx, logger, msg.ChatID)
			return
		}
		d.handleWelcome(ctx, logger, msg)
	}
}

// extractID returns the catalog identifier of a link: the last path segment
// with any query-string suffix stripped.
func extractID(link string) string {
	segment := link[strings.LastIndex(link, "/")+1:]
	if i := strings.IndexByte(segment, '?'); i >= 0 {
		segment = segment[:i]
	}
	return segment
}

func (d *Dispatcher) handlePlaylistLink(ctx context.Context, logger *log.Logger, chatID int64, text string) {
	id := extractID(text)
	logger.Info("received playlist link", "playlist_id", id)

	snapshot, err := d.catalog.Playlist(ctx, id)
	switch {
	case errors.Is(err, shared.ErrInvalidID):
		logger.Error("invalid playlist link", "playlist_id", id, "err", err)
		d.reply(ctx, logger, chatID, msgInvalidPlaylist)
	case err != nil:
		logger.Error("playlist fetch failed", "playlist_id", id, "err", err)
		d.reply(ctx, logger, chatID, msgGenericFailure)
	case snapshot.Empty():
		d.reply(ctx, logger, chatID, formatter.EmptyPlaylistMessage(snapshot))
	default:
		d.reply(ctx, logger, chatID, formatter.PlaylistMessage(snapshot))
		d.sessions.Put(chatID, snapshot)
	}
}

func (d *Dispatcher) handleTrackLink(ctx context.Context, logger *log.Logger, chatID int64, text string) {
	id := extractID(text)
	logger.Info("received track link", "track_id", id)

	track, err := d.catalog.Track(ctx, id)
	switch {
	case errors.Is(err, shared.ErrInvalidID):
		logger.Error("invalid track link", "track_id", id, "err", err)
		d.reply(ctx, logger, chatID, msgInvalidTrack)
	case err != nil:
		logger.Error("track fetch failed", "track_id", id, "err", err)
		d.reply(ctx, logger, chatID, msgGenericFailure)
	default:
		d.reply(ctx, logger, chatID, formatter.TrackMessage(track))
	}
}

func (d *Dispatcher) handleAlbumLink(ctx context.Context, logger *log.Logger, chatID int64, text string) {
	id := extractID(text)
	logger.Info("received album link", "album_id", id)

	snapshot, err := d.catalog.Album(ctx, id)
	switch {
	case errors.Is(err, shared.ErrInvalidID):
		logger.Error("invalid album link", "album_id", id, "err", err)
		d.reply(ctx, logger, chatID, msgInvalidAlbum)
	case err != nil:
		logger.Error("album fetch failed", "album_id", id, "err", err)
		d.reply(ctx, logger, chatID, msgGenericFailure)
	default:
		d.reply(ctx, logger, chatID, formatter.AlbumMessage(snapshot))
	}
}

func (d *Dispatcher) handleTrackNumber(ctx context.Context, logger *log.Logger, chatID int64, number int) {
	snapshot, ok := d.sessions.Get(chatID)
	if !ok || snapshot.Empty() {
		d.reply(ctx, logger, chatID, msgNeedPlaylist)
		return
	}

	if number < 1 || number > len(snapshot.Tracks) {
		logger.Error("track number out of range", "number", number, "tracks", len(snapshot.Tracks))
		d.reply(ctx, logger, chatID, fmt.Sprintf("Sorry, but there is no track number %d in the playlist", number))
		return
	}

	d.reply(ctx, logger, chatID, msgTrackWait)

	track := snapshot.Tracks[number-1]
	url, err := d.resolver.Resolve(ctx, track.Name, track.PrimaryArtist())
	if errors.Is(err, shared.ErrNoMatch) {
		d.reply(ctx, logger, chatID, msgTrackNotFound)
		return
	}
	if err != nil {
		logger.Error("resolution failed", "track", track.Name, "err", err)
		d.reply(ctx, logger, chatID, msgGenericFailure)
		return
	}

	ws, err := newWorkspace(d.workDir)
	if err != nil {
		logger.Error("workspace creation failed", "err", err)
		d.reply(ctx, logger, chatID, msgGenericFailure)
		return
	}
	defer d.closeWorkspace(logger, ws)

	fileName := track.Name + ".mp3"
	dest := ws.Path(fileName)
	if err := d.resolver.Download(ctx, url, dest); err != nil {
		logger.Error("download failed", "track", track.Name, "url", url, "err", err)
		d.reply(ctx, logger, chatID, msgGenericFailure)
		return
	}

	if err := d.sender.SendFile(ctx, chatID, dest, fileName); err != nil {
		logger.Error("failed to send track", "track", track.Name, "err", err)
		d.reply(ctx, logger, chatID, msgGenericFailure)
		return
	}

	logger.Info("sent track", "track", track.Name)
}

func (d *Dispatcher) handleBulkDownload(ctx context.Context, logger *log.Logger, chatID int64) {
	snapshot, ok := d.sessions.Get(chatID)
	if !ok || snapshot.Empty() {
		d.reply(ctx, logger, chatID, msgNeedPlaylist)
		return
	}

	d.reply(ctx, logger, chatID, msgBulkWait)

	ws, err := newWorkspace(d.workDir)
	if err != nil {
		logger.Error("workspace creation failed", "err", err)
		d.reply(ctx, logger, chatID, msgBulkFailed)
		return
	}
	defer d.closeWorkspace(logger, ws)

	var files []string
	for i, track := range snapshot.Tracks {
		url, err := d.resolver.Resolve(ctx, track.Name, track.PrimaryArtist())
		if err != nil {
			// unmatched tracks are skipped, the archive carries the rest
			if !errors.Is(err, shared.ErrNoMatch) {
				logger.Warn("resolution failed, skipping track", "track", track.Name, "err", err)
			}
			continue
		}

		// listing numbers keep same-named tracks from overwriting each other
		dest := ws.Path(fmt.Sprintf("%d. %s.mp3", i+1, track.Name))
		if err := d.resolver.Download(ctx, url, dest); err != nil {
			logger.Error("download failed", "track", track.Name, "url", url, "err", err)
			d.reply(ctx, logger, chatID, msgBulkFailed)
			return
		}
		files = append(files, dest)
	}

	archiveName := snapshot.Name + ".zip"
	archivePath := ws.Path(archiveName)
	if err := buildArchive(archivePath, files); err != nil {
		logger.Error("archiving failed", "playlist", snapshot.Name, "err", err)
		d.reply(ctx, logger, chatID, msgBulkFailed)
		return
	}

	if err := d.sender.SendFile(ctx, chatID, archivePath, archiveName); err != nil {
		logger.Error("failed to send archive", "playlist", snapshot.Name, "err", err)
		d.reply(ctx, logger, chatID, msgBulkFailed)
		return
	}

	logger.Info("sent playlist archive", "playlist", snapshot.Name, "tracks", len(files))
}

func (d *Dispatcher) handleWelcome(ctx context.Context, logger *log.Logger, msg models.Inbound) {
	d.reply(ctx, logger, msg.ChatID, formatter.WelcomeMessage(msg.FirstName))
	logger.Info("sent welcome message")
}

// reply sends a text response; send failures are logged, never propagated.
func (d *Dispatcher) reply(ctx context.Context, logger *log.Logger, chatID int64, text string) {
	if err := d.sender.SendText(ctx, chatID, text); err != nil {
		logger.Error("failed to send reply", "err", err)
	}
}

func (d *Dispatcher) closeWorkspace(logger *log.Logger, ws *workspace) {
	if err := ws.Close(); err != nil {
		logger.Warn("workspace cleanup failed", "dir", ws.dir, "err", err)
	}
}
