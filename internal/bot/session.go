package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/smf-tools/discordsmf/internal/config"
)

// State tracks where a Session is in its connection lifetime.
type State int

const (
	StateDisconnected State = iota // created, not yet connected
	StateResolving                 // gateway up, looking up the configured entities
	StateActive                    // target channel pinned, relaying events
	StateClosed                    // quit, resolution failure, or remote disconnect
)

var stateNames = map[State]string{
	StateDisconnected: "disconnected",
	StateResolving:    "resolving",
	StateActive:       "active",
	StateClosed:       "closed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// maxGuildPage is the page size for the joined-server listing. One page is
// plenty for a bot meant to sit in a single server.
const maxGuildPage = 200

// transport is the slice of the Discord client the session logic uses.
// *discordgo.Session satisfies it; tests substitute a fake.
type transport interface {
	Open() error
	Close() error
	UserGuilds(limit int, beforeID, afterID string, withCounts bool, options ...discordgo.RequestOption) ([]*discordgo.UserGuild, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
}

// Session owns one connection lifetime: the gateway handle, the resolved
// target entities, the heartbeat task, and the quit coordination between
// them. A Session is discarded once Run returns; there is no reconnect,
// restarting the process is the recovery strategy.
type Session struct {
	cfg    *config.Config
	log    *zap.Logger
	conn   transport
	router *Router

	mu       sync.Mutex
	state    State
	guild    *discordgo.UserGuild
	channel  *discordgo.Channel
	topRole  *discordgo.Role // informational only
	hbCancel context.CancelFunc

	hbDone chan struct{} // closed when the heartbeat task has fully stopped
	done   chan struct{} // closed by Quit, releases Run
}

// New builds a session from the config. The token is checked up front so a
// blank config fails as an authentication error before any network use.
func New(cfg *config.Config, log *zap.Logger) (*Session, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}

	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, errors.Wrap(err, "creating client")
	}
	// Restarting the process is the reconnect strategy. The message cache
	// is what lets edit and delete events carry their previous content.
	dg.ShouldReconnectOnError = false
	dg.State.MaxMessageCount = 1024
	dg.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent

	s := newSession(cfg, log, dg)

	dg.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) { s.handleReady(r) })
	dg.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) { s.handleDisconnect() })
	dg.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		s.router.Dispatch(createdEvent(m))
	})
	dg.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageUpdate) {
		if ev, ok := editedEvent(m); ok {
			s.router.Dispatch(ev)
		}
	})
	dg.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageDelete) {
		if ev, ok := deletedEvent(m); ok {
			s.router.Dispatch(ev)
		}
	})

	return s, nil
}

// newSession wires the parts that do not touch the network.
func newSession(cfg *config.Config, log *zap.Logger, conn transport) *Session {
	return &Session{
		cfg:    cfg,
		log:    log,
		conn:   conn,
		router: NewRouter(log),
		hbDone: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Run starts the heartbeat, connects, and blocks until the session closes.
// A connect failure is returned to the caller; everything after a
// successful connect is reported through the log and ends with a nil
// return. The heartbeat never outlives Run.
func (s *Session) Run(ctx context.Context) error {
	s.startHeartbeat(ctx)

	if err := s.conn.Open(); err != nil {
		s.Quit()
		<-s.hbDone
		return errors.Wrap(err, "connecting to gateway")
	}

	select {
	case <-ctx.Done():
		s.Quit()
	case <-s.done:
	}
	<-s.hbDone
	return nil
}

// startHeartbeat launches the per-session heartbeat task. It starts before
// the connect attempt, as the original bot did; a zero interval disables
// it. At most one heartbeat exists per session.
func (s *Session) startHeartbeat(ctx context.Context) {
	if s.cfg.SendInterval <= 0 {
		s.log.Warn("send_interval not set; heartbeat disabled")
		close(s.hbDone)
		return
	}

	hbCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.state == StateClosed {
		// Quit won the race; don't start a task nobody will cancel.
		s.mu.Unlock()
		cancel()
		close(s.hbDone)
		return
	}
	s.hbCancel = cancel
	s.mu.Unlock()

	hb := &Heartbeat{
		Interval: s.cfg.SendInterval,
		Log:      s.log,
		Alive:    func() bool { return s.State() != StateClosed },
	}
	go func() {
		defer close(s.hbDone)
		hb.Run(hbCtx)
	}()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// handleReady runs once the gateway reports the connection up. Resolution
// failures close the session; they never escape the handler.
func (s *Session) handleReady(r *discordgo.Ready) {
	s.log.Info("=== CONNECTED ===")
	s.log.Info(fmt.Sprintf("Call me %s (%s)", r.User.Username, r.User.ID))
	s.log.Info(fmt.Sprintf("Member of %d servers", len(r.Guilds)))

	s.setState(StateResolving)
	if err := s.resolve(); err != nil {
		s.log.Error(err.Error())
		s.Quit()
	}
}

// resolve pins the configured server and channel and records the top role.
// Only the server and channel lookups can fail the session.
func (s *Session) resolve() error {
	guilds, err := s.conn.UserGuilds(maxGuildPage, "", "", false)
	if err != nil {
		return errors.Wrap(err, "listing joined servers")
	}
	guild := findGuild(guilds, s.cfg.ServerName)
	if guild == nil {
		return errors.Mark(
			errors.Newf("not a member of any server named %q", s.cfg.ServerName),
			ErrServerNotFound)
	}

	channels, err := s.conn.GuildChannels(guild.ID)
	if err != nil {
		return errors.Wrapf(err, "listing channels of %q", guild.Name)
	}
	channel := findChannel(channels, s.cfg.ChannelName)
	if channel == nil {
		return errors.Mark(
			errors.Newf("%q does not have any channels named %q", guild.Name, s.cfg.ChannelName),
			ErrChannelNotFound)
	}

	top := s.scanTopRole(guild)

	s.mu.Lock()
	s.guild = guild
	s.channel = channel
	s.topRole = top
	s.state = StateActive
	s.mu.Unlock()

	s.router.SetTarget(channel.ID)
	s.log.Info(fmt.Sprintf("Listening to #%s on %q", channel.Name, guild.Name))
	return nil
}

// scanTopRole finds the highest-positioned role. Informational only, so a
// lookup failure degrades to a warning instead of closing the session.
func (s *Session) scanTopRole(guild *discordgo.UserGuild) *discordgo.Role {
	roles, err := s.conn.GuildRoles(guild.ID)
	if err != nil {
		s.log.Warn(fmt.Sprintf("Could not list roles of %q: %v", guild.Name, err))
		return nil
	}
	top := topRole(roles)
	if top != nil {
		s.log.Info(fmt.Sprintf("Treating members in %q a little bit better than everyone else", top.Name))
	}
	return top
}

// handleDisconnect fires when the gateway drops, including after our own
// Close. A remote drop closes the session; there is no reconnect policy.
func (s *Session) handleDisconnect() {
	if s.State() == StateClosed {
		return
	}
	s.log.Error("Gateway connection lost")
	s.Quit()
}

// Quit is the shutdown coordinator: cancel the heartbeat, close the
// connection, release Run. Idempotent; safe to call from event handlers
// (resolution failure, disconnect) and from the signal path concurrently.
func (s *Session) Quit() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	cancel := s.hbCancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if err := s.conn.Close(); err != nil {
		s.log.Warn(fmt.Sprintf("Closing connection: %v", err))
	}
	close(s.done)
}
