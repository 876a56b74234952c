// Package preview runs an interactive dungeon preview on a tcell screen:
// a dungeon is grown, streamed around a movable source through an in-memory
// world host, and drawn top-down.
package preview

import (
	"errors"
	"fmt"
	"log/slog"
	"snapmap/internal/dungeon"
	"snapmap/internal/flow"
	"snapmap/internal/grow"
	"snapmap/internal/moduledb"
	"snapmap/internal/render"
	"snapmap/internal/streaming"
	"snapmap/internal/world"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"
)

// maxMessages is how many HUD messages are retained.
const maxMessages = 20

// Options configures a Session.
type Options struct {
	Database *moduledb.Database
	Flow     *flow.Graph
	Grow     grow.Config
	// Scale is world units per tile; Step is how far one key press moves
	// the source. Both default to 2.
	Scale float64
	Step  float64
	// Depth is the neighbour depth streamed around the source.
	Depth int
	// DoorLevel and WallLevel are passed to the streaming model.
	DoorLevel world.LevelID
	WallLevel world.LevelID
	// NoBuildLog disables writing builds.jsonl.
	NoBuildLog bool
	Logger     *slog.Logger
}

// Session is one previewer bound to a screen.
type Session struct {
	screen   tcell.Screen
	renderer *render.Renderer
	grower   *grow.Grower
	opts     Options
	logger   *slog.Logger

	sim      *world.Sim
	model    *streaming.Model
	policy   streaming.ProximityPolicy
	result   *grow.Result
	seed     int64
	tried    mapset.Set[int64]
	source   mgl64.Vec3
	current  uuid.UUID
	messages []string
}

// New creates a session and builds the first dungeon from opts.Grow.Seed.
func New(screen tcell.Screen, opts Options) (*Session, error) {
	if opts.Database == nil {
		return nil, grow.ErrNoDatabase
	}
	if opts.Flow == nil {
		return nil, errors.New("preview: no flow graph")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Scale <= 0 {
		opts.Scale = 2
	}
	if opts.Step <= 0 {
		opts.Step = 2
	}
	s := &Session{
		screen:   screen,
		renderer: render.NewRenderer(screen, opts.Scale),
		grower:   grow.New(opts.Database, opts.Logger),
		opts:     opts,
		logger:   opts.Logger,
		policy:   streaming.ProximityPolicy{Depth: opts.Depth},
		tried:    mapset.New[int64](),
	}
	if err := s.Build(opts.Grow.Seed); err != nil {
		return nil, err
	}
	return s, nil
}

// Build discards the current dungeon and grows a new one from seed. On
// failure the previous dungeon is kept.
func (s *Session) Build(seed int64) error {
	cfg := s.opts.Grow
	cfg.Seed = seed
	s.tried.Put(seed)
	res, err := s.grower.Grow(s.opts.Flow, cfg)

	bl := BuildLog{Timestamp: time.Now().UTC(), Seed: seed}
	if err != nil {
		var ex *grow.ExhaustedError
		if errors.As(err, &ex) {
			bl.Attempts = ex.Attempts
		}
		bl.Error = err.Error()
		s.writeLog(bl)
		s.addMessage(fmt.Sprintf("build %d failed: %v", seed, err))
		return err
	}
	bl.FinalSeed = res.Seed
	bl.Attempts = res.Stats.Attempts
	bl.Modules = len(res.Layout.Modules)
	bl.Doors = res.Layout.DoorPairs()
	bl.Walls = res.Layout.Walls()
	bl.Duration = res.Duration

	if s.model != nil {
		s.model.Release()
	}
	s.seed = seed
	s.result = res
	s.sim = world.NewSim(world.ContentFromLayout(res.Layout))
	s.model = streaming.NewModel(s.sim, res.Layout, streaming.Options{
		DoorLevel: s.opts.DoorLevel,
		WallLevel: s.opts.WallLevel,
		Themes:    s.opts.Database,
		Logger:    s.logger,
	})
	s.model.Resolver().AddObserver(s)
	s.current = uuid.Nil
	s.respawn()

	s.writeLog(bl)
	s.addMessage(fmt.Sprintf("built seed %d: %d modules in %d attempt(s)", res.Seed, bl.Modules, bl.Attempts))
	return nil
}

// DoorCreated implements connection.Observer.
func (s *Session) DoorCreated(chunk uuid.UUID, conn *dungeon.ConnectionInstance) {
	s.logger.Debug("preview: door spawned", "chunk", chunk, "door", conn.DoorA)
}

func (s *Session) writeLog(bl BuildLog) {
	if !s.opts.NoBuildLog {
		saveBuildLog(bl, s.logger)
	}
}

// respawn moves the source to the spawn room.
func (s *Session) respawn() {
	if c, ok := s.model.Chunk(s.model.SpawnRoom()); ok {
		s.source = c.Bounds.Center()
	}
	s.stream()
}

// stream applies the proximity policy around the source and runs the host
// until every request has completed.
func (s *Session) stream() {
	if err := s.policy.Apply(s.model, []mgl64.Vec3{s.source}); err != nil {
		s.logger.Error("preview: streaming policy failed", "error", err)
		return
	}
	s.sim.FlushStreaming()
	s.model.Tick()

	for _, c := range s.model.Chunks() {
		if c.Bounds.ContainsPoint(s.source) {
			if c.ID != s.current {
				s.current = c.ID
				if mi, ok := s.result.Layout.Module(c.ID); ok {
					s.addMessage(fmt.Sprintf("entered %s (%s)", mi.FlowNode, mi.Module))
				}
			}
			break
		}
	}
}

func (s *Session) addMessage(msg string) {
	s.messages = append(s.messages, msg)
	if len(s.messages) > maxMessages {
		s.messages = s.messages[len(s.messages)-maxMessages:]
	}
}

// Handle applies one action and reports whether the session continues.
func (s *Session) Handle(a Action) bool {
	step := s.opts.Step
	switch a {
	case ActionQuit:
		return false
	case ActionMoveN:
		s.move(mgl64.Vec3{0, step, 0})
	case ActionMoveS:
		s.move(mgl64.Vec3{0, -step, 0})
	case ActionMoveE:
		s.move(mgl64.Vec3{step, 0, 0})
	case ActionMoveW:
		s.move(mgl64.Vec3{-step, 0, 0})
	case ActionSpawn:
		s.respawn()
	case ActionRegrow:
		next := grow.NextSeed(s.seed, s.tried)
		if err := s.Build(next); err != nil {
			s.logger.Warn("preview: regrow failed", "seed", next, "error", err)
		}
	}
	return true
}

func (s *Session) move(d mgl64.Vec3) {
	s.source = s.source.Add(d)
	s.stream()
}

// Status summarizes the current dungeon for the HUD.
func (s *Session) Status() render.Status {
	st := render.Status{
		Seed:    s.result.Seed,
		Modules: len(s.result.Layout.Modules),
		Doors:   s.result.Layout.DoorPairs(),
	}
	for _, c := range s.model.Chunks() {
		if c.Load == streaming.Loaded {
			st.Loaded++
		}
		if c.Visible() {
			st.Visible++
		}
		st.Walls += len(s.model.Resolver().Walls(c.ID))
	}
	return st
}

// Draw renders one frame.
func (s *Session) Draw() {
	s.renderer.CenterOn(s.source)
	s.renderer.DrawFrame(s.model, []mgl64.Vec3{s.source})
	s.renderer.DrawHUD(s.Status(), s.messages)
}

// Run is the event loop. It returns when the user quits or the screen's
// event stream ends, and releases the dungeon on the way out.
func (s *Session) Run() {
	defer s.Close()
	s.addMessage("arrows/hjkl move, s spawn, r regrow, q quit")
	for {
		s.Draw()
		ev := s.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return
		case *tcell.EventResize:
			s.screen.Sync()
			s.renderer.Resize()
		case *tcell.EventKey:
			if !s.Handle(keyToAction(ev)) {
				return
			}
		}
	}
}

// Close releases the streamed dungeon.
func (s *Session) Close() {
	if s.model != nil {
		s.model.Release()
	}
}

// Seed returns the seed the current dungeon was requested with.
func (s *Session) Seed() int64 { return s.seed }

// Model returns the current streaming model.
func (s *Session) Model() *streaming.Model { return s.model }

// Source returns the streaming source position.
func (s *Session) Source() mgl64.Vec3 { return s.source }
