package engine

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/katalvlaran/meridian/action"
	"github.com/katalvlaran/meridian/core"
	"github.com/katalvlaran/meridian/homeostat"
	"github.com/katalvlaran/meridian/learn"
	"github.com/katalvlaran/meridian/macro"
	"github.com/katalvlaran/meridian/plasticity"
	"github.com/katalvlaran/meridian/prng"
	"github.com/katalvlaran/meridian/ringbuf"
	"github.com/katalvlaran/meridian/sense"
	"github.com/katalvlaran/meridian/snapshot"
	"github.com/katalvlaran/meridian/thought"
	"golang.org/x/sync/errgroup"
)

// capacityExhaustionFatalStreak is how many consecutive ticks both the
// vertex and edge arenas must sit completely full before Step reports
// ErrCapacityExhaustedFatal (spec.md §6.1 exit code 4). A single full tick
// is the ordinary, non-fatal case spec.md §7 describes.
const capacityExhaustionFatalStreak = 50

// Core is the single-threaded substrate process of spec.md §2: the arena,
// the input/self-observation rings, the PRNG, the adaptive parameters, and
// the macro table, wired together by Step into one tick.
type Core struct {
	cfg Config

	arena      *core.Arena
	rng        *prng.Source
	detector   sense.DetectorSet
	macros     macro.Table
	inputRing  *ringbuf.Ring
	selfObsRing *ringbuf.Ring

	homeo      homeostat.Params
	homeoState *homeostat.State
	targets    homeostat.Targets

	learner     *learn.Global
	plastState  *plasticity.State

	tick             uint64
	lastMacroIdx     int
	capacityFullRuns int

	lock *fileLock
}

// NewDetectorSet constructs the DetectorSet Core should use against the
// arena it ends up running with — fresh or restored from a snapshot, which
// is why NewCore takes a factory rather than a ready-made DetectorSet: the
// detector's vertex lookups (e.g. ByteDetector's per-byte vertex ids) must
// be bound to the exact arena instance Core holds.
type NewDetectorSet func(*core.Arena) sense.DetectorSet

// NewCore builds a Core from cfg, a detector factory, and macros. If
// cfg.StatePath names a valid, version-matched snapshot it is restored;
// otherwise (file absent or ErrCorrupt) Core starts from an empty arena,
// which is spec.md §4.9's "never half-loaded state" policy. newDetector is
// invoked exactly once, against whichever arena Core ends up with.
func NewCore(cfg Config, newDetector NewDetectorSet, macros macro.Table) (*Core, error) {
	lock, err := acquireFileLock(lockPath(cfg.StatePath))
	if err != nil {
		return nil, err
	}

	c := &Core{
		cfg:         cfg,
		macros:      macros,
		inputRing:   ringbuf.New(cfg.InputRingCapacity),
		selfObsRing: ringbuf.New(cfg.OutputRingCapacity),
		homeoState:  homeostat.NewState(),
		targets:     homeostat.DefaultTargets(),
		plastState:  plasticity.NewState(),
		lastMacroIdx: -1,
		lock:        lock,
	}

	arena, state, err := snapshot.Load(cfg.StatePath)
	switch {
	case err == nil:
		c.arena = arena
		c.tick = state.Tick
		c.homeo = state.Homeostat
		c.rng = prng.New(cfg.Seed)
		if restoreErr := c.rng.Restore(state.PRNGState); restoreErr != nil {
			lock.Release()
			return nil, restoreErr
		}
		c.learner = learn.NewGlobal(cfg.Learn)
		c.learner.Energy = state.Energy
		c.learner.MeanSurprise = state.MeanSurprise
		c.learner.RestoreBaseline(state.Baseline)
	case errors.Is(err, snapshot.ErrCorrupt):
		c.arena = core.NewArena(
			core.WithVertexCapacity(cfg.VertexCapacity),
			core.WithEdgeCapacity(cfg.EdgeCapacity),
			core.WithWeightMax(cfg.WeightMax),
		)
		c.rng = prng.New(cfg.Seed)
		c.homeo = homeostat.DefaultParams()
		c.learner = learn.NewGlobal(cfg.Learn)
	default:
		lock.Release()
		return nil, err
	}

	c.detector = newDetector(c.arena)
	return c, nil
}

// Step runs exactly one tick of spec.md §4.10's pipeline: sense, think,
// learn, structural plasticity, homeostat, act, and (on a snapshot_period
// boundary) persist. It returns the bytes the action selector chose to
// emit this tick, which may be empty.
func (c *Core) Step() ([]byte, error) {
	frame := c.nextFrame()

	acts, err := c.detector.Detect(frame, c.tick)
	if err != nil {
		return nil, err
	}
	sense.Apply(c.arena, c.tick, acts)

	predicted := learn.SnapshotPredicted(c.arena)
	thoughtResult := thought.Run(c.arena, propagateParams(c.cfg.Gamma, c.homeo), thoughtParams(c.homeo))

	learn.Step(c.arena, c.tick, predicted, learnParams(c.cfg.Learn, c.homeo), c.learner)
	c.arena.EachLiveVertex(func(v *core.Vertex) { v.UpdateSignature(c.homeo.ActivationFloor) })
	c.homeoState.Observe(thoughtResult.Settled, thoughtResult.HopsUsed, c.learner.MeanSurprise)

	plasticity.Step(c.arena, c.tick, c.learner.Energy, plasticityParams(c.cfg.Plasticity, c.cfg.Gamma, c.homeo), c.plastState, c.rng)

	homeostat.Adapt(c.arena, c.tick, c.cfg.AdaptPeriod, c.cfg.AdaptRate, &c.homeo, c.homeoState, c.targets)

	action.Reward(c.macros, c.lastMacroIdx, c.learner.MeanSurprise, c.tick)
	idx := action.Select(c.macros, actionParams(c.cfg.Gamma, c.learner.Epsilon), c.rng)
	c.lastMacroIdx = idx

	var emitted []byte
	if idx >= 0 {
		emitted = c.macros.At(idx).Bytes
		if c.cfg.SelfObservation && len(emitted) > 0 {
			c.selfObsRing.Write(emitted)
		}
	}

	c.trackCapacityExhaustion()

	if c.cfg.SnapshotPeriod > 0 && c.tick > 0 && c.tick%c.cfg.SnapshotPeriod == 0 {
		_ = c.Snapshot()
	}

	c.tick++

	if c.capacityFullRuns >= capacityExhaustionFatalStreak {
		return emitted, ErrCapacityExhaustedFatal
	}
	return emitted, nil
}

// nextFrame assembles this tick's bounded input frame: newly arrived bytes
// from the input ring, then (if self-observation is enabled) the previous
// tick's emitted bytes fed back from the self-observation ring, up to
// FrameSizeMax total (spec.md §4.10 steps 1-2).
func (c *Core) nextFrame() []byte {
	frame := make([]byte, c.cfg.FrameSizeMax)
	n := c.inputRing.Read(frame)
	frame = frame[:n]

	if c.cfg.SelfObservation && n < c.cfg.FrameSizeMax {
		rest := make([]byte, c.cfg.FrameSizeMax-n)
		m := c.selfObsRing.Read(rest)
		frame = append(frame, rest[:m]...)
	}
	return frame
}

// trackCapacityExhaustion maintains the consecutive-full-tick streak Step
// uses to distinguish a single recoverable CapacityExhausted miss
// (spec.md §7) from the sustained, irrecoverable case (spec.md §6.1 exit
// code 4).
func (c *Core) trackCapacityExhaustion() {
	stats := c.arena.Stats()
	full := stats.VertexCap > 0 && stats.LiveVertices >= stats.VertexCap &&
		stats.EdgeCap > 0 && stats.LiveEdges >= stats.EdgeCap
	if full {
		c.capacityFullRuns++
	} else {
		c.capacityFullRuns = 0
	}
}

// Arena exposes the underlying arena for read-only inspection (telemetry
// gauges, diagnostics); nothing outside package engine should mutate it.
func (c *Core) Arena() *core.Arena { return c.arena }

// Tick returns the current tick counter.
func (c *Core) Tick() uint64 { return c.tick }

// Homeostat returns a copy of the current adaptive parameters, for
// telemetry to report alongside arena stats.
func (c *Core) Homeostat() homeostat.Params { return c.homeo }

// Energy returns the learner's current energy and epsilon, for telemetry.
func (c *Core) Energy() (energy, epsilon, meanSurprise float64) {
	return c.learner.Energy, c.learner.Epsilon, c.learner.MeanSurprise
}

// ArenaStatsSnapshot flattens core.Arena.Stats() into plain return values,
// so package telemetry can report on it without importing package core.
func (c *Core) ArenaStatsSnapshot() (vertexCap, edgeCap, liveVertices, liveEdges uint32, capacityExhausted, invalidVertexOps uint64) {
	s := c.arena.Stats()
	return s.VertexCap, s.EdgeCap, s.LiveVertices, s.LiveEdges, s.CapacityExhausted, s.InvalidVertexOps
}

// Snapshot writes the current arena and global state to cfg.StatePath.
func (c *Core) Snapshot() error {
	rngState, err := c.rng.MarshalBinary()
	if err != nil {
		return err
	}
	st := snapshot.State{
		Tick:         c.tick,
		Homeostat:    c.homeo,
		Energy:       c.learner.Energy,
		MeanSurprise: c.learner.MeanSurprise,
		PRNGState:    rngState,
		Baseline:     c.learner.Baseline(),
	}
	return snapshot.Save(c.cfg.StatePath, c.arena, st)
}

// Feed appends raw bytes to the input ring. It never blocks; bytes past
// the ring's capacity are dropped (ringbuf.Ring's contract). Feed is not
// safe to call concurrently with Step; Run serializes the two through a
// channel for exactly this reason.
func (c *Core) Feed(p []byte) {
	c.inputRing.Write(p)
}

// Close releases the advisory file lock without writing a final snapshot;
// callers that want a terminal snapshot should call Snapshot first.
func (c *Core) Close() error {
	return c.lock.Release()
}

type stdinChunk struct {
	data []byte
	err  error
}

// Run drives Core's tick loop against stdin/stdout until EOF with an empty
// self-observation ring, ctx cancellation, or an irrecoverable error
// (spec.md §5's three termination conditions). A final snapshot is
// attempted before returning, per spec.md §5 "On termination, a final
// snapshot is attempted."
func (c *Core) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	defer c.lock.Release()

	ch := make(chan stdinChunk, 8)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		readStdin(gctx, stdin, ch, c.cfg.FrameSizeMax)
		return nil
	})
	g.Go(func() error {
		return c.tickLoop(gctx, ch, stdout)
	})
	return g.Wait()
}

// readStdin copies stdin into ch in FrameSizeMax-sized chunks until EOF or
// ctx cancellation. It closes ch whenever it returns, after a terminal read
// result or on cancellation; the tick loop is the only receiver and treats
// a closed ch as end of input.
func readStdin(ctx context.Context, stdin io.Reader, ch chan<- stdinChunk, frameSize int) {
	defer close(ch)
	buf := make([]byte, frameSize)
	for {
		n, err := stdin.Read(buf)
		if n > 0 {
			cp := make([]byte, n)
			copy(cp, buf[:n])
			select {
			case ch <- stdinChunk{data: cp}:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			select {
			case ch <- stdinChunk{err: err}:
			case <-ctx.Done():
			}
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (c *Core) tickLoop(ctx context.Context, ch <-chan stdinChunk, stdout io.Writer) error {
	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	eof := false
	for {
		select {
		case <-ctx.Done():
			_ = c.Snapshot()
			return ctx.Err()
		case <-ticker.C:
			if !eof {
				eof = c.drainStdin(ch)
			}
			emitted, err := c.Step()
			if len(emitted) > 0 {
				_, _ = stdout.Write(emitted)
			}
			if err != nil {
				_ = c.Snapshot()
				return err
			}
			if eof && c.inputRing.Len() == 0 && c.selfObsRing.Len() == 0 {
				_ = c.Snapshot()
				return nil
			}
		}
	}
}

// drainStdin non-blockingly pulls every chunk currently queued on ch into
// the input ring, reporting whether stdin has reached a terminal state
// (EOF or read error).
func (c *Core) drainStdin(ch <-chan stdinChunk) bool {
	for {
		select {
		case chunk, ok := <-ch:
			if !ok {
				return true
			}
			if chunk.err != nil {
				return true
			}
			c.Feed(chunk.data)
		default:
			return false
		}
	}
}
