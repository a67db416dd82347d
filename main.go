package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/denizsincar29/goerror"
	"golang.org/x/sync/errgroup"

	"github.com/rhpvorderman/midi-organ-project/pedal"
)

// -------------------- Logger --------------------

// logger is the package-wide structured logger. Safe to use before initLogger
// is called; defaults to slog.Default().
var logger = slog.Default()

// initLogger configures the shared slog logger and calls slog.SetDefault so
// the stdlib log package also routes through the same handler.
func initLogger(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug, // include file:line in debug mode
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

// -------------------- Tunables --------------------

const (
	SOURCE_SERIAL  = "serial"
	SOURCE_VIRTUAL = "virtual"

	STRATEGY_INTERRUPT = "interrupt"
	STRATEGY_POLLING   = "polling"

	MIDI_TICK     = time.Second
	EVENT_BACKLOG = 64
)

// -------------------- Wiring --------------------

// newScheduler builds the scan strategy selected on the command line.
func newScheduler(strategy string, e *pedal.Engine, lines pedal.TriggerLines, interval time.Duration) (pedal.Scheduler, func(), error) {
	switch strategy {
	case STRATEGY_INTERRUPT:
		s := pedal.NewInterruptScheduler(e, lines)
		return s, s.Trigger, nil
	case STRATEGY_POLLING:
		// The next poll picks up whatever changed.
		return pedal.NewPollingScheduler(e, interval), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown strategy %q (want %s or %s)", strategy, STRATEGY_INTERRUPT, STRATEGY_POLLING)
}

// runAll runs every fn until the first one returns, then cancels the rest.
// A task returning nil (the monitor quitting) stops the others too.
func runAll(ctx context.Context, fns ...func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		g.Go(func() error {
			defer cancel()
			return fn(ctx)
		})
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// -------------------- Main --------------------

func main() {
	debug := flag.Bool("debug", false, "enable debug logging (adds source location)")
	source := flag.String("source", SOURCE_SERIAL, "line source: serial or virtual (terminal pedalboard)")
	serialDev := flag.String("serial", "/dev/ttyACM0", "serial port device")
	baud := flag.Int("baud", 500000, "serial baud rate")
	strategy := flag.String("strategy", STRATEGY_INTERRUPT, "scan strategy: interrupt or polling")
	interval := flag.Duration("interval", pedal.DefaultPollInterval, "scan interval of the polling strategy")
	virtualPort := flag.String("virtual", "", "open a virtual MIDI output with this name instead of connecting to a device")
	portPattern := flag.String("port", "", "preferred MIDI output name pattern")
	monitor := flag.Bool("monitor", false, "show the pedalboard in the terminal")
	logPath := flag.String("log", "", "write logs to this file")
	flag.Parse()

	virtualSource := *source == SOURCE_VIRTUAL
	showMonitor := *monitor || virtualSource

	var logOut io.Writer = os.Stderr
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open log:", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	} else if showMonitor {
		logOut = io.Discard
	}
	initLogger(logOut, *debug)
	e := goerror.NewError(logger)

	logger.Info("midi-organ-project starting",
		"source", *source,
		"serial", *serialDev,
		"baud", *baud,
		"strategy", *strategy,
		"interval", *interval,
		"pedals", pedal.DefaultMap.Len(),
		"debug", *debug,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		lines   pedal.TriggerLines
		virtual *pedal.VirtualLines
		tasks   []func(context.Context) error
	)
	switch *source {
	case SOURCE_SERIAL:
		sl, err := OpenSerial(*serialDev, *baud)
		e.Must(err, "serial: failed to open port")
		defer sl.Close()
		lines = sl
		tasks = append(tasks, sl.Run)
	case SOURCE_VIRTUAL:
		virtual = pedal.NewVirtualLines()
		lines = virtual
	default:
		e.Must(fmt.Errorf("unknown source %q", *source), "bad -source")
	}

	// Filled in once the scheduler exists; MIDIOut calls it on reconnect.
	var rescan func()
	tracker := pedal.NewTracker(pedal.DefaultMap, lines)
	onConnect := func() {
		tracker.Reset()
		if rescan != nil {
			rescan()
		}
	}

	var out *MIDIOut
	var err error
	if *virtualPort != "" {
		out, err = NewVirtualMIDIOut(*virtualPort)
	} else {
		out, err = NewMIDIOut(*portPattern, onConnect)
	}
	e.Must(err, "midi: output init failed")
	defer out.Close()

	events := make(chan pedal.Event, EVENT_BACKLOG)
	engine := pedal.NewEngine(pedal.DefaultMap, tracker, out,
		pedal.WithLogger(logger),
		pedal.WithObserver(func(ev pedal.Event) {
			select {
			case events <- ev:
			default:
			}
		}),
	)

	sched, trigger, err := newScheduler(*strategy, engine, lines, *interval)
	e.Must(err, "bad -strategy")
	rescan = trigger
	tasks = append(tasks, sched.Run, func(ctx context.Context) error {
		ticker := time.NewTicker(MIDI_TICK)
		defer ticker.Stop()
		out.Tick()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				out.Tick()
			}
		}
	})

	if showMonitor {
		status := func() string {
			if name, ok := out.Connected(); ok {
				return "midi: " + name
			}
			return "midi: waiting for output"
		}
		tasks = append(tasks, func(ctx context.Context) error {
			p := tea.NewProgram(NewMonitor(engine, virtual, events, status), tea.WithContext(ctx))
			_, err := p.Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return ctx.Err()
			}
			return err
		})
	} else {
		go func() {
			for ev := range events {
				logger.Info(ev.Message.String(), "note", pedal.PitchName(ev.Message.Pitch), "slot", ev.Transition.Slot)
			}
		}()
	}

	logger.Info("running")
	if err := runAll(ctx, tasks...); err != nil {
		logger.Error("stopped", "err", err)
		os.Exit(1)
	}
	logger.Info("bye")
}
