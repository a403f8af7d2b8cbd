package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/lifecycle/disposal"
	"github.com/wippyai/lifecycle/owner"
	"github.com/wippyai/lifecycle/resource"
	"github.com/wippyai/lifecycle/visibility"
)

func main() {
	var (
		owners      = flag.Int("owners", 2, "Number of owners to activate")
		mounts      = flag.Int("mounts", 2, "Mount claims per owner")
		interval    = flag.Duration("interval", 100*time.Millisecond, "Poll ticker interval")
		hiddenFor   = flag.Duration("hidden", 500*time.Millisecond, "How long the scripted run stays hidden")
		flagFile    = flag.String("flag-file", "", "Follow visibility from this file instead of a scripted toggle")
		verbose     = flag.Bool("v", false, "Debug logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI; terminal focus drives visibility")
	)
	flag.Parse()

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck // stderr sync is best-effort
	disposal.SetLogger(log)
	visibility.SetLogger(log)

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*interval); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg := scenario{
		owners:    *owners,
		mounts:    *mounts,
		interval:  *interval,
		hiddenFor: *hiddenFor,
		flagFile:  *flagFile,
	}
	if err := run(log, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

type scenario struct {
	flagFile  string
	owners    int
	mounts    int
	interval  time.Duration
	hiddenFor time.Duration
}

func run(log *zap.Logger, cfg scenario) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		env    visibility.Environment
		toggle func(bool)
	)
	if cfg.flagFile != "" {
		ff, err := visibility.NewFileFlag(visibility.FileFlagConfig{Path: cfg.flagFile, Logger: log})
		if err != nil {
			return err
		}
		defer ff.Close()
		go func() {
			if err := ff.Run(ctx); err != nil {
				log.Error("flag file watcher stopped", zap.Error(err))
			}
		}()
		env = ff
		fmt.Printf("Following %s (write \"hidden\" or \"visible\"); Ctrl-C to stop\n", ff.Path())
	} else {
		f := visibility.NewFlag(true)
		env = f
		toggle = f.Set
	}

	coord := visibility.NewCoordinator(env, &visibility.Config{Logger: log})
	host := owner.NewHost(&owner.Config{
		Logger:      log,
		Coordinator: coord,
		Observer: disposal.ObserverFunc(func(e disposal.Event) {
			fmt.Printf("%-9s %-10s %s\n", e.Type, e.Owner, e.Key)
		}),
	})
	defer host.Close()

	ticks := make([]atomic.Int64, cfg.owners)
	ids := make([]string, cfg.owners)
	for i := range ids {
		ids[i] = fmt.Sprintf("owner/%d", i+1)
		var o *owner.Owner
		for m := 0; m < cfg.mounts; m++ {
			o = host.Activate(ids[i])
		}

		counter := &ticks[i]
		if _, err := o.Add(resource.Ticker(cfg.interval, func(time.Time) { counter.Add(1) }),
			disposal.WithKey("poll")); err != nil {
			return err
		}
		if _, err := o.Add(resource.Listen("tcp", "127.0.0.1:0", acceptLoop),
			disposal.WithKey("socket"), disposal.Pausable(false)); err != nil {
			return err
		}
	}

	if toggle == nil {
		<-ctx.Done()
	} else {
		steps := []struct {
			visible bool
			wait    time.Duration
		}{
			{true, 3 * cfg.interval},
			{false, cfg.hiddenFor},
			{true, 3 * cfg.interval},
		}
		for _, s := range steps {
			toggle(s.visible)
			select {
			case <-ctx.Done():
			case <-time.After(s.wait):
			}
		}
	}

	for _, id := range ids {
		for m := 0; m < cfg.mounts; m++ {
			host.Deactivate(id)
		}
	}

	for i, id := range ids {
		fmt.Printf("%s polled %d times\n", id, ticks[i].Load())
	}
	return nil
}

func acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Close()
	}
}
