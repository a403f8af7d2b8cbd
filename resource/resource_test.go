package resource

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tetratelabs/wazero"
)

func TestTicker(t *testing.T) {
	var ticks atomic.Int32
	fired := make(chan struct{}, 1)

	td, err := Ticker(5*time.Millisecond, func(time.Time) {
		ticks.Add(1)
		select {
		case fired <- struct{}{}:
		default:
		}
	})()
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("ticker never fired")
	}

	if err := td(); err != nil {
		t.Fatalf("teardown: %v", err)
	}
	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if ticks.Load() != after {
		t.Fatal("ticker fired after teardown")
	}
}

func TestTicker_InvalidInterval(t *testing.T) {
	if _, err := Ticker(0, func(time.Time) {})(); err == nil {
		t.Fatal("Expected error for zero interval")
	}
}

func TestAfterFunc_CancelledByTeardown(t *testing.T) {
	var fired atomic.Bool
	td, err := AfterFunc(50*time.Millisecond, func() { fired.Store(true) })()
	if err != nil {
		t.Fatal(err)
	}
	td()
	time.Sleep(100 * time.Millisecond)
	if fired.Load() {
		t.Fatal("timer fired after teardown")
	}
}

func TestListen(t *testing.T) {
	accepted := make(chan struct{}, 1)
	var addr atomic.Value

	td, err := Listen("tcp", "127.0.0.1:0", func(ln net.Listener) {
		addr.Store(ln.Addr().String())
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
			accepted <- struct{}{}
		}
	})()
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for addr.Load() == nil && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	conn, err := net.Dial("tcp", addr.Load().(string))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()

	select {
	case <-accepted:
	case <-time.After(5 * time.Second):
		t.Fatal("connection not accepted")
	}

	if err := td(); err != nil {
		t.Fatalf("teardown: %v", err)
	}
	if _, err := net.Dial("tcp", addr.Load().(string)); err == nil {
		t.Fatal("listener still accepting after teardown")
	}
}

func TestListen_SetupError(t *testing.T) {
	if _, err := Listen("bogus", "nowhere", func(net.Listener) {})(); err == nil {
		t.Fatal("Expected listen error")
	}
}

type fakeCloser struct {
	closed int
}

func (c *fakeCloser) Close() error {
	c.closed++
	return nil
}

func (c *fakeCloser) Drop() {
	c.closed++
}

func TestCloser(t *testing.T) {
	c := &fakeCloser{}
	td, err := Closer(func() (*fakeCloser, error) { return c, nil })()
	if err != nil {
		t.Fatal(err)
	}
	td()
	if c.closed != 1 {
		t.Fatalf("closed = %d, want 1", c.closed)
	}

	cause := errors.New("no file")
	if _, err := Closer(func() (*fakeCloser, error) { return nil, cause })(); !errors.Is(err, cause) {
		t.Fatalf("err = %v, want %v", err, cause)
	}
}

func TestDrop(t *testing.T) {
	c := &fakeCloser{}
	td, err := Drop(func() (*fakeCloser, error) { return c, nil })()
	if err != nil {
		t.Fatal(err)
	}
	td()
	if c.closed != 1 {
		t.Fatalf("dropped = %d, want 1", c.closed)
	}
}

func TestSubscription(t *testing.T) {
	subscribed := 0
	td, err := Subscription(func() func() {
		subscribed++
		return func() { subscribed-- }
	})()
	if err != nil {
		t.Fatal(err)
	}
	if subscribed != 1 {
		t.Fatalf("subscribed = %d", subscribed)
	}
	td()
	if subscribed != 0 {
		t.Fatalf("subscribed = %d after teardown", subscribed)
	}
}

// emptyModule is the smallest valid WebAssembly binary: magic and version.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func TestWasmModule(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, emptyModule)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	setup := WasmModule(ctx, rt, compiled, "guest")
	td, err := setup()
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if rt.Module("guest") == nil {
		t.Fatal("module not instantiated")
	}

	// Same name cannot be instantiated twice while live
	if _, err := setup(); err == nil {
		t.Fatal("Expected duplicate instantiation to fail")
	}

	if err := td(); err != nil {
		t.Fatalf("teardown: %v", err)
	}
	if rt.Module("guest") != nil {
		t.Fatal("module still live after teardown")
	}

	// Replay after teardown, as a resume would
	td2, err := setup()
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	td2()
}

func TestWasmModule_MissingRuntime(t *testing.T) {
	if _, err := WasmModule(context.Background(), nil, nil, "x")(); err == nil {
		t.Fatal("Expected error for nil runtime")
	}
}
