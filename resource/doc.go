// Package resource provides ready-made Setup constructors for the resources
// owners typically hold: tickers, timers, network listeners, subscriptions,
// closers and WebAssembly module instances.
//
// Each constructor returns a lifecycle.Setup that acquires the resource when
// called and a Teardown that releases it:
//
//	o.Add(resource.Ticker(5*time.Second, refresh), disposal.WithKey("refresh"))
//	o.Add(resource.Listen("tcp", "127.0.0.1:0", serve), disposal.Pausable(false))
//
// # Replay
//
// A pausable entry's Setup is called again on every resume, so constructors
// acquire a fresh resource on each call and never cache the previous one.
//
// # WebAssembly Modules
//
// WasmModule instantiates a compiled wazero module under a fixed name and
// closes it on teardown. Pausing such an entry unloads the guest while the
// application is hidden:
//
//	rt := wazero.NewRuntime(ctx)
//	compiled, _ := rt.CompileModule(ctx, wasmBytes)
//	o.Add(resource.WasmModule(ctx, rt, compiled, "plugin"), disposal.WithKey("plugin"))
package resource
