package resource

import (
	"context"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/lifecycle"
	"github.com/wippyai/lifecycle/errors"
)

// WasmModule instantiates compiled in rt under name and closes the instance
// on teardown. The name is free again once teardown returns, so the entry
// can be resumed or replaced under the same key.
func WasmModule(ctx context.Context, rt wazero.Runtime, compiled wazero.CompiledModule, name string) lifecycle.Setup {
	return func() (lifecycle.Teardown, error) {
		if rt == nil || compiled == nil {
			return nil, errors.InvalidInput(errors.PhaseSetup, "wasm runtime and compiled module are required")
		}

		mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
		if err != nil {
			return nil, errors.New(errors.PhaseSetup, errors.KindFailed).
				Key(name).
				Detail("instantiate wasm module").
				Cause(err).
				Build()
		}

		return func() error {
			return mod.Close(ctx)
		}, nil
	}
}
