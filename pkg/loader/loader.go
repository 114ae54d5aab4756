// Package loader implements the module loader & validator: it reads guest
// bytecode, resolves its imports against the host ABI, verifies its
// exports, instantiates it, and invokes configure exactly once before
// handing back a usable guest.
package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/jesseduffield/wasmsplit/pkg/errs"
	"github.com/jesseduffield/wasmsplit/pkg/hostabi"
)

// Guest is a validated, instantiated guest module ready to be driven by
// the tick scheduler.
type Guest struct {
	runtime  wazero.Runtime
	module   api.Module
	updateFn api.Function
}

// Update invokes the guest's update export exactly once. Implements
// pkg/scheduler.Guest.
func (g *Guest) Update(ctx context.Context) error {
	_, err := g.updateFn.Call(ctx)
	if err != nil {
		return errs.Wrap(errs.EngineError, "guest update trapped", err)
	}
	return nil
}

// Close releases the guest's WASM engine resources, including the host
// module.
func (g *Guest) Close(ctx context.Context) error {
	return g.runtime.Close(ctx)
}

// Load reads the guest module at path, validates it against host, and
// invokes configure exactly once. On any failure the returned *Guest is
// nil and every engine resource allocated along the way has already been
// released.
func Load(ctx context.Context, path string, host *hostabi.Host) (*Guest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.Io, fmt.Sprintf("reading guest module %q", path), err)
	}

	r := wazero.NewRuntime(ctx)

	if _, err := host.Instantiate(ctx, r); err != nil {
		_ = r.Close(ctx)
		return nil, errs.Wrap(errs.EngineError, "instantiating host ABI module", err)
	}

	compiled, err := r.CompileModule(ctx, data)
	if err != nil {
		_ = r.Close(ctx)
		return nil, errs.Wrap(errs.EngineError, "compiling guest module", err)
	}

	if err := validateImports(compiled); err != nil {
		_ = r.Close(ctx)
		return nil, err
	}

	configureDef, updateDef, err := validateExports(compiled)
	if err != nil {
		_ = r.Close(ctx)
		return nil, err
	}

	module, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		_ = r.Close(ctx)
		return nil, errs.Wrap(errs.EngineError, "instantiating guest module", err)
	}

	guest := &Guest{
		runtime:  r,
		module:   module,
		updateFn: module.ExportedFunction(updateDef.ExportNames()[0]),
	}

	configureFn := module.ExportedFunction(configureDef.ExportNames()[0])
	if _, err := configureFn.Call(ctx); err != nil {
		_ = guest.Close(ctx)
		return nil, errs.Wrap(errs.EngineError, "guest configure trapped", err)
	}

	return guest, nil
}

// validateImports rejects a guest that imports any symbol outside the
// host ABI surface.
func validateImports(compiled wazero.CompiledModule) error {
	allowed := make(map[string]bool, len(hostabi.ExportNames()))
	for _, name := range hostabi.ExportNames() {
		allowed[name] = true
	}

	imports := lo.Filter(compiled.ImportedFunctions(), func(def api.FunctionDefinition, _ int) bool {
		moduleName, name, _ := def.Import()
		return moduleName != hostabi.ModuleName || !allowed[name]
	})

	if len(imports) == 0 {
		return nil
	}

	offending := lo.Map(imports, func(def api.FunctionDefinition, _ int) string {
		moduleName, name, _ := def.Import()
		return fmt.Sprintf("%s.%s", moduleName, name)
	})

	return errs.New(errs.UnknownHostFunction, fmt.Sprintf("guest imports unknown host function(s): %v", offending))
}

// validateExports verifies the presence of configure: () -> () and
// update: () -> ().
func validateExports(compiled wazero.CompiledModule) (configure, update api.FunctionDefinition, err error) {
	exports := compiled.ExportedFunctions()

	configure, ok := exports["configure"]
	if !ok || !isNullary(configure) {
		return nil, nil, errs.New(errs.InvalidInterface, "guest does not export configure: () -> ()")
	}

	update, ok = exports["update"]
	if !ok || !isNullary(update) {
		return nil, nil, errs.New(errs.InvalidInterface, "guest does not export update: () -> ()")
	}

	return configure, update, nil
}

func isNullary(def api.FunctionDefinition) bool {
	return len(def.ParamTypes()) == 0 && len(def.ResultTypes()) == 0
}
