package wasmfixture

// Basic returns a guest that imports every timer-control ABI function and
// calls each exactly once from configure, with an empty update. It is the
// positive-path fixture: valid imports, valid exports, clean instantiation.
func Basic() []byte {
	// type 0: () -> ()
	types := section(secType, vec(1, funcType(nil, nil)))

	imports := section(secImport, vec(5,
		concat(
			importFunc("env", "start", 0),
			importFunc("env", "split", 0),
			importFunc("env", "pause_game_time", 0),
			importFunc("env", "resume_game_time", 0),
			importFunc("env", "reset", 0),
		),
	))

	// function indices 0..4 are imports; 5=configure, 6=update, both type 0.
	functions := section(secFunction, vec(2, concat(uleb(0), uleb(0))))

	exports := section(secExport, vec(2, concat(
		exportFunc("configure", 5),
		exportFunc("update", 6),
	)))

	// start, split, pause_game_time, resume_game_time, reset — reset last.
	configureBody := concat(callInsn(0), callInsn(1), callInsn(2), callInsn(3), callInsn(4))
	updateBody := []byte{}

	codeSec := section(secCode, vec(2, concat(code(configureBody), code(updateBody))))

	return module(types, imports, functions, exports, codeSec)
}

// WrongInterface returns a guest that exports configure but omits update,
// exercising the loader's export-shape validation.
func WrongInterface() []byte {
	types := section(secType, vec(1, funcType(nil, nil)))
	functions := section(secFunction, vec(1, uleb(0)))
	exports := section(secExport, vec(1, exportFunc("configure", 0)))
	codeSec := section(secCode, vec(1, code(nil)))

	return module(types, functions, exports, codeSec)
}

// UnknownFunc returns a guest that imports a symbol outside the host ABI
// surface, exercising the loader's import allowlist check.
func UnknownFunc() []byte {
	types := section(secType, vec(1, funcType(nil, nil)))
	imports := section(secImport, vec(1, importFunc("env", "not_a_real_function", 0)))
	functions := section(secFunction, vec(2, concat(uleb(0), uleb(0))))
	exports := section(secExport, vec(2, concat(
		exportFunc("configure", 1),
		exportFunc("update", 2),
	)))
	codeSec := section(secCode, vec(2, concat(code(callInsn(0)), code(nil))))

	return module(types, imports, functions, exports, codeSec)
}

// MissingProcess returns a guest whose configure attaches to a process name
// that will not be running, checks the returned handle for zero, and
// returns early instead of calling start. It exercises attach argument
// decoding and the handle-zero convention end to end.
func MissingProcess() []byte {
	const procName = "nonexistent-game"

	typeVoid := funcType(nil, nil)
	typeAttach := funcType([]byte{valI32, valI32}, []byte{valI64})

	types := section(secType, vec(2, concat(typeVoid, typeAttach)))

	imports := section(secImport, vec(2, concat(
		importFunc("env", "attach", 1),
		importFunc("env", "start", 0),
	)))

	functions := section(secFunction, vec(2, concat(uleb(0), uleb(0))))

	memory := section(secMemory, vec(1, concat([]byte{0x00}, uleb(1))))

	exports := section(secExport, vec(2, concat(
		exportFunc("configure", 2),
		exportFunc("update", 3),
	)))

	dataContent := concat(
		[]byte{0x00},
		i32ConstInsn(0), []byte{opEnd},
		vec(uint32(len(procName)), []byte(procName)),
	)
	dataSec := section(secData, vec(1, dataContent))

	configureBody := concat(
		i32ConstInsn(0), i32ConstInsn(int32(len(procName))),
		callInsn(0), // attach -> i64 handle on stack
		[]byte{opI64Eqz},
		[]byte{opIf, blockVoid},
		[]byte{opReturn},
		[]byte{opEnd},
		callInsn(1), // start
	)

	codeSec := section(secCode, vec(2, concat(code(configureBody), code(nil))))

	return module(types, imports, functions, memory, exports, codeSec, dataSec)
}

// TickRateSimple returns a guest whose configure raises the tick rate to
// 120Hz and whose update calls split once per invocation, for exercising
// the scheduler end to end through a real guest.
func TickRateSimple() []byte {
	typeVoid := funcType(nil, nil)
	typeRate := funcType([]byte{valF64}, nil)

	types := section(secType, vec(2, concat(typeVoid, typeRate)))

	imports := section(secImport, vec(2, concat(
		importFunc("env", "set_tick_rate", 1),
		importFunc("env", "split", 0),
	)))

	functions := section(secFunction, vec(2, concat(uleb(0), uleb(0))))

	exports := section(secExport, vec(2, concat(
		exportFunc("configure", 2),
		exportFunc("update", 3),
	)))

	configureBody := concat(f64ConstInsn(120), callInsn(0))
	updateBody := callInsn(1)

	codeSec := section(secCode, vec(2, concat(code(configureBody), code(updateBody))))

	return module(types, imports, functions, exports, codeSec)
}

// ProcessRead returns a guest that attaches to "fakegame", locates a
// "fakemodule" module within it, reads one byte at a fixed offset past the
// module base, and splits a third time only if that byte reads back as 42.
// Mirrors original_source's process_read.rs: (attach) -> Start -> (find
// module) -> Split -> (read mem) -> Split -> (check read value) -> Split.
func ProcessRead() []byte {
	const (
		processName = "fakegame"
		moduleName  = "fakemodule"
		readOffset  = 0x2000
		bufPtr      = 64
	)

	typeVoid := funcType(nil, nil)
	typeAttach := funcType([]byte{valI32, valI32}, []byte{valI64})
	typeGetModule := funcType([]byte{valI64, valI32, valI32}, []byte{valI64})
	typeReadMem := funcType([]byte{valI64, valI64, valI32, valI32}, []byte{valI32})

	types := section(secType, vec(4, concat(typeVoid, typeAttach, typeGetModule, typeReadMem)))

	imports := section(secImport, vec(5, concat(
		importFunc("env", "attach", 1),
		importFunc("env", "start", 0),
		importFunc("env", "get_module", 2),
		importFunc("env", "split", 0),
		importFunc("env", "read_mem", 3),
	)))
	const (
		attachIdx     = 0
		startIdx      = 1
		getModuleIdx  = 2
		splitIdx      = 3
		readMemIdx    = 4
	)

	functions := section(secFunction, vec(2, concat(uleb(0), uleb(0))))

	memory := section(secMemory, vec(1, concat([]byte{0x00}, uleb(1))))

	exports := section(secExport, vec(2, concat(
		exportFunc("configure", 5),
		exportFunc("update", 6),
	)))

	dataSec := section(secData, vec(2, concat(
		concat([]byte{0x00}, i32ConstInsn(0), []byte{opEnd}, vec(uint32(len(processName)), []byte(processName))),
		concat([]byte{0x00}, i32ConstInsn(int32(len(processName))), []byte{opEnd}, vec(uint32(len(moduleName)), []byte(moduleName))),
	)))
	modulePtr := int32(len(processName))

	// locals: 0 = proc handle (i64), 1 = module base address (i64)
	configureBody := concat(
		i32ConstInsn(0), i32ConstInsn(int32(len(processName))),
		callInsn(attachIdx),
		localSetInsn(0),
		localGetInsn(0), []byte{opI64Eqz}, []byte{opIf, blockVoid}, []byte{opReturn}, []byte{opEnd},

		callInsn(startIdx),

		localGetInsn(0),
		i32ConstInsn(modulePtr), i32ConstInsn(int32(len(moduleName))),
		callInsn(getModuleIdx),
		localSetInsn(1),
		localGetInsn(1), []byte{opI64Eqz}, []byte{opIf, blockVoid}, []byte{opReturn}, []byte{opEnd},

		callInsn(splitIdx),

		localGetInsn(0),
		localGetInsn(1), i64ConstInsn(readOffset), []byte{opI64Add},
		i32ConstInsn(bufPtr), i32ConstInsn(1),
		callInsn(readMemIdx),
		[]byte{opI32Eqz}, []byte{opIf, blockVoid}, []byte{opReturn}, []byte{opEnd},

		callInsn(splitIdx),

		i32ConstInsn(bufPtr), i32Load8UInsn(0),
		i32ConstInsn(42), []byte{opI32Eq},
		[]byte{opIf, blockVoid}, callInsn(splitIdx), []byte{opEnd},
	)

	codeSec := section(secCode, vec(2, concat(codeWithLocals(2, valI64, configureBody), code(nil))))

	return module(types, imports, functions, memory, exports, codeSec, dataSec)
}

// MissingModule returns a guest that attaches successfully, starts, then
// looks up a module name that isn't loaded and returns early instead of
// splitting. Mirrors original_source's missing_module.rs.
func MissingModule() []byte {
	const (
		processName = "fakegame"
		moduleName  = "WRONGMODULE"
	)

	typeVoid := funcType(nil, nil)
	typeAttach := funcType([]byte{valI32, valI32}, []byte{valI64})
	typeGetModule := funcType([]byte{valI64, valI32, valI32}, []byte{valI64})

	types := section(secType, vec(3, concat(typeVoid, typeAttach, typeGetModule)))

	imports := section(secImport, vec(4, concat(
		importFunc("env", "attach", 1),
		importFunc("env", "start", 0),
		importFunc("env", "get_module", 2),
		importFunc("env", "split", 0),
	)))
	const (
		attachIdx    = 0
		startIdx     = 1
		getModuleIdx = 2
		splitIdx     = 3
	)

	functions := section(secFunction, vec(2, concat(uleb(0), uleb(0))))

	exports := section(secExport, vec(2, concat(
		exportFunc("configure", 4),
		exportFunc("update", 5),
	)))

	dataSec := section(secData, vec(2, concat(
		concat([]byte{0x00}, i32ConstInsn(0), []byte{opEnd}, vec(uint32(len(processName)), []byte(processName))),
		concat([]byte{0x00}, i32ConstInsn(int32(len(processName))), []byte{opEnd}, vec(uint32(len(moduleName)), []byte(moduleName))),
	)))
	modulePtr := int32(len(processName))

	memory := section(secMemory, vec(1, concat([]byte{0x00}, uleb(1))))

	// local 0 = proc handle (i64)
	configureBody := concat(
		i32ConstInsn(0), i32ConstInsn(int32(len(processName))),
		callInsn(attachIdx),
		localSetInsn(0),
		localGetInsn(0), []byte{opI64Eqz}, []byte{opIf, blockVoid}, []byte{opReturn}, []byte{opEnd},

		callInsn(startIdx),

		localGetInsn(0),
		i32ConstInsn(modulePtr), i32ConstInsn(int32(len(moduleName))),
		callInsn(getModuleIdx),
		[]byte{opI64Eqz}, []byte{opIf, blockVoid}, []byte{opReturn}, []byte{opEnd},

		callInsn(splitIdx),
	)

	codeSec := section(secCode, vec(2, concat(codeWithLocals(1, valI64, configureBody), code(nil))))

	return module(types, imports, functions, memory, exports, codeSec, dataSec)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
