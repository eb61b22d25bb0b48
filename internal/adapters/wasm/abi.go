package wasm

// Export names of the guest ABI.
const (
	exportMemory            = "memory"
	exportAllocate          = "allocate"
	exportDeallocate        = "deallocate"
	exportInitialize        = "_initialize"
	exportIsContextInjected = "is_context_injected"
	exportClearInjectedFlag = "clear_context_injected_flag"
	exportSetFileDirectory  = "set_default_file_directory"
	exportSetupDebugContext = "setup_debug_context"
	exportProcessDebugCmd   = "process_debug_command"
	exportTryRunTask        = "try_run_task"
	exportSetupFlushUIQueue = "setup_flush_ui_queue"
	hostFuncFlushUIQueue    = "flush_ui_queue"
	hostFuncLogMessage      = "log_message"
	hostFuncReadAsset       = "read_asset"
)

// requiredExports are checked, in this order, right after instantiation.
var requiredExports = []string{
	exportAllocate,
	exportIsContextInjected,
	exportClearInjectedFlag,
	exportSetFileDirectory,
	exportSetupDebugContext,
	exportProcessDebugCmd,
	exportTryRunTask,
}

// Guest log levels accepted by log_message.
const (
	guestLogDebug int32 = iota
	guestLogInfo
	guestLogWarn
	guestLogError
)

// packPtrLen packs a pointer and length into a single i64.
func packPtrLen(ptr, length uint32) uint64 {
	return (uint64(ptr) << 32) | uint64(length)
}

// unpackPtrLen unpacks a pointer and length from a packed i64.
func unpackPtrLen(packed uint64) (ptr, length uint32) {
	return uint32(packed >> 32), uint32(packed)
}
