package hashlaser

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
)

var globalVerboseLevel int
var debugFlags map[string]bool

// stderr writes from hash workers must not interleave mid-line
var logMutex sync.Mutex

// SetVerboseLevel sets the global verbose level
func SetVerboseLevel(level int) {
	globalVerboseLevel = level
}

// GetVerboseLevel returns the current verbose level
func GetVerboseLevel() int {
	return globalVerboseLevel
}

// VerboseEnter logs function entry at level 3+ and returns a defer function for exit logging
func VerboseEnter() func() {
	if globalVerboseLevel < 3 {
		return func() {}
	}

	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return func() {}
	}

	funcName := runtime.FuncForPC(pc).Name()
	if idx := strings.LastIndex(funcName, "."); idx != -1 {
		funcName = funcName[idx+1:]
	}

	logLine("[TRACE] Entering function: %s\n", funcName)

	return func() {
		logLine("[TRACE] Exiting function: %s\n", funcName)
	}
}

// VerboseLog logs a message at the specified verbose level
func VerboseLog(level int, format string, args ...interface{}) {
	if globalVerboseLevel < level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	logLine("[VERBOSE-%d] %s", level, msg)
}

// Warnf prints a warning to stderr regardless of verbose level
func Warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	logLine("Warning: %s", msg)
}

func logLine(format string, args ...interface{}) {
	logMutex.Lock()
	defer logMutex.Unlock()
	fmt.Fprintf(os.Stderr, format, args...)
}

// SetDebugFlags sets the debug flags from a comma-separated string
// Supports both simple flags ("scan,hash") and key:value format ("scan:true,hash:false")
func SetDebugFlags(flagsStr string) {
	debugFlags = make(map[string]bool)
	if flagsStr == "" {
		return
	}

	for _, flag := range strings.Split(flagsStr, ",") {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			continue
		}

		parts := strings.SplitN(flag, ":", 2)
		flagName := strings.ToLower(parts[0])
		flagValue := true

		if len(parts) > 1 {
			switch strings.ToLower(parts[1]) {
			case "false", "0", "no", "off":
				flagValue = false
			}
		}

		debugFlags[flagName] = flagValue
	}
}

// IsDebugEnabled returns true if the specified debug flag is enabled
func IsDebugEnabled(flag string) bool {
	if debugFlags == nil {
		return false
	}
	return debugFlags[strings.ToLower(flag)]
}
