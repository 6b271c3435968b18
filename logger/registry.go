package logger

import (
	"slices"
	"sync"
)

// named holds the component loggers handed out by Get.
var named = struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}{loggers: make(map[string]*Logger)}

// Register stores l under name, tagged with the component field.
// Registering a name again replaces the earlier logger.
func Register(name string, l *Logger) {
	tagged := l.WithComponent(name)
	named.mu.Lock()
	named.loggers[name] = tagged
	named.mu.Unlock()
}

// Get returns the logger registered under name. Unknown names fall back to
// the global logger tagged with name, without registering it.
func Get(name string) *Logger {
	named.mu.RLock()
	l, ok := named.loggers[name]
	named.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// RegisterDefaults registers the global logger under each name. Call it after
// Init so the component loggers share the configured output.
func RegisterDefaults(names ...string) {
	global := GetGlobalLogger()
	for _, name := range names {
		Register(name, global)
	}
}

// Names returns the registered component names in sorted order.
func Names() []string {
	named.mu.RLock()
	out := make([]string, 0, len(named.loggers))
	for name := range named.loggers {
		out = append(out, name)
	}
	named.mu.RUnlock()
	slices.Sort(out)
	return out
}

// Reset drops every registered logger.
func Reset() {
	named.mu.Lock()
	named.loggers = make(map[string]*Logger)
	named.mu.Unlock()
}
