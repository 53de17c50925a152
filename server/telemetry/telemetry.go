// Package telemetry is minimal structured-ish logging plus in-process
// counters. Counters only surface through LogCounters at shutdown; there is
// no metrics backend behind this.
package telemetry

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
)

type registry struct {
	logger *log.Logger

	mu       sync.Mutex
	counters map[string]int

	trace bool
}

var reg = registry{
	logger:   log.New(os.Stdout, "", log.LstdFlags|log.LUTC),
	counters: make(map[string]int),
	trace:    os.Getenv("STREAMMILL_QUIET") == "",
}

func Log(format string, args ...any) {
	reg.logger.Printf(format, args...)
}

// Trace logs chatty per-item detail. Silenced when STREAMMILL_QUIET is set.
func Trace(format string, args ...any) {
	if reg.trace {
		Log(format, args...)
	}
}

func Error(err error, format string, args ...any) {
	reg.logger.Printf("ERROR %s [%s]", fmt.Sprintf(format, args...), err)
	Increment("errors", 1)
}

// Request logs the method and URL of an incoming HTTP request.
func Request(r *http.Request, format string, args ...any) {
	reg.logger.Printf("%s %s %s", fmt.Sprintf(format, args...), r.Method, r.URL)
}

func Increment(name string, n int) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.counters[name] += n
}

func GetCounter(name string) int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.counters[name]
}

// LogCounters writes every counter on one line, sorted by name.
func LogCounters() {
	reg.mu.Lock()
	parts := make([]string, 0, len(reg.counters))
	for k, v := range reg.counters {
		parts = append(parts, fmt.Sprintf("%s=%d", k, v))
	}
	reg.mu.Unlock()

	if len(parts) == 0 {
		Log("no counters were recorded")
		return
	}
	sort.Strings(parts)
	Log(strings.Join(parts, ", "))
}
