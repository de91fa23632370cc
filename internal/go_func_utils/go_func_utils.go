package go_func_utils

import (
	"log"
	"runtime/debug"
	"sync"
)

// SafeGo runs fn on a new goroutine. A panic is written to logger, tagged with name,
// before being re-raised: the curses screen hides anything printed to stdout.
func SafeGo(logger *log.Logger, name string, fn func()) {
	go func() {
		defer logPanic(logger, name)
		fn()
	}()
}

// SafeGoWG is SafeGo for goroutines tracked by wg
func SafeGoWG(logger *log.Logger, wg *sync.WaitGroup, name string, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer logPanic(logger, name)
		fn()
	}()
}

func logPanic(logger *log.Logger, name string) {
	if r := recover(); r != nil {
		logger.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
		panic(r)
	}
}
