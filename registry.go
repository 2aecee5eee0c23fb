package visux

import (
	"sync"
)

// Registry is the process-wide GraphManager, set by Initialize.
var Registry *GraphManager
var registryLock sync.Mutex

// Initialize constructs the process-wide GraphManager. Only the first call
// does anything; later calls return the existing instance and ignore their
// options.
func Initialize(options ...ManagerOption) *GraphManager {
	registryLock.Lock()
	defer registryLock.Unlock()

	if Registry == nil {
		Registry = NewGraphManager(options...)
		log.Debugf("graph registry initialized")
	}

	return Registry
}

func IsEnabled() bool {
	registryLock.Lock()
	defer registryLock.Unlock()

	return Registry != nil
}

// Cleanup tears down the process-wide GraphManager so that the next
// Initialize starts from scratch.
func Cleanup() {
	registryLock.Lock()
	defer registryLock.Unlock()

	if Registry != nil {
		Registry.Reset()
		Registry = nil
	}
}
