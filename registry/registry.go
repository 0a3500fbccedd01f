// Package registry operates the global registry of SMBus controller backends.
package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/hwdiag/smbusctl/components/smbus"
	"github.com/hwdiag/smbusctl/logging"
)

// A CreateController creates a controller from a given config.
type CreateController func(ctx context.Context, conf smbus.Config, logger logging.Logger) (smbus.Controller, error)

// ControllerRegistration stores how to build a backend's controller.
type ControllerRegistration struct {
	Constructor CreateController
}

var (
	controllerRegistryMu sync.RWMutex
	controllerRegistry   = map[string]ControllerRegistration{}
)

// RegisterController registers a backend name to a creator.
func RegisterController(backend string, creator ControllerRegistration) {
	controllerRegistryMu.Lock()
	defer controllerRegistryMu.Unlock()
	_, old := controllerRegistry[backend]
	if old {
		panic(errors.Errorf("trying to register two controllers with same backend %s", backend))
	}
	if creator.Constructor == nil {
		panic(errors.Errorf("cannot register a nil constructor for backend %s", backend))
	}
	controllerRegistry[backend] = creator
}

// ControllerLookup looks up a controller creator by the given backend. nil is returned if
// there is no creator registered.
func ControllerLookup(backend string) *ControllerRegistration {
	controllerRegistryMu.RLock()
	defer controllerRegistryMu.RUnlock()
	if registration, ok := controllerRegistry[backend]; ok {
		return &registration
	}
	return nil
}

// RegisteredBackends returns the sorted names of all registered backends.
func RegisteredBackends() []string {
	controllerRegistryMu.RLock()
	defer controllerRegistryMu.RUnlock()
	names := lo.Keys(controllerRegistry)
	sort.Strings(names)
	return names
}

// NewController builds the controller for conf.Backend. Every failure is a
// *smbus.ConstructionError.
func NewController(ctx context.Context, conf smbus.Config, logger logging.Logger) (smbus.Controller, error) {
	registration := ControllerLookup(conf.Backend)
	if registration == nil {
		return nil, &smbus.ConstructionError{
			Backend: conf.Backend,
			Err:     errors.Errorf("unknown backend, expected one of %v", RegisteredBackends()),
		}
	}
	controller, err := registration.Constructor(ctx, conf, logger.Sublogger(conf.Backend))
	if err != nil {
		return nil, &smbus.ConstructionError{Backend: conf.Backend, Err: err}
	}
	return controller, nil
}
