package sim

import (
	"fmt"
	"os"
	"sync"
)

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A Component is an element that is being simulated.
type Component interface {
	Named
	Handler
	Hookable

	GetPortByName(name string) Port
	Ports() []Port
	NotifyRecv(port Port)
	NotifyPortFree(port Port)
}

// ComponentBase provides some functions that other component can use.
type ComponentBase struct {
	HookableBase
	sync.Mutex
	name  string
	ports map[string]Port
}

// NewComponentBase creates a new ComponentBase
func NewComponentBase(name string) *ComponentBase {
	c := new(ComponentBase)
	c.name = name
	c.ports = make(map[string]Port)
	return c
}

// Name returns the name of the BasicComponent
func (c *ComponentBase) Name() string {
	return c.name
}

// AddPort registers a port under the given name.
func (c *ComponentBase) AddPort(name string, port Port) Port {
	if _, found := c.ports[name]; found {
		panic("port " + name + " already exists on component " + c.name)
	}

	c.ports[name] = port

	return port
}

// GetPortByName returns the port by the name of the port.
func (c *ComponentBase) GetPortByName(name string) Port {
	port, found := c.ports[name]
	if !found {
		errMsg := fmt.Sprintf(
			"Port %s is not available on component %s.\n", name, c.name)
		errMsg += "Available ports include:\n"
		for n := range c.ports {
			errMsg += fmt.Sprintf("\t%s\n", n)
		}
		fmt.Fprint(os.Stderr, errMsg)

		panic("port not found")
	}

	return port
}

// Ports returns all the ports of the component.
func (c *ComponentBase) Ports() []Port {
	list := make([]Port, 0, len(c.ports))
	for _, p := range c.ports {
		list = append(list, p)
	}

	return list
}
