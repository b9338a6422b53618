// Package workload provides named operations that can be handed to the
// latency probe. Each workload binds its arguments ahead of time so that the
// probe only ever sees a zero-argument probe.Operation.
package workload

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shivanshkc/p99probe/pkg/probe"
)

var (
	// ErrUnknownWorkload is returned by New for names that are not registered.
	ErrUnknownWorkload = errors.New("unknown workload")
	// ErrMissingURL is returned when the http workload is built without a target.
	ErrMissingURL = errors.New("a URL is required for the http workload")
)

// Config holds the arguments that workloads bind before measurement begins.
type Config struct {
	// X and Y are the operands of the add workload.
	X, Y int
	// PayloadSize is the input size in bytes for the sha256, json and sort workloads.
	PayloadSize int
	// Sleep is the pause taken by each call of the sleep workload.
	Sleep time.Duration
	// URL is the target of the http workload.
	URL string
	// Timeout bounds each request of the http workload.
	Timeout time.Duration
}

// DefaultConfig mirrors the flag defaults of the CLI.
func DefaultConfig() Config {
	return Config{
		X:           1,
		Y:           2,
		PayloadSize: 64,
		Sleep:       50 * time.Microsecond,
		Timeout:     5 * time.Second,
	}
}

// Instance is a workload bound to its arguments, ready to be measured.
type Instance struct {
	// Op is the operation to pass to the probe.
	Op probe.Operation

	// failure records the first error seen by Op, if the workload can fail.
	failure *firstError
	// closer releases resources held by the workload.
	closer func()
}

// Err returns the first failure observed by Op, or nil.
func (i Instance) Err() error {
	if i.failure == nil {
		return nil
	}
	return i.failure.err
}

// Failures returns how many calls of Op failed.
func (i Instance) Failures() int {
	if i.failure == nil {
		return 0
	}
	return i.failure.count
}

// Close releases any resources held by the workload. It is safe to call on
// every Instance.
func (i Instance) Close() {
	if i.closer != nil {
		i.closer()
	}
}

// firstError keeps the first error it is given and counts the rest.
// Operations run on the probe's single goroutine, so no locking is needed.
type firstError struct {
	err   error
	count int
}

func (f *firstError) record(err error) {
	f.count++
	if f.err == nil {
		f.err = err
	}
}

// factory builds an Instance from a Config.
type factory func(cfg Config) (Instance, error)

// entry is a registered workload.
type entry struct {
	description string
	build       factory
}

// registry holds every known workload by name.
var registry = map[string]entry{
	"add":    {description: "Adds two bound integers (the smallest possible hot path).", build: newAdd},
	"sha256": {description: "Hashes a bound payload with SHA-256.", build: newSHA256},
	"json":   {description: "Marshals a bound struct with a payload to JSON.", build: newJSON},
	"sort":   {description: "Copies and sorts a bound slice of integers.", build: newSort},
	"sleep":  {description: "Sleeps for a bound duration (exercises scheduler jitter).", build: newSleep},
	"http":   {description: "Issues a GET request against a bound URL.", build: newHTTP},
}

// Names returns the registered workload names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Describe returns the one-line description of a workload.
func Describe(name string) (string, error) {
	e, ok := registry[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownWorkload, name)
	}
	return e.description, nil
}

// New binds the named workload to the given configuration.
func New(name string, cfg Config) (Instance, error) {
	e, ok := registry[name]
	if !ok {
		return Instance{}, fmt.Errorf("%w: %q", ErrUnknownWorkload, name)
	}

	instance, err := e.build(cfg)
	if err != nil {
		return Instance{}, fmt.Errorf("failed to build workload %q: %w", name, err)
	}
	return instance, nil
}
