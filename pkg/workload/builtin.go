package workload

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Sinks keep the compiler from eliminating the work of pure operations.
var (
	sinkInt   int
	sinkBytes []byte
	sinkHash  [sha256.Size]byte
)

func newAdd(cfg Config) (Instance, error) {
	x, y := cfg.X, cfg.Y
	return Instance{Op: func() { sinkInt = x + y }}, nil
}

func newSHA256(cfg Config) (Instance, error) {
	payload, err := makePayload(cfg.PayloadSize)
	if err != nil {
		return Instance{}, err
	}
	return Instance{Op: func() { sinkHash = sha256.Sum256(payload) }}, nil
}

// record is the value marshaled by the json workload.
type record struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	Payload   []byte    `json:"payload"`
}

func newJSON(cfg Config) (Instance, error) {
	payload, err := makePayload(cfg.PayloadSize)
	if err != nil {
		return Instance{}, err
	}

	value := record{
		ID:        42,
		Name:      "p99probe",
		Tags:      []string{"latency", "tail"},
		CreatedAt: time.Unix(1_700_000_000, 0).UTC(),
		Payload:   payload,
	}

	failure := &firstError{}
	op := func() {
		out, err := json.Marshal(value)
		if err != nil {
			failure.record(err)
			return
		}
		sinkBytes = out
	}
	return Instance{Op: op, failure: failure}, nil
}

func newSort(cfg Config) (Instance, error) {
	if cfg.PayloadSize <= 0 {
		return Instance{}, fmt.Errorf("payload size must be positive, got %d", cfg.PayloadSize)
	}

	// A fixed, reverse-ordered input keeps every call identical.
	input := make([]int, cfg.PayloadSize)
	for i := range input {
		input[i] = len(input) - i
	}
	scratch := make([]int, len(input))

	op := func() {
		copy(scratch, input)
		slices.Sort(scratch)
		sinkInt = scratch[0]
	}
	return Instance{Op: op}, nil
}

func newSleep(cfg Config) (Instance, error) {
	if cfg.Sleep < 0 {
		return Instance{}, fmt.Errorf("sleep duration must not be negative, got %s", cfg.Sleep)
	}
	d := cfg.Sleep
	return Instance{Op: func() { time.Sleep(d) }}, nil
}

// makePayload returns a deterministic payload of the given size.
func makePayload(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("payload size must be positive, got %d", size)
	}
	payload := make([]byte, size)
	for i := range payload {
		payload[i] = byte(i)
	}
	return payload, nil
}
