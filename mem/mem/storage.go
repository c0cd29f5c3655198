package mem

import (
	"errors"
	"sync"
)

// Defines the size of different units.
const (
	KB uint64 = 1 << 10
	MB uint64 = 1 << 20
	GB uint64 = 1 << 30
)

// A Storage is a piece of flat, byte-addressable memory.
type Storage struct {
	sync.Mutex
	Capacity uint64
	data     []byte
}

// NewStorage creates a storage object with the specified capacity, in bytes.
func NewStorage(capacity uint64) *Storage {
	s := &Storage{
		Capacity: capacity,
		data:     make([]byte, capacity),
	}

	return s
}

// Read returns a copy of size bytes starting at address.
func (s *Storage) Read(address, size uint64) ([]byte, error) {
	s.Lock()
	defer s.Unlock()

	if address+size > s.Capacity {
		return nil, errors.New("accessing storage out of bound")
	}

	res := make([]byte, size)
	copy(res, s.data[address:address+size])

	return res, nil
}

// Write stores data at the given address.
func (s *Storage) Write(address uint64, data []byte) error {
	s.Lock()
	defer s.Unlock()

	if address+uint64(len(data)) > s.Capacity {
		return errors.New("accessing storage out of bound")
	}

	copy(s.data[address:], data)

	return nil
}
