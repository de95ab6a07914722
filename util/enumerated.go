package util

import (
	"fmt"
	"sync"
)

// EnumSet assigns dense ids to values in order of first appearance
type EnumSet[T comparable] struct {
	mu     sync.RWMutex
	Enum   map[T]int
	Index  []T
	Frozen bool
}

func NewEnumSet[T comparable](capacity int) *EnumSet[T] {
	return &EnumSet[T]{
		Enum:  make(map[T]int, capacity),
		Index: make([]T, 0, capacity),
	}
}

// Add returns the id of value and whether it was new
func (e *EnumSet[T]) Add(value T) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	enum, exists := e.Enum[value]
	if exists {
		return enum, false
	}
	if e.Frozen {
		panic(fmt.Sprintf("Cannot add value %v to frozen enum set", value))
	}
	enum = len(e.Index)
	e.Enum[value] = enum
	e.Index = append(e.Index, value)
	return enum, true
}

// Lookup adds value unless the set is frozen, in which case unknown values
// get -1
func (e *EnumSet[T]) Lookup(value T) int {
	if e.IsFrozen() {
		if enum, exists := e.IndexOf(value); exists {
			return enum
		}
		return -1
	}
	enum, _ := e.Add(value)
	return enum
}

func (e *EnumSet[T]) IndexOf(value T) (int, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	enum, exists := e.Enum[value]
	return enum, exists
}

func (e *EnumSet[T]) ValueOf(index int) T {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if index < 0 {
		panic("Negative index requested")
	}
	if len(e.Index) <= index {
		panic("Unknown index requested: " + fmt.Sprintf("%v of %v", index, len(e.Index)))
	}
	return e.Index[index]
}

func (e *EnumSet[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.Index)
}

func (e *EnumSet[T]) Freeze() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Frozen = true
}

func (e *EnumSet[T]) IsFrozen() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.Frozen
}
