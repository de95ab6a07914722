package util

import (
	"log/slog"
	"runtime"
	. "unicode"
)

type RuneTester func(r rune) bool

func TestEach(t RuneTester, s string) byte {
	for _, r := range s {
		if t(r) {
			return 't'
		}
	}
	return 'f'
}

var Testers = []RuneTester{
	IsDigit,
	IsGraphic,
	IsLetter,
	IsLower,
	IsMark,
	IsNumber,
	IsPunct,
	IsSymbol,
	IsTitle,
	IsUpper,
}

// Signature is a character class fingerprint of s, one 't' or 'f' per
// tester
func Signature(s string) string {
	indicators := make([]byte, len(Testers))
	for i, t := range Testers {
		indicators[i] = TestEach(t, s)
	}
	return string(indicators)
}

// Prefix returns the first n runes of s
func Prefix(s string, n int) string {
	runes := []rune(s)
	return string(runes[:min(len(runes), n)])
}

// Suffix returns the last n runes of s
func Suffix(s string, n int) string {
	runes := []rune(s)
	return string(runes[max(len(runes)-n, 0):])
}

func LogMemory(log *slog.Logger) {
	s := &runtime.MemStats{}
	runtime.ReadMemStats(s)
	log.Info("memory",
		"alloc", s.Alloc,
		"mallocs", s.Mallocs,
		"frees", s.Frees,
		"heap_alloc", s.HeapAlloc,
		"heap_released", s.HeapReleased,
		"heap_objects", s.HeapObjects,
		"stack_inuse", s.StackInuse)
}
