package cache

import (
	"fmt"
	"unicode/utf8"

	"github.com/vmihailenco/msgpack/v5"
)

// AdmissionPolicy decides whether a key/value pair may be stored at all,
// independent of how full the cache is.
//
// Admit must not have side effects visible to the cache and must be safe to
// call from multiple goroutines at once: one policy may be shared by several
// caches.
type AdmissionPolicy[K comparable, V any] interface {
	Admit(key K, value V) bool
}

// AdmissionPolicyFunc adapts an ordinary function to AdmissionPolicy.
type AdmissionPolicyFunc[K comparable, V any] func(key K, value V) bool

func (f AdmissionPolicyFunc[K, V]) Admit(key K, value V) bool {
	return f(key, value)
}

// AdmitAll admits every pair. It is used when no policy is configured.
type AdmitAll[K comparable, V any] struct{}

func (AdmitAll[K, V]) Admit(K, V) bool {
	return true
}

type allOf[K comparable, V any] []AdmissionPolicy[K, V]

// AllOf returns a policy admitting a pair only if every given policy admits
// it. Policies are consulted in order and evaluation stops at the first
// rejection. With no policies everything is admitted.
func AllOf[K comparable, V any](policies ...AdmissionPolicy[K, V]) AdmissionPolicy[K, V] {
	p := make(allOf[K, V], 0, len(policies))
	for _, policy := range policies {
		if policy != nil {
			p = append(p, policy)
		}
	}
	return p
}

func (p allOf[K, V]) Admit(key K, value V) bool {
	for _, policy := range p {
		if !policy.Admit(key, value) {
			return false
		}
	}
	return true
}

// DisplayLengthPolicy admits values whose textual form, as produced by
// fmt.Sprint, has at most MaxChars characters. Characters are counted as
// runes, not bytes. A negative MaxChars admits nothing.
type DisplayLengthPolicy[K comparable, V any] struct {
	MaxChars int
}

func NewDisplayLengthPolicy[K comparable, V any](maxChars int) *DisplayLengthPolicy[K, V] {
	return &DisplayLengthPolicy[K, V]{MaxChars: maxChars}
}

func (p *DisplayLengthPolicy[K, V]) Admit(_ K, value V) bool {
	return utf8.RuneCountInString(fmt.Sprint(value)) <= p.MaxChars
}

// EncodedSizePolicy admits values whose msgpack encoding is at most MaxBytes
// long. Values that cannot be encoded are rejected.
type EncodedSizePolicy[K comparable, V any] struct {
	MaxBytes int
}

func NewEncodedSizePolicy[K comparable, V any](maxBytes int) *EncodedSizePolicy[K, V] {
	return &EncodedSizePolicy[K, V]{MaxBytes: maxBytes}
}

func (p *EncodedSizePolicy[K, V]) Admit(_ K, value V) bool {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return false
	}
	return len(data) <= p.MaxBytes
}
