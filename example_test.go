package cache_test

import (
	"fmt"

	cache "github.com/mxcd/go-bounded-cache"
)

func ExampleBoundedCache() {
	c, err := cache.NewBoundedCache[string, string](&cache.BoundedCacheOptions[string, string]{
		Policy:      cache.NewDisplayLengthPolicy[string, string](8),
		MaxCapacity: 2,
	})
	if err != nil {
		panic(err)
	}

	fmt.Println(c.Insert("a", "this is longer than 8"), c.Len())
	fmt.Println(c.Insert("a", "short"), c.Len())
	fmt.Println(c.Insert("b", "small"), c.Len())
	fmt.Println(c.Insert("c", "tiny"), c.Len())
	fmt.Println(c.Keys())

	// Output:
	// false 0
	// true 1
	// true 2
	// true 2
	// [b c]
}

func ExampleAllOf() {
	policy := cache.AllOf[string, string](
		cache.NewDisplayLengthPolicy[string, string](16),
		cache.AdmissionPolicyFunc[string, string](func(key, _ string) bool {
			return key != ""
		}),
	)

	fmt.Println(policy.Admit("user:1", "alice"))
	fmt.Println(policy.Admit("", "alice"))

	// Output:
	// true
	// false
}
