// Package parallel runs bounded fan-out loops sized to the host CPU.
package parallel

import (
	"fmt"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// Workers is the default concurrency limit: one goroutine per logical core.
func Workers() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	return 1
}

// Describe reports the CPU the process runs on.
func Describe() string {
	return fmt.Sprintf("%s (%d physical / %d logical cores, AVX2: %v)",
		cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores, cpuid.CPU.Supports(cpuid.AVX2))
}

// ForEach calls body for every i in [0, length) with at most limit calls in
// flight. A non-positive limit means 1.
func ForEach(length, limit int, body func(i int)) {
	if limit <= 0 {
		limit = 1
	}
	if length <= 0 {
		return
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	wg.Add(length)

	for i := 0; i < length; i++ {
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			body(i)
		}(i)
	}

	wg.Wait()
}

// ForEachErr is ForEach for bodies that can fail. It returns the error of
// the lowest index that failed; every index is still visited.
func ForEachErr(length, limit int, body func(i int) error) error {
	errs := make([]error, max(length, 0))
	ForEach(length, limit, func(i int) {
		errs[i] = body(i)
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
