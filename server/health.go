package server

import (
	"math"
	"runtime"
	"time"
)

var start = time.Now()

const megabyte float64 = 1 << 20

type healthStats struct {
	Uptime               int64   `json:"uptime"`
	AllocatedMemory      float64 `json:"allocated_memory"`
	TotalAllocatedMemory float64 `json:"total_allocated_memory"`
	Goroutines           int     `json:"goroutines"`
	GCCycles             uint32  `json:"gc_cycles"`
	NumberOfCPUs         int     `json:"number_of_cpus"`
	HeapSys              float64 `json:"heap_sys"`
	HeapAllocated        float64 `json:"heap_allocated"`
	ObjectsInUse         uint64  `json:"objects_in_use"`
	OSMemoryObtained     float64 `json:"os_memory_obtained"`
}

func getHealthStats() *healthStats {
	mem := &runtime.MemStats{}
	runtime.ReadMemStats(mem)

	return &healthStats{
		Uptime:               time.Now().Unix() - start.Unix(),
		AllocatedMemory:      toMegaBytes(mem.Alloc),
		TotalAllocatedMemory: toMegaBytes(mem.TotalAlloc),
		Goroutines:           runtime.NumGoroutine(),
		NumberOfCPUs:         runtime.NumCPU(),
		GCCycles:             mem.NumGC,
		HeapSys:              toMegaBytes(mem.HeapSys),
		HeapAllocated:        toMegaBytes(mem.HeapAlloc),
		ObjectsInUse:         mem.Mallocs - mem.Frees,
		OSMemoryObtained:     toMegaBytes(mem.Sys),
	}
}

func toMegaBytes(bytes uint64) float64 {
	return toFixed(float64(bytes)/megabyte, 2)
}

func toFixed(num float64, precision int) float64 {
	output := math.Pow(10, float64(precision))
	return float64(int(num*output+math.Copysign(0.5, num))) / output
}
