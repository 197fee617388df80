// Package memory keeps locator bytes from pushing the process into an OOM
// kill.
//
// Every resident preview and viewer locator holds the full encoded image in
// the Go heap, so heap size tracks cache occupancy. Two tools bound it:
//
//   - [ConfigureFromEnv] sets GOMEMLIMIT from the container limit at
//     startup, so the collector works harder before the limit is reached.
//   - [Monitor] samples heap usage and, when it crosses the critical water
//     mark, trims the preview cache to half its capacity and forces a
//     collection. Viewer locators are left alone: the window is small and
//     is what the user is looking at.
//
// # Environment Variables
//
//   - GOMEMLIMIT: standard Go variable. If set it wins and nothing else is
//     configured.
//   - MEMORY_LIMIT: container memory limit in bytes, typically injected by
//     the Kubernetes Downward API (resourceFieldRef limits.memory).
//   - MEMORY_RATIO: share of MEMORY_LIMIT given to the Go heap, between 0
//     and 1. Default 0.85. libvips allocates outside the Go heap, so lower
//     it when the native rasterizer is busy.
//
// # Usage
//
//	memory.ConfigureFromEnv()
//
//	monitor := memory.NewMonitor(memory.DefaultConfig(), manager)
//	monitor.Start()
//	defer monitor.Stop()
package memory
