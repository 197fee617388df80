/*
Package workers sizes and runs small worker pools in containerized
environments.

runtime.NumCPU reports the host's CPU count, while GOMAXPROCS follows the
container's CPU limit (Go 1.19+). The helpers here derive pool sizes from
GOMAXPROCS:

	workers.ForCPU(8)   // 1 per CPU, at most 8
	workers.ForIO(16)   // 2 per CPU, at most 16
	workers.ForMixed(12) // 1.5 per CPU, at most 12

Operators can pin the count with PROBE_WORKERS; the limit still applies.

Each runs a bounded pool over an index range, which is how the scanner
probes image headers:

	err := workers.Each(ctx, len(files), workers.ForIO(16), func(i int) {
		probe(files[i])
	})
*/
package workers
