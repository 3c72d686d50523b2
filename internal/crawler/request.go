package crawler

// Request is one fetch the controller wants performed.
//
// OriginDomain is fixed when the request is created from a seed and is
// copied unchanged to every request derived from it, so provenance
// survives the one allowed hop even if a redirect lands on a different
// host. Depth is 0 for seed pages and 1 for followed links; no request
// is ever created beyond depth 1.
type Request struct {
	// URL is the absolute URL to fetch.
	URL string

	// OriginDomain is the host of the seed this request traces back to.
	OriginDomain string

	// Depth is the hop depth from the seed.
	Depth int

	// Priority is an advisory scheduling hint: higher values should be
	// serviced first. Correctness never depends on fetch order, only
	// the budget accounting does.
	Priority int
}
