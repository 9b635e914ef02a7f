package provider

import (
	"net/http"

	"github.com/openrdap/rdap"
)

// IPLookup is the slice of the RDAP client the enricher needs.
type IPLookup interface {
	QueryIP(ip string) (*rdap.IPNetwork, error)
}

// RDAPEnricher resolves the registered network name for an IP through RDAP,
// used as a best-effort vendor fallback for host records. Every failure is
// swallowed: enrichment must never degrade a response.
type RDAPEnricher struct {
	Lookup IPLookup
}

// NewRDAPEnricher builds an enricher backed by the bootstrap RDAP client.
func NewRDAPEnricher() *RDAPEnricher {
	return &RDAPEnricher{
		Lookup: &rdap.Client{
			HTTP: &http.Client{Timeout: DefaultTimeout},
		},
	}
}

// Vendor returns the RDAP network name for ip, or "" when unavailable.
func (e *RDAPEnricher) Vendor(ip string) string {
	if e == nil || e.Lookup == nil || ip == "" {
		return ""
	}
	network, err := e.Lookup.QueryIP(ip)
	if err != nil || network == nil {
		return ""
	}
	return network.Name
}
