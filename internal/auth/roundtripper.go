package auth

import (
	"net/http"

	"catalog-report/internal/logging"
)

// SigningRoundTripper implements http.RoundTripper by adding the lookup API's
// signing parameters to the query string of every outgoing request.
type SigningRoundTripper struct {
	Signer *Signer
	Next   http.RoundTripper
}

// RoundTrip signs a clone of req and forwards it to Next.
func (rt *SigningRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	signed := req.Clone(req.Context())
	q := signed.URL.Query()
	rt.Signer.Apply(q)
	signed.URL.RawQuery = q.Encode()
	logging.Logf(logging.Debug, "Signing RT: signed request to %s%s", signed.URL.Host, signed.URL.Path)

	next := rt.Next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(signed)
}
