package utils

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/miekg/dns"
)

var ErrInvalidHost = errors.New("invalid web address")

// NormalizeHost validates a traceroute target and returns it lowercased
// without the trailing root dot. IP literals are not accepted.
func NormalizeHost(host string) (string, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" || net.ParseIP(host) != nil {
		return "", ErrInvalidHost
	}

	labels, ok := dns.IsDomainName(host)
	// a bare label like "localhost" is not a web address
	if !ok || labels < 2 {
		return "", ErrInvalidHost
	}

	fqdn := dns.Fqdn(host)
	tld := dns.SplitDomainName(fqdn)
	if last := tld[len(tld)-1]; len(last) < 2 || strings.Trim(last, "abcdefghijklmnopqrstuvwxyz") != "" {
		return "", ErrInvalidHost
	}

	return strings.TrimSuffix(fqdn, "."), nil
}

func GetClientIP(r *http.Request) string {
	// Check X-Forwarded-For header
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
