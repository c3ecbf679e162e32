package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/fastprodman/ledger/internal/services/ledger"
)

// Request headers read by the API. Authentication happens upstream; the
// gateway forwards the resolved identity in X-Actor.
const (
	HeaderActor         = "X-Actor"
	HeaderActorAdmin    = "X-Actor-Admin"
	HeaderForwardedFor  = "X-Forwarded-For"
	HeaderRealIP        = "X-Real-IP"
	HeaderGeoLocation   = "X-Geo-Location"
	headerUserAgentName = "User-Agent"
)

func actorFrom(r *http.Request) ledger.Actor {
	admin, _ := strconv.ParseBool(r.Header.Get(HeaderActorAdmin))

	return ledger.Actor{
		Name:  strings.TrimSpace(r.Header.Get(HeaderActor)),
		Admin: admin,
	}
}

func requesterFrom(r *http.Request) ledger.Requester {
	return ledger.Requester{
		IP:        clientIP(r),
		Location:  strings.TrimSpace(r.Header.Get(HeaderGeoLocation)),
		UserAgent: r.Header.Get(headerUserAgentName),
	}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// peer address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get(HeaderForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get(HeaderRealIP)); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
