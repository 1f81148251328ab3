package candidates

import (
	"context"
	"strings"

	"github.com/miekg/dns"

	"github.com/go-esd/esd/internal/dnsclient"
)

// ZoneTransfer probes the first NS of apex with an AXFR request and
// returns every node name whose owner label differs from apex. Any
// failure (refused, timeout, no NS) is treated as ZoneTransferRefused
// (§7) — a normal outcome yielding an empty set, never an error.
func ZoneTransfer(ctx context.Context, apex string, nsProbe *dnsclient.Probe) []string {
	if nsProbe == nil {
		return nil
	}
	nameservers := nsProbe.QueryNS(ctx, apex)
	if len(nameservers) == 0 {
		return nil
	}

	ns := strings.TrimSuffix(nameservers[0], ".")
	nsIPs := nsProbe.QueryA(ctx, ns)
	if len(nsIPs) == 0 {
		return nil
	}

	transfer := new(dns.Transfer)
	msg := new(dns.Msg)
	msg.SetAxfr(dns.Fqdn(apex))

	conn, err := dns.DialTimeout("tcp", nsIPs[0]+":53", dnsclient.DefaultTimeout)
	if err != nil {
		return nil
	}
	defer conn.Close()
	transfer.Conn = conn

	env, err := transfer.In(msg, nsIPs[0]+":53")
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var names []string
	for e := range env {
		if e.Error != nil {
			return names
		}
		for _, rr := range e.RR {
			owner := strings.TrimSuffix(rr.Header().Name, ".")
			if owner == "" || strings.EqualFold(owner, apex) {
				continue
			}
			if _, found := seen[owner]; found {
				continue
			}
			seen[owner] = struct{}{}
			names = append(names, owner)
		}
	}
	return names
}
