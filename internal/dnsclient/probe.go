// Package dnsclient implements DnsProbe: a single-query resolver bound to
// a chosen nameserver, with a retry policy that classifies errors the way
// the teacher resolver (github.com/caffix/resolve) does in retries.go —
// absence is terminal, everything else is retried up to a budget.
package dnsclient

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/ratelimit"

	"github.com/go-esd/esd/internal/model"
)

// DefaultTimeout is the per-query timeout used when none is configured.
const DefaultTimeout = 3 * time.Second

// DefaultMaxQPS bounds per-resolver query rate when the caller doesn't
// override it. Grounded on the teacher resolver pool's SetMaxQPS
// (resolvers.go) and the original source's own caution that sending too
// many concurrent lookups at one nameserver drives up its error rate.
const DefaultMaxQPS = 200

// MaxAttempts is the retry budget for transient errors (§4.1: "up to 3 attempts").
const MaxAttempts = 3

// ErrClass classifies the outcome of a DNS exchange.
type ErrClass int

const (
	// ClassNone indicates a successful answer.
	ClassNone ErrClass = iota
	// ClassAbsence is NXDOMAIN or NODATA: the name is simply absent, no retry.
	ClassAbsence
	// ClassTransient covers timeouts, SERVFAIL, REFUSED, and connection errors: retried.
	ClassTransient
)

// Probe implements DnsProbe.query(name, rtype) -> ip-set | None against a
// single configured nameserver.
type Probe struct {
	Nameserver string
	Timeout    time.Duration
	Stats      *model.RunStats
	Limiter    ratelimit.Limiter
}

// New returns a Probe bound to the given "ip:port" or bare-IP nameserver address.
func New(nameserver string, timeout time.Duration, stats *model.RunStats) *Probe {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if _, _, err := net.SplitHostPort(nameserver); err != nil {
		nameserver = net.JoinHostPort(nameserver, "53")
	}
	return &Probe{Nameserver: nameserver, Timeout: timeout, Stats: stats}
}

// SetMaxQPS bounds this probe's query rate, grounded on the teacher
// resolver pool's SetMaxQPS (resolvers.go): qps <= 0 clears the limiter.
func (p *Probe) SetMaxQPS(qps int) {
	if qps <= 0 {
		p.Limiter = nil
		return
	}
	p.Limiter = ratelimit.New(qps)
}

// QueryA resolves the A record for name, returning a sorted, deduplicated
// ip-set on success, or nil if the name is absent or all retries failed.
func (p *Probe) QueryA(ctx context.Context, name string) []string {
	msg := exchangeForType(name, dns.TypeA)
	resp, class := p.exchangeWithRetry(ctx, msg)
	if class != ClassNone {
		return nil
	}
	var ips []string
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			ips = append(ips, a.A.String())
		}
	}
	if len(ips) == 0 {
		return nil
	}
	return model.SortedIPs(ips)
}

// QueryAAAA resolves the AAAA record for name.
func (p *Probe) QueryAAAA(ctx context.Context, name string) []string {
	msg := exchangeForType(name, dns.TypeAAAA)
	resp, class := p.exchangeWithRetry(ctx, msg)
	if class != ClassNone {
		return nil
	}
	var ips []string
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.AAAA); ok {
			ips = append(ips, a.AAAA.String())
		}
	}
	if len(ips) == 0 {
		return nil
	}
	return model.SortedIPs(ips)
}

// QueryTXT resolves the TXT record for name, returning the concatenated
// string payload of each record.
func (p *Probe) QueryTXT(ctx context.Context, name string) []string {
	msg := exchangeForType(name, dns.TypeTXT)
	resp, class := p.exchangeWithRetry(ctx, msg)
	if class != ClassNone {
		return nil
	}
	var out []string
	for _, rr := range resp.Answer {
		if t, ok := rr.(*dns.TXT); ok {
			out = append(out, strings.Join(t.Txt, ""))
		}
	}
	return out
}

// QuerySOA resolves the SOA record for name, returning [rname, mname] on success.
func (p *Probe) QuerySOA(ctx context.Context, name string) []string {
	msg := exchangeForType(name, dns.TypeSOA)
	resp, class := p.exchangeWithRetry(ctx, msg)
	if class != ClassNone {
		return nil
	}
	var out []string
	for _, rr := range resp.Answer {
		if soa, ok := rr.(*dns.SOA); ok {
			out = append(out, strings.TrimSuffix(soa.Ns, "."), strings.TrimSuffix(soa.Mbox, "."))
		}
	}
	return out
}

// QueryMX resolves the MX record for name, returning the exchange hosts.
func (p *Probe) QueryMX(ctx context.Context, name string) []string {
	msg := exchangeForType(name, dns.TypeMX)
	resp, class := p.exchangeWithRetry(ctx, msg)
	if class != ClassNone {
		return nil
	}
	var out []string
	for _, rr := range resp.Answer {
		if mx, ok := rr.(*dns.MX); ok {
			out = append(out, strings.TrimSuffix(mx.Mx, "."))
		}
	}
	return out
}

// QueryNS resolves the NS record for name.
func (p *Probe) QueryNS(ctx context.Context, name string) []string {
	msg := exchangeForType(name, dns.TypeNS)
	resp, class := p.exchangeWithRetry(ctx, msg)
	if class != ClassNone {
		return nil
	}
	var out []string
	for _, rr := range resp.Answer {
		if ns, ok := rr.(*dns.NS); ok {
			out = append(out, strings.TrimSuffix(ns.Ns, "."))
		}
	}
	return out
}

func exchangeForType(name string, qtype uint16) *dns.Msg {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true
	return msg
}

// exchangeWithRetry performs the exchange, retrying transient errors up to
// MaxAttempts and classifying the terminal outcome per §4.1.
func (p *Probe) exchangeWithRetry(ctx context.Context, msg *dns.Msg) (*dns.Msg, ErrClass) {
	client := &dns.Client{Net: "udp", Timeout: p.Timeout}

	var lastClass ErrClass
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ClassTransient
		default:
		}

		if p.Limiter != nil {
			p.Limiter.Take()
		}

		resp, _, err := client.ExchangeContext(ctx, msg, p.Nameserver)
		class := classify(resp, err)

		switch class {
		case ClassNone:
			return resp, ClassNone
		case ClassAbsence:
			return nil, ClassAbsence
		case ClassTransient:
			lastClass = ClassTransient
			continue
		}
	}
	if p.Stats != nil {
		p.Stats.IncDNSQueryErrors()
	}
	return nil, lastClass
}

// classify maps a raw exchange outcome onto the error taxonomy in §7:
// AbsenceError short-circuits retries, everything else is transient.
func classify(resp *dns.Msg, err error) ErrClass {
	if err != nil {
		return ClassTransient
	}
	if resp == nil {
		return ClassTransient
	}
	switch resp.Rcode {
	case dns.RcodeNameError:
		return ClassAbsence
	case dns.RcodeSuccess:
		if len(resp.Answer) == 0 {
			return ClassAbsence
		}
		return ClassNone
	case dns.RcodeRefused, dns.RcodeServerFailure, dns.RcodeFormatError, dns.RcodeNotImplemented:
		return ClassTransient
	default:
		return ClassTransient
	}
}

// String renders the error class for logging.
func (c ErrClass) String() string {
	switch c {
	case ClassAbsence:
		return "absence"
	case ClassTransient:
		return "transient"
	default:
		return "none"
	}
}

// HealthCheck sends a single A query for name against the nameserver and
// reports whether a response (of any rcode) was received before ctx/timeout
// expires. Used to drop unreachable resolvers during pool setup (§4.8 step 1).
func (p *Probe) HealthCheck(ctx context.Context, name string) bool {
	msg := exchangeForType(name, dns.TypeA)
	client := &dns.Client{Net: "udp", Timeout: p.Timeout}
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	resp, _, err := client.ExchangeContext(ctx, msg, p.Nameserver)
	return err == nil && resp != nil
}
