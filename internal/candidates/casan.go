package candidates

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"

	"github.com/go-esd/esd/internal/dnsclient"
)

// CASubdomains resolves www.<apex>, opens TLS on port 443, and returns
// every SAN hostname that ends with ".<apex>" and is not a wildcard entry,
// re-relativized to apex (§4.2). Hostname verification is intentionally
// skipped — a mis-served certificate presented under the wrong name is
// exactly the intelligence this source is after (§9) — but the chain must
// still validate against the system root CA set, so verification is
// reimplemented manually without the hostname check Go's default
// VerifyHostname would otherwise perform.
func CASubdomains(ctx context.Context, apex string, probe *dnsclient.Probe) []string {
	if probe == nil {
		return nil
	}
	ips := probe.QueryA(ctx, "www."+apex)
	if len(ips) == 0 {
		return nil
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(ips[0], "443"))
	if err != nil {
		return nil
	}
	defer conn.Close()

	tlsConn := tls.Client(conn, &tls.Config{
		ServerName:         "www." + apex,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: true,
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			return verifyChainIgnoringHostname(rawCerts)
		},
	})
	defer tlsConn.Close()

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		// TlsError (§7): abort only this source, the run continues.
		return nil
	}

	state := tlsConn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil
	}
	cert := state.PeerCertificates[0]
	return filterSANs(cert.DNSNames, apex)
}

// filterSANs keeps every SAN hostname under apex, excludes wildcard
// entries, and re-relativizes the survivors to apex-relative labels.
func filterSANs(dnsNames []string, apex string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, san := range dnsNames {
		host := strings.ToLower(strings.TrimSuffix(san, "."))
		if strings.HasPrefix(host, "*") {
			continue
		}
		if !strings.HasSuffix(host, "."+apex) && host != apex {
			continue
		}
		sub := strings.TrimSuffix(host, apex)
		sub = strings.TrimSuffix(sub, ".")
		if sub == "" {
			continue
		}
		if _, found := seen[sub]; found {
			continue
		}
		seen[sub] = struct{}{}
		out = append(out, sub)
	}
	return out
}

// verifyChainIgnoringHostname validates the certificate chain against the
// system root CA set without checking that it was issued for the name
// dialed — the purpose of CA SAN mining is intelligence, not trust (§9).
func verifyChainIgnoringHostname(rawCerts [][]byte) error {
	if len(rawCerts) == 0 {
		return errors.New("candidates: no peer certificate presented")
	}

	certs := make([]*x509.Certificate, len(rawCerts))
	for i, raw := range rawCerts {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return err
		}
		certs[i] = cert
	}

	intermediates := x509.NewCertPool()
	for _, cert := range certs[1:] {
		intermediates.AddCert(cert)
	}

	_, err := certs[0].Verify(x509.VerifyOptions{
		Intermediates: intermediates,
	})
	return err
}
