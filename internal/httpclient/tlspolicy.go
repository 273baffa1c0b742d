package httpclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

const tlsGuidance = "certificate verification failed; point the system trust " +
	"store at your proxy's CA or set OPENMETEO_ALLOW_INSECURE=1 to bypass (not recommended)"

// GetJSONWithPolicy performs a GET like GetJSON but runs the TLS policy
// ladder on certificate-verification failure. The returned note is non-empty
// when a branch degraded security and the caller should annotate its output.
// This is the only method that honors the policy's bypass flags.
func (c *Client) GetJSONWithPolicy(ctx context.Context, endpoint string, query url.Values, headers map[string]string, out interface{}) (note string, err error) {
	// Branch: skip verification unconditionally when the operator opted in.
	if c.policy.AllowInsecure {
		return "", c.getJSONInsecure(ctx, endpoint, query, headers, out)
	}

	err = c.GetJSON(ctx, endpoint, query, headers, out)
	if err == nil || !isCertError(err) {
		return "", err
	}
	tlsErr := err

	// Branch: retry once without verification when the operator opted in.
	if c.policy.AutoAcceptUnverified {
		retryErr := c.getJSONInsecure(ctx, endpoint, query, headers, out)
		if retryErr == nil {
			c.log.Warnw("TLS verification failed, insecure retry accepted",
				"endpoint", endpoint)
			return "(insecure auto-accepted TLS)", nil
		}
		return "", fmt.Errorf("TLS error and insecure retry failed: %v (retry: %v)", tlsErr, retryErr)
	}

	// Branch: capture the server's leaf certificate for offline trust setup.
	if c.policy.CaptureChain {
		if capErr := c.captureLeafCertificate(endpoint); capErr != nil {
			return "", fmt.Errorf("TLS error and certificate capture failed: %v (capture: %v)", tlsErr, capErr)
		}
		return "", fmt.Errorf("TLS error; wrote server certificate to %q, add its issuing CA to a trusted bundle: %v", c.policy.ChainFile, tlsErr)
	}

	// Default branch: hard failure with guidance.
	return "", fmt.Errorf("%s: %w", tlsGuidance, tlsErr)
}

func (c *Client) getJSONInsecure(ctx context.Context, endpoint string, query url.Values, headers map[string]string, out interface{}) error {
	resp, err := c.doWith(ctx, c.insecure, func() (*http.Request, error) {
		return buildRequest(ctx, http.MethodGet, endpoint, query, nil, "", headers)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

// captureLeafCertificate dials the endpoint's host without verification and
// writes the presented leaf certificate to the configured chain file.
func (c *Client) captureLeafCertificate(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "443"
	}

	dialer := &tls.Dialer{
		Config: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- capture only, nothing is sent
	}
	dialCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := dialer.DialContext(dialCtx, "tcp", host+":"+port)
	if err != nil {
		return fmt.Errorf("dial %s: %w", host, err)
	}
	defer conn.Close()

	certs := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return fmt.Errorf("no peer certificates presented by %s", host)
	}

	f, err := os.Create(c.policy.ChainFile)
	if err != nil {
		return fmt.Errorf("create chain file: %w", err)
	}
	defer f.Close()

	if err := pem.Encode(f, &pem.Block{Type: "CERTIFICATE", Bytes: certs[0].Raw}); err != nil {
		return fmt.Errorf("encode certificate: %w", err)
	}
	return nil
}
