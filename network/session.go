// Package network provides the TLS-fingerprinted HTTP session used by all site adapters.
//
// Each adapter owns exactly one Session. The session bundles the transport,
// cookie jar, and request pacing into a single object so that no anti-bot
// state ever crosses an adapter boundary.
//
// This implementation leverages refraction-networking/utls to emulate a
// Chrome Client Hello signature. Source sites fingerprint at the transport
// layer, not just on the User-Agent header, so a stock Go TLS handshake is
// rejected by challenges such as Cloudflare or DDoS-Guard.
//
// Fingerprint Selection:
// uTLS HelloChrome_120 is used as it provides a modern, stable fingerprint
// that matches prevalent browser traffic.
//
// Protocol Negotiation (ALPN):
// The session first attempts an HTTP/2 connection (preferred by modern
// CDNs). If the handshake fails or the server only supports HTTP/1.1, it
// transparently falls back to a standard H1 transport with forced protocol
// advertisement. Plain-HTTP URLs bypass the fingerprint dialer entirely.
package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/javsan-cli/javsan/constant"
	"github.com/javsan-cli/javsan/key"
	"github.com/javsan-cli/javsan/log"
	utls "github.com/refraction-networking/utls"
	"github.com/spf13/viper"
	"golang.org/x/net/http2"
)

// httpTimeout is the fixed per-request ceiling.
const httpTimeout = 30 * time.Second

// Session owns the HTTP transports, cookie jar, and pacing state for one
// site adapter. It is refreshed by WarmUp and lives for the adapter's
// process lifetime.
type Session struct {
	baseURL     string
	jar         http.CookieJar
	warmTargets []string
	warmOnce    sync.Once

	// h2 is tried first; h1 is the forced HTTP/1.1 fallback.
	h2 *http.Client
	h1 *http.Client
}

// NewSession constructs a session rooted at the adapter's base URL.
// The optional warm-up targets are visited once before the first substantive
// fetch; without any, the base URL itself is visited.
func NewSession(baseURL string, warmTargets ...string) *Session {
	// cookiejar.New only fails on invalid options; none are passed.
	jar, _ := cookiejar.New(nil)

	if len(warmTargets) == 0 {
		warmTargets = []string{baseURL}
	}

	s := &Session{
		baseURL:     baseURL,
		jar:         jar,
		warmTargets: warmTargets,
	}

	s.h2 = &http.Client{
		Timeout: httpTimeout,
		Jar:     jar,
		Transport: &http2.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialTLS(ctx, network, addr)
			},
		},
	}
	s.h1 = &http.Client{
		Timeout: httpTimeout,
		Jar:     jar,
		Transport: &http.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialTLSH1(ctx, network, addr)
			},
		},
	}

	return s
}

// BaseURL returns the root URL the session was constructed for.
func (s *Session) BaseURL() string {
	return s.baseURL
}

// WarmUp visits the session's warm-up targets once to populate cookies
// before the first substantive fetch. Failure is logged and non-fatal:
// subsequent fetches proceed without cookies rather than aborting the
// session. FetchHTML triggers this implicitly, so adapters only call it to
// front-load the delay.
func (s *Session) WarmUp(ctx context.Context) {
	s.warmOnce.Do(func() {
		for _, u := range s.warmTargets {
			if _, err := s.fetchPaced(ctx, u, ""); err != nil {
				log.Warnf("warm-up fetch of %s failed: %s", u, err)
				return
			}
		}
		log.Debugf("session for %s warmed up", s.baseURL)
	})
}

// FetchHTML performs a paced, fingerprinted GET and returns the body text.
// Only HTTP 200 yields content; any other status or transport error is a
// FetchError and the caller treats the page as unavailable. Redirects are
// followed transparently.
func (s *Session) FetchHTML(ctx context.Context, rawURL, referer string) (string, error) {
	s.WarmUp(ctx)
	return s.fetchPaced(ctx, rawURL, referer)
}

func (s *Session) fetchPaced(ctx context.Context, rawURL, referer string) (string, error) {
	if err := s.pace(ctx); err != nil {
		return "", err
	}

	resp, err := s.get(ctx, rawURL, referer)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}

	return string(body), nil
}

// Close releases idle connections held by the session's transports.
// Safe to call even if the session was never warmed up.
func (s *Session) Close() error {
	s.h2.CloseIdleConnections()
	s.h1.CloseIdleConnections()
	return nil
}

// get issues the request on the H2 transport first, then retries once on the
// forced-H1 transport. Browser-consistent headers accompany every request.
func (s *Session) get(ctx context.Context, rawURL, referer string) (*http.Response, error) {
	build := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", constant.UserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.5")
		if referer != "" {
			req.Header.Set("Referer", referer)
		}
		return req, nil
	}

	req, err := build()
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.h2.Do(req)
	if err == nil {
		return resp, nil
	}

	req, buildErr := build()
	if buildErr != nil {
		return nil, buildErr
	}

	resp, err = s.h1.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// pace sleeps for a randomized interval before every request. This throttle
// is part of the anti-bot discipline; it must not be skipped under load.
func (s *Session) pace(ctx context.Context) error {
	minMS := viper.GetInt(key.FetchDelayMinMS)
	maxMS := viper.GetInt(key.FetchDelayMaxMS)
	if maxMS < minMS {
		maxMS = minMS
	}

	delay := time.Duration(minMS) * time.Millisecond
	if spread := maxMS - minMS; spread > 0 {
		delay += time.Duration(rand.Intn(spread)) * time.Millisecond
	}
	if delay == 0 {
		return nil
	}

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dialTLS creates a TLS connection mimicking Chrome 120's fingerprint.
// Advertises both h2 and http/1.1 (natural Chrome behavior).
func dialTLS(ctx context.Context, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: httpTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	}, utls.HelloChrome_120)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}

// dialTLSH1 creates a TLS connection forcing HTTP/1.1 only (for fallback).
func dialTLSH1(ctx context.Context, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: httpTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
		NextProtos: []string{"http/1.1"},
	}, utls.HelloChrome_120)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
