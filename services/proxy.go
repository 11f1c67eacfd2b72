// ABOUTME: SSH+SOCKS5 jumpbox dialer for reaching vCenter behind a bastion
// ABOUTME: Parses ssh+socks5:// proxy URLs and lazily builds the tunnel dialer

package services

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cloudfoundry/socks5-proxy"
)

// DialContextFunc matches http.Transport.DialContext
type DialContextFunc func(ctx context.Context, network, address string) (net.Conn, error)

// proxyConfig is a parsed ssh+socks5:// proxy URL
type proxyConfig struct {
	username string
	host     string
	keyPath  string
}

// parseProxyURL parses ssh+socks5://user@host:port?private-key=/path/to/key
func parseProxyURL(allProxy string) (proxyConfig, error) {
	proxyURL, err := url.Parse(strings.TrimPrefix(allProxy, "ssh+"))
	if err != nil {
		return proxyConfig{}, fmt.Errorf("parsing proxy URL: %w", err)
	}
	if proxyURL.Scheme != "socks5" {
		return proxyConfig{}, fmt.Errorf("unsupported proxy scheme %q, expected ssh+socks5", proxyURL.Scheme)
	}
	if proxyURL.Host == "" {
		return proxyConfig{}, fmt.Errorf("proxy URL is missing a host")
	}

	queryMap, err := url.ParseQuery(proxyURL.RawQuery)
	if err != nil {
		return proxyConfig{}, fmt.Errorf("parsing proxy query params: %w", err)
	}

	cfg := proxyConfig{
		host:    proxyURL.Host,
		keyPath: queryMap.Get("private-key"),
	}
	if proxyURL.User != nil {
		cfg.username = proxyURL.User.Username()
	}
	if cfg.keyPath == "" {
		return proxyConfig{}, fmt.Errorf("proxy URL missing required 'private-key' query param")
	}
	return cfg, nil
}

// NewSOCKS5DialContextFunc returns a dialer that tunnels connections through
// an SSH jumpbox. The SSH session is established on first use and reused.
func NewSOCKS5DialContextFunc(allProxy string) (DialContextFunc, error) {
	cfg, err := parseProxyURL(allProxy)
	if err != nil {
		return nil, err
	}

	proxySSHKey, err := os.ReadFile(cfg.keyPath)
	if err != nil {
		return nil, fmt.Errorf("reading SSH private key %s: %w", cfg.keyPath, err)
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.RWMutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.RLock()
		haveDialer := dialer != nil
		mut.RUnlock()

		if haveDialer {
			return dialer(network, address)
		}

		mut.Lock()
		defer mut.Unlock()
		if dialer == nil {
			proxyDialer, err := socks5Proxy.Dialer(cfg.username, string(proxySSHKey), cfg.host)
			if err != nil {
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = proxyDialer
		}
		return dialer(network, address)
	}, nil
}
