// Command go_transcript is a YouTube transcript MCP server.
//
// Exposes three MCP tools: transcript_list, transcript_fetch, transcript_text.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/proxy"
	"github.com/anatolykoptev/go_transcript/internal/toolserver"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
	"github.com/anatolykoptev/go_transcript/internal/transport"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	if err := initEngine(); err != nil {
		slog.Error("engine init failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting go_transcript",
		slog.String("port", mcpPort),
		slog.String("transport", engine.Cfg.TransportName),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_transcript",
		Version: version,
	}, nil)

	toolserver.RegisterTools(server, engine.NewAPIFromConfig(engine.Cfg))
	slog.Info("tools registered", slog.Int("count", toolserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_transcript",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 120 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() error {
	c := engine.Config{
		TransportName: strings.ToLower(env.Str("TRANSPORT", "http")),
		Languages:     env.List("DEFAULT_LANGUAGES", "en"),
		FetchTimeout:  env.Duration("FETCH_TIMEOUT", 60*time.Second),
		MaxTextChars:  env.Int("MAX_TEXT_CHARS", 100000),
	}
	opts := []transport.Option{
		transport.WithTimeout(env.Duration("REQUEST_TIMEOUT", 15*time.Second)),
		transport.WithRateLimit(env.Float("RATE_LIMIT_RPS", 2)),
	}

	var (
		tr  transcript.Transport
		err error
	)
	switch c.TransportName {
	case "stealth":
		tr, err = newStealthTransport(opts)
	default:
		c.TransportName = "http"
		tr, err = newHTTPTransport(opts)
	}
	if err != nil {
		return err
	}
	c.Transport = tr

	engine.Init(c)
	return nil
}

// proxyConfig picks Webshare over a generic proxy when both are set.
// Returns nil when no proxy is configured.
func proxyConfig() (proxy.Config, error) {
	if user := env.Str("WEBSHARE_PROXY_USERNAME", ""); user != "" {
		w, err := proxy.NewWebshare(user, env.Str("WEBSHARE_PROXY_PASSWORD", ""),
			proxy.WithLocations(env.List("WEBSHARE_LOCATIONS", "")...),
			proxy.WithRetries(env.Int("WEBSHARE_RETRIES", proxy.DefaultWebshareRetries)),
		)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	httpURL, httpsURL := env.Str("PROXY_HTTP_URL", ""), env.Str("PROXY_HTTPS_URL", "")
	if httpURL == "" && httpsURL == "" {
		return nil, nil
	}
	g, err := proxy.NewGeneric(httpURL, httpsURL)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func newHTTPTransport(opts []transport.Option) (*transport.HTTP, error) {
	cfg, err := proxyConfig()
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		opts = append(opts, transport.WithProxy(cfg))
		slog.Info("proxy configured",
			slog.String("kind", cfg.Kind().String()),
			slog.Int("retries_when_blocked", cfg.RetriesWhenBlocked()))
	}
	return transport.NewHTTP(opts...)
}

func newStealthTransport(opts []transport.Option) (*transport.Stealth, error) {
	var sopts []stealth.ClientOption
	sopts = append(sopts, stealth.WithTimeout(15))

	for _, key := range []string{"PROXY_HTTP_URL", "PROXY_HTTPS_URL", "WEBSHARE_PROXY_USERNAME"} {
		if env.Str(key, "") != "" {
			slog.Warn("ignored with TRANSPORT=stealth, set WEBSHARE_API_KEY for a proxy pool", slog.String("env", key))
		}
	}

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			desc, err := proxy.NewWebsharePool(pool.Len(), env.Int("WEBSHARE_RETRIES", proxy.DefaultWebshareRetries))
			if err != nil {
				return nil, err
			}
			sopts = append(sopts, stealth.WithProxyPool(pool))
			opts = append(opts, transport.WithProxy(desc))
			slog.Info("proxy pool initialized",
				slog.Int("proxies", pool.Len()),
				slog.Int("retries_when_blocked", desc.RetriesWhenBlocked()))
		}
	}

	bc, err := stealth.NewClient(sopts...)
	if err != nil {
		return nil, err
	}
	slog.Info("stealth browser client initialized")
	return transport.NewStealth(bc, opts...), nil
}
