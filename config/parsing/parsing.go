package parsing

import (
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jxo-me/cfddns/config"
	"github.com/jxo-me/cfddns/core/service"
	"github.com/jxo-me/cfddns/core/source"
	"github.com/jxo-me/cfddns/internal/util"
	"github.com/jxo-me/cfddns/sdk/ddns/cloudflare"
	"github.com/jxo-me/cfddns/sdk/hook"
	xservice "github.com/jxo-me/cfddns/sdk/service"
	"github.com/jxo-me/cfddns/sdk/source/standalone"
	"github.com/jxo-me/cfddns/sdk/source/weblookup"
)

// BuildServices turns a parsed configuration into one updater service per
// domain across all accounts. All services share a single HTTP client
// carrying the proxy transport and the bounded call timeout.
func BuildServices(cfg config.Config, log *zerolog.Logger) ([]service.IDDNSService, error) {
	resolved, err := cfg.ResolveDomains()
	if err != nil {
		return nil, err
	}

	var proxyURL *url.URL
	if cfg.Proxy != nil {
		if proxyURL, err = cfg.Proxy.ProxyURL(); err != nil {
			return nil, err
		}
	}
	client := util.CreateHTTPClient(proxyURL, util.DefaultTimeout)

	var webhook *hook.Webhook
	if cfg.Webhook != nil && cfg.Webhook.WebhookURL != "" {
		webhook = hook.New(cfg.Webhook.WebhookURL, cfg.Webhook.WebhookRequestBody, cfg.Webhook.WebhookHeaders, client, *log)
	}

	seen := make(map[string]bool, len(resolved))
	services := make([]service.IDDNSService, 0, len(resolved))
	for _, domain := range resolved {
		if seen[domain.Nickname] {
			return nil, errors.Errorf("duplicate domain nickname %q", domain.Nickname)
		}
		seen[domain.Nickname] = true

		src, err := buildSource(domain.Source, client)
		if err != nil {
			return nil, errors.Wrapf(err, "domain %q", domain.Nickname)
		}
		provider, err := cloudflare.New(domain.Token, domain.ZoneID, domain.RecordID, cloudflare.WithHTTPClient(client))
		if err != nil {
			return nil, errors.Wrapf(err, "domain %q", domain.Nickname)
		}
		services = append(services, xservice.NewUpdater(
			domain.Nickname, src, provider,
			domain.FreshInterval, domain.RetryInterval,
			domain.Hash(), webhook, *log,
		))
	}
	return services, nil
}

func buildSource(cfg config.IPSource, client *http.Client) (source.ISource, error) {
	switch cfg.Type {
	case config.SourceWebLookup:
		return weblookup.New(client), nil
	case config.SourceStandalone:
		return standalone.New(client, cfg.Server), nil
	default:
		return nil, errors.Errorf("unsupported ip_source type %q", cfg.Type)
	}
}
