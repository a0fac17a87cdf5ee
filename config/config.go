package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const ConfigFilePathENV = "CFDDNS_CONFIG_FILE_PATH"

// Global defaults applied when neither the domain nor the top level sets a
// value. Intervals are configured in seconds.
const (
	DefaultFreshIntervalSeconds int64 = 15 * 60
	DefaultRetryIntervalSeconds int64 = 5 * 60
)

// Supported ip_source types.
const (
	SourceWebLookup  = "weblookup"
	SourceStandalone = "standalone"
)

// IPSource selects how the current public address is discovered. The
// standalone type requires a server URL; weblookup takes no parameters.
type IPSource struct {
	Type   string `yaml:"type" json:"type" mapstructure:"type"`
	Server string `yaml:"server,omitempty" json:"server,omitempty" mapstructure:"server"`
}

// Proxy routes all outbound traffic (resolver and provider calls) through an
// http, https or socks5 proxy.
type Proxy struct {
	URL      string `yaml:"url" json:"url" mapstructure:"url"`
	Username string `yaml:"username,omitempty" json:"username,omitempty" mapstructure:"username"`
	Password string `yaml:"password,omitempty" json:"password,omitempty" mapstructure:"password"`
}

// ProxyURL parses the proxy settings into a URL suitable for
// http.Transport. Username and password must be set together.
func (p *Proxy) ProxyURL() (*url.URL, error) {
	u, err := url.Parse(p.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid proxy url %q", p.URL)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, errors.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	switch {
	case p.Username == "" && p.Password == "":
	case p.Username != "" && p.Password != "":
		u.User = url.UserPassword(p.Username, p.Password)
	default:
		return nil, errors.New("proxy username and password must be set together")
	}
	return u, nil
}

// Webhook fires after every update attempt for a changed address.
type Webhook struct {
	// Placeholders #{domain}, #{addr} and #{result} are replaced in both
	// the URL and the request body.
	WebhookURL string `yaml:"webhook_url" json:"webhook_url" mapstructure:"webhook_url"`
	// GET when empty, POST otherwise.
	WebhookRequestBody string `yaml:"webhook_request_body,omitempty" json:"webhook_request_body,omitempty" mapstructure:"webhook_request_body"`
	// One header per line, e.g. "Authorization: Bearer API_KEY".
	WebhookHeaders string `yaml:"webhook_headers,omitempty" json:"webhook_headers,omitempty" mapstructure:"webhook_headers"`
}

// Rotation configures log file rotation.
type Rotation struct {
	MaxSize    int  `yaml:"max_size,omitempty" json:"max_size,omitempty" mapstructure:"max_size"`
	MaxAge     int  `yaml:"max_age,omitempty" json:"max_age,omitempty" mapstructure:"max_age"`
	MaxBackups int  `yaml:"max_backups,omitempty" json:"max_backups,omitempty" mapstructure:"max_backups"`
	LocalTime  bool `yaml:"local_time,omitempty" json:"local_time,omitempty" mapstructure:"local_time"`
	Compress   bool `yaml:"compress,omitempty" json:"compress,omitempty" mapstructure:"compress"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level    string    `yaml:"level,omitempty" json:"level,omitempty" mapstructure:"level"`
	Format   string    `yaml:"format,omitempty" json:"format,omitempty" mapstructure:"format"`
	Output   string    `yaml:"output,omitempty" json:"output,omitempty" mapstructure:"output"`
	Rotation *Rotation `yaml:"rotation,omitempty" json:"rotation,omitempty" mapstructure:"rotation"`
}

// Domain is one record to keep in sync. Interval and source fields override
// the top-level defaults when set.
type Domain struct {
	// Nickname labels the domain in log output.
	Nickname string `yaml:"nickname" json:"nickname" mapstructure:"nickname"`
	// ID is the provider-assigned record id.
	ID string `yaml:"id" json:"id" mapstructure:"id"`
	// ZoneID is the provider zone containing the record.
	ZoneID        string    `yaml:"zone_id" json:"zone_id" mapstructure:"zone_id"`
	FreshInterval int64     `yaml:"fresh_interval,omitempty" json:"fresh_interval,omitempty" mapstructure:"fresh_interval"`
	RetryInterval int64     `yaml:"retry_interval,omitempty" json:"retry_interval,omitempty" mapstructure:"retry_interval"`
	IPSource      *IPSource `yaml:"ip_source,omitempty" json:"ip_source,omitempty" mapstructure:"ip_source"`
}

// Account groups domains updated with one API token.
type Account struct {
	Token   string   `yaml:"token" json:"token" mapstructure:"token"`
	Domains []Domain `yaml:"domains" json:"domains" mapstructure:"domains"`
}

// Config is the root of the configuration file.
type Config struct {
	FreshInterval int64      `yaml:"fresh_interval,omitempty" json:"fresh_interval,omitempty" mapstructure:"fresh_interval"`
	RetryInterval int64      `yaml:"retry_interval,omitempty" json:"retry_interval,omitempty" mapstructure:"retry_interval"`
	IPSource      *IPSource  `yaml:"ip_source,omitempty" json:"ip_source,omitempty" mapstructure:"ip_source"`
	Proxy         *Proxy     `yaml:"proxy,omitempty" json:"proxy,omitempty" mapstructure:"proxy"`
	Webhook       *Webhook   `yaml:"webhook,omitempty" json:"webhook,omitempty" mapstructure:"webhook"`
	Log           *LogConfig `yaml:"log,omitempty" json:"log,omitempty" mapstructure:"log"`
	Accounts      []Account  `yaml:"accounts" json:"accounts" mapstructure:"accounts"`
}

// ResolvedDomain is a domain with every inheritable field already merged
// with the global defaults. Resolution happens once at load time so nothing
// on the update path has to consult fallbacks.
type ResolvedDomain struct {
	Nickname      string
	RecordID      string
	ZoneID        string
	Token         string
	FreshInterval time.Duration
	RetryInterval time.Duration
	Source        IPSource
}

// Hash identifies the resolved settings, token included, so a reload can
// tell whether a running service needs replacing.
func (d ResolvedDomain) Hash() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%d|%d|%s|%s",
		d.Nickname, d.ZoneID, d.RecordID, d.Token,
		d.FreshInterval, d.RetryInterval, d.Source.Type, d.Source.Server)
	return hex.EncodeToString(h.Sum(nil))
}

func (d ResolvedDomain) validate() error {
	if d.Nickname == "" {
		return errors.New("domain nickname is required")
	}
	if d.RecordID == "" {
		return errors.Errorf("domain %q: id is required", d.Nickname)
	}
	if d.ZoneID == "" {
		return errors.Errorf("domain %q: zone_id is required", d.Nickname)
	}
	if d.Token == "" {
		return errors.Errorf("domain %q: account token is required", d.Nickname)
	}
	switch d.Source.Type {
	case SourceWebLookup:
	case SourceStandalone:
		if d.Source.Server == "" {
			return errors.Errorf("domain %q: standalone ip_source requires a server url", d.Nickname)
		}
		if _, err := url.Parse(d.Source.Server); err != nil {
			return errors.Wrapf(err, "domain %q: invalid standalone server url", d.Nickname)
		}
	default:
		return errors.Errorf("domain %q: unsupported ip_source type %q", d.Nickname, d.Source.Type)
	}
	return nil
}

// ResolveDomains flattens accounts into fully-resolved domains, applying the
// global defaults to every field a domain leaves unset.
func (c *Config) ResolveDomains() ([]ResolvedDomain, error) {
	freshDefault := c.FreshInterval
	if freshDefault <= 0 {
		freshDefault = DefaultFreshIntervalSeconds
	}
	retryDefault := c.RetryInterval
	if retryDefault <= 0 {
		retryDefault = DefaultRetryIntervalSeconds
	}
	sourceDefault := IPSource{Type: SourceWebLookup}
	if c.IPSource != nil {
		sourceDefault = *c.IPSource
	}

	var resolved []ResolvedDomain
	for _, account := range c.Accounts {
		for _, domain := range account.Domains {
			rd := ResolvedDomain{
				Nickname:      domain.Nickname,
				RecordID:      domain.ID,
				ZoneID:        domain.ZoneID,
				Token:         account.Token,
				FreshInterval: time.Duration(freshDefault) * time.Second,
				RetryInterval: time.Duration(retryDefault) * time.Second,
				Source:        sourceDefault,
			}
			if domain.FreshInterval > 0 {
				rd.FreshInterval = time.Duration(domain.FreshInterval) * time.Second
			}
			if domain.RetryInterval > 0 {
				rd.RetryInterval = time.Duration(domain.RetryInterval) * time.Second
			}
			if domain.IPSource != nil {
				rd.Source = *domain.IPSource
			}
			if err := rd.validate(); err != nil {
				return nil, err
			}
			resolved = append(resolved, rd)
		}
	}
	return resolved, nil
}

// Write serializes the configuration, used by the -output-format flag.
func (c *Config) Write(w io.Writer, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	case "yaml", "":
		return yaml.NewEncoder(w).Encode(c)
	default:
		return errors.Errorf("unsupported output format %q", format)
	}
}

// GetConfigFilePath returns the config file location, preferring the
// environment override.
func GetConfigFilePath() string {
	if path := os.Getenv(ConfigFilePathENV); path != "" {
		return path
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return ".cfddns.yaml"
	}
	return dir + string(os.PathSeparator) + ".cfddns.yaml"
}
