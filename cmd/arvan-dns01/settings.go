package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/yuriy-kovalchuk/arvan-dns01/internal/config"
	"github.com/yuriy-kovalchuk/arvan-dns01/internal/dns"
)

const defaultProvider = "arvan"

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath      string
	credentialsPath string
	secretRef       string
	secretKey       string
	namespace       string
	apiURL          string
	timeout         time.Duration
}

func (o *options) bindFlags(fs *pflag.FlagSet) {
	namespace := os.Getenv("POD_NAMESPACE")
	if namespace == "" {
		namespace = "default"
	}

	fs.StringVar(&o.configPath, "config", os.Getenv("DNS_PROVIDER_PATH"), "Path to the provider config YAML file (env DNS_PROVIDER_PATH)")
	fs.StringVar(&o.credentialsPath, "credentials", "", "Path to the ArvanCloud credentials INI file (dns_arvan_key = ...)")
	fs.StringVar(&o.secretRef, "credentials-secret", "", "Kubernetes Secret holding the API key, as namespace/name")
	fs.StringVar(&o.secretKey, "credentials-secret-key", config.DefaultSecretKey, "Data key of the API key inside the Secret")
	fs.StringVar(&o.namespace, "namespace", namespace, "Namespace used when --credentials-secret has no namespace")
	fs.StringVar(&o.apiURL, "api-url", "", "Override the ArvanCloud domains API base URL")
	fs.DurationVar(&o.timeout, "timeout", 0, "Per-request timeout (default 15s)")
}

// readerFunc builds the Kubernetes client used for Secret lookups. It is only
// called when a Secret reference is configured.
type readerFunc func() (client.Reader, error)

func kubeReader(scheme *runtime.Scheme) readerFunc {
	return func() (client.Reader, error) {
		cfg, err := ctrl.GetConfig()
		if err != nil {
			return nil, fmt.Errorf("loading kubeconfig: %w", err)
		}
		c, err := client.New(cfg, client.Options{Scheme: scheme})
		if err != nil {
			return nil, fmt.Errorf("creating kubernetes client: %w", err)
		}
		return c, nil
	}
}

// resolveSettings merges the provider config file, flags and credential
// sources into the settings handed to the provider factory. The API key is
// taken from the first source that has one: --credentials, --credentials-secret,
// the config file, ARVAN_API_KEY.
func (o *options) resolveSettings(ctx context.Context, log logr.Logger, newReader readerFunc) (string, map[string]string, error) {
	provider := defaultProvider
	settings := map[string]string{}

	if o.configPath != "" {
		cfg, err := config.LoadProviderConfigFromPath(o.configPath)
		if err != nil {
			return "", nil, fmt.Errorf("unable to load provider config: %w", err)
		}
		provider = cfg.Provider
		for k, v := range cfg.Settings {
			settings[k] = v
		}
		log.V(1).Info("loaded provider config", "path", o.configPath, "provider", provider)
	}

	if o.apiURL != "" {
		settings["base_url"] = o.apiURL
	}
	if o.timeout > 0 {
		settings["timeout"] = o.timeout.String()
	}

	switch {
	case o.credentialsPath != "":
		key, err := config.LoadCredentials(log, o.credentialsPath)
		if err != nil {
			return "", nil, err
		}
		settings["api_key"] = key
	case o.secretRef != "":
		ref, err := config.ParseSecretRef(o.secretRef, o.namespace)
		if err != nil {
			return "", nil, err
		}
		reader, err := newReader()
		if err != nil {
			return "", nil, err
		}
		key, err := config.LoadSecretCredentials(ctx, reader, ref, o.secretKey)
		if err != nil {
			return "", nil, err
		}
		settings["api_key"] = key
	case settings["api_key"] == "":
		settings["api_key"] = os.Getenv("ARVAN_API_KEY")
	}

	if strings.TrimSpace(settings["api_key"]) == "" {
		return "", nil, fmt.Errorf("no ArvanCloud API key: use --credentials, --credentials-secret, a provider config or ARVAN_API_KEY")
	}
	return provider, settings, nil
}

func (o *options) newAuthenticator(ctx context.Context, log logr.Logger, scheme *runtime.Scheme) (dns.Authenticator, error) {
	provider, settings, err := o.resolveSettings(ctx, log.WithName("setup"), kubeReader(scheme))
	if err != nil {
		return nil, err
	}
	auth, err := dns.NewAuthenticator(provider, log.WithName("dns-"+provider), settings)
	if err != nil {
		return nil, fmt.Errorf("unable to create DNS provider: %w", err)
	}
	return auth, nil
}

// challengeFromArgs builds the challenge from positional arguments, falling
// back to the variables certbot exports to manual hooks.
func challengeFromArgs(args []string, requireToken bool) (dns.Challenge, error) {
	arg := func(i int, env string) string {
		if i < len(args) && args[i] != "" {
			return args[i]
		}
		return os.Getenv(env)
	}

	ch := dns.Challenge{
		Domain: strings.TrimPrefix(arg(0, "CERTBOT_DOMAIN"), "*."),
		Token:  arg(2, "CERTBOT_VALIDATION"),
	}
	if ch.Domain == "" {
		return dns.Challenge{}, fmt.Errorf("missing domain: pass it as an argument or set CERTBOT_DOMAIN")
	}
	if len(args) > 1 && args[1] != "" {
		ch.ValidationName = dns.TrimFQDN(args[1])
	} else {
		ch.ValidationName = "_acme-challenge." + ch.Domain
	}
	if requireToken && ch.Token == "" {
		return dns.Challenge{}, fmt.Errorf("missing validation token: pass it as an argument or set CERTBOT_VALIDATION")
	}
	return ch, nil
}
