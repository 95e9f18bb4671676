package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"gopkg.in/ini.v1"
)

// credentialKeys are the accepted names of the API key entry, in lookup order.
// "dns_arvan_key" is what certbot-style credential files use.
var credentialKeys = []string{"dns_arvan_key", "arvan_key", "key"}

// LoadCredentials reads the ArvanCloud API key from an INI credentials file:
//
//	dns_arvan_key = <api key>
//
// A warning is logged when the file is readable by group or others.
func LoadCredentials(log logr.Logger, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("reading credentials file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("reading credentials file: %s is a directory", path)
	}
	if info.Mode().Perm()&0o077 != 0 {
		log.Info("credentials file is accessible by other users", "path", path, "mode", info.Mode().Perm().String())
	}

	file, err := ini.Load(path)
	if err != nil {
		return "", fmt.Errorf("parsing credentials file: %w", err)
	}

	section := file.Section(ini.DefaultSection)
	for _, name := range credentialKeys {
		if !section.HasKey(name) {
			continue
		}
		if v := strings.TrimSpace(os.ExpandEnv(section.Key(name).String())); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("credentials file %s: missing required entry %q", path, credentialKeys[0])
}
