// Package config handles configuration loading for itemdesk.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from ITEMDESK_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/itemdesk/config.yaml
//  3. ~/.config/itemdesk/config.yaml
//
// A missing file is not an error; the defaults apply. Files with a .toml
// extension are read as TOML, everything else as YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	server:
//	  base_url: "${CATALOG_URL}"
//
// ITEMDESK_SERVER, when set, replaces server.base_url after the file is read.
//
// # Configuration Sections
//
//	server:
//	  base_url: "http://localhost:8000"
//	  timeout: "10s"
//
//	credentials:
//	  backend: "file"     # file, sqlite, memory
//	  path: ""            # default: $XDG_CONFIG_HOME/itemdesk/credentials.yaml
//
//	session:
//	  redirect_delay: "500ms"
//
//	logging:
//	  level: "warn"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// The same keys in TOML:
//
//	[server]
//	base_url = "http://localhost:8000"
//	timeout = "10s"
//
// # Usage
//
//	cfg, err := config.Load(config.Path())
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
