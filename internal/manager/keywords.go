package manager

import (
	"reflect"
	"strings"

	"github.com/shiftwave/lbsync/internal/lbapi"
)

const (
	sectionDiscovery   = "discovery"
	sectionHealthcheck = "healthcheck"
)

// fieldPath addresses one field of a server config, either a top-level
// scalar or one field of the discovery/healthcheck substructure. Fields are
// named by their json tag.
type fieldPath struct {
	section string
	field   string
}

// keywordFields maps every recognized config keyword onto the server config
// field it sets. target_lb, bind and dns_port never land in the config and
// are handled by the policy and synthesis code instead.
var keywordFields = map[string]fieldPath{
	"protocol":                     {field: "protocol"},
	"balance":                      {field: "balance"},
	"max_connections":              {field: "max_connections"},
	"client_idle_timeout":          {field: "client_idle_timeout"},
	"backend_idle_timeout":         {field: "backend_idle_timeout"},
	"backend_connection_timeout":   {field: "backend_connection_timeout"},
	"sni":                          {field: "sni"},
	"tls":                          {field: "tls"},
	"backends_tls":                 {field: "backends_tls"},
	"udp":                          {field: "udp"},
	"access":                       {field: "access"},
	"proxy_protocol":               {field: "proxy_protocol"},
	"discovery_failpolicy":         {section: sectionDiscovery, field: "failpolicy"},
	"discovery_kind":               {section: sectionDiscovery, field: "kind"},
	"discovery_srv_dns_protocol":   {section: sectionDiscovery, field: "srv_dns_protocol"},
	"discovery_srv_lookup_server":  {section: sectionDiscovery, field: "srv_lookup_server"},
	"discovery_srv_lookup_pattern": {section: sectionDiscovery, field: "srv_lookup_pattern"},
	"discovery_interval":           {section: sectionDiscovery, field: "interval"},
	"discovery_timeout":            {section: sectionDiscovery, field: "timeout"},
	"healthcheck_fails":            {section: sectionHealthcheck, field: "fails"},
	"healthcheck_passes":           {section: sectionHealthcheck, field: "passes"},
	"healthcheck_interval":         {section: sectionHealthcheck, field: "interval"},
	"healthcheck_kind":             {section: sectionHealthcheck, field: "kind"},
	"healthcheck_timeout":          {section: sectionHealthcheck, field: "timeout"},
}

// applyEnv overlays every recognized keyword present in env onto cfg.
func applyEnv(cfg *lbapi.ServerConfig, env map[string]string) {
	for keyword, value := range env {
		path, ok := keywordFields[keyword]
		if !ok {
			continue
		}

		setField(cfg, path, value)
	}
}

// setField resolves a field path against the config and sets the value.
func setField(cfg *lbapi.ServerConfig, path fieldPath, value string) {
	target := reflect.ValueOf(cfg).Elem()

	if path.section != "" {
		target = fieldByTag(target, path.section)
		if !target.IsValid() {
			return
		}
	}

	if field := fieldByTag(target, path.field); field.IsValid() {
		field.SetString(value)
	}
}

// fieldByTag finds the struct field carrying the given json tag name.
func fieldByTag(v reflect.Value, name string) reflect.Value {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if tag == name {
			return v.Field(i)
		}
	}

	return reflect.Value{}
}
