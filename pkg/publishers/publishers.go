package publishers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/samvad-title-fetcher/internal/domain"
)

const (
	// Supported publisher types.
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeHTTP      = "http"
	TypeGCPPubSub = "gcp_pubsub"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// configFile represents the structure of the publishers configuration file.
type configFile struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// PublisherConfig represents a single publisher entry declared in config files.
type PublisherConfig struct {
	ID      string               `json:"id" yaml:"id"`
	Type    string               `json:"type" yaml:"type"`
	Enabled *bool                `json:"enabled" yaml:"enabled"`
	SQS     *SQSPublisherConfig  `json:"sqs" yaml:"sqs"`
	SNS     *SNSPublisherConfig  `json:"sns" yaml:"sns"`
	HTTP    *HTTPPublisherConfig `json:"http" yaml:"http"`
	GCP     *GCPPubSubConfig     `json:"gcp_pubsub" yaml:"gcp_pubsub"`
	Filter  Filter               `json:"filter" yaml:"filter"`
}

// AWSAuthConfig optionally pins static credentials and an endpoint override
// (LocalStack and friends). Empty values fall back to the default chain.
type AWSAuthConfig struct {
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
}

// SQSPublisherConfig holds AWS SQS specific settings.
type SQSPublisherConfig struct {
	QueueURL      string `json:"uri" yaml:"uri"`
	AWSAuthConfig `yaml:",inline"`
}

// SNSPublisherConfig holds AWS SNS specific settings.
type SNSPublisherConfig struct {
	TopicARN      string `json:"topic_arn" yaml:"topic_arn"`
	AWSAuthConfig `yaml:",inline"`
}

// GCPPubSubConfig holds Google Cloud Pub/Sub settings.
type GCPPubSubConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// HTTPPublisherConfig holds generic HTTP sink settings.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// ConfigRegistry holds the validated publisher definitions of one file. It
// is immutable once loaded.
type ConfigRegistry struct {
	publishers []PublisherConfig
	idx        map[string]int
}

// LoadRegistry loads the publisher registry from a YAML or JSON file. The
// extension picks the format; anything other than .json is read as YAML.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	var file configFile
	if err := decodeConfigFile(raw, filepath.Ext(path), &file); err != nil {
		return nil, err
	}
	if len(file.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	reg := &ConfigRegistry{idx: make(map[string]int, len(file.Publishers))}
	for i, entry := range file.Publishers {
		cfg := entry.normalized()
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := reg.idx[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		reg.idx[cfg.ID] = len(reg.publishers)
		reg.publishers = append(reg.publishers, cfg)
	}
	return reg, nil
}

// decodeConfigFile rejects unknown keys so typos in sink settings surface at
// startup.
func decodeConfigFile(raw []byte, ext string, out *configFile) error {
	if strings.EqualFold(strings.TrimSpace(ext), ".json") {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("decode json publishers: %w", err)
		}
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode yaml publishers: %w", err)
	}
	return nil
}

func (cfg PublisherConfig) normalized() PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	if cfg.Enabled == nil {
		on := true
		cfg.Enabled = &on
	}
	cfg.Filter = Filter{
		Outcomes:   lowerAll(cfg.Filter.Outcomes),
		Modes:      lowerAll(cfg.Filter.Modes),
		ErrorKinds: lowerAll(cfg.Filter.ErrorKinds),
	}

	if q := cfg.SQS; q != nil {
		cfg.SQS = &SQSPublisherConfig{QueueURL: strings.TrimSpace(q.QueueURL), AWSAuthConfig: q.AWSAuthConfig.trimmed()}
	}
	if t := cfg.SNS; t != nil {
		cfg.SNS = &SNSPublisherConfig{TopicARN: strings.TrimSpace(t.TopicARN), AWSAuthConfig: t.AWSAuthConfig.trimmed()}
	}
	if g := cfg.GCP; g != nil {
		cfg.GCP = &GCPPubSubConfig{
			ProjectID:       strings.TrimSpace(g.ProjectID),
			Topic:           strings.TrimSpace(g.Topic),
			CredentialsFile: strings.TrimSpace(g.CredentialsFile),
		}
	}
	if h := cfg.HTTP; h != nil {
		method := strings.ToUpper(strings.TrimSpace(h.Method))
		if method == "" {
			method = httpDefaultMethod
		}
		timeout := h.TimeoutSeconds
		if timeout <= 0 {
			timeout = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &HTTPPublisherConfig{
			URL:            strings.TrimSpace(h.URL),
			Method:         method,
			Headers:        cleanHeaders(h.Headers),
			TimeoutSeconds: timeout,
		}
	}
	return cfg
}

func lowerAll(in []string) []string {
	var out []string
	for _, v := range in {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (a AWSAuthConfig) trimmed() AWSAuthConfig {
	return AWSAuthConfig{
		Region:          strings.TrimSpace(a.Region),
		AccessKeyID:     strings.TrimSpace(a.AccessKeyID),
		SecretAccessKey: strings.TrimSpace(a.SecretAccessKey),
		Endpoint:        strings.TrimSpace(a.Endpoint),
	}
}

// cleanHeaders drops entries with a blank name or value.
func cleanHeaders(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validate checks the section matching cfg.Type.
func (cfg PublisherConfig) validate() error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}

	var missing []string
	require := func(field, value string) {
		if value == "" {
			missing = append(missing, cfg.Type+"."+field)
		}
	}

	switch cfg.Type {
	case "":
		return fmt.Errorf("type is required for publisher %q", cfg.ID)
	case TypeSQS:
		if cfg.SQS == nil {
			return fmt.Errorf("publisher %q: missing sqs section", cfg.ID)
		}
		require("uri", cfg.SQS.QueueURL)
		require("region", cfg.SQS.Region)
	case TypeSNS:
		if cfg.SNS == nil {
			return fmt.Errorf("publisher %q: missing sns section", cfg.ID)
		}
		require("topic_arn", cfg.SNS.TopicARN)
		require("region", cfg.SNS.Region)
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("publisher %q: missing http section", cfg.ID)
		}
		require("url", cfg.HTTP.URL)
	case TypeGCPPubSub:
		if cfg.GCP == nil {
			return fmt.Errorf("publisher %q: missing gcp_pubsub section", cfg.ID)
		}
		require("project_id", cfg.GCP.ProjectID)
		require("topic", cfg.GCP.Topic)
	default:
		return fmt.Errorf("publisher %q: unsupported type %q", cfg.ID, cfg.Type)
	}

	if len(missing) > 0 {
		return fmt.Errorf("publisher %q: required settings missing: %s", cfg.ID, strings.Join(missing, ", "))
	}
	return cfg.Filter.validate(cfg.ID)
}

var filterValues = map[string][]string{
	"outcomes":    {"success", "failure"},
	"modes":       {domain.ModeLive.String(), domain.ModeFixture.String()},
	"error_kinds": {domain.NotFound.String(), domain.Transport.String(), domain.Unreadable.String(), "malformed", "unknown"},
}

func (flt Filter) validate(id string) error {
	for field, values := range map[string][]string{
		"outcomes":    flt.Outcomes,
		"modes":       flt.Modes,
		"error_kinds": flt.ErrorKinds,
	} {
		for _, v := range values {
			if !slices.Contains(filterValues[field], v) {
				return fmt.Errorf("publisher %q: filter.%s: unknown value %q (want one of %s)",
					id, field, v, strings.Join(filterValues[field], ", "))
			}
		}
	}
	return nil
}

// ByID returns the publisher config by id.
func (r *ConfigRegistry) ByID(id string) (PublisherConfig, bool) {
	if r == nil {
		return PublisherConfig{}, false
	}
	i, ok := r.idx[strings.TrimSpace(id)]
	if !ok {
		return PublisherConfig{}, false
	}
	return r.publishers[i], true
}

// All returns a copy of every configured publisher in file order.
func (r *ConfigRegistry) All() []PublisherConfig {
	if r == nil {
		return nil
	}
	return append([]PublisherConfig(nil), r.publishers...)
}

// Enabled returns the publishers not switched off with enabled: false.
func (r *ConfigRegistry) Enabled() []PublisherConfig {
	var out []PublisherConfig
	for _, cfg := range r.All() {
		if cfg.IsEnabled() {
			out = append(out, cfg)
		}
	}
	return out
}

// IsEnabled reports the enabled flag, defaulting to true.
func (cfg PublisherConfig) IsEnabled() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}
