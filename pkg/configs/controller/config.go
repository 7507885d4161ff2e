package controller

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ControllerConfig is resolved in two steps: an optional YAML file gives the
// base values, then the environment contract below overrides them.
// Secret-backed values (API key, DB URI) normally arrive via environment only.
type ControllerConfig struct {
	ServerPort       string         `yaml:"port"`
	DidNamespace     string         `yaml:"didNamespace"`
	Domain           string         `yaml:"domain"`
	Traction         TractionConfig `yaml:"traction"`
	DBURI            string         `yaml:"dbURI"`
	VerifierEndpoint string         `yaml:"verifierEndpoint"`
	Workers          int            `yaml:"workers"`
}

type TractionConfig struct {
	APIEndpoint string `yaml:"apiEndpoint"`
	TenantID    string `yaml:"tenantId"`
	APIKey      string `yaml:"apiKey"`
}

const (
	DefaultServerPort = "8000"
	DefaultWorkers    = 4
)

// Environment variable names of the deployment contract.
const (
	EnvDidNamespace     = "DID_NAMESPACE"
	EnvTractionAPIKey   = "TRACTION_API_KEY"
	EnvTractionTenantID = "TRACTION_TENANT_ID"
	EnvTractionEndpoint = "TRACTION_API_ENDPOINT"
	EnvPostgresURI      = "POSTGRES_URI"
	EnvDomain           = "TRACEABILITY_CONTROLLER_DOMAIN"
	EnvVerifierEndpoint = "VERIFIER_ENDPOINT"
	EnvWorkers          = "WORKERS"
)

func LoadControllerConfig(filepath string) (*ControllerConfig, error) {
	if filepath == "" {
		return &ControllerConfig{}, nil
	}
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

func Unmarshal(conf []byte) (*ControllerConfig, error) {
	var out ControllerConfig
	if err := yaml.Unmarshal(conf, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResolveEnviron overrides config values from the environment.
// getenv is os.Getenv outside tests.
func (c *ControllerConfig) ResolveEnviron(getenv func(string) string) error {
	for _, bind := range []struct {
		env  string
		dest *string
	}{
		{EnvDidNamespace, &c.DidNamespace},
		{EnvTractionAPIKey, &c.Traction.APIKey},
		{EnvTractionTenantID, &c.Traction.TenantID},
		{EnvTractionEndpoint, &c.Traction.APIEndpoint},
		{EnvPostgresURI, &c.DBURI},
		{EnvDomain, &c.Domain},
		{EnvVerifierEndpoint, &c.VerifierEndpoint},
	} {
		if v := getenv(bind.env); v != "" {
			*bind.dest = v
		}
	}

	if v := getenv(EnvWorkers); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s is not an integer: %s", EnvWorkers, v)
		}
		c.Workers = workers
	}

	return nil
}

// Validate fills defaults and rejects configs which cannot start the server.
// The error names the environment variable that is missing.
func (c *ControllerConfig) Validate() error {
	if c.ServerPort == "" {
		c.ServerPort = DefaultServerPort
	}
	if port, err := strconv.Atoi(c.ServerPort); err != nil || port <= 0 {
		return fmt.Errorf("port must be a positive integer: %s", c.ServerPort)
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.Workers < 0 {
		return fmt.Errorf("%s must be positive: %d", EnvWorkers, c.Workers)
	}

	for _, required := range []struct {
		env   string
		value string
	}{
		{EnvDidNamespace, c.DidNamespace},
		{EnvTractionAPIKey, c.Traction.APIKey},
		{EnvTractionTenantID, c.Traction.TenantID},
		{EnvTractionEndpoint, c.Traction.APIEndpoint},
		{EnvPostgresURI, c.DBURI},
		{EnvDomain, c.Domain},
	} {
		if required.value == "" {
			return fmt.Errorf("required configuration is missing: %s", required.env)
		}
	}

	return nil
}

// DIDBase is the did:web prefix of every organization DID this controller
// manages: did:web:{domain}:{namespace} .
func (c *ControllerConfig) DIDBase() string {
	return "did:web:" + c.Domain + ":" + c.DidNamespace
}

// OrganizationDID returns the DID of the organization registered as label.
func (c *ControllerConfig) OrganizationDID(label string) string {
	return c.DIDBase() + ":" + label
}

// StatusListURL is the public URL where the signed status list credential
// of (label, listType) is served.
func (c *ControllerConfig) StatusListURL(label string, listType string) string {
	return fmt.Sprintf(
		"https://%s/%s/%s/credentials/status/%s",
		c.Domain, c.DidNamespace, label, listType,
	)
}
