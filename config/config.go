package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

// Config - Global variable to export
var Config AppConfig

// AppConfig defines
type AppConfig struct {
	Server   ServerConfig   `koanf:"server"`
	Analyzer AnalyzerConfig `koanf:"analyzer"`
	Report   ReportConfig   `koanf:"report"`
}

// ServerConfig defines HTTP server configurations
type ServerConfig struct {
	Port  int  `koanf:"port" validate:"min=1,max=65535"`
	Debug bool `koanf:"debug"`
	// Edition switches deployment-specific defaults, e.g. "production".
	Edition string `koanf:"edition"`
}

// AnalyzerConfig is the text analyzer function the web proxy forwards to.
type AnalyzerConfig struct {
	URL           string `koanf:"url" validate:"omitempty,url"`
	ProductionURL string `koanf:"productionurl" validate:"url"`
	LocalURL      string `koanf:"localurl" validate:"url"`
}

// ReportConfig is where run reports are written.
type ReportConfig struct {
	Dir   string      `koanf:"dir" validate:"required"`
	Minio MinioConfig `koanf:"minio"`
}

// MinioConfig is the optional bucket reports are copied to.
type MinioConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Bucket   string `koanf:"bucket" validate:"required"`
	Secure   bool   `koanf:"secure"`
}

// Enabled reports whether a MinIO host is configured.
func (c MinioConfig) Enabled() bool {
	return c.Host != ""
}

// FunctionURL returns the analyzer URL to forward to: the configured one,
// else the production or local default depending on the edition.
func (c AppConfig) FunctionURL() string {
	if c.Analyzer.URL != "" {
		return c.Analyzer.URL
	}
	if c.Server.Edition == "production" {
		return c.Analyzer.ProductionURL
	}
	return c.Analyzer.LocalURL
}

// DefaultPort is the HTTP port used when nothing else sets one.
const DefaultPort = 3000

var defaults = map[string]any{
	"server.port":            DefaultPort,
	"server.debug":           false,
	"analyzer.productionurl": "https://us-central1-cloud-engineer-certify.cloudfunctions.net/analyzeText",
	"analyzer.localurl":      "http://localhost:8080",
	"report.dir":             "results",
	"report.minio.port":      "9000",
	"report.minio.bucket":    "vertex-reports",
}

// Init - Assign global config to decoded config struct. An empty filePath
// skips the file layer.
//
// Layers, lowest first: built-in defaults, the YAML file, CFG_-prefixed
// variables (CFG_SERVER_PORT sets server.port), and the platform variables
// PORT, NODE_ENV and ANALYZE_FUNCTION_URL.
func Init(filePath string) error {
	k := koanf.New(".")
	parser := yaml.Parser()

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return err
	}

	if filePath != "" {
		if err := k.Load(file.Provider(filePath), parser); err != nil {
			return err
		}
	}

	if err := k.Load(env.ProviderWithValue("CFG_", ".", func(s string, v string) (string, any) {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CFG_")), "_", ".")
		if strings.Contains(v, ",") {
			return key, strings.Split(strings.TrimSpace(v), ",")
		}
		return key, v
	}), nil); err != nil {
		return err
	}

	if err := k.Load(confmap.Provider(platformOverrides(), "."), nil); err != nil {
		return err
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return err
	}

	if err := ValidateConfig(&cfg); err != nil {
		return err
	}
	Config = cfg
	return nil
}

// platformOverrides maps the variables set by the hosting platform.
func platformOverrides() map[string]any {
	m := map[string]any{}
	if v, ok := os.LookupEnv("PORT"); ok {
		if port, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			m["server.port"] = port
		}
	}
	if v, ok := os.LookupEnv("NODE_ENV"); ok && v != "" {
		m["server.edition"] = v
	}
	if v, ok := os.LookupEnv("ANALYZE_FUNCTION_URL"); ok && v != "" {
		m["analyzer.url"] = v
	}
	return m
}

// ValidateConfig is for custom validation rules for the configuration
func ValidateConfig(cfg *AppConfig) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	return nil
}

var defaultConfigPath = "config/config.yaml"

// ParseConfigFlag allows clients to specify the relative path to the file from
// which the configuration will be loaded.
func ParseConfigFlag(fs *flag.FlagSet) *string {
	return fs.String("file", defaultConfigPath, "configuration file")
}

// ResolvePath returns path when the file exists, or "" for the default path
// when it doesn't, so Init can run without a config file.
func ResolvePath(path string) string {
	if _, err := os.Stat(path); err != nil && path == defaultConfigPath {
		return ""
	}
	return path
}
