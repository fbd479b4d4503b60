package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"social-connect/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App             App         `json:"app"`
	Graph           Graph       `json:"graph"`
	OAuth           OAuth       `json:"oauth"`
	Webhook         Webhook     `json:"webhook"`
	RedisClient     RedisClient `json:"redisClient"`
	Database        Database    `json:"database"`
	ConnectionStore string      `json:"connectionStore"` // webhook | postgres | mssql | mysql
	Events          Events      `json:"events"`
	Pubsub          Pubsub      `json:"pubsub"`
	ServiceBus      ServiceBus  `json:"serviceBus"`
	Cors            Cors        `json:"cors"`
}

type App struct {
	Port         int    `json:"port"`
	SecretKey    string `json:"secretKey"`
	DashboardURL string `json:"dashboardURL"`
	TLSEnabled   bool   `json:"tlsEnabled"`
	TLSCertFile  string `json:"tlsCertFile"`
	TLSKeyFile   string `json:"tlsKeyFile"`
}

// Graph points at the platform authorization dialog and graph API.
type Graph struct {
	AuthHost   string `json:"authHost"`
	GraphHost  string `json:"graphHost"`
	APIVersion string `json:"apiVersion"`
	TimeoutSec int    `json:"timeoutSec"`

	// DiscoveryConcurrency bounds concurrent page inspections per callback.
	DiscoveryConcurrency int `json:"discoveryConcurrency"`
}

// OAuth holds the callback location and browser-session lifetime.
type OAuth struct {
	CallbackBaseURL string `json:"callbackBaseURL"`
	SessionTTLMin   int    `json:"sessionTTLMin"`
	CookieSecure    bool   `json:"cookieSecure"`
}

// Webhook is the workflow backend that owns connection records and dashboard content.
type Webhook struct {
	BaseURL           string `json:"baseURL"`
	AuthKey           string `json:"authKey"`
	UpsertPath        string `json:"upsertPath"`
	StatusPath        string `json:"statusPath"`
	SearchPath        string `json:"searchPath"`
	SellerPackagePath string `json:"sellerPackagePath"`
	TimeoutSec        int    `json:"timeoutSec"`

	PostsPath            string `json:"postsPath"`
	PostUpdatePath       string `json:"postUpdatePath"`
	BrandSearchPath      string `json:"brandSearchPath"`
	BrandInsertPath      string `json:"brandInsertPath"`
	BrandUpdatePath      string `json:"brandUpdatePath"`
	PreferenceSearchPath string `json:"preferenceSearchPath"`
	PreferenceInsertPath string `json:"preferenceInsertPath"`
	PreferenceUpdatePath string `json:"preferenceUpdatePath"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	Username string `json:"username"`
	Prefix   string `json:"prefix"`
}

type Database struct {
	Psql  Db `json:"psql"`
	MySql Db `json:"mysql"`
	Mongo Db `json:"mongo"`
	Mssql Db `json:"mssql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type Events struct {
	Driver string `json:"driver"` // none | pubsub | servicebus
	Topic  string `json:"topic"`
	Queue  string `json:"queue"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
}

type Cors struct {
	AllowOrigins []string `json:"allowOrigins"`
}

var C Config

func init() {
	Reload()
}

// Reload rebuilds C from the config file and the environment.
func Reload() {
	C = Config{}
	LoadConfig()
	applyDefaults(&C)
	initDatabase(&C)
	initApp(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	if env := os.Getenv("ENV"); env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func applyDefaults(C *Config) {
	C.Graph.AuthHost = getConfigValue(C.Graph.AuthHost, "GRAPH_AUTH_HOST", "https://www.facebook.com")
	C.Graph.GraphHost = getConfigValue(C.Graph.GraphHost, "GRAPH_HOST", "https://graph.facebook.com")
	C.Graph.APIVersion = getConfigValue(C.Graph.APIVersion, "GRAPH_API_VERSION", "v21.0")
	if C.Graph.TimeoutSec == 0 {
		C.Graph.TimeoutSec = 15
	}
	if C.Graph.DiscoveryConcurrency == 0 {
		C.Graph.DiscoveryConcurrency = 8
	}

	C.OAuth.CallbackBaseURL = getConfigValue(C.OAuth.CallbackBaseURL, "PUBLIC_BASE_URL", "")
	if C.OAuth.SessionTTLMin == 0 {
		C.OAuth.SessionTTLMin = 24 * 60
	}

	C.Webhook.BaseURL = getConfigValue(C.Webhook.BaseURL, "WEBHOOK_BASE_URL", "")
	C.Webhook.AuthKey = getConfigValue(C.Webhook.AuthKey, "WEBHOOK_AUTH_KEY", "")
	C.Webhook.UpsertPath = getConfigValue(C.Webhook.UpsertPath, "WEBHOOK_UPSERT_PATH", "/webhook/insert-update")
	C.Webhook.StatusPath = getConfigValue(C.Webhook.StatusPath, "WEBHOOK_STATUS_PATH", "/webhook/update-status")
	C.Webhook.SearchPath = getConfigValue(C.Webhook.SearchPath, "WEBHOOK_SEARCH_PATH", "/webhook/search")
	C.Webhook.SellerPackagePath = getConfigValue(C.Webhook.SellerPackagePath, "WEBHOOK_SELLER_PACKAGE_PATH", "/webhook/seller-package")
	C.Webhook.PostsPath = getConfigValue(C.Webhook.PostsPath, "WEBHOOK_POSTS_PATH", "/webhook/get-social-posts")
	C.Webhook.PostUpdatePath = getConfigValue(C.Webhook.PostUpdatePath, "WEBHOOK_POST_UPDATE_PATH", "/webhook/update-social-post")
	C.Webhook.BrandSearchPath = getConfigValue(C.Webhook.BrandSearchPath, "WEBHOOK_BRAND_SEARCH_PATH", "/webhook/search-brand-profile")
	C.Webhook.BrandInsertPath = getConfigValue(C.Webhook.BrandInsertPath, "WEBHOOK_BRAND_INSERT_PATH", "/webhook/insert-brand-profile")
	C.Webhook.BrandUpdatePath = getConfigValue(C.Webhook.BrandUpdatePath, "WEBHOOK_BRAND_UPDATE_PATH", "/webhook/update-brand-profile")
	C.Webhook.PreferenceSearchPath = getConfigValue(C.Webhook.PreferenceSearchPath, "WEBHOOK_PREFERENCE_SEARCH_PATH", "/webhook/search-post-preference")
	C.Webhook.PreferenceInsertPath = getConfigValue(C.Webhook.PreferenceInsertPath, "WEBHOOK_PREFERENCE_INSERT_PATH", "/webhook/insert-post-preference")
	C.Webhook.PreferenceUpdatePath = getConfigValue(C.Webhook.PreferenceUpdatePath, "WEBHOOK_PREFERENCE_UPDATE_PATH", "/webhook/update-post-preference")
	if C.Webhook.TimeoutSec == 0 {
		C.Webhook.TimeoutSec = 10
	}

	C.RedisClient.Host = getConfigValue(C.RedisClient.Host, "REDIS_HOST", "")
	C.RedisClient.Port = getConfigValue(C.RedisClient.Port, "REDIS_PORT", "6379")
	C.RedisClient.Password = getConfigValue(C.RedisClient.Password, "REDIS_PASSWORD", "")
	C.RedisClient.Username = getConfigValue(C.RedisClient.Username, "REDIS_USERNAME", "")
	C.RedisClient.Prefix = getConfigValue(C.RedisClient.Prefix, "REDIS_PREFIX", "social-connect")

	C.ConnectionStore = strings.ToLower(getConfigValue(C.ConnectionStore, "CONNECTION_STORE", "webhook"))
	C.Events.Driver = strings.ToLower(getConfigValue(C.Events.Driver, "EVENTS_DRIVER", "none"))
	C.Events.Topic = getConfigValue(C.Events.Topic, "EVENTS_TOPIC", "social-connections")
	C.Events.Queue = getConfigValue(C.Events.Queue, "EVENTS_QUEUE", "social-connections")
	C.Pubsub.ProjectID = getConfigValue(C.Pubsub.ProjectID, "PUBSUB_PROJECT_ID", "")
	C.ServiceBus.Namespace = getConfigValue(C.ServiceBus.Namespace, "SERVICEBUS_NAMESPACE", "")

	if len(C.Cors.AllowOrigins) == 0 {
		C.Cors.AllowOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
}

func initDatabase(C *Config) {
	C.Database.Psql.Name = getConfigValue(C.Database.Psql.Name, "DB_NAME", "")
	C.Database.Psql.Host = getConfigValue(C.Database.Psql.Host, "DB_HOST", "")
	C.Database.Psql.User = getConfigValue(C.Database.Psql.User, "DB_USER", "")
	C.Database.Psql.Password = getConfigValue(C.Database.Psql.Password, "DB_PASSWORD", "")
	C.Database.Psql.Port = getConfigValue(C.Database.Psql.Port, "DB_PORT", "5432")

	C.Database.Mssql.Name = getConfigValue(C.Database.Mssql.Name, "MSSQL_DB_NAME", "")
	C.Database.Mssql.Host = getConfigValue(C.Database.Mssql.Host, "MSSQL_HOST", "localhost")
	C.Database.Mssql.Port = getConfigValue(C.Database.Mssql.Port, "MSSQL_PORT", "1433")
	C.Database.Mssql.User = getConfigValue(C.Database.Mssql.User, "MSSQL_USER", "")
	C.Database.Mssql.Password = getConfigValue(C.Database.Mssql.Password, "MSSQL_PASSWORD", "")

	C.Database.MySql.Name = getConfigValue(C.Database.MySql.Name, "MYSQL_DB_NAME", "")
	C.Database.MySql.Host = getConfigValue(C.Database.MySql.Host, "MYSQL_HOST", "localhost")
	C.Database.MySql.Port = getConfigValue(C.Database.MySql.Port, "MYSQL_PORT", "3306")
	C.Database.MySql.User = getConfigValue(C.Database.MySql.User, "MYSQL_USER", "")
	C.Database.MySql.Password = getConfigValue(C.Database.MySql.Password, "MYSQL_PASSWORD", "")

	C.Database.Mongo.Name = getConfigValue(C.Database.Mongo.Name, "MONGO_DB_NAME", "social_connect")
	C.Database.Mongo.Host = getConfigValue(C.Database.Mongo.Host, "MONGO_HOST", "")
	C.Database.Mongo.Port = getConfigValue(C.Database.Mongo.Port, "MONGO_PORT", "27017")
	C.Database.Mongo.User = getConfigValue(C.Database.Mongo.User, "MONGO_USER", "")
	C.Database.Mongo.Password = getConfigValue(C.Database.Mongo.Password, "MONGO_PASSWORD", "")
}

func initApp(C *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// APP_PORT -> PORT -> config -> 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		C.App.TLSEnabled = parseBool(v, C.App.TLSEnabled)
	}
	C.App.TLSCertFile = getConfigValue(C.App.TLSCertFile, "TLS_CERT_FILE", "")
	C.App.TLSKeyFile = getConfigValue(C.App.TLSKeyFile, "TLS_KEY_FILE", "")
	C.App.DashboardURL = getConfigValue(C.App.DashboardURL, "DASHBOARD_URL", "/")

	if C.OAuth.CallbackBaseURL == "" {
		scheme := "http"
		if C.App.TLSEnabled {
			scheme = "https"
		}
		C.OAuth.CallbackBaseURL = fmt.Sprintf("%s://localhost:%d", scheme, C.App.Port)
	}
	if C.App.TLSEnabled && !hasHTTPS(C.OAuth.CallbackBaseURL) {
		C.OAuth.CallbackBaseURL = toHTTPS(C.OAuth.CallbackBaseURL)
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; API routes accept the user id from the credentials form.")
	}
}

// SessionTTL is the lifetime of every browser-session key.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.OAuth.SessionTTLMin) * time.Minute
}

// DialogURL is the authorization dialog, e.g. https://www.facebook.com/v21.0/dialog/oauth.
func (c Config) DialogURL() string {
	return strings.TrimRight(c.Graph.AuthHost, "/") + "/" + c.Graph.APIVersion + "/dialog/oauth"
}

// CallbackURL is the registered redirect URI for a platform.
func (c Config) CallbackURL(platform string) string {
	return strings.TrimRight(c.OAuth.CallbackBaseURL, "/") + "/oauth-callback/" + platform
}

func parseBool(v string, def bool) bool {
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	}
	return def
}

func hasHTTPS(u string) bool { return strings.HasPrefix(u, "https://") }

func toHTTPS(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// getConfigValue prefers the environment, then a non-placeholder config value, then the default.
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}
