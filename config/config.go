package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/verity-id/verity/core"
)

// Config holds all runtime configuration, read from the environment with
// optional .env support.
type Config struct {
	ListenAddr  string
	ExternalURL string // public origin of this verifier; empty = derive per request

	AudienceDID  string // the verifier's own DID, stamped into challenges
	CallbackPath string

	SessionTTL           time.Duration
	VerifyTimeout        time.Duration
	StateTransitionDelay time.Duration

	EthRPCURL     string
	StateContract string
	ChainID       string // chain namespace, e.g. "polygon:mumbai"
	KeyDir        string
	IPFSGateway   string

	RedisURL string // empty = in-memory store, no event publishing

	QueryCircuitID      string
	QueryAllowedIssuers []string
	QueryType           string
	QueryContext        string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ListenAddr:  getenvDefault("VERITY_LISTEN_ADDR", ":8080"),
		ExternalURL: os.Getenv("VERITY_EXTERNAL_URL"),

		AudienceDID:  getenvDefault("VERITY_AUDIENCE_DID", "did:polygonid:polygon:mumbai:2qDyy1kEo2AYcP3RT4XGea7BtxsY285szg6yP9SPrs"),
		CallbackPath: getenvDefault("VERITY_CALLBACK_PATH", "/callback"),

		SessionTTL:           getenvDuration("VERITY_SESSION_TTL", 5*time.Minute),
		VerifyTimeout:        getenvDuration("VERITY_VERIFY_TIMEOUT", 30*time.Second),
		StateTransitionDelay: getenvDuration("VERITY_STATE_TRANSITION_DELAY", 5*time.Minute),

		EthRPCURL:     getenvDefault("VERITY_ETH_RPC_URL", "https://rpc.ankr.com/polygon_mumbai"),
		StateContract: getenvDefault("VERITY_STATE_CONTRACT", "0x134B1BE34911E39A8397ec6289782989729807a4"),
		ChainID:       getenvDefault("VERITY_CHAIN_ID", "polygon:mumbai"),
		KeyDir:        getenvDefault("VERITY_KEY_DIR", "./keys"),
		IPFSGateway:   getenvDefault("VERITY_IPFS_GATEWAY", "https://ipfs.io"),

		RedisURL: os.Getenv("VERITY_REDIS_URL"),

		QueryCircuitID:      getenvDefault("VERITY_QUERY_CIRCUIT_ID", core.DefaultCircuitID),
		QueryAllowedIssuers: splitList(getenvDefault("VERITY_QUERY_ALLOWED_ISSUERS", "*")),
		QueryType:           getenvDefault("VERITY_QUERY_TYPE", core.DefaultCredentialType),
		QueryContext:        getenvDefault("VERITY_QUERY_CONTEXT", core.DefaultSchemaContext),
	}
}

// QueryTemplate builds the credential predicate from the configuration,
// keeping the default predicate unless overridden.
func (c Config) QueryTemplate() core.QueryTemplate {
	q := core.DefaultQueryTemplate()
	q.CircuitID = c.QueryCircuitID
	q.AllowedIssuers = c.QueryAllowedIssuers
	q.Type = c.QueryType
	q.Context = c.QueryContext
	return q
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
