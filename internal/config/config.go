// Package config defines all configuration structures for the
// HitForge-Discovery pipeline.  No I/O or parsing logic lives here, only
// plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
	"github.com/turtacn/HitForge-Discovery/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables for the API process.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ProjectConfig identifies the campaign and where its artifacts live.
type ProjectConfig struct {
	// Name keys every persisted stage output; two runs with the same name
	// share state.
	Name string `mapstructure:"name"`

	// DataDir is the root directory of the filesystem stage store.
	DataDir string `mapstructure:"data_dir"`
}

// TargetConfig describes the protein target under investigation.
type TargetConfig struct {
	// ChEMBLID is the assayed target identifier (e.g. "CHEMBL203").
	ChEMBLID string `mapstructure:"chembl_id"`

	// PDBID names the experimental structure to dock against (e.g. "1M17").
	PDBID string `mapstructure:"pdb_id"`

	// IncludeMutants keeps activities whose assay text marks a mutant form.
	IncludeMutants bool `mapstructure:"include_mutants"`

	// MinPIC50 drops weaker measurements during ingestion.
	MinPIC50 float64 `mapstructure:"min_pic50"`

	// MaxRecords caps how many activity rows are fetched (0 = no cap).
	MaxRecords int `mapstructure:"max_records"`
}

// SiteConfig controls binding-site resolution.
type SiteConfig struct {
	// OverrideCenter, when exactly three values, fixes the site center
	// verbatim and skips every automatic resolution path.
	OverrideCenter []float64 `mapstructure:"override_center"`

	// OverrideSize optionally accompanies OverrideCenter (three values);
	// when empty a cube of BoxEdge is used.
	OverrideSize []float64 `mapstructure:"override_size"`

	// FallbackResidue names the residue ("A:745" chain:number) to center on
	// when the structure carries no usable ligand.
	FallbackResidue string `mapstructure:"fallback_residue"`

	// BoxEdge is the cubic search-volume edge in Å for automatic paths.
	BoxEdge float64 `mapstructure:"box_edge"`
}

// GenerationConfig controls the analog generator.
type GenerationConfig struct {
	TopScaffolds   int      `mapstructure:"top_scaffolds"`
	SeedsPerGroup  int      `mapstructure:"seeds_per_group"`
	Strategies     []string `mapstructure:"strategies"`
	MaxPerSeed     int      `mapstructure:"max_per_seed"`
	MinQED         float64  `mapstructure:"min_qed"`
	MaxSA          float64  `mapstructure:"max_sa"`
	QEDWeight      float64  `mapstructure:"qed_weight"`
	SAWeight       float64  `mapstructure:"sa_weight"`
	TopN           int      `mapstructure:"top_n"`
	Workers        int      `mapstructure:"workers"`
	NoveltyCheck   bool     `mapstructure:"novelty_check"`
}

// PotencyConfig controls potency-model training.
type PotencyConfig struct {
	// MinTrainingRows is the smallest usable dataset; anything below halts
	// the potency stage with an insufficient-data condition.
	MinTrainingRows int     `mapstructure:"min_training_rows"`
	TestFraction    float64 `mapstructure:"test_fraction"`
	L2Penalty       float64 `mapstructure:"l2_penalty"`
	SplitSeed       int64   `mapstructure:"split_seed"`
}

// DockingConfig controls the external docking engine.
type DockingConfig struct {
	VinaPath       string        `mapstructure:"vina_path"`
	ObabelPath     string        `mapstructure:"obabel_path"`
	Exhaustiveness int           `mapstructure:"exhaustiveness"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Retries        int           `mapstructure:"retries"`
	Workers        int           `mapstructure:"workers"`
	KeepPoses      bool          `mapstructure:"keep_poses"`
	WorkDir        string        `mapstructure:"work_dir"`
}

// ADMETConfig controls pharmacokinetic-risk screening.
type ADMETConfig struct {
	// Disqualifiers lists flag names that exclude a candidate from the final
	// ranking outright, regardless of composite score.
	Disqualifiers []string `mapstructure:"disqualifiers"`
	Workers       int      `mapstructure:"workers"`
}

// FusionConfig controls score fusion and final ranking.
type FusionConfig struct {
	// Weights maps signal name ("potency", "docking", "qed", "sa") to its
	// contribution in the composite score.
	Weights map[string]float64 `mapstructure:"weights"`
	TopN    int                `mapstructure:"top_n"`
}

// StoreConfig selects the stage-output persistence backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend"` // "fs" | "postgres"
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// CacheConfig selects the cache backend for external-service responses.
type CacheConfig struct {
	Backend    string        `mapstructure:"backend"` // "memory" | "redis"
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
	KeyPrefix  string        `mapstructure:"key_prefix"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig holds pipeline-event publishing parameters.
type KafkaConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Brokers         []string `mapstructure:"brokers"`
	Topic           string   `mapstructure:"topic"`
	ProducerRetries int      `mapstructure:"producer_retries"`
	BatchSize       int      `mapstructure:"batch_size"`
}

// MilvusConfig holds fingerprint-index connection parameters.
type MilvusConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Addr             string `mapstructure:"addr"`
	DBName           string `mapstructure:"db_name"`
	CollectionPrefix string `mapstructure:"collection_prefix"`
	FingerprintDim   int    `mapstructure:"fingerprint_dim"`
	IndexType        string `mapstructure:"index_type"`
	DefaultTopK      int    `mapstructure:"default_top_k"`
}

// Neo4jConfig holds scaffold-network export parameters.
type Neo4jConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	URI               string        `mapstructure:"uri"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout"`
}

// OpenSearchConfig holds hit-list indexing parameters.
type OpenSearchConfig struct {
	Enabled            bool     `mapstructure:"enabled"`
	Addresses          []string `mapstructure:"addresses"`
	User               string   `mapstructure:"user"`
	Password           string   `mapstructure:"password"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify"`
	IndexPrefix        string   `mapstructure:"index_prefix"`
}

// MinIOConfig holds artifact-store parameters.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// ChEMBLConfig holds bioactivity-source client parameters.
type ChEMBLConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Retries  int           `mapstructure:"retries"`
	PageSize int           `mapstructure:"page_size"`
}

// RCSBConfig holds structure-source client parameters.
type RCSBConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

// MetricsConfig holds prometheus exposition parameters.
type MetricsConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Namespace            string `mapstructure:"namespace"`
	EnableGoMetrics      bool   `mapstructure:"enable_go_metrics"`
	EnableProcessMetrics bool   `mapstructure:"enable_process_metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the whole pipeline.  Every
// infrastructure component and stage service reads its settings from the
// relevant sub-struct.
type Config struct {
	Server     ServerConfig      `mapstructure:"server"`
	Project    ProjectConfig     `mapstructure:"project"`
	Target     TargetConfig      `mapstructure:"target"`
	Site       SiteConfig        `mapstructure:"site"`
	Generation GenerationConfig  `mapstructure:"generation"`
	Potency    PotencyConfig     `mapstructure:"potency"`
	Docking    DockingConfig     `mapstructure:"docking"`
	ADMET      ADMETConfig       `mapstructure:"admet"`
	Fusion     FusionConfig      `mapstructure:"fusion"`
	Store      StoreConfig       `mapstructure:"store"`
	Database   DatabaseConfig    `mapstructure:"database"`
	Cache      CacheConfig       `mapstructure:"cache"`
	Redis      RedisConfig       `mapstructure:"redis"`
	Kafka      KafkaConfig       `mapstructure:"kafka"`
	Milvus     MilvusConfig      `mapstructure:"milvus"`
	Neo4j      Neo4jConfig       `mapstructure:"neo4j"`
	OpenSearch OpenSearchConfig  `mapstructure:"opensearch"`
	MinIO      MinIOConfig       `mapstructure:"minio"`
	ChEMBL     ChEMBLConfig      `mapstructure:"chembl"`
	RCSB       RCSBConfig        `mapstructure:"rcsb"`
	Metrics    MetricsConfig     `mapstructure:"metrics"`
	Log        logging.LogConfig `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Project
	if c.Project.Name == "" {
		return fmt.Errorf("config: project.name is required")
	}

	// Site
	if n := len(c.Site.OverrideCenter); n != 0 && n != 3 {
		return fmt.Errorf("config: site.override_center needs exactly 3 values, got %d", n)
	}
	if n := len(c.Site.OverrideSize); n != 0 && n != 3 {
		return fmt.Errorf("config: site.override_size needs exactly 3 values, got %d", n)
	}
	if len(c.Site.OverrideSize) == 3 && len(c.Site.OverrideCenter) != 3 {
		return fmt.Errorf("config: site.override_size requires site.override_center")
	}
	if c.Site.BoxEdge <= 0 {
		return fmt.Errorf("config: site.box_edge must be > 0, got %v", c.Site.BoxEdge)
	}

	// Generation
	if c.Generation.MinQED < 0 || c.Generation.MinQED > 1 {
		return fmt.Errorf("config: generation.min_qed %v is out of range [0, 1]", c.Generation.MinQED)
	}
	if c.Generation.MaxSA <= 0 || c.Generation.MaxSA > 10 {
		return fmt.Errorf("config: generation.max_sa %v is out of range (0, 10]", c.Generation.MaxSA)
	}
	if c.Generation.QEDWeight < 0 || c.Generation.SAWeight < 0 {
		return fmt.Errorf("config: generation ranking weights must be >= 0")
	}
	if c.Generation.QEDWeight+c.Generation.SAWeight == 0 {
		return fmt.Errorf("config: generation ranking weights must not both be zero")
	}
	if c.Generation.Workers < 1 {
		return fmt.Errorf("config: generation.workers must be >= 1, got %d", c.Generation.Workers)
	}

	// Potency
	if c.Potency.MinTrainingRows < 2 {
		return fmt.Errorf("config: potency.min_training_rows must be >= 2, got %d", c.Potency.MinTrainingRows)
	}
	if c.Potency.TestFraction <= 0 || c.Potency.TestFraction >= 0.9 {
		return fmt.Errorf("config: potency.test_fraction %v is out of range (0, 0.9)", c.Potency.TestFraction)
	}
	if c.Potency.L2Penalty < 0 {
		return fmt.Errorf("config: potency.l2_penalty must be >= 0, got %v", c.Potency.L2Penalty)
	}

	// Docking
	if c.Docking.Exhaustiveness < 1 {
		return fmt.Errorf("config: docking.exhaustiveness must be >= 1, got %d", c.Docking.Exhaustiveness)
	}
	if c.Docking.Workers < 1 {
		return fmt.Errorf("config: docking.workers must be >= 1, got %d", c.Docking.Workers)
	}
	if c.Docking.Timeout <= 0 {
		return fmt.Errorf("config: docking.timeout must be > 0, got %v", c.Docking.Timeout)
	}

	// Fusion
	if len(c.Fusion.Weights) == 0 {
		return fmt.Errorf("config: fusion.weights is required")
	}
	var weightSum float64
	for name, w := range c.Fusion.Weights {
		switch name {
		case "potency", "docking", "qed", "sa":
		default:
			return fmt.Errorf("config: fusion.weights contains unknown signal %q", name)
		}
		if w < 0 {
			return fmt.Errorf("config: fusion.weights[%s] must be >= 0, got %v", name, w)
		}
		weightSum += w
	}
	if weightSum == 0 {
		return fmt.Errorf("config: fusion.weights must not sum to zero")
	}
	if c.Fusion.TopN < 1 {
		return fmt.Errorf("config: fusion.top_n must be >= 1, got %d", c.Fusion.TopN)
	}

	// Store
	switch c.Store.Backend {
	case "fs":
		if c.Project.DataDir == "" {
			return fmt.Errorf("config: project.data_dir is required for the fs store")
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required for the postgres store")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required for the postgres store")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required for the postgres store")
		}
	default:
		return fmt.Errorf("config: store.backend %q is invalid; expected fs|postgres", c.Store.Backend)
	}

	// Cache
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required for the redis cache")
		}
	default:
		return fmt.Errorf("config: cache.backend %q is invalid; expected memory|redis", c.Cache.Backend)
	}

	// Optional infrastructure, validated only when enabled.
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required")
		}
	}
	if c.Milvus.Enabled {
		if c.Milvus.Addr == "" {
			return fmt.Errorf("config: milvus.addr is required")
		}
		if c.Milvus.FingerprintDim < 1 {
			return fmt.Errorf("config: milvus.fingerprint_dim must be >= 1, got %d", c.Milvus.FingerprintDim)
		}
	}
	if c.Neo4j.Enabled && c.Neo4j.URI == "" {
		return fmt.Errorf("config: neo4j.uri is required")
	}
	if c.OpenSearch.Enabled && len(c.OpenSearch.Addresses) == 0 {
		return fmt.Errorf("config: opensearch.addresses must contain at least one address")
	}
	if c.MinIO.Enabled && c.MinIO.Endpoint == "" {
		return fmt.Errorf("config: minio.endpoint is required")
	}

	// External sources
	if c.ChEMBL.BaseURL == "" {
		return fmt.Errorf("config: chembl.base_url is required")
	}
	if c.RCSB.BaseURL == "" {
		return fmt.Errorf("config: rcsb.base_url is required")
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

// SignalWeight returns the fusion weight for the named signal, zero when the
// signal is not configured.  Values are coerced through cast so that integer
// literals in YAML behave.
func (c *Config) SignalWeight(name string) float64 {
	return cast.ToFloat64(c.Fusion.Weights[name])
}
