package shared

const (
	StorageKey        = "aws-learning-hub-progress"
	StorageProbeKey   = "__storage_test__"
	DefaultDebounceMs = 1000

	StorageEngineMemory   = "memory"
	StorageEngineFile     = "file"
	StorageEngineSqlite   = "sqlite"
	StorageEnginePostgres = "postgres"
	StorageEngineRedis    = "redis"

	ReasonContinueSection = "Continue in %s"
	ReasonResume          = "Resume in progress"
	ReasonFoundation      = "Foundation topic"
)
