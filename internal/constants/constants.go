package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	ServiceName = "export-service"
)

const (
	DefaultMongoDBName        = "analytics"
	ExportHistoryCollection   = "export_history"
	ExportHistoryRetentionTTL = 90 * 24 * time.Hour
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// MaxExportRows is the hard ceiling on events fetched by a single export.
	MaxExportRows = 100000

	DefaultFolderCacheTTLSeconds = 60
)

const (
	CacheKeyPrefixFolders = "export:folders:"
)

const (
	// RootLinkKey marks a link that is the bare domain itself.
	RootLinkKey = "_root"
)

const (
	PermissionFoldersRead  = "folders.read"
	PermissionFoldersWrite = "folders.write"
)
