package testarchive

// Default generator settings.
const (
	defaultGames        = 1000
	defaultPlayers      = 50
	defaultDays         = 365
	defaultUnknownShare = 0.05
	defaultSeed         = 42
)

// File permission for written archives.
const archiveFilePermission = 0o644
