package models

// ModelRegistry lists every model handed to gorm's AutoMigrate when the server
// is started with --auto-migrate. Production schemas are managed by the SQL
// migrations in migrations/.
var ModelRegistry = []interface{}{
	&WaitlistEntry{},
	&User{},
}
