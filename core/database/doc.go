// Package database handles the MySQL connection behind the run journal.
//
// It provides a wrapper around GORM to configure MySQL connections from the
// application's configuration. The connection is optional: commands keep
// working when it fails and only the journal is disabled.
//
// # Usage
//
//	db, err := database.Connect(cfg.Journal.Database)
//	if err != nil {
//	    logg.Warn("Journal disabled", zap.Error(err))
//	}
package database
