// Package services implements the chatkeeper core on top of the
// repositories: KeyService (per-user envelope keys), CredentialService
// (accounts and authentication), SessionService (time-limited sessions and
// role checks) and MessageService (the encrypted chat ledger).
//
// Every service owns the shared *sql.DB and obtains repositories through a
// repomanager.RepositoryManager, binding them to a transaction when several
// writes must land together.
package services
