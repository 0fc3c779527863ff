package migrations

import "gorm.io/gorm"

func init() {
	Register("backfill_user_dids", backfillUserDIDs)
}

// Accounts created before DID derivation moved into user creation can carry
// an empty did column; derive it from the row id.
func backfillUserDIDs(db *gorm.DB) error {
	return db.Exec(`UPDATE users SET did = 'did:credtube:user:' || id WHERE did IS NULL OR did = ''`).Error
}
