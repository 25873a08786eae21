package scope

import "gorm.io/gorm"

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

// WithSessionRelations preloads everything a session view needs in one round of queries.
func WithSessionRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Patient").
		Preload("Notes", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Preload("Transcripts").
		Preload("Contexts").
		Preload("Tasks", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") })
}
