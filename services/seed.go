package services

import (
	"log"

	"fore-rewards-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// SeedInitialData installs the static achievement, leaderboard, and reward
// catalogs. Idempotent: existing rows (matched by title) are left untouched,
// so reruns on startup are safe.
func SeedInitialData(db *gorm.DB) error {
	created := 0

	for i := range models.InitialAchievements {
		a := models.InitialAchievements[i]
		a.ID = uuid.NewString()
		res := db.Where("title = ?", a.Title).FirstOrCreate(&a)
		if res.Error != nil {
			return res.Error
		}
		created += int(res.RowsAffected)
	}

	for i := range models.InitialLeaderboards {
		lb := models.InitialLeaderboards[i]
		lb.ID = uuid.NewString()
		res := db.Where("title = ?", lb.Title).FirstOrCreate(&lb)
		if res.Error != nil {
			return res.Error
		}
		created += int(res.RowsAffected)
	}

	for i := range models.InitialRewards {
		r := models.InitialRewards[i]
		r.ID = uuid.NewString()
		r.Slug = slug.Make(r.Title)
		res := db.Where("title = ?", r.Title).FirstOrCreate(&r)
		if res.Error != nil {
			return res.Error
		}
		created += int(res.RowsAffected)
	}

	if created > 0 {
		log.Printf("[SEED] created %d catalog entries", created)
	}
	return nil
}
