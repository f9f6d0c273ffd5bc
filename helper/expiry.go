package helper

import (
	"log"
	"time"

	"easyticket/database"
	"easyticket/model"
	"easyticket/monitoring"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

const expiredOrderReason = "order expired - payment not completed in time"

var expiryScheduler gocron.Scheduler

// SweepExpiredOrders fails every pending order whose expires_at has passed.
// No inventory was held, so failing them is a pure status flip.
func SweepExpiredOrders(db *gorm.DB) (int64, error) {
	now := time.Now()
	res := db.Model(&model.Order{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", model.OrderPending, now).
		Updates(map[string]any{
			"status":              model.OrderFailed,
			"cancellation_reason": expiredOrderReason,
			"cancelled_at":        now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		monitoring.ExpiredOrdersSwept.Add(float64(res.RowsAffected))
	}
	return res.RowsAffected, nil
}

func sweepExpiredOrdersJob() {
	n, err := SweepExpiredOrders(database.DB)
	if err != nil {
		log.Printf("[CRON] expired order sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[CRON] expired order sweep failed %d pending orders", n)
	}
}

// StartExpirySweeper runs the sweep every minute.
func StartExpirySweeper() {
	s, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal(err)
	}
	expiryScheduler = s

	_, err = s.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(sweepExpiredOrdersJob),
	)
	if err != nil {
		log.Fatal(err)
	}

	s.Start()
	log.Println("expired order sweeper started (every 1m)")
}
