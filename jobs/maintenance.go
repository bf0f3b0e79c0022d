package jobs

import (
	"log"

	tasks "pk10/task"

	"github.com/robfig/cron/v3"
)

// StartMaintenanceCron schedules the housekeeping jobs: expired lock purge
// hourly, stale settlement-error purge daily.
func StartMaintenanceCron() *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc("@hourly", tasks.PurgeExpiredLocks); err != nil {
		log.Printf("❌ failed to schedule lock purge: %v", err)
	}
	if _, err := c.AddFunc("@daily", tasks.PurgeStaleSettlementErrors); err != nil {
		log.Printf("❌ failed to schedule settlement error purge: %v", err)
	}

	c.Start()
	log.Println("✅ Maintenance cron started")
	return c
}
