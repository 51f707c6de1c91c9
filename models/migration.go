package models

import (
	"log"

	"github.com/mmdatafocus/lottery_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Jurisdiction{}, &Store{}, &StoreSetting{},
		&ApiCredential{}, &SyncSession{},
		&User{}, &Cashier{}, &Terminal{},
		&Game{}, &Bin{}, &Pack{}, &BinHistory{},
		&Shift{}, &ShiftOpening{}, &ShiftClosing{}, &Variance{},
		&BusinessDay{}, &DayPack{},
		&AuditEvent{},
	)
	if err != nil {
		log.Fatal("Migration failed: ", err)
	}
}
