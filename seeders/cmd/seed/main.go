package main

import (
	"flag"
	"log"

	"repair-system/migrations"
	"repair-system/pkg/config"
	"repair-system/pkg/database/postgresql"
	"repair-system/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 Наполнение базы данных")
	log.Println("======================================================")

	runStaff := flag.Bool("staff", false, "Создать стартовых сотрудников (админ, директор, менеджер, мастера)")
	runAll := flag.Bool("all", false, "Запустить все сидеры")
	flag.Parse()

	if !*runStaff && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		flag.PrintDefaults()
		return
	}

	cfg := config.New()
	log.Println("📦 Используется DSN:", cfg.Postgres.DSN)

	if err := migrations.Up(cfg.Postgres.DSN); err != nil {
		log.Fatalf("не удалось применить миграции: %v", err)
	}

	dbPool := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbPool.Close()

	if *runAll || *runStaff {
		seeders.SeedStaff(dbPool)
	}
	log.Println("======================================================")
}
