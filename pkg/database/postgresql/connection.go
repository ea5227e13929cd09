package postgresql

import (
	"context"
	"log"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"repair-system/pkg/utils"
)

// ConnectDB создаёт пул соединений и проверяет его. Пул передаётся явно
// во все компоненты; закрывается в main при остановке процесса.
// Серверный statement_timeout ограничивает каждый запрос сверху: зависший
// бэкенд не держит обработчик дольше utils.DBTimeout.
func ConnectDB(dsn string) *pgxpool.Pool {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatalf("Ошибка разбора строки подключения к БД: %v", err)
	}
	cfg.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(utils.DBTimeout.Milliseconds(), 10)

	dbpool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Ошибка создания пула соединений к БД: %v", err)
	}

	pingCtx, cancel := utils.WithDBTimeout(context.Background())
	defer cancel()
	if err := dbpool.Ping(pingCtx); err != nil {
		log.Fatalf("Не удалось пинговать БД: %v", err)
	}

	log.Println("✅ Подключено к PostgreSQL")
	return dbpool
}
