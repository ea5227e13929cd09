package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"repair-system/pkg/constants"
)

type staffSeed struct {
	Username       string
	Email          string
	Password       string
	FullName       string
	Role           constants.Role
	Specialization string
}

var defaultStaff = []staffSeed{
	{Username: "admin", Email: "admin@rocketpc.ru", Password: "admin12345", FullName: "Администратор системы", Role: constants.RoleAdmin},
	{Username: "director", Email: "director@rocketpc.ru", Password: "director12345", FullName: "Ирина Соколова", Role: constants.RoleDirector},
	{Username: "manager", Email: "manager@rocketpc.ru", Password: "manager12345", FullName: "Павел Ершов", Role: constants.RoleManager},
	{Username: "master1", Email: "master1@rocketpc.ru", Password: "master12345", FullName: "Сергей Кузнецов", Role: constants.RoleMaster, Specialization: "Ноутбуки"},
	{Username: "master2", Email: "master2@rocketpc.ru", Password: "master12345", FullName: "Олег Виноградов", Role: constants.RoleMaster, Specialization: "Смартфоны и планшеты"},
	{Username: "master3", Email: "master3@rocketpc.ru", Password: "master12345", FullName: "Дмитрий Лебедев", Role: constants.RoleMaster, Specialization: "Настольные ПК"},
}

// SeedStaff создаёт стартовый набор сотрудников. Существующие логины
// пропускаются, сидер можно запускать повторно.
func SeedStaff(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("🌱 Наполнение сотрудников...")

	for _, s := range defaultStaff {
		if err := seedOne(ctx, db, s); err != nil {
			log.Printf("  ❌ %s: %v", s.Username, err)
			continue
		}
	}
	log.Println("🌱 Наполнение сотрудников завершено.")
}

func seedOne(ctx context.Context, db *pgxpool.Pool, s staffSeed) error {
	var existingID int
	err := db.QueryRow(ctx, "SELECT id FROM users WHERE username = $1", s.Username).Scan(&existingID)
	if err == nil {
		log.Printf("  - %s уже существует, пропускаем", s.Username)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("ошибка проверки существования: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	var spec interface{}
	if s.Specialization != "" {
		spec = s.Specialization
	}

	_, err = db.Exec(ctx, `
		INSERT INTO users (username, email, password_hash, full_name, role, specialization, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		s.Username, s.Email, string(hash), s.FullName, string(s.Role), spec,
	)
	if err != nil {
		return fmt.Errorf("ошибка вставки: %w", err)
	}
	log.Printf("  ✅ создан %s (%s)", s.Username, s.Role)
	return nil
}
