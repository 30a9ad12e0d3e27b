package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hikvision-integration/models"
	"hikvision-integration/pkg/bitrix"
	"hikvision-integration/repository"
)

// DirectorySource lists the active users of a Bitrix portal.
type DirectorySource interface {
	ActiveUsers(ctx context.Context, webhook string) ([]bitrix.User, error)
}

// SeedResult counts what one directory sync did.
type SeedResult struct {
	Fetched int
	Skipped int
	Added   int
}

// SeedEmployees copies a company's active Bitrix users into its employee
// directory. Users already present keep their stored name.
func SeedEmployees(ctx context.Context, source DirectorySource, store repository.AttendanceStore, company *models.Company, log *slog.Logger) (SeedResult, error) {
	if log == nil {
		log = slog.Default()
	}
	if company.B24WebhookURL == "" {
		return SeedResult{}, fmt.Errorf("company %s has no bitrix webhook", company.Name)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	log.Info("seeding employees", "company", company.Name)
	users, err := source.ActiveUsers(ctx, company.B24WebhookURL)
	if err != nil {
		return SeedResult{}, fmt.Errorf("list active users: %w", err)
	}

	res := SeedResult{Fetched: len(users)}
	employees := make([]models.Employee, 0, len(users))
	for _, u := range users {
		name := strings.TrimSpace(u.FullName())
		if u.ID == "" || name == "" {
			res.Skipped++
			log.Warn("skipping bitrix user without id or name", "company", company.Name, "user_id", u.ID)
			continue
		}
		employees = append(employees, models.Employee{ID: u.ID, Name: name})
	}

	added, err := store.UpsertEmployees(ctx, company, employees)
	if err != nil {
		return res, fmt.Errorf("save employees: %w", err)
	}
	res.Added = added

	log.Info("employee seeding finished", "company", company.Name, "fetched", res.Fetched, "added", res.Added, "skipped", res.Skipped)
	return res, nil
}
