package repositories

import (
	"context"
	"fmt"
	"log"
	"regexp"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fieldPattern guards update_field against arbitrary column expressions.
var fieldPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// EntityRepo reads entity snapshots and performs the scoped single-field
// updates used by the update_field action. The entity tables themselves
// belong to the surrounding CRM, this repo only touches them through the
// per-type table mapping.
type EntityRepo interface {
	FetchSnapshot(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) (map[string]interface{}, error)
	UpdateField(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, field string, value interface{}) error
}

type entityRepo struct {
	db *gorm.DB
}

// NewEntityRepo creates a new entity repository
func NewEntityRepo(db *gorm.DB) EntityRepo {
	return &entityRepo{db: db}
}

func tableForEntity(entityType string) string {
	switch entityType {
	case "lead":
		return "leads"
	case "deal":
		return "deals"
	default:
		return ""
	}
}

// FetchSnapshot loads the entity row as a generic map for templating.
// A missing row or unknown entity type yields an empty snapshot, not an
// error: templates fall back to leaving their tokens verbatim.
func (r *entityRepo) FetchSnapshot(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) (map[string]interface{}, error) {
	table := tableForEntity(entityType)
	if table == "" {
		return map[string]interface{}{}, nil
	}

	var row map[string]interface{}
	err := r.db.WithContext(ctx).
		Table(table).
		Where("id = ? AND tenant_id = ?", entityID, tenantID).
		Take(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Printf("⚠️ Entity %s %s not found for snapshot", entityType, entityID)
			return map[string]interface{}{}, nil
		}
		return nil, fmt.Errorf("failed to fetch %s snapshot: %w", entityType, err)
	}
	return row, nil
}

func (r *entityRepo) UpdateField(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, field string, value interface{}) error {
	table := tableForEntity(entityType)
	if table == "" {
		return fmt.Errorf("unknown entity type: %s", entityType)
	}
	if !fieldPattern.MatchString(field) {
		return fmt.Errorf("invalid field name: %s", field)
	}

	result := r.db.WithContext(ctx).
		Table(table).
		Where("id = ? AND tenant_id = ?", entityID, tenantID).
		Update(field, value)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s.%s: %w", table, field, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %s not found", entityType, entityID)
	}
	return nil
}
