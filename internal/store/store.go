package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AngelCh415/perfdash/internal/models"
)

// CustomerStore persists customer documents. Get and the mutating calls
// return models.ErrNotFound for an unknown id.
type CustomerStore interface {
	List(ctx context.Context, includeArchived bool) ([]models.Customer, error)
	Get(ctx context.Context, id string) (models.Customer, error)
	Save(ctx context.Context, c models.Customer) (models.Customer, error)
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// prepare normalizes a customer before it is written. prev is the stored
// version, if any, and keeps its creation time.
func prepare(c models.Customer, prev *models.Customer, now time.Time) (models.Customer, error) {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return models.Customer{}, err
	}
	c = clone(c)
	c.ApplyDefaults()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = now
	if prev != nil {
		c.CreatedAt = prev.CreatedAt
	}
	c.UpdatedAt = now
	return c, nil
}

// clone copies the reference fields so callers cannot mutate stored state.
func clone(c models.Customer) models.Customer {
	if c.Settings.VATRate != nil {
		v := *c.Settings.VATRate
		c.Settings.VATRate = &v
	}
	if c.Objectives != nil {
		obj := make(models.PropertyObjectives, len(c.Objectives))
		for k, v := range c.Objectives {
			obj[k] = v
		}
		c.Objectives = obj
	}
	return c
}

// sortNewestFirst orders by creation time descending, then id.
func sortNewestFirst(cs []models.Customer) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.After(cs[j].CreatedAt)
		}
		return cs[i].ID < cs[j].ID
	})
}

func utcNow() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
