package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/AngelCh415/perfdash/internal/models"
)

type seedFile struct {
	Customers []models.Customer `yaml:"customers"`
}

// ParseSeed reads a YAML document with a top-level customers list.
func ParseSeed(r io.Reader) ([]models.Customer, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return f.Customers, nil
}

// Seed validates every customer before writing any of them.
func Seed(ctx context.Context, st CustomerStore, customers []models.Customer, log *slog.Logger) ([]models.Customer, error) {
	for i, c := range customers {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("customer %d (%s): %w", i, c.Name, err)
		}
	}
	out := make([]models.Customer, 0, len(customers))
	for _, c := range customers {
		saved, err := st.Save(ctx, c)
		if err != nil {
			return out, fmt.Errorf("save %s: %w", c.Name, err)
		}
		log.Info("customer saved", slog.String("id", saved.ID), slog.String("name", saved.Name))
		out = append(out, saved)
	}
	return out, nil
}
