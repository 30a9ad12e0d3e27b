package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"hikvision-integration/models"
	util "hikvision-integration/pkg/utils"
	"hikvision-integration/scheduler"
)

var ErrUnknownCompany = errors.New("unknown company")

func init() {
	util.Validate.RegisterValidation("schedule", func(fl validator.FieldLevel) bool {
		_, err := scheduler.ParseSchedule(fl.Field().String(), nil)
		return err == nil
	})
}

// LoadCompanies reads the companies file. It is a JSON array as written by
// existing deployments, or the same list in YAML.
func LoadCompanies(path string) ([]*models.Company, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read companies file: %w", err)
	}
	var companies []*models.Company
	if err := yaml.Unmarshal(raw, &companies); err != nil {
		return nil, fmt.Errorf("decode companies file %s: %w", path, err)
	}
	if len(companies) == 0 {
		return nil, fmt.Errorf("companies file %s lists no companies", path)
	}
	for i, c := range companies {
		if c == nil {
			return nil, fmt.Errorf("company #%d is empty", i+1)
		}
		if errs := util.ValidateStruct(c); len(errs) > 0 {
			msgs := make([]string, 0, len(errs))
			for _, e := range errs {
				msgs = append(msgs, e.Msg)
			}
			return nil, fmt.Errorf("company #%d (%s): %s", i+1, c.Name, strings.Join(msgs, "; "))
		}
		if err := c.Normalize(); err != nil {
			return nil, err
		}
	}
	return companies, nil
}

// Registry is the read-only set of companies loaded at startup.
type Registry struct {
	companies []*models.Company
	byAddress map[string]*models.Company
	byID      map[string]*models.Company
}

func NewRegistry(companies []*models.Company) (*Registry, error) {
	r := &Registry{
		companies: companies,
		byAddress: make(map[string]*models.Company, len(companies)),
		byID:      make(map[string]*models.Company, len(companies)),
	}
	for _, c := range companies {
		if _, dup := r.byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate company id %s", c.ID)
		}
		if other, dup := r.byAddress[c.IPAddress]; dup {
			return nil, fmt.Errorf("companies %s and %s share device address %s", other.Name, c.Name, c.IPAddress)
		}
		r.byID[c.ID] = c
		r.byAddress[c.IPAddress] = c
	}
	return r, nil
}

// LoadRegistry reads, validates and indexes the companies file.
func LoadRegistry(path string) (*Registry, error) {
	companies, err := LoadCompanies(path)
	if err != nil {
		return nil, err
	}
	return NewRegistry(companies)
}

func (r *Registry) ByDeviceAddress(addr string) (*models.Company, bool) {
	c, ok := r.byAddress[strings.TrimSpace(addr)]
	return c, ok
}

func (r *Registry) ByID(id string) (*models.Company, error) {
	c, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompany, id)
	}
	return c, nil
}

func (r *Registry) All() []*models.Company {
	return r.companies
}
