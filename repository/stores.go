package repository

import (
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"hikvision-integration/models"
)

// Stores hands out the AttendanceStore a company is configured for.
type Stores struct {
	json  AttendanceStore
	excel AttendanceStore
	mongo *MongoStore
}

// NewStores builds the file stores under dataDir. db may be nil when no
// company uses Mongo storage.
func NewStores(dataDir string, db *mongo.Database) *Stores {
	s := &Stores{
		json:  NewJSONStore(dataDir),
		excel: NewExcelStore(dataDir),
	}
	if db != nil {
		s.mongo = NewMongoStore(db)
	}
	return s
}

// Mongo returns the Mongo store, or nil if none is configured.
func (s *Stores) Mongo() *MongoStore {
	return s.mongo
}

func (s *Stores) For(company *models.Company) (AttendanceStore, error) {
	switch company.Storage {
	case models.StorageJSON, "":
		return s.json, nil
	case models.StorageExcel:
		return s.excel, nil
	case models.StorageMongo:
		if s.mongo == nil {
			return nil, fmt.Errorf("company %s: %w: mongo", company.Name, ErrStorageUnavailable)
		}
		return s.mongo, nil
	}
	return nil, fmt.Errorf("company %s: %w: %q", company.Name, ErrStorageUnavailable, company.Storage)
}
