package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/desainhub/desainhub-api/database"
	"github.com/desainhub/desainhub-api/models"
	"github.com/desainhub/desainhub-api/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeStore stands in for the file backend and records deletions so tests can
// assert on file release behaviour.
type fakeStore struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeStore) Upload(_ context.Context, file *multipart.FileHeader, folder string) (*storage.StoredFile, error) {
	return &storage.StoredFile{
		URL:    "http://files.local/" + folder + "/" + file.Filename,
		Handle: "h-" + file.Filename,
	}, nil
}

func (f *fakeStore) UploadBytes(_ context.Context, _ []byte, name, folder string) (*storage.StoredFile, error) {
	return &storage.StoredFile{
		URL:    "http://files.local/" + folder + "/" + name,
		Handle: "h-" + name,
	}, nil
}

func (f *fakeStore) Delete(_ context.Context, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, handle)
	return nil
}

func (f *fakeStore) wasDeleted(handle string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.deleted {
		if h == handle {
			return true
		}
	}
	return false
}

// setupTestDB points the application at a fresh in-memory database. The
// shared-cache name keeps every pooled connection on the same instance.
func setupTestDB(t *testing.T) *fakeStore {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.ServiceRequest{},
		&models.Application{},
		&models.Order{},
		&models.Deliverable{},
		&models.Payment{},
		&models.PortfolioItem{},
	))

	database.SetDB(db)

	store := &fakeStore{}
	FileStore = store
	return store
}

func makeUser(t *testing.T, role string) models.User {
	t.Helper()
	user := models.User{
		Name:     role + " user",
		Email:    fmt.Sprintf("%s-%s@example.com", role, uuid.NewString()),
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, database.DB.Create(&user).Error)
	return user
}

func makeCategory(t *testing.T) models.Category {
	t.Helper()
	category := models.Category{Name: "Logo Design " + uuid.NewString()}
	require.NoError(t, database.DB.Create(&category).Error)
	return category
}

func makeService(t *testing.T, client models.User, budget float64) models.ServiceRequest {
	t.Helper()
	service := models.ServiceRequest{
		ClientID:    client.ID,
		CategoryID:  makeCategory(t).ID,
		Title:       "Company rebrand",
		Description: "Full identity refresh with deliverable source files.",
		Budget:      budget,
		Deadline:    time.Now().Add(14 * 24 * time.Hour),
		Status:      models.ServiceStatusOpen,
	}
	require.NoError(t, database.DB.Create(&service).Error)
	return service
}

// makeActiveOrder wires a paid in-progress order with its service request and
// both parties, the starting point for deliverable tests.
func makeActiveOrder(t *testing.T, maxRevisions int) (models.Order, models.User, models.User) {
	t.Helper()

	client := makeUser(t, models.RoleClient)
	designer := makeUser(t, models.RoleDesigner)
	service := makeService(t, client, 500)

	require.NoError(t, database.DB.Model(&models.ServiceRequest{}).
		Where("id = ?", service.ID).
		Updates(map[string]interface{}{
			"status":      models.ServiceStatusAssigned,
			"assigned_to": designer.ID,
		}).Error)

	order := models.Order{
		ServiceID:    service.ID,
		ClientID:     client.ID,
		DesignerID:   designer.ID,
		Price:        service.Budget,
		Status:       models.OrderStatusInProgress,
		MaxRevisions: maxRevisions,
		IsPaid:       true,
	}
	require.NoError(t, database.DB.Create(&order).Error)
	return order, client, designer
}
