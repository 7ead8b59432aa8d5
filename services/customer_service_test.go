package services

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-frontdesk/failure"
)

type memoryStorage struct {
	puts    map[string][]byte
	deleted []string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{puts: map[string][]byte{}}
}

func (m *memoryStorage) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	m.puts[key] = data
	return "https://cdn.example.com/" + key, nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

func dataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func customerRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "created_at", "updated_at", "name", "phone", "images"}).
		AddRow(3, time.Now(), time.Now(), "Asha", "9000000001", "[]")
}

func TestUploadImageRejectsBeforeAnyWrite(t *testing.T) {
	db, mock := newMockDB(t)
	store := newMemoryStorage()
	svc := NewCustomerService(testDeps(t, db, utc(2024, 1, 2, 6, 30)), store)

	cases := map[string]string{
		"not a data uri": "hello",
		"wrong type":     dataURI("application/pdf", []byte("%PDF")),
		"too large":      dataURI("image/png", make([]byte, 2*1024*1024+1)),
	}
	for name, image := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.UploadImage(context.Background(), 3, ImageUpload{Image: image})
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		})
	}
	assert.Empty(t, store.puts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadImageStoresAndAppends(t *testing.T) {
	db, mock := newMockDB(t)
	store := newMemoryStorage()
	svc := NewCustomerService(testDeps(t, db, utc(2024, 1, 2, 6, 30)), store)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `customers`")).WillReturnRows(customerRows())
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `customers` SET")).WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := svc.UploadImage(context.Background(), 3, ImageUpload{Image: dataURI("image/png", []byte("png-bytes"))})
	require.NoError(t, err)

	require.Len(t, store.puts, 1)
	for key, data := range store.puts {
		assert.True(t, strings.HasPrefix(key, "customers/3/"))
		assert.True(t, strings.HasSuffix(key, ".png"))
		assert.Equal(t, []byte("png-bytes"), data)
		assert.JSONEq(t, `["https://cdn.example.com/`+key+`"]`, string(c.Images))
	}
	assert.Empty(t, store.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadImageRemovesObjectWhenSaveFails(t *testing.T) {
	db, mock := newMockDB(t)
	store := newMemoryStorage()
	svc := NewCustomerService(testDeps(t, db, utc(2024, 1, 2, 6, 30)), store)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `customers`")).WillReturnRows(customerRows())
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `customers` SET")).WillReturnError(errors.New("connection reset"))

	_, err := svc.UploadImage(context.Background(), 3, ImageUpload{Image: dataURI("image/jpeg", []byte("jpg"))})
	require.Error(t, err)

	require.Len(t, store.puts, 1)
	require.Len(t, store.deleted, 1)
	_, ok := store.puts[store.deleted[0]]
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadImageUnknownCustomer(t *testing.T) {
	db, mock := newMockDB(t)
	store := newMemoryStorage()
	svc := NewCustomerService(testDeps(t, db, utc(2024, 1, 2, 6, 30)), store)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `customers`")).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.UploadImage(context.Background(), 3, ImageUpload{Image: dataURI("image/webp", []byte("webp"))})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	assert.Empty(t, store.puts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByPhoneRequiresPhone(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewCustomerService(testDeps(t, db, utc(2024, 1, 2, 6, 30)), newMemoryStorage())

	_, err := svc.FindByPhone(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}
