package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
)

func TestRedisStore_Get_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStoreFromClient(db, 0, "test:")

	entry := Entry{Translations: map[string]string{"greeting": "Hallo"}, Timestamp: 1234}
	data, _ := json.Marshal(entry)
	mock.ExpectGet("test:de").SetVal(string(data))

	got, ok := store.Get("de")
	if !ok {
		t.Error("Expected cache hit")
	}
	if got.Translations["greeting"] != "Hallo" || got.Timestamp != 1234 {
		t.Errorf("Got %+v, want the stored entry back", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisStore_Get_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStoreFromClient(db, 0, "test:")

	mock.ExpectGet("test:de").RedisNil()

	if _, ok := store.Get("de"); ok {
		t.Error("Expected cache miss")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisStore_Get_Corrupt(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStoreFromClient(db, 0, "test:")

	mock.ExpectGet("test:de").SetVal("not json")

	if _, ok := store.Get("de"); ok {
		t.Error("Corrupt value should count as a miss")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisStore_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStoreFromClient(db, 3600, "test:")

	entry := Entry{Translations: map[string]string{"greeting": "Hallo"}, Timestamp: 1234}
	data, _ := json.Marshal(entry)
	mock.ExpectSet("test:de", data, 3600*time.Second).SetVal("OK")

	if err := store.Set("de", entry); err != nil {
		t.Errorf("Set failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisStore_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStoreFromClient(db, 0, "test:")

	mock.ExpectDel("test:de").SetVal(1)

	if err := store.Delete("de"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisStore_Keys(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStoreFromClient(db, 0, "test:")

	mock.ExpectScan(0, "test:*", 0).SetVal([]string{"test:de", "test:de-AT"}, 0)

	keys := store.Keys()
	if len(keys) != 2 {
		t.Fatalf("Expected 2 keys, got %d: %v", len(keys), keys)
	}
	if keys[0] != "de" || keys[1] != "de-AT" {
		t.Errorf("Keys should be prefix-stripped, got %v", keys)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisStore_Ping(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStoreFromClient(db, 0, "test:")

	mock.ExpectPing().SetVal("PONG")

	if err := store.Ping(); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisStore_Close(t *testing.T) {
	db, mock := redismock.NewClientMock()

	store := NewRedisStoreFromClient(db, 0, "test:")

	if err := store.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	_ = mock // Silence unused warning
}
