package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kitbuilder587/serpclient/internal/domain"
	"github.com/kitbuilder587/serpclient/internal/payload"
)

// Cache - кеш готовых результатов по payload.
// Get и Set работают с копиями: Batch раздаёт один результат нескольким воркерам.
type Cache interface {
	Get(key string) (*domain.Result, bool)
	Set(key string, res *domain.Result, ttl time.Duration)
	Delete(key string)
}

// Key строит ключ из payload. json.Marshal сортирует ключи map,
// так что одинаковые payload дают одинаковый ключ.
func Key(p payload.Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("result:%x", hash[:12]), nil
}
