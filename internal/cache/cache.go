package cache

import (
	"context"
	"errors"
)

// Cache хранит JSON-представления значений в пространствах имен.
// ClearNamespace удаляет все ключи пространства разом и увеличивает его поколение.
// Поколение входит в ключи читателей, поэтому запись, начатая до очистки, не видна после нее.
type Cache interface {
	Get(ctx context.Context, namespace, key string, dest any) error
	Set(ctx context.Context, namespace, key string, value any) error
	Generation(ctx context.Context, namespace string) (int64, error)
	ClearNamespace(ctx context.Context, namespace string) error
}

var ErrCacheMiss = errors.New("cache miss")
