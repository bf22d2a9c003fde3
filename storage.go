package main

import (
	"context"

	"go.uber.org/zap"
)

// Stub storage drivers.
const (
	StorageBolt  = "bolt"
	StorageRedis = "redis"
)

// BookStorage defines possible operations on stored books. Storages assign
// the id on Add and keep books in insertion order.
type BookStorage interface {
	Add(ctx context.Context, book Book) (Book, error)
	GetOne(ctx context.Context, id BookID) (Book, error)
	Update(ctx context.Context, id BookID, book Book) (Book, error)
	Delete(ctx context.Context, id BookID) error
	GetAll(ctx context.Context) ([]Book, error)
	Close() error
}

// GetBookStorage opens the storage selected into the stub configuration.
func GetBookStorage(logger *zap.Logger, config *Config) (BookStorage, error) {
	switch config.Stub.Storage {
	case StorageBolt:
		client, err := GetBoltDBClient(config)
		if err != nil {
			return nil, err
		}
		return NewBoltBookStorage(logger, &config.BoltDB, client), nil
	case StorageRedis:
		client, err := GetRedisClient(config)
		if err != nil {
			return nil, err
		}
		return NewRedisBookStorage(logger, &config.Redis, client), nil
	}
	return nil, invalidStorageKind(config.Stub.Storage)
}
