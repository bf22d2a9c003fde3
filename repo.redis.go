package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisTxMaxRetries bounds the optimistic transaction attempts.
const redisTxMaxRetries = 5

// Books are kept into a hash (id -> json) while their insertion
// order lives in a sorted set scored by the id sequence.
type redisBookStorage struct {
	logger *zap.Logger
	client *redis.Client
	hash   string
	order  string
	seq    string
}

// NewRedisBookStorage provides an instance of redis-based book storage.
func NewRedisBookStorage(logger *zap.Logger, config *RedisConfig, client *redis.Client) BookStorage {
	return &redisBookStorage{
		logger: logger,
		client: client,
		hash:   config.KeyPrefix,
		order:  config.KeyPrefix + ":order",
		seq:    config.KeyPrefix + ":seq",
	}
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// Close releases the redis connections pool.
func (rs *redisBookStorage) Close() error {
	return rs.client.Close()
}

// Add inserts a new book record under the next sequence value.
func (rs *redisBookStorage) Add(ctx context.Context, book Book) (Book, error) {
	seq, err := rs.client.Incr(ctx, rs.seq).Result()
	if err != nil {
		return Book{}, err
	}
	book.ID = BookID(strconv.FormatInt(seq, 10))
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return Book{}, err
	}
	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, rs.hash, book.ID.String(), bookBytes)
		pipe.ZAdd(ctx, rs.order, redis.Z{Score: float64(seq), Member: book.ID.String()})
		return nil
	})
	if err != nil {
		return Book{}, err
	}
	return book, nil
}

// GetOne retrieves a book record based on its ID.
func (rs *redisBookStorage) GetOne(ctx context.Context, id BookID) (Book, error) {
	var book Book
	bookJSONString, err := rs.client.HGet(ctx, rs.hash, id.String()).Result()
	if err == redis.Nil {
		return book, ErrBookNotFound
	}
	if err != nil {
		return book, err
	}
	err = json.Unmarshal([]byte(bookJSONString), &book)
	return book, err
}

// Delete removes a book record based on its ID.
func (rs *redisBookStorage) Delete(ctx context.Context, id BookID) error {
	var del *redis.IntCmd
	_, err := rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.HDel(ctx, rs.hash, id.String())
		pipe.ZRem(ctx, rs.order, id.String())
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return ErrBookNotFound
	}
	return nil
}

// Update replaces existing book record data. The record is watched between
// the existence check and the write so a concurrent delete is never undone.
func (rs *redisBookStorage) Update(ctx context.Context, id BookID, book Book) (Book, error) {
	book.ID = id
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return Book{}, err
	}

	update := func(tx *redis.Tx) error {
		exists, err := tx.HExists(ctx, rs.hash, id.String()).Result()
		if err != nil {
			return err
		}
		if !exists {
			return ErrBookNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, rs.hash, id.String(), bookBytes)
			return nil
		})
		return err
	}

	for i := 0; i < redisTxMaxRetries; i++ {
		err = rs.client.Watch(ctx, update, rs.hash)
		if err == redis.TxFailedErr {
			rs.logger.Debug("book update conflicted, retrying", zap.Stringer("book.id", id), zap.Int("attempt", i+1))
			continue
		}
		if err != nil {
			return Book{}, err
		}
		return book, nil
	}
	return Book{}, fmt.Errorf("book %s update kept conflicting: %w", id, err)
}

// GetAll retrieves a list of all books in insertion order.
func (rs *redisBookStorage) GetAll(ctx context.Context) ([]Book, error) {
	books := []Book{}
	ids, err := rs.client.ZRange(ctx, rs.order, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return books, nil
	}
	values, err := rs.client.HMGet(ctx, rs.hash, ids...).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		bookJSONString, ok := v.(string)
		if !ok {
			continue
		}
		var book Book
		if err = json.Unmarshal([]byte(bookJSONString), &book); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}
