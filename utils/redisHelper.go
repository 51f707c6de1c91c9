package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/lottery_backend/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

/* Redis */

// check if model has expiration date
func typeHasExpiration(typeName string) bool {
	expirableTypes := map[string]bool{
		"Game":         true,
		"StoreSetting": true,
		"SyncSession":  true,
	}
	return expirableTypes[typeName]
}

// store instance, obj should be a pointer
func StoreRedis[T any](obj any, id string) error {
	typeName := GetTypeName[T]()
	key := typeName + ":" + id

	var duration time.Duration
	if typeHasExpiration(typeName) {
		duration = GetCacheLifespan()
	}
	return config.SetRedisObject(key, &obj, duration)
}

// store a list keyed by store
func StoreRedisList[T any](obj any, storeId string) error {
	var key string
	typeName := GetTypeName[T]()
	if storeId == "" {
		key = typeName + "List"
	} else {
		key = typeName + "List:" + storeId
	}

	var duration time.Duration
	if typeHasExpiration(typeName) {
		duration = GetCacheLifespan()
	}
	return config.SetRedisObject(key, &obj, duration)
}

// get from redis
// returns nil if does not exist
func RetrieveRedis[T any](id string) (*T, error) {
	var result *T
	key := GetTypeName[T]() + ":" + id
	exists, err := config.GetRedisObject(key, &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

// retrieve a list.
// storeId can be empty
func RetrieveRedisList[T any](storeId string) ([]*T, error) {
	var key string
	if storeId == "" {
		key = GetTypeName[T]() + "List"
	} else {
		key = GetTypeName[T]() + "List:" + storeId
	}

	var result []*T
	exists, err := config.GetRedisObject(key, &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

// clear list, TypeList:$store_id
func RemoveRedisList[T any](storeId string) error {
	var key string = GetTypeName[T]() + "List:" + storeId
	return config.RemoveRedisKey(key)
}

// remove an instance, Type:$id
func RemoveRedisItem[T any](id string) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.RemoveRedisKey(key)
}

// StoreLock obtains a short redis lock scoped to one store. The returned
// release func is safe to call even when the lock was not obtained; in
// that degraded case callers should fall back to their own row-level
// guards rather than fail the request.
func StoreLock(ctx context.Context, storeId string, lockType string, moduleName string, functionName string) (func(), error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		config.LogError(logger, moduleName, functionName, "Redis lock not initialized", storeId, errors.New("redis lock is nil"))
		return func() {}, nil
	}
	lockKey := fmt.Sprintf("%s:%s", lockType, storeId)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain lock for store", storeId, err)
		return nil, errors.New("could not obtain lock for store")
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining lock for store", storeId, err)
		return func() {}, nil
	}
	return func() { _ = lock.Release(ctx) }, nil
}
