package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"btsbridge/config"
	"btsbridge/types"

	"github.com/gomodule/redigo/redis"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store persists deployment records and the operation journal.
type Store struct {
	pool *redis.Pool
}

func timeoutDialOptions() []redis.DialOption {
	return []redis.DialOption{
		redis.DialConnectTimeout(5 * time.Second),
		redis.DialReadTimeout(5 * time.Second),
		redis.DialWriteTimeout(5 * time.Second),
	}
}

func New(redisAddr string) *Store {
	return &Store{
		pool: &redis.Pool{
			MaxIdle: 5,
			Dial:    func() (redis.Conn, error) { return redis.Dial("tcp", redisAddr, timeoutDialOptions()...) },
		},
	}
}

func FromConfig(cfg *config.Configuration) *Store {
	return New(fmt.Sprintf("%s:%d", cfg.Server.RedisHost, cfg.Server.RedisPort))
}

func (s *Store) Close() error {
	return s.pool.Close()
}

func (s *Store) Ping() error {
	conn := s.pool.Get()
	defer conn.Close()

	_, err := conn.Do("PING")
	return err
}

func deploymentKey(network string) string {
	return fmt.Sprintf("deployment:%s", network)
}

// SaveDeployment stores a completed deployment. Records are write-once per network.
func (s *Store) SaveDeployment(rec *types.DeploymentRecord) error {
	conn := s.pool.Get()
	defer conn.Close()

	if rec == nil {
		return errors.New("null object to store")
	}

	if rec.Network == "" {
		return errors.New("deployment record cannot have empty network")
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cannot marshal deployment record to JSON: %s", err.Error())
	}

	created, err := redis.Int(conn.Do("SETNX", deploymentKey(rec.Network), recJSON))
	if err != nil {
		zap.S().Errorf("error Redis SETNX: %s", err.Error())
		return err
	}
	if created == 0 {
		return fmt.Errorf("%w: %s", types.ErrRecordExists, rec.Network)
	}

	_, err = conn.Do("SADD", config.REDIS_DEPLOYMENTS_SET, rec.Network)
	if err != nil {
		zap.S().Errorf("error Redis SADD: %s", err.Error())
		return err
	}

	return nil
}

func (s *Store) GetDeployment(network string) (*types.DeploymentRecord, error) {
	conn := s.pool.Get()
	defer conn.Close()

	raw, err := redis.Bytes(conn.Do("GET", deploymentKey(network)))
	if errors.Is(err, redis.ErrNil) {
		return nil, nil
	}
	if err != nil {
		zap.S().Errorf("error Redis get: %s", err.Error())
		return nil, err
	}

	var rec types.DeploymentRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) ListDeployments() ([]string, error) {
	conn := s.pool.Get()
	defer conn.Close()

	return redis.Strings(conn.Do("SMEMBERS", config.REDIS_DEPLOYMENTS_SET))
}

// AppendOperation journals one operator command under its status set.
func (s *Store) AppendOperation(op *types.OperationRecord) error {
	conn := s.pool.Get()
	defer conn.Close()

	if op == nil {
		return errors.New("null object to store")
	}

	set, ok := config.RedisStatusSets[op.Status]
	if !ok {
		return fmt.Errorf("operation record has unknown status %q", op.Status)
	}

	if op.ID == "" {
		op.ID = uuid.New().String()
	}
	recordKey := fmt.Sprintf("btsop:%s:%s", op.Status, op.ID)

	opJSON, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("cannot marshal operation record to JSON: %s", err.Error())
	}

	_, err = conn.Do("SET", recordKey, opJSON)
	if err != nil {
		zap.S().Errorf("error Redis SET: %s", err.Error())
		return err
	}

	// also add the key to the corresponding SET
	_, err = conn.Do("SADD", set, recordKey)
	if err != nil {
		zap.S().Errorf("error Redis SADD: %s", err.Error())
		return err
	}

	return nil
}

func (s *Store) FindAllOperationsByStatus(status string) ([]*types.OperationRecord, error) {
	conn := s.pool.Get()
	defer conn.Close()

	set, ok := config.RedisStatusSets[status]
	if !ok {
		return nil, errors.New("redis key not found for status")
	}

	ops := make([]*types.OperationRecord, 0)

	// scan every operation present in Redis
	var cursor int64

	for {
		values, err := redis.Values(conn.Do("SSCAN", set, cursor))
		if err != nil {
			return nil, err
		}

		var opKeys []string
		_, err = redis.Scan(values, &cursor, &opKeys)
		if err != nil {
			return nil, err
		}

		for _, key := range opKeys {
			raw, err := redis.Bytes(conn.Do("GET", key))
			if errors.Is(err, redis.ErrNil) {
				// dangling set member
				continue
			}
			if err != nil {
				zap.S().Errorf("error Redis GET: %s", err.Error())
				return nil, err
			}

			var op types.OperationRecord
			if err := json.Unmarshal(raw, &op); err != nil {
				return nil, err
			}
			if op.Status == status {
				ops = append(ops, &op)
			}
		}

		if cursor == 0 {
			break
		}
	}

	return ops, nil
}
